package firebase

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"smart-library-api/internal/models"
)

const (
	// ResourcesCollection to nazwa kolekcji metadanych zasobów w Firestore
	ResourcesCollection = "resources"
)

// ResourceObjectPath buduje ścieżkę obiektu w buckecie: katalog po przedmiocie
// i semestrze, nazwa pliku generowana - oryginalna nazwa nie trafia do bucketa
func ResourceObjectPath(subject string, semester int, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("resources/%s/sem-%d/%s%s", slugify(subject), semester, uuid.NewString(), ext)
}

// slugify zamienia tekst na bezpieczny fragment ścieżki.
// Ciągi separatorów składają się do pojedynczego myślnika, bez myślników
// na początku i końcu.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ', r == '-', r == '_':
			if b.Len() > 0 && !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "inne"
	}
	return out
}

// UploadResource zapisuje plik w buckecie Cloud Storage i tworzy wiersz
// metadanych w Firestore. Jeśli zapis metadanych się nie powiedzie, obiekt
// jest sprzątany z bucketa (najlepszy wysiłek).
func (c *Client) UploadResource(resource *models.Resource, file io.Reader, bucketName, originalFilename string) error {
	if resource == nil {
		return fmt.Errorf("zasób nie może być nil")
	}
	if c.Storage == nil {
		return fmt.Errorf("Cloud Storage nie został zainicjalizowany")
	}
	if resource.Title == "" {
		return fmt.Errorf("tytuł zasobu jest wymagany")
	}

	bucket, err := c.Storage.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("błąd dostępu do bucketa: %w", err)
	}

	objectPath := ResourceObjectPath(resource.Subject, resource.Semester, originalFilename)
	obj := bucket.Object(objectPath)

	writer := obj.NewWriter(c.ctx)
	size, err := io.Copy(writer, file)
	if err != nil {
		writer.Close()
		return fmt.Errorf("błąd zapisu pliku do bucketa: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("błąd finalizacji zapisu pliku: %w", err)
	}

	resource.FilePath = objectPath
	resource.FileURL = fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath)
	resource.FileSize = size
	resource.CreatedAt = time.Now()

	docRef := c.Firestore.Collection(ResourcesCollection).NewDoc()
	resource.ID = docRef.ID

	if _, err := docRef.Set(c.ctx, resource); err != nil {
		// Sprzątanie osieroconego obiektu - najlepszy wysiłek
		if delErr := obj.Delete(c.ctx); delErr != nil {
			log.Printf("Nie udało się usunąć osieroconego pliku %s: %v", objectPath, delErr)
		}
		return fmt.Errorf("błąd zapisywania metadanych zasobu: %w", err)
	}

	return nil
}

// GetResource pobiera metadane zasobu po ID
func (c *Client) GetResource(id string) (*models.Resource, error) {
	if id == "" {
		return nil, fmt.Errorf("ID zasobu nie może być puste")
	}

	doc, err := c.Firestore.Collection(ResourcesCollection).Doc(id).Get(c.ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania zasobu: %w", err)
	}

	var resource models.Resource
	if err := doc.DataTo(&resource); err != nil {
		return nil, fmt.Errorf("błąd parsowania zasobu: %w", err)
	}
	resource.ID = doc.Ref.ID

	return &resource, nil
}

// ResourceFilters to filtry listy zasobów
type ResourceFilters struct {
	Subject  string
	Semester int
	Year     int
	Type     string
}

// ListResources pobiera zasoby według filtrów, najnowszy rocznik najpierw.
// Dopasowanie przedmiotu jest tekstowe i wykonywane po stronie aplikacji.
func (c *Client) ListResources(filters ResourceFilters) ([]*models.Resource, error) {
	query := c.Firestore.Collection(ResourcesCollection).Query

	if filters.Semester != 0 {
		query = query.Where("semester", "==", filters.Semester)
	}
	if filters.Year != 0 {
		query = query.Where("year", "==", filters.Year)
	}
	if filters.Type != "" {
		query = query.Where("type", "==", filters.Type)
	}

	iter := query.OrderBy("year", firestore.Desc).Documents(c.ctx)
	defer iter.Stop()

	var resources []*models.Resource
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po zasobach: %w", err)
		}

		var resource models.Resource
		if err := doc.DataTo(&resource); err != nil {
			return nil, fmt.Errorf("błąd parsowania zasobu: %w", err)
		}
		resource.ID = doc.Ref.ID

		if filters.Subject != "" && !containsFold(resource.Subject, filters.Subject) {
			continue
		}

		resources = append(resources, &resource)
	}

	return resources, nil
}

// DeleteResource usuwa wiersz metadanych zasobu i próbuje usunąć plik
// z bucketa. Błąd usuwania pliku jest celowo przemilczany - osierocony
// obiekt w buckecie jest lepszy niż martwy wpis na liście zasobów.
func (c *Client) DeleteResource(id, bucketName string) error {
	resource, err := c.GetResource(id)
	if err != nil {
		return err
	}

	if _, err := c.Firestore.Collection(ResourcesCollection).Doc(id).Delete(c.ctx); err != nil {
		return fmt.Errorf("błąd usuwania metadanych zasobu: %w", err)
	}

	// Usunięcie pliku z bucketa - najlepszy wysiłek
	if c.Storage != nil && resource.FilePath != "" {
		bucket, err := c.Storage.Bucket(bucketName)
		if err == nil {
			if err := bucket.Object(resource.FilePath).Delete(c.ctx); err != nil {
				log.Printf("Nie udało się usunąć pliku %s z bucketa: %v", resource.FilePath, err)
			}
		}
	}

	return nil
}
