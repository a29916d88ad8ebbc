package firebase

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"smart-library-api/internal/models"
)

const (
	// ProfilesCollection to nazwa kolekcji profili użytkowników w Firestore
	ProfilesCollection = "user_profiles"
)

// GetProfile pobiera profil użytkownika po ID (równym UID z Firebase Auth)
func (c *Client) GetProfile(id string) (*models.UserProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	doc, err := c.Firestore.Collection(ProfilesCollection).Doc(id).Get(c.ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania profilu: %w", err)
	}

	var profile models.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych profilu: %w", err)
	}
	profile.ID = doc.Ref.ID

	return &profile, nil
}

// CreateProfile tworzy profil użytkownika. ID dokumentu to UID z Firebase Auth,
// dzięki czemu profil i konto Auth są powiązane jeden do jednego.
func (c *Client) CreateProfile(profile *models.UserProfile) error {
	if profile == nil {
		return fmt.Errorf("profil nie może być nil")
	}

	// Walidacja
	if profile.ID == "" {
		return fmt.Errorf("ID profilu (UID) jest wymagane")
	}
	if profile.Email == "" {
		return fmt.Errorf("email jest wymagany")
	}
	if profile.Name == "" {
		return fmt.Errorf("imię i nazwisko są wymagane")
	}
	if !profile.Role.IsValid() {
		return fmt.Errorf("nieprawidłowa rola: %s", profile.Role)
	}

	// Domyślne wartości
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := c.Firestore.Collection(ProfilesCollection).Doc(profile.ID).Set(c.ctx, profile)
	if err != nil {
		return fmt.Errorf("błąd zapisywania profilu: %w", err)
	}

	return nil
}

// UpdateProfileFields aktualizuje wybrane pola profilu
func (c *Client) UpdateProfileFields(id string, fields map[string]interface{}) error {
	if id == "" {
		return fmt.Errorf("ID użytkownika nie może być puste")
	}
	if len(fields) == 0 {
		return fmt.Errorf("brak pól do aktualizacji")
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now()})

	_, err := c.Firestore.Collection(ProfilesCollection).Doc(id).Update(c.ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("błąd aktualizacji profilu: %w", err)
	}

	return nil
}

// ListStudents pobiera wszystkie profile z rolą student, posortowane po nazwisku
func (c *Client) ListStudents() ([]*models.UserProfile, error) {
	var students []*models.UserProfile

	iter := c.Firestore.Collection(ProfilesCollection).
		Where("role", "==", string(models.RoleStudent)).
		OrderBy("name", firestore.Asc).
		Documents(c.ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po profilach: %w", err)
		}

		var profile models.UserProfile
		if err := doc.DataTo(&profile); err != nil {
			return nil, fmt.Errorf("błąd parsowania profilu: %w", err)
		}
		profile.ID = doc.Ref.ID

		students = append(students, &profile)
	}

	return students, nil
}

// ListStudentIDs pobiera same identyfikatory studentów (do rozsyłania powiadomień)
func (c *Client) ListStudentIDs() ([]string, error) {
	var ids []string

	iter := c.Firestore.Collection(ProfilesCollection).
		Where("role", "==", string(models.RoleStudent)).
		Documents(c.ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po profilach: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}

	return ids, nil
}

// CountStudents zwraca liczbę zarejestrowanych studentów
func (c *Client) CountStudents() (int, error) {
	docs, err := c.Firestore.Collection(ProfilesCollection).
		Where("role", "==", string(models.RoleStudent)).
		Documents(c.ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("błąd liczenia studentów: %w", err)
	}
	return len(docs), nil
}

// DeleteAuthUser usuwa konto z Firebase Auth. Używane jako sprzątanie
// po nieudanym utworzeniu profilu przy rejestracji.
func (c *Client) DeleteAuthUser(uid string) error {
	if err := c.Auth.DeleteUser(c.ctx, uid); err != nil {
		return fmt.Errorf("błąd usuwania konta Auth: %w", err)
	}
	return nil
}
