package firebase

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"smart-library-api/internal/models"
)

const (
	// BooksCollection to nazwa kolekcji książek w Firestore
	BooksCollection = "books"
)

// GetBook pobiera książkę po ID
func (c *Client) GetBook(id string) (*models.Book, error) {
	if id == "" {
		return nil, fmt.Errorf("ID książki nie może być puste")
	}

	doc, err := c.Firestore.Collection(BooksCollection).Doc(id).Get(c.ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania książki: %w", err)
	}

	var book models.Book
	if err := doc.DataTo(&book); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych książki: %w", err)
	}

	// Ustaw ID z dokumentu Firestore
	book.ID = doc.Ref.ID

	return &book, nil
}

// CreateBook tworzy nową książkę w katalogu
func (c *Client) CreateBook(book *models.Book) error {
	if book == nil {
		return fmt.Errorf("książka nie może być nil")
	}

	// Walidacja podstawowych pól
	if book.Title == "" {
		return fmt.Errorf("tytuł książki jest wymagany")
	}
	if book.Author == "" {
		return fmt.Errorf("autor książki jest wymagany")
	}
	if book.TotalCopies < 0 {
		return fmt.Errorf("liczba egzemplarzy nie może być ujemna")
	}

	// Nowa książka startuje z pełną pulą dostępnych egzemplarzy
	book.AvailableCopies = book.TotalCopies

	// Ustawienie timestamps
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	// Jeśli nie ma ID, Firestore wygeneruje automatycznie
	var docRef *firestore.DocumentRef
	if book.ID == "" {
		docRef = c.Firestore.Collection(BooksCollection).NewDoc()
		book.ID = docRef.ID
	} else {
		docRef = c.Firestore.Collection(BooksCollection).Doc(book.ID)
	}

	// Zapisz książkę
	_, err := docRef.Set(c.ctx, book)
	if err != nil {
		return fmt.Errorf("błąd zapisywania książki: %w", err)
	}

	return nil
}

// UpdateBookFields aktualizuje wybrane pola książki
func (c *Client) UpdateBookFields(id string, fields map[string]interface{}) error {
	if id == "" {
		return fmt.Errorf("ID książki nie może być puste")
	}
	if len(fields) == 0 {
		return fmt.Errorf("brak pól do aktualizacji")
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now()})

	_, err := c.Firestore.Collection(BooksCollection).Doc(id).Update(c.ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("błąd aktualizacji książki: %w", err)
	}

	return nil
}

// DeleteBook usuwa książkę z katalogu
func (c *Client) DeleteBook(id string) error {
	if id == "" {
		return fmt.Errorf("ID książki nie może być puste")
	}

	_, err := c.Firestore.Collection(BooksCollection).Doc(id).Delete(c.ctx)
	if err != nil {
		return fmt.Errorf("błąd usuwania książki: %w", err)
	}

	return nil
}

// ListBooks pobiera wszystkie książki posortowane po tytule
func (c *Client) ListBooks() ([]*models.Book, error) {
	iter := c.Firestore.Collection(BooksCollection).
		OrderBy("title", firestore.Asc).
		Documents(c.ctx)

	return c.collectBooks(iter)
}

// BookSearchFilters to filtry wyszukiwania katalogu
type BookSearchFilters struct {
	Query        string // Dopasowanie do tytułu, autora lub przedmiotu
	Title        string
	Author       string
	Subject      string
	Category     string
	Availability string // "available" albo "unavailable"
}

// SearchBooks wyszukuje książki według filtrów. Dopasowania tekstowe są
// wykonywane po stronie aplikacji (Firestore nie obsługuje zapytań ILIKE),
// filtry równościowe i dostępności - po stronie bazy.
func (c *Client) SearchBooks(filters BookSearchFilters) ([]*models.Book, error) {
	query := c.Firestore.Collection(BooksCollection).Query

	if filters.Category != "" {
		query = query.Where("category", "==", filters.Category)
	}
	switch filters.Availability {
	case "available":
		query = query.Where("available_copies", ">", 0)
	case "unavailable":
		query = query.Where("available_copies", "==", 0)
	}

	books, err := c.collectBooks(query.Documents(c.ctx))
	if err != nil {
		return nil, err
	}

	// Filtrowanie tekstowe po stronie aplikacji
	var result []*models.Book
	for _, book := range books {
		if filters.Query != "" && !matchesAny(filters.Query, book.Title, book.Author, book.Subject) {
			continue
		}
		if filters.Title != "" && !containsFold(book.Title, filters.Title) {
			continue
		}
		if filters.Author != "" && !containsFold(book.Author, filters.Author) {
			continue
		}
		if filters.Subject != "" && !containsFold(book.Subject, filters.Subject) {
			continue
		}
		result = append(result, book)
	}

	return result, nil
}

// CountBooks zwraca liczbę książek w katalogu
func (c *Client) CountBooks() (int, error) {
	docs, err := c.Firestore.Collection(BooksCollection).Documents(c.ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("błąd liczenia książek: %w", err)
	}
	return len(docs), nil
}

// collectBooks zbiera wyniki zapytania do listy modeli
func (c *Client) collectBooks(iter *firestore.DocumentIterator) ([]*models.Book, error) {
	defer iter.Stop()

	var books []*models.Book
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po książkach: %w", err)
		}

		var book models.Book
		if err := doc.DataTo(&book); err != nil {
			return nil, fmt.Errorf("błąd parsowania książki: %w", err)
		}
		book.ID = doc.Ref.ID

		books = append(books, &book)
	}

	return books, nil
}

// matchesAny sprawdza czy szukany tekst pasuje do któregokolwiek pola
func matchesAny(query string, fields ...string) bool {
	for _, f := range fields {
		if containsFold(f, query) {
			return true
		}
	}
	return false
}

// containsFold to wyszukiwanie podciągu bez rozróżniania wielkości liter
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
