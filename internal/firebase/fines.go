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
	// FinesCollection to nazwa kolekcji kar w Firestore
	FinesCollection = "fines"
)

// CreateFine tworzy wiersz kary powiązany z wypożyczeniem
func (c *Client) CreateFine(fine *models.Fine) error {
	if fine == nil {
		return fmt.Errorf("kara nie może być nil")
	}
	if fine.UserID == "" || fine.BorrowID == "" {
		return fmt.Errorf("ID użytkownika i wypożyczenia są wymagane")
	}
	if fine.Amount < 0 {
		return fmt.Errorf("kwota kary nie może być ujemna")
	}

	fine.CreatedAt = time.Now()
	if fine.Status == "" {
		fine.Status = models.FineStatusPending
	}

	docRef := c.Firestore.Collection(FinesCollection).NewDoc()
	fine.ID = docRef.ID

	if _, err := docRef.Set(c.ctx, fine); err != nil {
		return fmt.Errorf("błąd zapisywania kary: %w", err)
	}

	return nil
}

// GetUserFines pobiera wszystkie kary użytkownika, najnowsze najpierw
func (c *Client) GetUserFines(userID string) ([]*models.Fine, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(FinesCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Documents(c.ctx)

	return c.collectFines(iter)
}

// GetUserPendingFines pobiera niezapłacone kary użytkownika
func (c *Client) GetUserPendingFines(userID string) ([]*models.Fine, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(FinesCollection).
		Where("user_id", "==", userID).
		Where("status", "==", string(models.FineStatusPending)).
		Documents(c.ctx)

	return c.collectFines(iter)
}

// ListFines pobiera wszystkie kary w systemie, najnowsze najpierw
func (c *Client) ListFines() ([]*models.Fine, error) {
	iter := c.Firestore.Collection(FinesCollection).
		OrderBy("created_at", firestore.Desc).
		Documents(c.ctx)

	return c.collectFines(iter)
}

// HasFineForBorrow sprawdza czy dla wypożyczenia istnieje już wiersz kary.
// Zadanie reminders używa tego do deduplikacji.
func (c *Client) HasFineForBorrow(borrowID string) (bool, error) {
	iter := c.Firestore.Collection(FinesCollection).
		Where("borrow_id", "==", borrowID).
		Limit(1).
		Documents(c.ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("błąd wyszukiwania kary: %w", err)
	}
	return true, nil
}

// MarkFinePaid oznacza karę jako zapłaconą
func (c *Client) MarkFinePaid(fineID string) error {
	if fineID == "" {
		return fmt.Errorf("ID kary nie może być puste")
	}

	_, err := c.Firestore.Collection(FinesCollection).Doc(fineID).Update(c.ctx, []firestore.Update{
		{Path: "status", Value: string(models.FineStatusPaid)},
		{Path: "paid_date", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("błąd aktualizacji kary: %w", err)
	}

	return nil
}

// collectFines zbiera wyniki zapytania do listy modeli
func (c *Client) collectFines(iter *firestore.DocumentIterator) ([]*models.Fine, error) {
	defer iter.Stop()

	var fines []*models.Fine
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po karach: %w", err)
		}

		var fine models.Fine
		if err := doc.DataTo(&fine); err != nil {
			return nil, fmt.Errorf("błąd parsowania kary: %w", err)
		}
		fine.ID = doc.Ref.ID

		fines = append(fines, &fine)
	}

	return fines, nil
}
