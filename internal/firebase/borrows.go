package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"smart-library-api/internal/models"
	"smart-library-api/internal/policy"
)

const (
	// BorrowsCollection to nazwa kolekcji wypożyczeń w Firestore
	BorrowsCollection = "borrows"
)

// activeStatuses to statusy, przy których książka nie wróciła do katalogu
var activeStatuses = []string{
	string(models.BorrowStatusBorrowed),
	string(models.BorrowStatusOverdue),
}

// GetBorrow pobiera wypożyczenie po ID
func (c *Client) GetBorrow(id string) (*models.Borrow, error) {
	if id == "" {
		return nil, fmt.Errorf("ID wypożyczenia nie może być puste")
	}

	doc, err := c.Firestore.Collection(BorrowsCollection).Doc(id).Get(c.ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania wypożyczenia: %w", err)
	}

	var borrow models.Borrow
	if err := doc.DataTo(&borrow); err != nil {
		return nil, fmt.Errorf("błąd parsowania danych wypożyczenia: %w", err)
	}
	borrow.ID = doc.Ref.ID

	return &borrow, nil
}

// BorrowBook wypożycza książkę użytkownikowi w jednej transakcji Firestore:
// warunkowo zmniejsza licznik dostępnych egzemplarzy, egzekwuje limit
// jednoczesnych wypożyczeń i tworzy wiersz wypożyczenia. Przy dwóch
// równoległych próbach o ostatni egzemplarz dokładnie jedna się powiedzie,
// druga dostanie ErrBookUnavailable.
func (c *Client) BorrowBook(userID string, bookID string, p policy.Policy) (*models.Borrow, error) {
	if userID == "" || bookID == "" {
		return nil, fmt.Errorf("ID użytkownika i książki są wymagane")
	}

	bookRef := c.Firestore.Collection(BooksCollection).Doc(bookID)
	borrowRef := c.Firestore.Collection(BorrowsCollection).NewDoc()

	var created models.Borrow

	err := c.Firestore.RunTransaction(c.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bookDoc, err := tx.Get(bookRef)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("błąd pobierania książki: %w", err)
		}

		var book models.Book
		if err := bookDoc.DataTo(&book); err != nil {
			return fmt.Errorf("błąd parsowania książki: %w", err)
		}

		if book.AvailableCopies <= 0 {
			return ErrBookUnavailable
		}

		// Limit jednoczesnych wypożyczeń studenta
		activeQuery := c.Firestore.Collection(BorrowsCollection).
			Where("user_id", "==", userID).
			Where("status", "in", activeStatuses)

		activeDocs, err := tx.Documents(activeQuery).GetAll()
		if err != nil {
			return fmt.Errorf("błąd liczenia aktywnych wypożyczeń: %w", err)
		}
		if len(activeDocs) >= p.MaxBooksPerStudent {
			return ErrBorrowLimit
		}

		now := time.Now()
		created = models.Borrow{
			ID:         borrowRef.ID,
			UserID:     userID,
			BookID:     bookID,
			BookTitle:  book.Title,
			BookAuthor: book.Author,
			Status:     models.BorrowStatusBorrowed,
			BorrowDate: now,
			DueDate:    p.DueDate(now),
			FineAmount: 0,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := tx.Create(borrowRef, &created); err != nil {
			return fmt.Errorf("błąd zapisywania wypożyczenia: %w", err)
		}

		return tx.Update(bookRef, []firestore.Update{
			{Path: "available_copies", Value: book.AvailableCopies - 1},
			{Path: "updated_at", Value: now},
		})
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// ReturnResult to wynik zwrotu książki
type ReturnResult struct {
	Borrow          *models.Borrow
	DaysOverdue     int
	BecameAvailable bool // Licznik egzemplarzy przeszedł z 0 na 1
}

// ReturnBorrow zamyka wypożyczenie w jednej transakcji: ustawia status
// returned z datą zwrotu, nalicza karę na wypożyczeniu przy opóźnieniu
// i zwiększa licznik dostępnych egzemplarzy (nigdy powyżej TotalCopies).
func (c *Client) ReturnBorrow(borrowID string, p policy.Policy, loc *time.Location) (*ReturnResult, error) {
	if borrowID == "" {
		return nil, fmt.Errorf("ID wypożyczenia nie może być puste")
	}

	borrowRef := c.Firestore.Collection(BorrowsCollection).Doc(borrowID)
	result := &ReturnResult{}

	err := c.Firestore.RunTransaction(c.ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		borrowDoc, err := tx.Get(borrowRef)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("błąd pobierania wypożyczenia: %w", err)
		}

		var borrow models.Borrow
		if err := borrowDoc.DataTo(&borrow); err != nil {
			return fmt.Errorf("błąd parsowania wypożyczenia: %w", err)
		}
		borrow.ID = borrowDoc.Ref.ID

		if !borrow.IsActive() {
			return fmt.Errorf("wypożyczenie nie jest aktywne")
		}

		bookRef := c.Firestore.Collection(BooksCollection).Doc(borrow.BookID)
		bookDoc, err := tx.Get(bookRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return fmt.Errorf("błąd pobierania książki: %w", err)
		}

		now := time.Now()
		daysOverdue := policy.DaysPastDue(borrow.DueDate, now, loc)
		if daysOverdue < 0 {
			daysOverdue = 0
		}

		borrow.Status = models.BorrowStatusReturned
		borrow.ReturnDate = &now
		borrow.FineAmount = p.FineForDays(daysOverdue).InexactFloat64()
		borrow.UpdatedAt = now

		if err := tx.Set(borrowRef, &borrow); err != nil {
			return fmt.Errorf("błąd aktualizacji wypożyczenia: %w", err)
		}

		// Książka mogła zostać usunięta z katalogu w międzyczasie -
		// zwrot wypożyczenia i tak się zamyka
		if bookDoc != nil && bookDoc.Exists() {
			var book models.Book
			if err := bookDoc.DataTo(&book); err != nil {
				return fmt.Errorf("błąd parsowania książki: %w", err)
			}

			if book.AvailableCopies < book.TotalCopies {
				result.BecameAvailable = book.AvailableCopies == 0
				if err := tx.Update(bookRef, []firestore.Update{
					{Path: "available_copies", Value: book.AvailableCopies + 1},
					{Path: "updated_at", Value: now},
				}); err != nil {
					return fmt.Errorf("błąd aktualizacji dostępności książki: %w", err)
				}
			}
		}

		result.Borrow = &borrow
		result.DaysOverdue = daysOverdue
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetUserBorrows pobiera wszystkie wypożyczenia użytkownika,
// najnowsze najpierw
func (c *Client) GetUserBorrows(userID string) ([]*models.Borrow, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(BorrowsCollection).
		Where("user_id", "==", userID).
		OrderBy("borrow_date", firestore.Desc).
		Documents(c.ctx)

	return c.collectBorrows(iter)
}

// GetUserActiveBorrows pobiera otwarte wypożyczenia użytkownika
// (statusy borrowed i overdue)
func (c *Client) GetUserActiveBorrows(userID string) ([]*models.Borrow, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(BorrowsCollection).
		Where("user_id", "==", userID).
		Where("status", "in", activeStatuses).
		Documents(c.ctx)

	return c.collectBorrows(iter)
}

// GetActiveBorrows pobiera wszystkie otwarte wypożyczenia w systemie
// (używane przez zadanie reminders)
func (c *Client) GetActiveBorrows() ([]*models.Borrow, error) {
	iter := c.Firestore.Collection(BorrowsCollection).
		Where("status", "in", activeStatuses).
		Documents(c.ctx)

	return c.collectBorrows(iter)
}

// BorrowLogFilters to filtry dziennika wypożyczeń dla panelu admina
type BorrowLogFilters struct {
	StudentID string
	BookID    string
	DateFrom  time.Time
	DateTo    time.Time
	Action    string // Filtr po statusie wypożyczenia
}

// ListBorrowLogs pobiera dziennik wypożyczeń z filtrami, maksymalnie 100
// najnowszych wpisów
func (c *Client) ListBorrowLogs(filters BorrowLogFilters) ([]*models.Borrow, error) {
	query := c.Firestore.Collection(BorrowsCollection).Query

	if filters.StudentID != "" {
		query = query.Where("user_id", "==", filters.StudentID)
	}
	if filters.BookID != "" {
		query = query.Where("book_id", "==", filters.BookID)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("borrow_date", ">=", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("borrow_date", "<=", filters.DateTo)
	}
	if filters.Action != "" {
		query = query.Where("status", "==", filters.Action)
	}

	iter := query.OrderBy("borrow_date", firestore.Desc).Limit(100).Documents(c.ctx)
	return c.collectBorrows(iter)
}

// CountBorrowsByStatus zwraca liczbę wypożyczeń o danym statusie
func (c *Client) CountBorrowsByStatus(s models.BorrowStatus) (int, error) {
	docs, err := c.Firestore.Collection(BorrowsCollection).
		Where("status", "==", string(s)).
		Documents(c.ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("błąd liczenia wypożyczeń: %w", err)
	}
	return len(docs), nil
}

// GetBorrowsSince pobiera wypożyczenia rozpoczęte po zadanej dacie
// (trendy na pulpicie admina)
func (c *Client) GetBorrowsSince(since time.Time) ([]*models.Borrow, error) {
	iter := c.Firestore.Collection(BorrowsCollection).
		Where("borrow_date", ">=", since).
		Documents(c.ctx)

	return c.collectBorrows(iter)
}

// MarkBorrowOverdue ustawia status overdue i zapisuje naliczoną karę
// na wypożyczeniu (wywoływane przez zadanie reminders)
func (c *Client) MarkBorrowOverdue(borrowID string, fineAmount float64) error {
	_, err := c.Firestore.Collection(BorrowsCollection).Doc(borrowID).Update(c.ctx, []firestore.Update{
		{Path: "status", Value: string(models.BorrowStatusOverdue)},
		{Path: "fine_amount", Value: fineAmount},
		{Path: "updated_at", Value: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("błąd oznaczania wypożyczenia jako przeterminowane: %w", err)
	}
	return nil
}

// collectBorrows zbiera wyniki zapytania do listy modeli
func (c *Client) collectBorrows(iter *firestore.DocumentIterator) ([]*models.Borrow, error) {
	defer iter.Stop()

	var borrows []*models.Borrow
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po wypożyczeniach: %w", err)
		}

		var borrow models.Borrow
		if err := doc.DataTo(&borrow); err != nil {
			return nil, fmt.Errorf("błąd parsowania wypożyczenia: %w", err)
		}
		borrow.ID = doc.Ref.ID

		borrows = append(borrows, &borrow)
	}

	return borrows, nil
}
