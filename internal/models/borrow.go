package models

import "time"

// BorrowStatus określa status wypożyczenia
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed" // Aktywne wypożyczenie
	BorrowStatusReturned BorrowStatus = "returned" // Zwrócone
	BorrowStatusOverdue  BorrowStatus = "overdue"  // Przeterminowane (ustawiane przez zadanie reminders)
)

// Borrow reprezentuje pojedyncze wypożyczenie książki
type Borrow struct {
	ID         string       `json:"id" firestore:"id"`
	UserID     string       `json:"user_id" firestore:"user_id"`
	BookID     string       `json:"book_id" firestore:"book_id"`
	BookTitle  string       `json:"book_title" firestore:"book_title"` // Denormalizacja dla łatwiejszego wyświetlania
	BookAuthor string       `json:"book_author" firestore:"book_author"`
	Status     BorrowStatus `json:"status" firestore:"status"`
	BorrowDate time.Time    `json:"borrow_date" firestore:"borrow_date"`
	DueDate    time.Time    `json:"due_date" firestore:"due_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty" firestore:"return_date,omitempty"`
	FineAmount float64      `json:"fine_amount" firestore:"fine_amount"` // Naliczona kara za opóźnienie
	CreatedAt  time.Time    `json:"created_at" firestore:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" firestore:"updated_at"`
}

// IsActive sprawdza czy wypożyczenie jest nadal otwarte
// (status borrowed albo overdue - książka nie wróciła do katalogu)
func (b *Borrow) IsActive() bool {
	return b.Status == BorrowStatusBorrowed || b.Status == BorrowStatusOverdue
}
