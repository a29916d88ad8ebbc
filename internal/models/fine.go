package models

import "time"

// FineStatus określa status kary
type FineStatus string

const (
	FineStatusPending FineStatus = "pending" // Oczekująca na zapłatę
	FineStatusPaid    FineStatus = "paid"    // Zapłacona
)

// Fine reprezentuje naliczoną karę powiązaną z wypożyczeniem
type Fine struct {
	ID          string     `json:"id" firestore:"id"`
	UserID      string     `json:"user_id" firestore:"user_id"`
	BorrowID    string     `json:"borrow_id" firestore:"borrow_id"`
	Amount      float64    `json:"amount" firestore:"amount"`
	DaysOverdue int        `json:"days_overdue" firestore:"days_overdue"`
	Status      FineStatus `json:"status" firestore:"status"`
	CreatedAt   time.Time  `json:"created_at" firestore:"created_at"`
	PaidDate    *time.Time `json:"paid_date,omitempty" firestore:"paid_date,omitempty"`
}

// IsPending sprawdza czy kara czeka na zapłatę
func (f *Fine) IsPending() bool {
	return f.Status == FineStatusPending
}
