package models

import "time"

// Book reprezentuje książkę w katalogu biblioteki
type Book struct {
	ID              string    `json:"id" firestore:"id"`
	Title           string    `json:"title" firestore:"title"`
	Author          string    `json:"author" firestore:"author"`
	ISBN            string    `json:"isbn,omitempty" firestore:"isbn"`
	Subject         string    `json:"subject,omitempty" firestore:"subject"`
	Category        string    `json:"category,omitempty" firestore:"category"`
	Department      string    `json:"department,omitempty" firestore:"department"`
	Semester        int       `json:"semester,omitempty" firestore:"semester"`
	Description     string    `json:"description,omitempty" firestore:"description"`
	TotalCopies     int       `json:"total_copies" firestore:"total_copies"`
	AvailableCopies int       `json:"available_copies" firestore:"available_copies"`
	CreatedAt       time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updated_at"`
}

// IsAvailable sprawdza czy książka jest dostępna do wypożyczenia
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// DecrementAvailableCopies zmniejsza liczbę dostępnych egzemplarzy.
// Licznik nigdy nie schodzi poniżej zera.
func (b *Book) DecrementAvailableCopies() {
	if b.AvailableCopies > 0 {
		b.AvailableCopies--
	}
}

// IncrementAvailableCopies zwiększa liczbę dostępnych egzemplarzy.
// Licznik nigdy nie przekracza TotalCopies.
func (b *Book) IncrementAvailableCopies() {
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
}
