package models

import (
	"fmt"
	"time"
)

// NotificationType określa rodzaj powiadomienia
type NotificationType string

const (
	NotificationDueSoon      NotificationType = "due_soon"     // Zbliża się termin zwrotu
	NotificationOverdue      NotificationType = "overdue"      // Termin zwrotu minął
	NotificationAvailability NotificationType = "availability" // Książka znów dostępna
	NotificationAnnouncement NotificationType = "announcement" // Ogłoszenie od administracji
	NotificationSystem       NotificationType = "system"       // Komunikat systemowy
)

// IsValid sprawdza czy typ powiadomienia należy do dozwolonego zbioru
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationDueSoon, NotificationOverdue, NotificationAvailability,
		NotificationAnnouncement, NotificationSystem:
		return true
	}
	return false
}

// Notification reprezentuje powiadomienie dla użytkownika.
// BorrowID jest ustawiane na powiadomieniach związanych z wypożyczeniem
// i służy jako klucz deduplikacji przypomnień.
type Notification struct {
	ID        string           `json:"id" firestore:"id"`
	UserID    string           `json:"user_id" firestore:"user_id"`
	BorrowID  string           `json:"borrow_id,omitempty" firestore:"borrow_id,omitempty"`
	Type      NotificationType `json:"type" firestore:"type"`
	Title     string           `json:"title" firestore:"title"`
	Message   string           `json:"message" firestore:"message"`
	IsRead    bool             `json:"is_read" firestore:"is_read"`
	CreatedAt time.Time        `json:"created_at" firestore:"created_at"`
}

// NewDueSoonNotification buduje przypomnienie o zbliżającym się terminie
// zwrotu. BorrowID z wypożyczenia jest kluczem dziennej deduplikacji.
func NewDueSoonNotification(b *Borrow, loc *time.Location) *Notification {
	return &Notification{
		UserID:   b.UserID,
		BorrowID: b.ID,
		Type:     NotificationDueSoon,
		Title:    "Zbliża się termin zwrotu",
		Message:  fmt.Sprintf("Termin zwrotu książki \"%s\" upływa %s", b.BookTitle, b.DueDate.In(loc).Format("2006-01-02")),
	}
}

// AvailabilitySubscription reprezentuje zapis na powiadomienie o dostępności książki
type AvailabilitySubscription struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"user_id"`
	BookID    string    `json:"book_id" firestore:"book_id"`
	Notified  bool      `json:"notified" firestore:"notified"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}
