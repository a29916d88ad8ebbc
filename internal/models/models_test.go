package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookAvailability(t *testing.T) {
	t.Run("dostępna gdy są egzemplarze", func(t *testing.T) {
		book := &Book{TotalCopies: 3, AvailableCopies: 1}
		assert.True(t, book.IsAvailable())
	})

	t.Run("niedostępna gdy brak egzemplarzy", func(t *testing.T) {
		book := &Book{TotalCopies: 3, AvailableCopies: 0}
		assert.False(t, book.IsAvailable())
	})
}

func TestBookCopyCounterBounds(t *testing.T) {
	t.Run("licznik nie schodzi poniżej zera", func(t *testing.T) {
		book := &Book{TotalCopies: 2, AvailableCopies: 1}

		book.DecrementAvailableCopies()
		assert.Equal(t, 0, book.AvailableCopies)

		book.DecrementAvailableCopies()
		assert.Equal(t, 0, book.AvailableCopies)
	})

	t.Run("licznik nie przekracza liczby egzemplarzy", func(t *testing.T) {
		book := &Book{TotalCopies: 2, AvailableCopies: 1}

		book.IncrementAvailableCopies()
		assert.Equal(t, 2, book.AvailableCopies)

		book.IncrementAvailableCopies()
		assert.Equal(t, 2, book.AvailableCopies)
	})
}

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, RoleStudent.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, UserRole("librarian").IsValid())
	assert.False(t, UserRole("").IsValid())
}

func TestNewDueSoonNotification(t *testing.T) {
	borrow := &Borrow{
		ID:        "b-42",
		UserID:    "u-7",
		BookTitle: "Introduction to Algorithms",
		DueDate:   time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
	}

	n := NewDueSoonNotification(borrow, time.UTC)

	// BorrowID jest kluczem dziennej deduplikacji przypomnień - musi być
	// równe ID wypożyczenia, bo tytuł ani treść nie nadają się do porównań
	assert.Equal(t, "b-42", n.BorrowID)
	assert.Equal(t, "u-7", n.UserID)
	assert.Equal(t, NotificationDueSoon, n.Type)
	assert.Contains(t, n.Message, "Introduction to Algorithms")
	assert.Contains(t, n.Message, "2026-09-02")
}

func TestProfileRequestIsPending(t *testing.T) {
	assert.True(t, (&ProfileRequest{Status: ProfileRequestPending}).IsPending())
	assert.False(t, (&ProfileRequest{Status: ProfileRequestApproved}).IsPending())
	assert.False(t, (&ProfileRequest{Status: ProfileRequestRejected}).IsPending())
}

func TestNotificationTypeIsValid(t *testing.T) {
	valid := []NotificationType{
		NotificationDueSoon,
		NotificationOverdue,
		NotificationAvailability,
		NotificationAnnouncement,
		NotificationSystem,
	}
	for _, nt := range valid {
		assert.True(t, nt.IsValid(), "typ %s powinien być poprawny", nt)
	}

	assert.False(t, NotificationType("spam").IsValid())
	assert.False(t, NotificationType("").IsValid())
}
