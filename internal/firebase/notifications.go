package firebase

import (
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"smart-library-api/internal/models"
)

const (
	// NotificationsCollection to nazwa kolekcji powiadomień w Firestore
	NotificationsCollection = "notifications"
	// SubscriptionsCollection to nazwa kolekcji zapisów na dostępność
	SubscriptionsCollection = "availability_subscriptions"
)

// CreateNotification tworzy pojedyncze powiadomienie dla użytkownika
func (c *Client) CreateNotification(n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("powiadomienie nie może być nil")
	}
	if n.UserID == "" {
		return fmt.Errorf("ID użytkownika jest wymagane")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("nieprawidłowy typ powiadomienia: %s", n.Type)
	}

	n.CreatedAt = time.Now()
	n.IsRead = false

	docRef := c.Firestore.Collection(NotificationsCollection).NewDoc()
	n.ID = docRef.ID

	if _, err := docRef.Set(c.ctx, n); err != nil {
		return fmt.Errorf("błąd zapisywania powiadomienia: %w", err)
	}

	return nil
}

// BroadcastNotification tworzy po jednym powiadomieniu dla każdego z podanych
// użytkowników w pojedynczym zapisie wsadowym. Zwraca liczbę faktycznie
// zapisanych wpisów - wyniki zapisu wsadowego są odczytywane po jego
// zamknięciu, częściowe niepowodzenia są logowane i pomniejszają licznik.
func (c *Client) BroadcastNotification(userIDs []string, nType models.NotificationType, title, message string) (int, error) {
	if !nType.IsValid() {
		return 0, fmt.Errorf("nieprawidłowy typ powiadomienia: %s", nType)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	bw := c.Firestore.BulkWriter(c.ctx)
	now := time.Now()

	jobs := make([]*firestore.BulkWriterJob, 0, len(userIDs))
	for _, userID := range userIDs {
		docRef := c.Firestore.Collection(NotificationsCollection).NewDoc()
		n := &models.Notification{
			ID:        docRef.ID,
			UserID:    userID,
			Type:      nType,
			Title:     title,
			Message:   message,
			IsRead:    false,
			CreatedAt: now,
		}
		job, err := bw.Set(docRef, n)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("błąd kolejkowania powiadomienia: %w", err)
		}
		jobs = append(jobs, job)
	}

	bw.End()

	created := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Printf("Błąd zapisu powiadomienia w ogłoszeniu: %v", err)
			continue
		}
		created++
	}

	if created == 0 && firstErr != nil {
		return 0, fmt.Errorf("błąd zapisu wsadowego powiadomień: %w", firstErr)
	}

	return created, nil
}

// GetUserNotifications pobiera do 50 najnowszych powiadomień użytkownika
func (c *Client) GetUserNotifications(userID string) ([]*models.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(NotificationsCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Limit(50).
		Documents(c.ctx)
	defer iter.Stop()

	var notifications []*models.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po powiadomieniach: %w", err)
		}

		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("błąd parsowania powiadomienia: %w", err)
		}
		n.ID = doc.Ref.ID

		notifications = append(notifications, &n)
	}

	return notifications, nil
}

// MarkNotificationRead oznacza powiadomienie jako przeczytane.
// Weryfikuje, że powiadomienie należy do wskazanego użytkownika.
func (c *Client) MarkNotificationRead(notificationID, userID string) error {
	if notificationID == "" {
		return fmt.Errorf("ID powiadomienia nie może być puste")
	}

	docRef := c.Firestore.Collection(NotificationsCollection).Doc(notificationID)
	doc, err := docRef.Get(c.ctx)
	if err != nil {
		return storeGetError(err, "powiadomienia")
	}

	var n models.Notification
	if err := doc.DataTo(&n); err != nil {
		return fmt.Errorf("błąd parsowania powiadomienia: %w", err)
	}
	if n.UserID != userID {
		return ErrNotFound
	}

	if _, err := docRef.Update(c.ctx, []firestore.Update{
		{Path: "is_read", Value: true},
	}); err != nil {
		return fmt.Errorf("błąd aktualizacji powiadomienia: %w", err)
	}

	return nil
}

// HasDueSoonNotificationToday sprawdza czy użytkownik dostał już dzisiaj
// przypomnienie o danym wypożyczeniu (deduplikacja w zadaniu reminders).
// Kluczem jest borrow_id zapisane na powiadomieniu.
func (c *Client) HasDueSoonNotificationToday(userID, borrowID string, now time.Time, loc *time.Location) (bool, error) {
	midnight := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)

	iter := c.Firestore.Collection(NotificationsCollection).
		Where("user_id", "==", userID).
		Where("type", "==", string(models.NotificationDueSoon)).
		Where("created_at", ">=", midnight).
		Documents(c.ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("błąd wyszukiwania powiadomień: %w", err)
		}

		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		if n.BorrowID == borrowID {
			return true, nil
		}
	}
}

// CreateSubscription zapisuje użytkownika na powiadomienie o dostępności książki
func (c *Client) CreateSubscription(userID, bookID string) error {
	if userID == "" || bookID == "" {
		return fmt.Errorf("ID użytkownika i książki są wymagane")
	}

	docRef := c.Firestore.Collection(SubscriptionsCollection).NewDoc()
	sub := &models.AvailabilitySubscription{
		ID:        docRef.ID,
		UserID:    userID,
		BookID:    bookID,
		Notified:  false,
		CreatedAt: time.Now(),
	}

	if _, err := docRef.Set(c.ctx, sub); err != nil {
		return fmt.Errorf("błąd zapisywania subskrypcji: %w", err)
	}

	return nil
}

// HasSubscription sprawdza czy użytkownik jest już zapisany na daną książkę
func (c *Client) HasSubscription(userID, bookID string) (bool, error) {
	iter := c.Firestore.Collection(SubscriptionsCollection).
		Where("user_id", "==", userID).
		Where("book_id", "==", bookID).
		Limit(1).
		Documents(c.ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("błąd wyszukiwania subskrypcji: %w", err)
	}
	return true, nil
}

// GetPendingSubscriptions pobiera niezrealizowane subskrypcje dla książki
func (c *Client) GetPendingSubscriptions(bookID string) ([]*models.AvailabilitySubscription, error) {
	iter := c.Firestore.Collection(SubscriptionsCollection).
		Where("book_id", "==", bookID).
		Where("notified", "==", false).
		Documents(c.ctx)

	return c.collectSubscriptions(iter)
}

// ListPendingSubscriptions pobiera wszystkie niezrealizowane subskrypcje
// (używane przez zadanie reminders)
func (c *Client) ListPendingSubscriptions() ([]*models.AvailabilitySubscription, error) {
	iter := c.Firestore.Collection(SubscriptionsCollection).
		Where("notified", "==", false).
		Documents(c.ctx)

	return c.collectSubscriptions(iter)
}

// MarkSubscriptionNotified oznacza subskrypcję jako zrealizowaną
func (c *Client) MarkSubscriptionNotified(subscriptionID string) error {
	_, err := c.Firestore.Collection(SubscriptionsCollection).Doc(subscriptionID).Update(c.ctx, []firestore.Update{
		{Path: "notified", Value: true},
	})
	if err != nil {
		return fmt.Errorf("błąd aktualizacji subskrypcji: %w", err)
	}
	return nil
}

// collectSubscriptions zbiera wyniki zapytania do listy modeli
func (c *Client) collectSubscriptions(iter *firestore.DocumentIterator) ([]*models.AvailabilitySubscription, error) {
	defer iter.Stop()

	var subs []*models.AvailabilitySubscription
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po subskrypcjach: %w", err)
		}

		var sub models.AvailabilitySubscription
		if err := doc.DataTo(&sub); err != nil {
			return nil, fmt.Errorf("błąd parsowania subskrypcji: %w", err)
		}
		sub.ID = doc.Ref.ID

		subs = append(subs, &sub)
	}

	return subs, nil
}
