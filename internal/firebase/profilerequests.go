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
	// ProfileRequestsCollection to nazwa kolekcji wniosków o zmianę profilu
	ProfileRequestsCollection = "profile_requests"
)

// Pola profilu, które student może zmienić wnioskiem. Biała lista chroni
// przed podniesieniem roli przez spreparowany wniosek.
var allowedProfileFields = map[string]bool{
	"name":       true,
	"student_id": true,
	"email":      true,
	"phone":      true,
}

// SubmitProfileRequest składa wniosek o zmianę profilu. Jeśli użytkownik ma
// już oczekujący wniosek, jego treść jest nadpisywana. Zwraca ID wniosku
// i informację czy wniosek był aktualizacją istniejącego.
func (c *Client) SubmitProfileRequest(userID string, changes map[string]string) (string, bool, error) {
	if userID == "" {
		return "", false, fmt.Errorf("ID użytkownika nie może być puste")
	}
	if len(changes) == 0 {
		return "", false, fmt.Errorf("wniosek nie zawiera żadnych zmian")
	}

	// Sprawdź czy jest już oczekujący wniosek
	iter := c.Firestore.Collection(ProfileRequestsCollection).
		Where("user_id", "==", userID).
		Where("status", "==", string(models.ProfileRequestPending)).
		Limit(1).
		Documents(c.ctx)
	defer iter.Stop()

	now := time.Now()

	doc, err := iter.Next()
	if err == nil {
		// Aktualizacja istniejącego wniosku
		if _, err := doc.Ref.Update(c.ctx, []firestore.Update{
			{Path: "requested_changes", Value: changes},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return "", false, fmt.Errorf("błąd aktualizacji wniosku: %w", err)
		}
		return doc.Ref.ID, true, nil
	}
	if err != iterator.Done {
		return "", false, fmt.Errorf("błąd wyszukiwania wniosków: %w", err)
	}

	// Nowy wniosek
	docRef := c.Firestore.Collection(ProfileRequestsCollection).NewDoc()
	req := &models.ProfileRequest{
		ID:               docRef.ID,
		UserID:           userID,
		RequestedChanges: changes,
		Status:           models.ProfileRequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := docRef.Set(c.ctx, req); err != nil {
		return "", false, fmt.Errorf("błąd zapisywania wniosku: %w", err)
	}

	return docRef.ID, false, nil
}

// GetLatestProfileRequest pobiera najnowszy wniosek użytkownika.
// Brak wniosku to nil bez błędu.
func (c *Client) GetLatestProfileRequest(userID string) (*models.ProfileRequest, error) {
	if userID == "" {
		return nil, fmt.Errorf("ID użytkownika nie może być puste")
	}

	iter := c.Firestore.Collection(ProfileRequestsCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Limit(1).
		Documents(c.ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("błąd wyszukiwania wniosku: %w", err)
	}

	var req models.ProfileRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, fmt.Errorf("błąd parsowania wniosku: %w", err)
	}
	req.ID = doc.Ref.ID

	return &req, nil
}

// ListPendingProfileRequests pobiera oczekujące wnioski, najnowsze najpierw
func (c *Client) ListPendingProfileRequests() ([]*models.ProfileRequest, error) {
	iter := c.Firestore.Collection(ProfileRequestsCollection).
		Where("status", "==", string(models.ProfileRequestPending)).
		OrderBy("created_at", firestore.Desc).
		Documents(c.ctx)
	defer iter.Stop()

	var requests []*models.ProfileRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("błąd iteracji po wnioskach: %w", err)
		}

		var req models.ProfileRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, fmt.Errorf("błąd parsowania wniosku: %w", err)
		}
		req.ID = doc.Ref.ID

		requests = append(requests, &req)
	}

	return requests, nil
}

// ProcessProfileRequest zatwierdza lub odrzuca wniosek o zmianę profilu.
// Przy zatwierdzeniu do profilu trafiają wyłącznie pola z białej listy.
func (c *Client) ProcessProfileRequest(requestID, adminID string, approve bool) error {
	if requestID == "" {
		return fmt.Errorf("ID wniosku nie może być puste")
	}

	docRef := c.Firestore.Collection(ProfileRequestsCollection).Doc(requestID)
	doc, err := docRef.Get(c.ctx)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("błąd pobierania wniosku: %w", err)
	}

	var req models.ProfileRequest
	if err := doc.DataTo(&req); err != nil {
		return fmt.Errorf("błąd parsowania wniosku: %w", err)
	}

	// Rozpatrzony wniosek nie może być przetworzony ponownie - ponowne
	// zatwierdzenie nadpisałoby profil i recenzenta
	if !req.IsPending() {
		return ErrRequestProcessed
	}

	if approve {
		updates := map[string]interface{}{}
		for k, v := range req.RequestedChanges {
			if allowedProfileFields[k] {
				updates[k] = v
			}
		}
		if len(updates) > 0 {
			if err := c.UpdateProfileFields(req.UserID, updates); err != nil {
				return fmt.Errorf("błąd aktualizacji profilu z wniosku: %w", err)
			}
		}
	}

	newStatus := models.ProfileRequestApproved
	if !approve {
		newStatus = models.ProfileRequestRejected
	}

	if _, err := docRef.Update(c.ctx, []firestore.Update{
		{Path: "status", Value: string(newStatus)},
		{Path: "reviewed_by", Value: adminID},
		{Path: "updated_at", Value: time.Now()},
	}); err != nil {
		return fmt.Errorf("błąd aktualizacji statusu wniosku: %w", err)
	}

	return nil
}
