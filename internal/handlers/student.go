package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/middleware"
	"smart-library-api/internal/models"
	"smart-library-api/internal/policy"
)

// StudentHandler obsługuje panel studenta: pulpit, wypożyczenia, kary,
// powiadomienia i profil
type StudentHandler struct {
	fbClient *firebase.Client
	loc      *time.Location
}

// NewStudentHandler tworzy nowy handler panelu studenta
func NewStudentHandler(fbClient *firebase.Client, loc *time.Location) *StudentHandler {
	return &StudentHandler{fbClient: fbClient, loc: loc}
}

// DashboardSummary to podsumowanie na pulpicie studenta
type DashboardSummary struct {
	CurrentlyBorrowed int     `json:"currently_borrowed"`
	DueSoon           int     `json:"due_soon"`
	Overdue           int     `json:"overdue"`
	TotalFine         float64 `json:"total_fine"`
}

// ShowDashboard zwraca podsumowanie pulpitu (GET /api/student/dashboard):
// liczbę wypożyczonych książek, pozycje ze zbliżającym się i przekroczonym
// terminem oraz łączną zaległość (kary zapisane + narosłe dynamicznie).
func (h *StudentHandler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	borrows, err := h.fbClient.GetUserActiveBorrows(userID)
	if err != nil {
		log.Printf("Błąd pobierania wypożyczeń: %v", err)
		RespondStoreError(w, err)
		return
	}

	p := h.fbClient.GetPolicy()
	now := time.Now()

	var dueSoon, overdue int
	for _, b := range borrows {
		state, _ := p.Classify(b.DueDate, now, h.loc)
		switch state {
		case policy.StateOverdue:
			overdue++
		case policy.StateDueSoon:
			dueSoon++
		}
	}

	fines, err := h.fbClient.GetUserPendingFines(userID)
	if err != nil {
		log.Printf("Błąd pobierania kar: %v", err)
		RespondStoreError(w, err)
		return
	}

	summary := p.AggregateFines(borrows, fines, now, h.loc)

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": DashboardSummary{
			CurrentlyBorrowed: len(borrows),
			DueSoon:           dueSoon,
			Overdue:           overdue,
			TotalFine:         summary.Total.InexactFloat64(),
		},
	})
}

// CurrentBorrowEntry to pojedyncza pozycja listy aktualnych wypożyczeń
type CurrentBorrowEntry struct {
	BorrowID      string  `json:"borrow_id"`
	BookID        string  `json:"book_id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	BorrowDate    string  `json:"borrow_date"`
	DueDate       string  `json:"due_date"`
	DaysRemaining int     `json:"days_remaining"`
	Status        string  `json:"status"`
	FineAmount    float64 `json:"fine_amount"`
}

// ShowCurrentBooks zwraca aktualnie wypożyczone książki z klasyfikacją
// względem terminu zwrotu (GET /api/student/books/current)
func (h *StudentHandler) ShowCurrentBooks(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	borrows, err := h.fbClient.GetUserActiveBorrows(userID)
	if err != nil {
		log.Printf("Błąd pobierania wypożyczeń: %v", err)
		RespondStoreError(w, err)
		return
	}

	p := h.fbClient.GetPolicy()
	now := time.Now()

	books := make([]CurrentBorrowEntry, 0, len(borrows))
	for _, b := range borrows {
		state, daysRemaining := p.Classify(b.DueDate, now, h.loc)

		books = append(books, CurrentBorrowEntry{
			BorrowID:      b.ID,
			BookID:        b.BookID,
			Title:         b.BookTitle,
			Author:        b.BookAuthor,
			BorrowDate:    b.BorrowDate.Format(time.RFC3339),
			DueDate:       b.DueDate.Format(time.RFC3339),
			DaysRemaining: daysRemaining,
			Status:        string(state),
			FineAmount:    b.FineAmount,
		})
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"books": books})
}

// HistoryEntry to pojedyncza pozycja historii wypożyczeń
type HistoryEntry struct {
	BorrowID       string  `json:"borrow_id"`
	BookID         string  `json:"book_id"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	BorrowDate     string  `json:"borrow_date"`
	DueDate        string  `json:"due_date"`
	ReturnDate     string  `json:"return_date,omitempty"`
	Status         string  `json:"status"`
	ReturnedStatus string  `json:"returned_status,omitempty"`
	FineAmount     float64 `json:"fine_amount"`
}

// ShowHistory zwraca pełną historię wypożyczeń studenta
// (GET /api/student/books/history). Zwrócone pozycje dostają klasyfikację
// on_time/late; przy brakujących datach - unknown, lista nigdy się nie wywala.
func (h *StudentHandler) ShowHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	borrows, err := h.fbClient.GetUserBorrows(userID)
	if err != nil {
		log.Printf("Błąd pobierania historii: %v", err)
		RespondStoreError(w, err)
		return
	}

	history := make([]HistoryEntry, 0, len(borrows))
	for _, b := range borrows {
		entry := HistoryEntry{
			BorrowID:   b.ID,
			BookID:     b.BookID,
			Title:      b.BookTitle,
			Author:     b.BookAuthor,
			BorrowDate: b.BorrowDate.Format(time.RFC3339),
			DueDate:    b.DueDate.Format(time.RFC3339),
			Status:     string(b.Status),
			FineAmount: b.FineAmount,
		}

		if b.ReturnDate != nil {
			entry.ReturnDate = b.ReturnDate.Format(time.RFC3339)
			entry.ReturnedStatus = string(policy.ClassifyReturn(b.ReturnDate, b.DueDate))
		}

		history = append(history, entry)
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// BorrowBook wypożycza książkę studentowi
// (POST /api/student/books/{book_id}/borrow)
func (h *StudentHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	p := h.fbClient.GetPolicy()

	borrow, err := h.fbClient.BorrowBook(userID, bookID, p)
	if err != nil {
		log.Printf("Błąd wypożyczania książki %s: %v", bookID, err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "książka wypożyczona",
		"borrow":  borrow,
	})
}

// ShowNotifications zwraca powiadomienia studenta z licznikiem
// nieprzeczytanych (GET /api/student/notifications)
func (h *StudentHandler) ShowNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	notifications, err := h.fbClient.GetUserNotifications(userID)
	if err != nil {
		log.Printf("Błąd pobierania powiadomień: %v", err)
		RespondStoreError(w, err)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationRead oznacza powiadomienie jako przeczytane
// (PUT /api/student/notifications/{notification_id}/read)
func (h *StudentHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	notificationID := chi.URLParam(r, "notification_id")
	if notificationID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID powiadomienia")
		return
	}

	if err := h.fbClient.MarkNotificationRead(notificationID, userID); err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "powiadomienie oznaczone jako przeczytane"})
}

// FineEntry to pojedyncza kara na liście studenta
type FineEntry struct {
	FineID      string  `json:"fine_id"`
	Amount      float64 `json:"amount"`
	DaysOverdue int     `json:"days_overdue"`
	Status      string  `json:"status"`
	BookTitle   string  `json:"book_title,omitempty"`
	CreatedAt   string  `json:"created_at"`
	PaidDate    string  `json:"paid_date,omitempty"`
}

// ShowFines zwraca kary studenta z sumami pending/paid (GET /api/student/fines)
func (h *StudentHandler) ShowFines(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	fines, err := h.fbClient.GetUserFines(userID)
	if err != nil {
		log.Printf("Błąd pobierania kar: %v", err)
		RespondStoreError(w, err)
		return
	}

	var totalPending, totalPaid float64
	entries := make([]FineEntry, 0, len(fines))

	for _, f := range fines {
		entry := FineEntry{
			FineID:      f.ID,
			Amount:      f.Amount,
			DaysOverdue: f.DaysOverdue,
			Status:      string(f.Status),
			CreatedAt:   f.CreatedAt.Format(time.RFC3339),
		}
		if f.PaidDate != nil {
			entry.PaidDate = f.PaidDate.Format(time.RFC3339)
		}

		// Tytuł książki przez wypożyczenie - brak wypożyczenia nie psuje listy
		if borrow, err := h.fbClient.GetBorrow(f.BorrowID); err == nil {
			entry.BookTitle = borrow.BookTitle
		}

		entries = append(entries, entry)

		switch f.Status {
		case models.FineStatusPending:
			totalPending += f.Amount
		case models.FineStatusPaid:
			totalPaid += f.Amount
		}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"total_pending": totalPending,
		"total_paid":    totalPaid,
		"fines":         entries,
	})
}

// ShowProfile zwraca profil studenta (GET /api/student/profile)
func (h *StudentHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	profile, err := h.fbClient.GetProfile(userID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})
}

// ProfileUpdateRequest to ciało żądania bezpośredniej aktualizacji profilu
type ProfileUpdateRequest struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Phone     string `json:"phone"`
}

// UpdateProfile aktualizuje profil studenta bez udziału admina
// (PUT /api/student/profile). Zmiana dotyczy tylko pól niewrażliwych.
func (h *StudentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req ProfileUpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = req.Name
	}
	if strings.TrimSpace(req.StudentID) != "" {
		updates["student_id"] = req.StudentID
	}
	if strings.TrimSpace(req.Phone) != "" {
		updates["phone"] = req.Phone
	}

	if len(updates) == 0 {
		RespondError(w, http.StatusBadRequest, "brak zmian do zapisania")
		return
	}

	if err := h.fbClient.UpdateProfileFields(userID, updates); err != nil {
		RespondStoreError(w, err)
		return
	}

	profile, err := h.fbClient.GetProfile(userID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profil zaktualizowany pomyślnie",
		"profile": profile,
	})
}

// SubmitProfileRequest składa wniosek o zmianę profilu do zatwierdzenia
// przez admina (POST /api/student/profile/request)
func (h *StudentHandler) SubmitProfileRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var changes map[string]string
	if err := DecodeJSON(r, &changes); err != nil || len(changes) == 0 {
		RespondError(w, http.StatusBadRequest, "wniosek nie zawiera żadnych zmian")
		return
	}

	requestID, updated, err := h.fbClient.SubmitProfileRequest(userID, changes)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	message := "wniosek o zmianę profilu złożony"
	if updated {
		message = "wniosek o zmianę profilu zaktualizowany"
	}

	RespondJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"id":      requestID,
	})
}

// ShowProfileRequest zwraca najnowszy wniosek studenta
// (GET /api/student/profile/request)
func (h *StudentHandler) ShowProfileRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	req, err := h.fbClient.GetLatestProfileRequest(userID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"request": req})
}
