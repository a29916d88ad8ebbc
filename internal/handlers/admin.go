package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/middleware"
	"smart-library-api/internal/models"
	"smart-library-api/internal/policy"
)

// AdminHandler obsługuje panel administratora: pulpit, katalog, studentów,
// kary, powiadomienia i wnioski profilowe
type AdminHandler struct {
	fbClient *firebase.Client
	loc      *time.Location
}

// NewAdminHandler tworzy nowy handler panelu administratora
func NewAdminHandler(fbClient *firebase.Client, loc *time.Location) *AdminHandler {
	return &AdminHandler{fbClient: fbClient, loc: loc}
}

// ShowDashboard zwraca statystyki systemu i trend wypożyczeń z ostatnich
// 7 dni (GET /api/admin/dashboard)
func (h *AdminHandler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	totalStudents, err := h.fbClient.CountStudents()
	if err != nil {
		log.Printf("Błąd liczenia studentów: %v", err)
		RespondStoreError(w, err)
		return
	}

	totalBooks, err := h.fbClient.CountBooks()
	if err != nil {
		log.Printf("Błąd liczenia książek: %v", err)
		RespondStoreError(w, err)
		return
	}

	activeBorrows, err := h.fbClient.GetActiveBorrows()
	if err != nil {
		log.Printf("Błąd pobierania aktywnych wypożyczeń: %v", err)
		RespondStoreError(w, err)
		return
	}

	p := h.fbClient.GetPolicy()
	now := time.Now()

	overdue := 0
	for _, b := range activeBorrows {
		if state, _ := p.Classify(b.DueDate, now, h.loc); state == policy.StateOverdue {
			overdue++
		}
	}

	// Trend: liczba wypożyczeń na dzień z ostatnich 7 dni kalendarzowych
	since := now.In(h.loc).AddDate(0, 0, -6)
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, h.loc)

	recent, err := h.fbClient.GetBorrowsSince(since)
	if err != nil {
		log.Printf("Błąd pobierania trendu wypożyczeń: %v", err)
		RespondStoreError(w, err)
		return
	}

	perDay := map[string]int{}
	for _, b := range recent {
		day := b.BorrowDate.In(h.loc).Format("2006-01-02")
		perDay[day]++
	}

	type trendEntry struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	trend := make([]trendEntry, 0, 7)
	for i := 0; i < 7; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, trendEntry{Date: day, Count: perDay[day]})
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stats": map[string]int{
			"total_students":  totalStudents,
			"total_books":     totalBooks,
			"active_borrows":  len(activeBorrows),
			"overdue_borrows": overdue,
		},
		"borrow_trend": trend,
	})
}

// ShowLogs zwraca dziennik wypożyczeń z filtrami (GET /api/admin/logs)
func (h *AdminHandler) ShowLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := firebase.BorrowLogFilters{
		StudentID: q.Get("student_id"),
		BookID:    q.Get("book_id"),
		Action:    q.Get("action"),
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, h.loc)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "nieprawidłowa data date_from, oczekiwano RRRR-MM-DD")
			return
		}
		filters.DateFrom = t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, h.loc)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "nieprawidłowa data date_to, oczekiwano RRRR-MM-DD")
			return
		}
		// Data "do" obejmuje cały dzień
		filters.DateTo = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	logs, err := h.fbClient.ListBorrowLogs(filters)
	if err != nil {
		log.Printf("Błąd pobierania dziennika: %v", err)
		RespondStoreError(w, err)
		return
	}

	if logs == nil {
		logs = []*models.Borrow{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// ListBooks zwraca cały katalog dla panelu admina (GET /api/admin/books)
func (h *AdminHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.fbClient.ListBooks()
	if err != nil {
		log.Printf("Błąd pobierania katalogu: %v", err)
		RespondStoreError(w, err)
		return
	}

	if books == nil {
		books = []*models.Book{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	})
}

// BookRequest to ciało żądania utworzenia lub aktualizacji książki
type BookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Semester    int    `json:"semester"`
	Description string `json:"description"`
	TotalCopies int    `json:"total_copies"`
}

// CreateBook dodaje książkę do katalogu (POST /api/admin/books).
// Liczba dostępnych egzemplarzy startuje z wartości total_copies.
func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		RespondError(w, http.StatusBadRequest, "tytuł i autor są wymagane")
		return
	}
	if req.TotalCopies < 1 {
		RespondError(w, http.StatusBadRequest, "liczba egzemplarzy musi być dodatnia")
		return
	}

	book := &models.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Subject:     req.Subject,
		Category:    req.Category,
		Department:  req.Department,
		Semester:    req.Semester,
		Description: req.Description,
		TotalCopies: req.TotalCopies,
	}

	if err := h.fbClient.CreateBook(book); err != nil {
		log.Printf("Błąd tworzenia książki: %v", err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "książka dodana do katalogu",
		"book":    book,
	})
}

// UpdateBook aktualizuje dane książki (PUT /api/admin/books/{book_id}).
// Zmiana total_copies koryguje available_copies o tę samą różnicę,
// nie schodząc poniżej zera.
func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	var req BookRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	book, err := h.fbClient.GetBook(bookID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Title) != "" {
		updates["title"] = req.Title
	}
	if strings.TrimSpace(req.Author) != "" {
		updates["author"] = req.Author
	}
	if req.ISBN != "" {
		updates["isbn"] = req.ISBN
	}
	if req.Subject != "" {
		updates["subject"] = req.Subject
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.Semester > 0 {
		updates["semester"] = req.Semester
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TotalCopies > 0 && req.TotalCopies != book.TotalCopies {
		diff := req.TotalCopies - book.TotalCopies
		available := book.AvailableCopies + diff
		if available < 0 {
			available = 0
		}
		updates["total_copies"] = req.TotalCopies
		updates["available_copies"] = available
	}

	if len(updates) == 0 {
		RespondError(w, http.StatusBadRequest, "brak zmian do zapisania")
		return
	}

	if err := h.fbClient.UpdateBookFields(bookID, updates); err != nil {
		RespondStoreError(w, err)
		return
	}

	updated, err := h.fbClient.GetBook(bookID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "książka zaktualizowana",
		"book":    updated,
	})
}

// DeleteBook usuwa książkę z katalogu (DELETE /api/admin/books/{book_id})
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	if _, err := h.fbClient.GetBook(bookID); err != nil {
		RespondStoreError(w, err)
		return
	}

	if err := h.fbClient.DeleteBook(bookID); err != nil {
		log.Printf("Błąd usuwania książki %s: %v", bookID, err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "książka usunięta"})
}

// ListStudents zwraca listę wszystkich studentów (GET /api/admin/students)
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.fbClient.ListStudents()
	if err != nil {
		log.Printf("Błąd pobierania listy studentów: %v", err)
		RespondStoreError(w, err)
		return
	}

	if students == nil {
		students = []*models.UserProfile{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"count":    len(students),
	})
}

// ShowStudent zwraca profil studenta z aktywnymi wypożyczeniami i karami
// (GET /api/admin/students/{student_id})
func (h *AdminHandler) ShowStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	if studentID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID studenta")
		return
	}

	profile, err := h.fbClient.GetProfile(studentID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	borrows, err := h.fbClient.GetUserActiveBorrows(studentID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	fines, err := h.fbClient.GetUserPendingFines(studentID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	p := h.fbClient.GetPolicy()
	summary := p.AggregateFines(borrows, fines, time.Now(), h.loc)

	if borrows == nil {
		borrows = []*models.Borrow{}
	}
	if fines == nil {
		fines = []*models.Fine{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"student":        profile,
		"active_borrows": borrows,
		"pending_fines":  fines,
		"total_fine":     summary.Total.InexactFloat64(),
	})
}

// ReturnBook przyjmuje zwrot książki od studenta
// (POST /api/admin/borrows/{borrow_id}/return). Gdy zwrot przywraca
// dostępność, studenci czekający dostają powiadomienia.
func (h *AdminHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	borrowID := chi.URLParam(r, "borrow_id")
	if borrowID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID wypożyczenia")
		return
	}

	p := h.fbClient.GetPolicy()

	result, err := h.fbClient.ReturnBorrow(borrowID, p, h.loc)
	if err != nil {
		log.Printf("Błąd zwrotu wypożyczenia %s: %v", borrowID, err)
		RespondStoreError(w, err)
		return
	}

	// Po zamknięciu transakcji: wiersz kary po przekroczeniu karencji
	// i powiadomienia o dostępności - najlepszy wysiłek
	if p.PastGracePeriod(result.DaysOverdue) {
		h.recordFine(result, p)
	}
	if result.BecameAvailable {
		h.notifySubscribers(result.Borrow)
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "zwrot przyjęty",
		"borrow":          result.Borrow,
		"days_overdue":    result.DaysOverdue,
		"returned_status": string(policy.ClassifyReturn(result.Borrow.ReturnDate, result.Borrow.DueDate)),
	})
}

// recordFine tworzy wiersz kary za spóźniony zwrot, dokładnie raz
// na wypożyczenie. Błędy są logowane, zwrot nie jest wycofywany.
func (h *AdminHandler) recordFine(result *firebase.ReturnResult, p policy.Policy) {
	exists, err := h.fbClient.HasFineForBorrow(result.Borrow.ID)
	if err != nil {
		log.Printf("Błąd sprawdzania kary dla wypożyczenia %s: %v", result.Borrow.ID, err)
		return
	}
	if exists {
		return
	}

	fine := &models.Fine{
		UserID:      result.Borrow.UserID,
		BorrowID:    result.Borrow.ID,
		Amount:      p.FineForDays(result.DaysOverdue).InexactFloat64(),
		DaysOverdue: result.DaysOverdue,
		Status:      models.FineStatusPending,
	}
	if err := h.fbClient.CreateFine(fine); err != nil {
		log.Printf("Błąd tworzenia kary dla wypożyczenia %s: %v", result.Borrow.ID, err)
	}
}

// notifySubscribers wysyła powiadomienia o dostępności do oczekujących
// studentów. Błędy są logowane, zwrot nie jest wycofywany.
func (h *AdminHandler) notifySubscribers(borrow *models.Borrow) {
	subs, err := h.fbClient.GetPendingSubscriptions(borrow.BookID)
	if err != nil {
		log.Printf("Błąd pobierania subskrypcji dla książki %s: %v", borrow.BookID, err)
		return
	}

	for _, sub := range subs {
		n := &models.Notification{
			UserID:  sub.UserID,
			Type:    models.NotificationAvailability,
			Title:   "Książka znów dostępna",
			Message: fmt.Sprintf("Książka \"%s\" jest znów dostępna do wypożyczenia", borrow.BookTitle),
		}
		if err := h.fbClient.CreateNotification(n); err != nil {
			log.Printf("Błąd powiadomienia o dostępności dla %s: %v", sub.UserID, err)
			continue
		}
		if err := h.fbClient.MarkSubscriptionNotified(sub.ID); err != nil {
			log.Printf("Błąd zamykania subskrypcji %s: %v", sub.ID, err)
		}
	}
}

// ListFines zwraca wszystkie kary w systemie (GET /api/admin/fines)
func (h *AdminHandler) ListFines(w http.ResponseWriter, r *http.Request) {
	fines, err := h.fbClient.ListFines()
	if err != nil {
		log.Printf("Błąd pobierania kar: %v", err)
		RespondStoreError(w, err)
		return
	}

	var totalPending float64
	for _, f := range fines {
		if f.Status == models.FineStatusPending {
			totalPending += f.Amount
		}
	}

	if fines == nil {
		fines = []*models.Fine{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"fines":         fines,
		"count":         len(fines),
		"total_pending": totalPending,
	})
}

// MarkFinePaid oznacza karę jako zapłaconą (PUT /api/admin/fines/{fine_id}/pay)
func (h *AdminHandler) MarkFinePaid(w http.ResponseWriter, r *http.Request) {
	fineID := chi.URLParam(r, "fine_id")
	if fineID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID kary")
		return
	}

	if err := h.fbClient.MarkFinePaid(fineID); err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "kara oznaczona jako zapłacona"})
}

// PolicyUpdateRequest to ciało żądania aktualizacji polityki wypożyczeń.
// Wskaźniki odróżniają pole pominięte od zera.
type PolicyUpdateRequest struct {
	BorrowDurationDays *int    `json:"borrow_duration_days"`
	GracePeriodDays    *int    `json:"grace_period_days"`
	FinePerDay         *string `json:"fine_per_day"`
	MaxBooksPerStudent *int    `json:"max_books_per_student"`
	ReminderDays       *int    `json:"reminder_days"`
}

// UpdatePolicy zapisuje zmiany polityki w system_config
// (PUT /api/admin/fines/config). Zmiany obowiązują od następnego żądania.
func (h *AdminHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req PolicyUpdateRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	updates := map[string]string{}
	if req.BorrowDurationDays != nil {
		if *req.BorrowDurationDays < 1 {
			RespondError(w, http.StatusBadRequest, "borrow_duration_days musi być dodatnie")
			return
		}
		updates[policy.KeyBorrowDurationDays] = strconv.Itoa(*req.BorrowDurationDays)
	}
	if req.GracePeriodDays != nil {
		if *req.GracePeriodDays < 0 {
			RespondError(w, http.StatusBadRequest, "grace_period_days nie może być ujemne")
			return
		}
		updates[policy.KeyGracePeriodDays] = strconv.Itoa(*req.GracePeriodDays)
	}
	if req.FinePerDay != nil {
		d, err := decimal.NewFromString(*req.FinePerDay)
		if err != nil || d.IsNegative() {
			RespondError(w, http.StatusBadRequest, "fine_per_day musi być nieujemną kwotą")
			return
		}
		updates[policy.KeyFinePerDay] = d.String()
	}
	if req.MaxBooksPerStudent != nil {
		if *req.MaxBooksPerStudent < 1 {
			RespondError(w, http.StatusBadRequest, "max_books_per_student musi być dodatnie")
			return
		}
		updates[policy.KeyMaxBooksPerStudent] = strconv.Itoa(*req.MaxBooksPerStudent)
	}
	if req.ReminderDays != nil {
		if *req.ReminderDays < 0 {
			RespondError(w, http.StatusBadRequest, "reminder_days nie może być ujemne")
			return
		}
		updates[policy.KeyReminderDays] = strconv.Itoa(*req.ReminderDays)
	}

	if len(updates) == 0 {
		RespondError(w, http.StatusBadRequest, "brak zmian do zapisania")
		return
	}

	for key, value := range updates {
		if err := h.fbClient.SetConfigValue(key, value); err != nil {
			log.Printf("Błąd zapisu konfiguracji %s: %v", key, err)
			RespondStoreError(w, err)
			return
		}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "polityka zaktualizowana",
		"policy":  h.fbClient.GetPolicy(),
	})
}

// BroadcastRequest to ciało żądania ogłoszenia do wszystkich studentów
type BroadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// BroadcastNotification wysyła ogłoszenie do wszystkich studentów
// (POST /api/admin/notifications/broadcast)
func (h *AdminHandler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		RespondError(w, http.StatusBadRequest, "tytuł i treść są wymagane")
		return
	}

	nType := models.NotificationAnnouncement
	if req.Type != "" {
		nType = models.NotificationType(req.Type)
		if !nType.IsValid() {
			RespondError(w, http.StatusBadRequest, "nieprawidłowy typ powiadomienia")
			return
		}
	}

	studentIDs, err := h.fbClient.ListStudentIDs()
	if err != nil {
		log.Printf("Błąd pobierania listy studentów: %v", err)
		RespondStoreError(w, err)
		return
	}

	sent, err := h.fbClient.BroadcastNotification(studentIDs, nType, req.Title, req.Message)
	if err != nil {
		log.Printf("Błąd wysyłki ogłoszenia: %v", err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "ogłoszenie wysłane",
		"recipients": sent,
	})
}

// ListProfileRequests zwraca oczekujące wnioski o zmianę profilu
// (GET /api/admin/profile-requests)
func (h *AdminHandler) ListProfileRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.fbClient.ListPendingProfileRequests()
	if err != nil {
		log.Printf("Błąd pobierania wniosków profilowych: %v", err)
		RespondStoreError(w, err)
		return
	}

	if requests == nil {
		requests = []*models.ProfileRequest{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// ProcessProfileRequest rozpatruje wniosek o zmianę profilu
// (POST /api/admin/profile/requests/{request_id}/{action},
// action to approve albo reject)
func (h *AdminHandler) ProcessProfileRequest(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID wniosku")
		return
	}

	var approve bool
	switch chi.URLParam(r, "action") {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		RespondError(w, http.StatusBadRequest, "akcja musi być jedną z: approve, reject")
		return
	}

	if err := h.fbClient.ProcessProfileRequest(requestID, adminID, approve); err != nil {
		log.Printf("Błąd rozpatrywania wniosku %s: %v", requestID, err)
		RespondStoreError(w, err)
		return
	}

	message := "wniosek odrzucony"
	if approve {
		message = "wniosek zatwierdzony, profil zaktualizowany"
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": message})
}
