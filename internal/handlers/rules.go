package handlers

import (
	"net/http"

	"smart-library-api/internal/firebase"
)

// RulesHandler udostępnia aktualną politykę wypożyczeń
type RulesHandler struct {
	fbClient *firebase.Client
}

// NewRulesHandler tworzy nowy handler reguł
func NewRulesHandler(fbClient *firebase.Client) *RulesHandler {
	return &RulesHandler{fbClient: fbClient}
}

// ShowBorrowPolicy zwraca obowiązującą politykę wypożyczeń
// (GET /api/rules/borrow-policy). Odczyt konfiguracji nigdy nie zwraca
// błędu - przy awarii odpowiedzią są wartości domyślne.
func (h *RulesHandler) ShowBorrowPolicy(w http.ResponseWriter, r *http.Request) {
	p := h.fbClient.GetPolicy()

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"borrow_duration_days":  p.BorrowDurationDays,
		"grace_period_days":     p.GracePeriodDays,
		"fine_per_day":          p.FinePerDay.InexactFloat64(),
		"max_books_per_student": p.MaxBooksPerStudent,
		"reminder_days":         p.ReminderDays,
	})
}
