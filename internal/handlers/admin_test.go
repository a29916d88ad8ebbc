package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Walidacja żądań admina odrzuca złe dane przed dotknięciem bazy,
// więc przypadki 400 testujemy bez klienta.
func TestUpdatePolicyValidation(t *testing.T) {
	h := NewAdminHandler(nil, time.UTC)

	tests := []struct {
		name string
		body string
	}{
		{"uszkodzony JSON", `{"fine_per_day":`},
		{"puste ciało bez zmian", `{}`},
		{"zerowy okres wypożyczenia", `{"borrow_duration_days":0}`},
		{"ujemna karencja", `{"grace_period_days":-1}`},
		{"nieparsowalna stawka", `{"fine_per_day":"pięć"}`},
		{"ujemna stawka", `{"fine_per_day":"-2.5"}`},
		{"zerowy limit książek", `{"max_books_per_student":0}`},
		{"ujemne okno przypomnień", `{"reminder_days":-3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/api/admin/fines/config", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.UpdatePolicy(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeDetail(t, w))
		})
	}
}

func TestCreateBookValidation(t *testing.T) {
	h := NewAdminHandler(nil, time.UTC)

	tests := []struct {
		name string
		body string
	}{
		{"brak tytułu", `{"title":"","author":"Cormen","total_copies":2}`},
		{"brak autora", `{"title":"Algorytmy","author":"  ","total_copies":2}`},
		{"zero egzemplarzy", `{"title":"Algorytmy","author":"Cormen","total_copies":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/admin/books", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.CreateBook(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestBroadcastValidation(t *testing.T) {
	h := NewAdminHandler(nil, time.UTC)

	tests := []struct {
		name string
		body string
	}{
		{"brak tytułu", `{"title":"","message":"treść"}`},
		{"brak treści", `{"title":"Ogłoszenie","message":""}`},
		{"nieznany typ", `{"title":"Ogłoszenie","message":"treść","type":"spam"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/admin/notifications/broadcast", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.BroadcastNotification(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// Handlery studenta wymagają użytkownika w kontekście - bez niego
// odpowiadają 401 zanim sięgną do bazy.
func TestStudentHandlersRequireUser(t *testing.T) {
	h := NewStudentHandler(nil, time.UTC)

	probes := map[string]http.HandlerFunc{
		"dashboard":       h.ShowDashboard,
		"aktualne":        h.ShowCurrentBooks,
		"historia":        h.ShowHistory,
		"wypożyczenie":    h.BorrowBook,
		"powiadomienia":   h.ShowNotifications,
		"kary":            h.ShowFines,
		"profil":          h.ShowProfile,
		"wniosek profilu": h.ShowProfileRequest,
	}

	for name, fn := range probes {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			fn(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
