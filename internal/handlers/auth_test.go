package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Walidacja rejestracji działa przed jakimkolwiek wywołaniem Firebase,
// więc przypadki 400 testujemy bez klienta.
func TestHandleSignupValidation(t *testing.T) {
	h := NewAuthHandler(nil)

	tests := []struct {
		name string
		body string
	}{
		{"uszkodzony JSON", `{"email":`},
		{"pusty email", `{"email":"","password":"secret1","role":"student","name":"Jan"}`},
		{"email bez małpy", `{"email":"jan.example.com","password":"secret1","role":"student","name":"Jan"}`},
		{"za krótkie hasło", `{"email":"jan@example.com","password":"abc","role":"student","name":"Jan"}`},
		{"nieznana rola", `{"email":"jan@example.com","password":"secret1","role":"librarian","name":"Jan"}`},
		{"brak nazwy", `{"email":"jan@example.com","password":"secret1","role":"student","name":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.HandleSignup(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeDetail(t, w))
		})
	}
}

func TestHandleLogout(t *testing.T) {
	h := NewAuthHandler(nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.HandleLogout(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}
