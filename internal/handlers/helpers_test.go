package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-library-api/internal/firebase"
)

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, http.StatusBadRequest, "coś poszło nie tak")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "coś poszło nie tak", decodeDetail(t, w))
}

func TestRespondStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"brak rekordu", firebase.ErrNotFound, http.StatusNotFound},
		{"opakowany brak rekordu", fmt.Errorf("pobieranie: %w", firebase.ErrNotFound), http.StatusNotFound},
		{"brak egzemplarzy", firebase.ErrBookUnavailable, http.StatusConflict},
		{"limit wypożyczeń", firebase.ErrBorrowLimit, http.StatusConflict},
		{"wniosek już rozpatrzony", firebase.ErrRequestProcessed, http.StatusConflict},
		{"nieznany błąd", fmt.Errorf("awaria sieci"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondStoreError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotEmpty(t, decodeDetail(t, w))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("poprawne ciało", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jan"}`))

		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "Jan", p.Name)
	})

	t.Run("uszkodzony JSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})
}
