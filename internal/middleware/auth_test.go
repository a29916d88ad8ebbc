package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-library-api/internal/models"
)

func TestBearerToken(t *testing.T) {
	t.Run("poprawny nagłówek", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc123")

		token, err := BearerToken(r)
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("brak nagłówka", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := BearerToken(r)
		assert.Error(t, err)
	})

	t.Run("zły schemat", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic abc123")

		_, err := BearerToken(r)
		assert.Error(t, err)
	})
}

func roleProbe(t *testing.T, guard func(http.Handler) http.Handler, profile *models.UserProfile) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if profile != nil {
		r = r.WithContext(WithUser(r.Context(), profile))
	}

	w := httptest.NewRecorder()
	guard(next).ServeHTTP(w, r)
	return w
}

func TestRequireRoleStrictEquality(t *testing.T) {
	student := &models.UserProfile{ID: "s1", Role: models.RoleStudent}
	admin := &models.UserProfile{ID: "a1", Role: models.RoleAdmin}

	t.Run("student przechodzi przez RequireStudent", func(t *testing.T) {
		w := roleProbe(t, RequireStudent, student)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin przechodzi przez RequireAdmin", func(t *testing.T) {
		w := roleProbe(t, RequireAdmin, admin)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	// Role nie są hierarchiczne: admin nie ma dostępu do tras studenta
	t.Run("admin dostaje 403 na trasie studenta", func(t *testing.T) {
		w := roleProbe(t, RequireStudent, admin)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("student dostaje 403 na trasie admina", func(t *testing.T) {
		w := roleProbe(t, RequireAdmin, student)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("brak użytkownika w kontekście to 401", func(t *testing.T) {
		w := roleProbe(t, RequireAdmin, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("błąd ma kształt {detail}", func(t *testing.T) {
		w := roleProbe(t, RequireAdmin, student)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["detail"])
	})
}

func TestUserContextHelpers(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", Role: models.RoleStudent, Name: "Jan Kowalski"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithUser(r.Context(), profile)

	id, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	got, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	_, err = GetUserIDFromContext(r.Context())
	assert.Error(t, err)
}
