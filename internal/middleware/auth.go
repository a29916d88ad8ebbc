package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/models"
)

// Klucze do przechowywania wartości w context
type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	UserKey     contextKey = "user"
)

// writeError wysyła błąd w formacie JSON {"detail": "..."}
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// BearerToken wyciąga token z nagłówka Authorization w formacie "Bearer <token>"
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("brak nagłówka Authorization")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("nieprawidłowy format Authorization")
	}

	return parts[1], nil
}

// AuthMiddleware weryfikuje token Firebase i dodaje dane użytkownika do kontekstu
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		// Weryfikuj token przez Firebase Admin SDK
		if firebase.GlobalClient == nil {
			writeError(w, http.StatusInternalServerError, "Firebase nie został zainicjalizowany")
			return
		}

		decodedToken, err := firebase.GlobalClient.Auth.VerifyIDToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "nieprawidłowy lub wygasły token")
			return
		}

		// Pobierz profil z bazy - rola pochodzi z profilu, nie z tokena
		profile, err := firebase.GlobalClient.GetProfile(decodedToken.UID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "profil użytkownika nie został znaleziony")
			return
		}

		// Dodaj dane użytkownika do kontekstu
		ctx := context.WithValue(r.Context(), UserIDKey, profile.ID)
		ctx = context.WithValue(ctx, UserRoleKey, profile.Role)
		ctx = context.WithValue(ctx, UserKey, profile)

		// Przekaż żądanie dalej z nowym kontekstem
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole zwraca middleware, który wymaga dokładnie określonej roli.
// Role są porównywane jako typowane wartości z kontekstu, nie surowe
// napisy z tokena.
func RequireRole(role models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := r.Context().Value(UserRoleKey).(models.UserRole)
			if !ok {
				writeError(w, http.StatusUnauthorized, "brak danych o roli użytkownika")
				return
			}

			if userRole != role {
				writeError(w, http.StatusForbidden, fmt.Sprintf("dostęp wymaga roli %s", role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireStudent wymaga roli studenta
func RequireStudent(next http.Handler) http.Handler {
	return RequireRole(models.RoleStudent)(next)
}

// RequireAdmin wymaga roli administratora
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}

// GetUserFromContext pobiera profil użytkownika z kontekstu
func GetUserFromContext(ctx context.Context) (*models.UserProfile, error) {
	user, ok := ctx.Value(UserKey).(*models.UserProfile)
	if !ok {
		return nil, fmt.Errorf("brak danych użytkownika w kontekście")
	}
	return user, nil
}

// GetUserIDFromContext pobiera ID użytkownika z kontekstu
func GetUserIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return "", fmt.Errorf("brak ID użytkownika w kontekście")
	}
	return id, nil
}

// WithUser wstrzykuje profil użytkownika do kontekstu żądania.
// Używane w testach zamiast pełnej weryfikacji tokena.
func WithUser(ctx context.Context, profile *models.UserProfile) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, profile.ID)
	ctx = context.WithValue(ctx, UserRoleKey, profile.Role)
	return context.WithValue(ctx, UserKey, profile)
}
