package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	firebaseAuth "firebase.google.com/go/v4/auth"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/middleware"
	"smart-library-api/internal/models"
)

// AuthHandler obsługuje rejestrację, logowanie i walidację tokenów.
// Uwierzytelnianie jest w całości delegowane do Firebase Authentication -
// access_token zwracany przy logowaniu to token ID Firebase.
type AuthHandler struct {
	fbClient *firebase.Client
}

// NewAuthHandler tworzy nowy handler autoryzacji
func NewAuthHandler(fbClient *firebase.Client) *AuthHandler {
	return &AuthHandler{fbClient: fbClient}
}

// SignupRequest to ciało żądania rejestracji
type SignupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

// HandleSignup rejestruje nowego użytkownika (POST /auth/signup).
// Tworzy konto w Firebase Auth i profil w Firestore; przy nieudanym zapisie
// profilu świeżo utworzone konto Auth jest sprzątane (najlepszy wysiłek).
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		RespondError(w, http.StatusBadRequest, "nieprawidłowy adres email")
		return
	}
	if len(req.Password) < 6 {
		RespondError(w, http.StatusBadRequest, "hasło musi mieć co najmniej 6 znaków")
		return
	}
	role := models.UserRole(req.Role)
	if !role.IsValid() {
		RespondError(w, http.StatusBadRequest, "rola musi być jedną z: student, admin")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		RespondError(w, http.StatusBadRequest, "imię i nazwisko są wymagane")
		return
	}

	// Utwórz konto w Firebase Auth
	params := (&firebaseAuth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.Name)

	authUser, err := h.fbClient.Auth.CreateUser(r.Context(), params)
	if err != nil {
		log.Printf("Błąd tworzenia konta Auth: %v", err)
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Utwórz profil powiązany z kontem Auth
	profile := &models.UserProfile{
		ID:         authUser.UID,
		Email:      req.Email,
		Name:       req.Name,
		Role:       role,
		StudentID:  req.StudentID,
		Department: req.Department,
		Phone:      req.Phone,
	}

	if err := h.fbClient.CreateProfile(profile); err != nil {
		log.Printf("Błąd tworzenia profilu: %v", err)
		// Sprzątanie osieroconego konta Auth - najlepszy wysiłek
		if cleanupErr := h.fbClient.DeleteAuthUser(authUser.UID); cleanupErr != nil {
			log.Printf("Nie udało się usunąć konta Auth %s: %v", authUser.UID, cleanupErr)
		}
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rejestracja zakończona pomyślnie",
		"user": map[string]string{
			"user_id": authUser.UID,
			"email":   req.Email,
			"role":    string(role),
			"name":    req.Name,
		},
	})
}

// LoginRequest to ciało żądania logowania
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse to odpowiedź logowania
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

// HandleLogin loguje użytkownika (POST /auth/login)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe ciało żądania")
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(w, http.StatusBadRequest, "email i hasło są wymagane")
		return
	}

	// Weryfikuj email i hasło przez Firebase Authentication REST API
	signIn, err := h.fbClient.VerifyPassword(req.Email, req.Password)
	if err != nil {
		log.Printf("Błąd weryfikacji hasła: %v", err)
		RespondError(w, http.StatusUnauthorized, "nieprawidłowe dane logowania")
		return
	}

	// Pobierz profil - rola i nazwa pochodzą z bazy
	profile, err := h.fbClient.GetProfile(signIn.UID)
	if err != nil {
		log.Printf("Profil nie znaleziony dla %s: %v", signIn.UID, err)
		RespondError(w, http.StatusUnauthorized, "profil użytkownika nie został znaleziony")
		return
	}

	RespondJSON(w, http.StatusOK, LoginResponse{
		AccessToken: signIn.IDToken,
		Role:        string(profile.Role),
		UserID:      profile.ID,
		Email:       profile.Email,
		Name:        profile.Name,
	})
}

// ValidateResponse to odpowiedź walidacji tokena
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// HandleValidate waliduje token z nagłówka Authorization (GET /auth/validate)
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	decodedToken, err := h.fbClient.Auth.VerifyIDToken(r.Context(), token)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, "nieprawidłowy lub wygasły token")
		return
	}

	profile, err := h.fbClient.GetProfile(decodedToken.UID)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, "profil użytkownika nie został znaleziony")
		return
	}

	RespondJSON(w, http.StatusOK, ValidateResponse{
		Valid:  true,
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   string(profile.Role),
		Name:   profile.Name,
	})
}

// HandleLogout to bezstanowe potwierdzenie wylogowania (POST /auth/logout).
// Tokeny Firebase wygasają same; faktyczne wylogowanie dzieje się po stronie klienta.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"message":   "wylogowano pomyślnie",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
