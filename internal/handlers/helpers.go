package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"smart-library-api/internal/firebase"
)

// RespondJSON wysyła odpowiedź JSON z podanym statusem
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// RespondError wysyła błąd w formacie {"detail": "..."}
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondJSON(w, status, map[string]string{"detail": detail})
}

// RespondStoreError mapuje błąd warstwy danych na status HTTP:
// znane błędy domenowe dostają 404/409, cała reszta kończy się jako 500
// z surowym tekstem błędu
func RespondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, firebase.ErrNotFound):
		RespondError(w, http.StatusNotFound, "nie znaleziono rekordu")
	case errors.Is(err, firebase.ErrBookUnavailable):
		RespondError(w, http.StatusConflict, "brak dostępnych egzemplarzy")
	case errors.Is(err, firebase.ErrBorrowLimit):
		RespondError(w, http.StatusConflict, "osiągnięto limit wypożyczeń")
	case errors.Is(err, firebase.ErrRequestProcessed):
		RespondError(w, http.StatusConflict, "wniosek został już rozpatrzony")
	default:
		RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

// DecodeJSON parsuje ciało żądania do wskazanej struktury
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
