package handlers

import "net/http"

// HandleHealth odpowiada na sondę żywotności (GET /health)
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "smart-library-api",
	})
}
