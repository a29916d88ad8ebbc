package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/middleware"
	"smart-library-api/internal/models"
)

// BooksHandler obsługuje katalog książek po stronie studenta
type BooksHandler struct {
	fbClient *firebase.Client
}

// NewBooksHandler tworzy nowy handler katalogu
func NewBooksHandler(fbClient *firebase.Client) *BooksHandler {
	return &BooksHandler{fbClient: fbClient}
}

// SearchBooks wyszukuje książki w katalogu (GET /api/books/search,
// montowane też w panelu studenta). Bez parametrów zwraca cały katalog.
func (h *BooksHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := firebase.BookSearchFilters{
		Query:        q.Get("query"),
		Title:        q.Get("title"),
		Author:       q.Get("author"),
		Subject:      q.Get("subject"),
		Category:     q.Get("category"),
		Availability: q.Get("availability"),
	}

	books, err := h.fbClient.SearchBooks(filters)
	if err != nil {
		log.Printf("Błąd wyszukiwania książek: %v", err)
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

// BookDetails to szczegóły książki wraz z informacjami zależnymi od użytkownika
type BookDetails struct {
	*models.Book
	IsAvailable    bool `json:"is_available"`
	UserSubscribed bool `json:"user_subscribed"`
}

// ShowBook zwraca szczegóły książki (GET /api/books/{book_id}).
// Pole user_subscribed mówi czy zalogowany student czeka na dostępność.
func (h *BooksHandler) ShowBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	book, err := h.fbClient.GetBook(bookID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	details := BookDetails{
		Book:        book,
		IsAvailable: book.IsAvailable(),
	}

	// Subskrypcja jest informacją pomocniczą - jej błąd nie psuje odpowiedzi
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		if subscribed, err := h.fbClient.HasSubscription(userID, bookID); err == nil {
			details.UserSubscribed = subscribed
		}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"book": details})
}

// SubscribeAvailability zapisuje użytkownika na powiadomienie o dostępności
// książki (POST /api/books/{book_id}/notify)
func (h *BooksHandler) SubscribeAvailability(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID książki")
		return
	}

	book, err := h.fbClient.GetBook(bookID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	if book.IsAvailable() {
		RespondJSON(w, http.StatusOK, map[string]string{"message": "książka jest już dostępna, możesz ją wypożyczyć"})
		return
	}

	subscribed, err := h.fbClient.HasSubscription(userID, bookID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}
	if subscribed {
		RespondJSON(w, http.StatusOK, map[string]string{"message": "subskrypcja już istnieje"})
		return
	}

	if err := h.fbClient.CreateSubscription(userID, bookID); err != nil {
		log.Printf("Błąd tworzenia subskrypcji: %v", err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{
		"message": "powiadomimy Cię gdy książka będzie dostępna",
	})
}
