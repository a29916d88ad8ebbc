package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"smart-library-api/internal/firebase"
	"smart-library-api/internal/middleware"
	"smart-library-api/internal/models"
)

// Maksymalny rozmiar wgrywanego pliku: 25 MB
const maxUploadSize = 25 << 20

// ResourcesHandler obsługuje materiały dydaktyczne: listowanie, pobieranie,
// wgrywanie (admin) i usuwanie (admin)
type ResourcesHandler struct {
	fbClient   *firebase.Client
	bucketName string
}

// NewResourcesHandler tworzy nowy handler zasobów
func NewResourcesHandler(fbClient *firebase.Client, bucketName string) *ResourcesHandler {
	return &ResourcesHandler{fbClient: fbClient, bucketName: bucketName}
}

// ListResources zwraca materiały według filtrów (GET /api/resources)
func (h *ResourcesHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := firebase.ResourceFilters{
		Subject: q.Get("subject"),
		Type:    q.Get("type"),
	}
	if v := q.Get("semester"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			RespondError(w, http.StatusBadRequest, "nieprawidłowy semestr")
			return
		}
		filters.Semester = n
	}
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "nieprawidłowy rocznik")
			return
		}
		filters.Year = n
	}

	resources, err := h.fbClient.ListResources(filters)
	if err != nil {
		log.Printf("Błąd pobierania zasobów: %v", err)
		RespondStoreError(w, err)
		return
	}

	if resources == nil {
		resources = []*models.Resource{}
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}

// DownloadResource zwraca metadane zasobu z adresem pliku
// (GET /api/resources/{resource_id}/download)
func (h *ResourcesHandler) DownloadResource(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")
	if resourceID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID zasobu")
		return
	}

	resource, err := h.fbClient.GetResource(resourceID)
	if err != nil {
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"download_url": resource.FileURL,
		"title":        resource.Title,
		"file_size":    resource.FileSize,
	})
}

// UploadResource wgrywa materiał dydaktyczny (POST /api/admin/resources,
// multipart/form-data z polem file i metadanymi)
func (h *ResourcesHandler) UploadResource(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		RespondError(w, http.StatusBadRequest, "nieprawidłowe dane formularza lub plik za duży")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondError(w, http.StatusBadRequest, "brak pliku w polu file")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	if title == "" || subject == "" {
		RespondError(w, http.StatusBadRequest, "tytuł i przedmiot są wymagane")
		return
	}

	semester := 0
	if v := r.FormValue("semester"); v != "" {
		semester, err = strconv.Atoi(v)
		if err != nil || semester < 1 {
			RespondError(w, http.StatusBadRequest, "nieprawidłowy semestr")
			return
		}
	}

	year := 0
	if v := r.FormValue("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "nieprawidłowy rocznik")
			return
		}
	}

	resource := &models.Resource{
		Title:      title,
		Subject:    subject,
		Semester:   semester,
		Year:       year,
		Type:       r.FormValue("type"),
		FileSize:   header.Size,
		UploadedBy: userID,
	}

	if err := h.fbClient.UploadResource(resource, file, h.bucketName, header.Filename); err != nil {
		log.Printf("Błąd wgrywania zasobu: %v", err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "zasób wgrany pomyślnie",
		"resource": resource,
	})
}

// DeleteResource usuwa materiał dydaktyczny
// (DELETE /api/admin/resources/{resource_id})
func (h *ResourcesHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")
	if resourceID == "" {
		RespondError(w, http.StatusBadRequest, "brak ID zasobu")
		return
	}

	if err := h.fbClient.DeleteResource(resourceID, h.bucketName); err != nil {
		log.Printf("Błąd usuwania zasobu %s: %v", resourceID, err)
		RespondStoreError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "zasób usunięty"})
}
