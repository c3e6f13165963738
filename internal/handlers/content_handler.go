package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// ContentHandler serves the content cache
type ContentHandler struct {
	contentRepo *repository.ContentRepository
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentRepo *repository.ContentRepository) *ContentHandler {
	return &ContentHandler{contentRepo: contentRepo}
}

// Get handles GET /api/content/{id}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, err := h.contentRepo.Get(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load content", err)
		return
	}
	if entry == nil {
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

// List handles GET /api/content?type=quiz
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	contentType := r.URL.Query().Get("type")
	if contentType == "" {
		respondWithError(w, http.StatusBadRequest, "Missing type parameter", "", nil)
		return
	}

	entries, err := h.contentRepo.ListByType(contentType)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list content", err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// Put handles PUT /api/content/{id}
func (h *ContentHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Type     string          `json:"type"`
		Data     json.RawMessage `json:"data"`
		Version  string          `json:"version"`
		TTLHours int             `json:"ttlHours"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode content entry", err)
		return
	}
	if req.Type == "" || len(req.Data) == 0 {
		respondWithError(w, http.StatusBadRequest, "Missing type or data", "", nil)
		return
	}
	if req.TTLHours < 0 {
		respondWithError(w, http.StatusBadRequest, "Negative TTL", "", nil)
		return
	}

	entry := &models.ContentEntry{
		ID:      id,
		Type:    req.Type,
		Data:    req.Data,
		Version: req.Version,
	}
	if err := h.contentRepo.Put(entry, time.Duration(req.TTLHours)*time.Hour); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to store content", err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/content/{id}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.contentRepo.Delete(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
