package handlers

import (
	"net/http"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// ProgressHandler serves the progress singleton
type ProgressHandler struct {
	progressRepo *repository.ProgressRepository
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressRepo *repository.ProgressRepository) *ProgressHandler {
	return &ProgressHandler{progressRepo: progressRepo}
}

// Get handles GET /api/progress
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressRepo.Get()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load progress", err)
		return
	}
	respondWithJSON(w, http.StatusOK, progress)
}

// Update handles PATCH /api/progress
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ProgressPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode progress patch", err)
		return
	}

	progress, err := h.progressRepo.Save(patch)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save progress", err)
		return
	}
	respondWithJSON(w, http.StatusOK, progress)
}
