package handlers

import (
	"net/http"

	"stemquest/internal/repository"
)

// ActivityHandler serves the recent-activity feed
type ActivityHandler struct {
	activityRepo *repository.ActivityRepository
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityRepo *repository.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activityRepo: activityRepo}
}

// List handles GET /api/activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	activities, err := h.activityRepo.List(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load activities", err)
		return
	}
	respondWithJSON(w, http.StatusOK, activities)
}
