package handlers

import (
	"net/http"

	"stemquest/internal/service"
)

// AchievementHandler serves the achievement catalog
type AchievementHandler struct {
	achievementService *service.AchievementService
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(achievementService *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// List handles GET /api/achievements
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementService.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load achievements", err)
		return
	}
	respondWithJSON(w, http.StatusOK, achievements)
}
