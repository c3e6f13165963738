package handlers

import (
	"net/http"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// SettingsHandler serves the settings singleton and ad-hoc preferences
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo *repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.Get()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load settings", err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// Update handles PATCH /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode settings patch", err)
		return
	}

	settings, err := h.settingsRepo.Save(&patch)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save settings", err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// Reset handles POST /api/settings/reset
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsRepo.Reset(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to reset settings", err)
		return
	}

	settings, err := h.settingsRepo.Get()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load settings", err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// GetPreference handles GET /api/preferences/{name}
func (h *SettingsHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	value, found, err := h.settingsRepo.GetPreference(name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load preference", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, ErrNotFound, "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

// SetPreference handles PUT /api/preferences/{name}
func (h *SettingsHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode preference", err)
		return
	}

	if err := h.settingsRepo.SetPreference(name, req.Value); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save preference", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"name": name, "value": req.Value})
}

// DeletePreference handles DELETE /api/preferences/{name}
func (h *SettingsHandler) DeletePreference(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.settingsRepo.DeletePreference(name); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete preference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
