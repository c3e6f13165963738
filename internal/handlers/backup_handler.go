package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"stemquest/internal/service"
	"stemquest/internal/validation"
)

// BackupHandler serves export, import, stats, and the full reset
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export handles GET /api/export
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("stemquest_backup_%s.json", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.backupService.ExportTo(w); err != nil {
		// Headers may already be written; log and give up on this response
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to export backup", err)
	}
}

// Import handles POST /api/import
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFrom(r.Body); err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid backup file", "Failed to import backup", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// Stats handles GET /api/stats
func (h *BackupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backupService.Stats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// Reset handles POST /api/reset
func (h *BackupHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ClearAll(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to reset data", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
