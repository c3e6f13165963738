package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/service"
	"stemquest/internal/validation"
)

// QuizHandler serves quiz completion and the result log
type QuizHandler struct {
	quizService *service.QuizService
	resultRepo  *repository.ResultRepository
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, resultRepo *repository.ResultRepository) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		resultRepo:  resultRepo,
	}
}

// Complete handles POST /api/quizzes/complete
func (h *QuizHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var sub models.QuizSubmission
	if err := decodeJSON(r, &sub); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode quiz submission", err)
		return
	}

	outcome, err := h.quizService.CompleteQuiz(&sub)
	if err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to complete quiz", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, outcome)
}

// ListResults handles GET /api/results
func (h *QuizHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 0)

	results, err := h.resultRepo.List(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load results", err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

// parseLimit reads the limit query parameter, falling back when absent or
// malformed
func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}
