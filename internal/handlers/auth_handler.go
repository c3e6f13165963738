package handlers

import (
	"errors"
	"net/http"

	"stemquest/internal/security"
	"stemquest/internal/service"
	"stemquest/internal/validation"

	"golang.org/x/oauth2"
)

// AuthHandler handles phone sign-in and the optional Google flow
type AuthHandler struct {
	authService     *service.AuthService
	googleOAuth     *oauth2.Config
	redirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, googleOAuth *oauth2.Config, redirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		googleOAuth:     googleOAuth,
		redirectBaseURL: redirectBaseURL,
	}
}

// SendCode handles POST /api/auth/otp/send
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode send-code request", err)
		return
	}

	if err := h.authService.RequestCode(r.Context(), req.Phone); err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to send verification code", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// VerifyCode handles POST /api/auth/otp/verify
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode verify-code request", err)
		return
	}

	result, err := h.authService.VerifyCode(req.Phone, req.Code)
	if err != nil {
		var verr validation.ValidationError
		switch {
		case errors.As(err, &verr):
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		case errors.Is(err, service.ErrTooManyAttempts):
			respondWithError(w, http.StatusTooManyRequests, "Too many verification attempts", "", nil)
		case errors.Is(err, service.ErrCodeNotFound), errors.Is(err, service.ErrCodeInvalid):
			respondWithError(w, http.StatusUnauthorized, "Invalid verification code", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to verify code", err)
		}
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, result.Session.ID, result.Session.ExpiresAt))
	respondWithJSON(w, http.StatusOK, signInResponse(result))
}

// SelectGrade handles POST /api/auth/grade
func (h *AuthHandler) SelectGrade(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req struct {
		Grade string `json:"grade"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "Failed to decode grade request", err)
		return
	}

	updated, err := h.authService.SelectGrade(user.ID, req.Grade)
	if err != nil {
		var verr validation.ValidationError
		if errors.As(err, &verr) {
			respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to set grade", err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to log out", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

func signInResponse(result *service.AuthResult) map[string]interface{} {
	return map[string]interface{}{
		"user":          result.User,
		"token":         result.AccessToken,
		"gradeSelected": result.User.Grade != "",
	}
}
