package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/security"
	"stemquest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	otpLimiter  *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, otpLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		otpLimiter:  otpLimiter,
	}
}

// RequireAuth accepts either the session cookie or a bearer access token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
			user, _, err := m.authService.ValidateSession(cookie.Value)
			if err != nil {
				// Clear invalid cookie
				http.SetCookie(w, security.CreateDeleteCookie(r))
				respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next(w, r.WithContext(ctx))
			return
		}

		if token := bearerToken(r); token != "" {
			user, err := m.authService.ValidateToken(token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next(w, r.WithContext(ctx))
			return
		}

		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
	}
}

// RequireGrade requires an authenticated user with a grade band selected
func (m *Middleware) RequireGrade(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || user.Grade == "" {
			respondWithError(w, http.StatusForbidden, "Grade not selected", "", nil)
			return
		}
		next(w, r)
	})
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.otpLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
