package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stemquest/internal/security"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func TestRequireAuthRejectsAnonymousRequest(t *testing.T) {
	env := newHandlerEnv(t)

	rec := httptest.NewRecorder()
	env.middleware.RequireAuth(okHandler)(rec, httptest.NewRequest("GET", "/api/progress", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsGarbageBearerToken(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/api/progress", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.middleware.RequireAuth(okHandler)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rec.Code)
	}
}

func TestRequireGradeBlocksUntilGradeSelected(t *testing.T) {
	env := newHandlerEnv(t)
	cookie, _ := signIn(t, env, "5551234567")

	req := httptest.NewRequest("GET", "/api/content?type=quiz", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.middleware.RequireGrade(okHandler)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403 before grade selection, got %d", rec.Code)
	}

	gradeReq := jsonRequest(t, "POST", "/api/auth/grade", map[string]string{"grade": "6-8"})
	gradeReq.AddCookie(cookie)
	env.middleware.RequireAuth(env.auth.SelectGrade)(httptest.NewRecorder(), gradeReq)

	req = httptest.NewRequest("GET", "/api/content?type=quiz", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.middleware.RequireGrade(okHandler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 after grade selection, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimitThrottlesClient(t *testing.T) {
	env := newHandlerEnv(t)
	env.middleware.otpLimiter = security.NewRateLimiter(2, time.Minute)

	handler := env.middleware.RateLimit(okHandler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/otp/send", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200 on request %d, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/otp/send", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429 after limit, got %d", rec.Code)
	}

	// A different client is unaffected
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/auth/otp/send", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for other client, got %d", rec.Code)
	}
}
