package handlers

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"stemquest/internal/security"
)

var codeLogPattern = regexp.MustCompile(`verification code for \d+ is (\d{6})`)

// requestCode runs the send-code handler and extracts the generated code
// from the development-mode log output
func requestCode(t *testing.T, env *handlerEnv, phone string) string {
	t.Helper()

	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	rec := httptest.NewRecorder()
	env.auth.SendCode(rec, jsonRequest(t, "POST", "/api/auth/otp/send", map[string]string{"phone": phone}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}

	match := codeLogPattern.FindStringSubmatch(buf.String())
	if match == nil {
		t.Fatalf("Expected verification code in log output, got %q", buf.String())
	}
	return match[1]
}

// signIn runs the full OTP flow and returns the session cookie and token
func signIn(t *testing.T, env *handlerEnv, phone string) (*http.Cookie, string) {
	t.Helper()

	code := requestCode(t, env, phone)

	rec := httptest.NewRecorder()
	env.auth.VerifyCode(rec, jsonRequest(t, "POST", "/api/auth/otp/verify",
		map[string]string{"phone": phone, "code": code}))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("Expected session cookie to be set")
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &body)
	if body.Token == "" {
		t.Fatal("Expected access token in response")
	}

	return cookie, body.Token
}

func TestSendCodeRejectsInvalidPhone(t *testing.T) {
	env := newHandlerEnv(t)

	rec := httptest.NewRecorder()
	env.auth.SendCode(rec, jsonRequest(t, "POST", "/api/auth/otp/send", map[string]string{"phone": "12"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestVerifyCodeRejectsWrongCode(t *testing.T) {
	env := newHandlerEnv(t)
	code := requestCode(t, env, "5551234567")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	rec := httptest.NewRecorder()
	env.auth.VerifyCode(rec, jsonRequest(t, "POST", "/api/auth/otp/verify",
		map[string]string{"phone": "5551234567", "code": wrong}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyCodeSignsUserIn(t *testing.T) {
	env := newHandlerEnv(t)

	cookie, token := signIn(t, env, "5551234567")

	// The cookie authenticates follow-up requests
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.middleware.RequireAuth(env.auth.Me)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user struct {
		Phone string `json:"phone"`
		Grade string `json:"grade"`
	}
	decodeBody(t, rec, &user)
	if user.Phone != "5551234567" {
		t.Errorf("Expected phone 5551234567, got %q", user.Phone)
	}
	if user.Grade != "" {
		t.Errorf("Expected empty grade for new user, got %q", user.Grade)
	}

	// The bearer token works without the cookie
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.middleware.RequireAuth(env.auth.Me)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 with bearer token, got %d", rec.Code)
	}
}

func TestSelectGradeUpdatesUser(t *testing.T) {
	env := newHandlerEnv(t)
	cookie, _ := signIn(t, env, "5551234567")

	req := jsonRequest(t, "POST", "/api/auth/grade", map[string]string{"grade": "9-10"})
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.middleware.RequireAuth(env.auth.SelectGrade)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user struct {
		Grade string `json:"grade"`
	}
	decodeBody(t, rec, &user)
	if user.Grade != "9-10" {
		t.Errorf("Expected grade 9-10, got %q", user.Grade)
	}
}

func TestSelectGradeRejectsUnknownBand(t *testing.T) {
	env := newHandlerEnv(t)
	cookie, _ := signIn(t, env, "5551234567")

	req := jsonRequest(t, "POST", "/api/auth/grade", map[string]string{"grade": "1-5"})
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.middleware.RequireAuth(env.auth.SelectGrade)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newHandlerEnv(t)
	cookie, _ := signIn(t, env, "5551234567")

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.auth.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	// The old session no longer authenticates
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.middleware.RequireAuth(env.auth.Me)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401 after logout, got %d", rec.Code)
	}
}
