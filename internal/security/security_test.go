package security

import (
	"testing"
	"time"
)

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("GenerateOTPCode failed: %v", err)
		}
		if len(code) != OTPLength {
			t.Errorf("Expected %d digits, got %q", OTPLength, code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Errorf("Expected only digits, got %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Expected codes to vary")
	}
}

func TestOTPHashRoundTrip(t *testing.T) {
	code, err := GenerateOTPCode()
	if err != nil {
		t.Fatalf("GenerateOTPCode failed: %v", err)
	}

	hash, err := HashOTPCode(code)
	if err != nil {
		t.Fatalf("HashOTPCode failed: %v", err)
	}
	if hash == code {
		t.Error("Expected the hash to differ from the code")
	}

	if !VerifyOTPCode(hash, code) {
		t.Error("Expected the right code to verify")
	}
	if VerifyOTPCode(hash, "000000") && code != "000000" {
		t.Error("Expected a wrong code to fail")
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "5551234567", "9-10")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user 42, got %d", claims.UserID)
	}
	if claims.Phone != "5551234567" {
		t.Errorf("Expected phone to round trip, got %q", claims.Phone)
	}
	if claims.Grade != "9-10" {
		t.Errorf("Expected grade to round trip, got %q", claims.Grade)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(1, "5551234567", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("Expected verification with the wrong secret to fail")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(1, "5551234567", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("Expected an expired token to fail verification")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("Expected the 4th request to be blocked")
	}

	// Other keys have their own bucket
	if !rl.Allow("client-b") {
		t.Error("Expected a different key to be allowed")
	}
}
