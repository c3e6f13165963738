package models

import "time"

// Grade bands gating content access
var GradeBands = []string{"6-8", "9-10", "11-12"}

// IsValidGrade reports whether the given grade band exists
func IsValidGrade(grade string) bool {
	for _, g := range GradeBands {
		if g == grade {
			return true
		}
	}
	return false
}

// User is a device account identified by phone number
type User struct {
	ID            int64     `json:"id"`
	Phone         string    `json:"phone"`
	Grade         string    `json:"grade"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Session is a server-side login session
type Session struct {
	ID        string    `json:"-"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// OTPCode is a pending phone verification code. Only the bcrypt hash of the
// code is stored.
type OTPCode struct {
	ID        int64
	Phone     string
	CodeHash  string
	Attempts  int
	Consumed  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
