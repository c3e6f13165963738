package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an access token fails verification
var ErrInvalidToken = errors.New("invalid access token")

// AccessClaims are the claims carried by an API access token
type AccessClaims struct {
	UserID int64  `json:"uid"`
	Phone  string `json:"phone"`
	Grade  string `json:"grade,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies API access tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret and
// token lifetime
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed access token for a user
func (ti *TokenIssuer) Issue(userID int64, phone, grade string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		Phone:  phone,
		Grade:  grade,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "stemquest",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify parses and validates an access token and returns its claims
func (ti *TokenIssuer) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
