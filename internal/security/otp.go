package security

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// OTPLength is the number of digits in a verification code
const OTPLength = 6

// GenerateOTPCode generates a random numeric verification code
func GenerateOTPCode() (string, error) {
	digits := "0123456789"
	code := make([]byte, OTPLength)

	for i := 0; i < OTPLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}

// HashOTPCode hashes a verification code for storage
func HashOTPCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyOTPCode checks a submitted code against the stored hash
func VerifyOTPCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
