package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/validation"
)

var (
	ErrCodeNotFound     = errors.New("no pending verification code")
	ErrCodeInvalid      = errors.New("invalid verification code")
	ErrTooManyAttempts  = errors.New("too many verification attempts")
	ErrSessionNotFound  = errors.New("session not found")
	ErrGradeNotSelected = errors.New("grade not selected")
)

// AuthService handles phone sign-in business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionRepo     *repository.SessionRepository
	otpRepo         *repository.OTPRepository
	sms             *SMSService
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
	otpExpiry       time.Duration
	otpMaxAttempts  int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	otpRepo *repository.OTPRepository,
	sms *SMSService,
	tokens *security.TokenIssuer,
	sessionDuration, otpExpiry time.Duration,
	otpMaxAttempts int,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionRepo:     sessionRepo,
		otpRepo:         otpRepo,
		sms:             sms,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		otpExpiry:       otpExpiry,
		otpMaxAttempts:  otpMaxAttempts,
	}
}

// RequestCode generates a verification code for a phone number and hands it
// to the delivery service. Only the bcrypt hash is stored.
func (s *AuthService) RequestCode(ctx context.Context, phone string) error {
	phone = validation.NormalizePhone(phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return err
	}

	code, err := security.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	hash, err := security.HashOTPCode(code)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	if _, err := s.otpRepo.Create(phone, hash, s.otpExpiry); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	return s.sms.SendOTP(ctx, phone, code)
}

// AuthResult is a successful sign-in: the user, a server session, and an
// API access token
type AuthResult struct {
	User        *models.User
	Session     *models.Session
	AccessToken string
}

// VerifyCode checks a submitted code and, when it matches, signs the user
// in. The account is created on first verification.
func (s *AuthService) VerifyCode(phone, code string) (*AuthResult, error) {
	phone = validation.NormalizePhone(phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := validation.ValidateOTPCode(code); err != nil {
		return nil, err
	}

	pending, err := s.otpRepo.GetPending(phone)
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	if pending == nil {
		return nil, ErrCodeNotFound
	}
	if pending.Attempts >= s.otpMaxAttempts {
		return nil, ErrTooManyAttempts
	}

	if !security.VerifyOTPCode(pending.CodeHash, code) {
		attempts, err := s.otpRepo.IncrementAttempts(pending.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		if attempts >= s.otpMaxAttempts {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrCodeInvalid
	}

	if err := s.otpRepo.Consume(pending.ID); err != nil {
		return nil, fmt.Errorf("failed to consume verification code: %w", err)
	}

	user, err := s.userRepo.GetOrCreateByPhone(phone)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.signIn(user)
}

// OAuthLogin signs a user in through an external identity. The account is
// created on first sign-in; phone stays empty for these accounts.
func (s *AuthService) OAuthLogin(provider, subject, fallbackID string) (*AuthResult, error) {
	user, err := s.userRepo.GetByOAuthSubject(provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user = &models.User{
			Phone:         fallbackID,
			OAuthProvider: provider,
			OAuthSubject:  subject,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	return s.signIn(user)
}

// SelectGrade records the grade band for a signed-in user
func (s *AuthService) SelectGrade(userID int64, grade string) (*models.User, error) {
	if err := validation.ValidateGrade(grade); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetGrade(userID, grade); err != nil {
		return nil, fmt.Errorf("failed to set grade: %w", err)
	}

	return s.userRepo.GetByID(userID)
}

// ValidateSession resolves a session id to its user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, *models.Session, error) {
	session, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrSessionNotFound
	}

	return user, session, nil
}

// ValidateToken resolves an API access token to its user
func (s *AuthService) ValidateToken(token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, security.ErrInvalidToken
	}

	return user, nil
}

// Logout ends a session
func (s *AuthService) Logout(sessionID string) error {
	return s.sessionRepo.Delete(sessionID)
}

// CleanupExpired removes expired sessions and verification codes. Runs on
// a timer from the server process.
func (s *AuthService) CleanupExpired() {
	if n, err := s.sessionRepo.DeleteExpired(); err != nil {
		log.Printf("Failed to clean up sessions: %v", err)
	} else if n > 0 {
		log.Printf("Removed %d expired sessions", n)
	}

	if n, err := s.otpRepo.DeleteExpired(); err != nil {
		log.Printf("Failed to clean up verification codes: %v", err)
	} else if n > 0 {
		log.Printf("Removed %d expired verification codes", n)
	}
}

func (s *AuthService) signIn(user *models.User) (*AuthResult, error) {
	session, err := s.sessionRepo.Create(user.ID, s.sessionDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Phone, user.Grade)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &AuthResult{User: user, Session: session, AccessToken: token}, nil
}
