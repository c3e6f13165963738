package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// UserRepository handles device accounts keyed by phone number
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *UserRepository) WithTx(tx *database.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// GetByPhone retrieves a user by phone number, or nil when absent
func (r *UserRepository) GetByPhone(phone string) (*models.User, error) {
	query := `
		SELECT id, phone, grade, oauth_provider, oauth_subject, created_at, updated_at
		FROM users
		WHERE phone = ?
	`
	return r.getOne(query, phone)
}

// GetByID retrieves a user by id, or nil when absent
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `
		SELECT id, phone, grade, oauth_provider, oauth_subject, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.getOne(query, id)
}

// GetByOAuthSubject retrieves a user by external identity, or nil when absent
func (r *UserRepository) GetByOAuthSubject(provider, subject string) (*models.User, error) {
	query := `
		SELECT id, phone, grade, oauth_provider, oauth_subject, created_at, updated_at
		FROM users
		WHERE oauth_provider = ? AND oauth_subject = ?
	`
	return r.getOne(query, provider, subject)
}

// Create inserts a new user and fills in its id
func (r *UserRepository) Create(user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (phone, grade, oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		user.Phone, user.Grade, user.OAuthProvider, user.OAuthSubject,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetOrCreateByPhone returns the user for a verified phone number, creating
// one on first sign-in
func (r *UserRepository) GetOrCreateByPhone(phone string) (*models.User, error) {
	user, err := r.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{Phone: phone}
	if err := r.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetGrade records the grade band a user selected
func (r *UserRepository) SetGrade(userID int64, grade string) error {
	_, err := r.db.Exec(
		"UPDATE users SET grade = ?, updated_at = ? WHERE id = ?",
		grade, time.Now(), userID)
	return err
}

// LinkOAuth attaches an external identity to an existing user
func (r *UserRepository) LinkOAuth(userID int64, provider, subject string) error {
	_, err := r.db.Exec(
		"UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?",
		provider, subject, time.Now(), userID)
	return err
}

func (r *UserRepository) getOne(query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(query, args...).Scan(
		&user.ID,
		&user.Phone,
		&user.Grade,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
