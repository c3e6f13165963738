package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// SessionRepository handles server-side login sessions
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SessionRepository) WithTx(tx *database.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Create opens a session for a user valid for the given duration
func (r *SessionRepository) Create(userID int64, duration time.Duration) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		return nil, err
	}

	return session, nil
}

// Get retrieves a live session by id. Expired sessions are reported as
// absent and removed.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = ?
	`

	session := &models.Session{}
	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if err := r.Delete(id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return session, nil
}

// Delete ends a session; absent ids are not an error
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteForUser ends every session belonging to a user
func (r *SessionRepository) DeleteForUser(userID int64) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return err
}

// DeleteExpired removes sessions past their expiry and returns how many
// were removed
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
