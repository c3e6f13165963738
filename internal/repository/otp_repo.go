package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// OTPRepository handles pending phone verification codes
type OTPRepository struct {
	db database.DBTX
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db database.DBTX) *OTPRepository {
	return &OTPRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *OTPRepository) WithTx(tx *database.Tx) *OTPRepository {
	return &OTPRepository{db: tx}
}

// Create stores a new code hash for a phone number. Earlier pending codes
// for the same phone are invalidated so only the latest one can verify.
func (r *OTPRepository) Create(phone, codeHash string, expiry time.Duration) (*models.OTPCode, error) {
	if _, err := r.db.Exec(
		"UPDATE otp_codes SET consumed = ? WHERE phone = ? AND consumed = ?",
		true, phone, false); err != nil {
		return nil, err
	}

	now := time.Now()
	otp := &models.OTPCode{
		Phone:     phone,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(expiry),
		CreatedAt: now,
	}

	query := `
		INSERT INTO otp_codes (phone, code_hash, attempts, consumed, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		otp.Phone, otp.CodeHash, 0, false, otp.ExpiresAt, otp.CreatedAt)
	if err != nil {
		return nil, err
	}

	otp.ID = id
	return otp, nil
}

// GetPending retrieves the latest unconsumed, unexpired code for a phone
// number, or nil when there is none
func (r *OTPRepository) GetPending(phone string) (*models.OTPCode, error) {
	query := `
		SELECT id, phone, code_hash, attempts, consumed, expires_at, created_at
		FROM otp_codes
		WHERE phone = ? AND consumed = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	otp := &models.OTPCode{}
	err := r.db.QueryRow(query, phone, false, time.Now()).Scan(
		&otp.ID,
		&otp.Phone,
		&otp.CodeHash,
		&otp.Attempts,
		&otp.Consumed,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return otp, nil
}

// IncrementAttempts records a failed verification attempt and returns the
// new attempt count
func (r *OTPRepository) IncrementAttempts(id int64) (int, error) {
	if _, err := r.db.Exec(
		"UPDATE otp_codes SET attempts = attempts + 1 WHERE id = ?", id); err != nil {
		return 0, err
	}

	var attempts int
	err := r.db.QueryRow("SELECT attempts FROM otp_codes WHERE id = ?", id).Scan(&attempts)
	return attempts, err
}

// Consume marks a code as used so it cannot verify twice
func (r *OTPRepository) Consume(id int64) error {
	_, err := r.db.Exec("UPDATE otp_codes SET consumed = ? WHERE id = ?", true, id)
	return err
}

// DeleteExpired removes codes past their expiry and returns how many were
// removed
func (r *OTPRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec("DELETE FROM otp_codes WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
