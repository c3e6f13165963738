package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// ResultRepository handles the append-only quiz result log
type ResultRepository struct {
	db database.DBTX
}

// NewResultRepository creates a new result repository
func NewResultRepository(db database.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ResultRepository) WithTx(tx *database.Tx) *ResultRepository {
	return &ResultRepository{db: tx}
}

// Append writes a new quiz result with a fresh uid and createdAt.
// Existing records are never overwritten.
func (r *ResultRepository) Append(result *models.QuizResult) error {
	if result.UID == "" {
		result.UID = uuid.New().String()
	}
	result.CreatedAt = time.Now()
	if result.CompletedAt.IsZero() {
		result.CompletedAt = result.CreatedAt
	}
	if result.Answers == nil {
		result.Answers = []models.AnswerRecord{}
	}

	answersJSON, err := json.Marshal(result.Answers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quiz_results
			(uid, quiz_id, quiz_title, subject, topic, score, total_questions,
			 correct_answers, time_spent_seconds, points_earned, answers, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		result.UID, result.QuizID, result.QuizTitle, result.Subject, result.Topic,
		result.Score, result.TotalQuestions, result.CorrectAnswers,
		result.TimeSpentSeconds, result.PointsEarned, string(answersJSON),
		result.CompletedAt, result.CreatedAt)
	if err != nil {
		return err
	}

	result.ID = id
	return nil
}

// Upsert writes a result keeping its uid, replacing any existing record with
// the same uid. Used by import so round-trips do not duplicate records.
func (r *ResultRepository) Upsert(result *models.QuizResult) error {
	if result.UID == "" {
		return r.Append(result)
	}
	if _, err := r.db.Exec("DELETE FROM quiz_results WHERE uid = ?", result.UID); err != nil {
		return err
	}
	return r.Append(result)
}

// List returns results newest-first by completedAt, ties broken by insertion
// order. A limit of 0 returns all records.
func (r *ResultRepository) List(limit int) ([]models.QuizResult, error) {
	query := `
		SELECT id, uid, quiz_id, quiz_title, subject, topic, score, total_questions,
		       correct_answers, time_spent_seconds, points_earned, answers, completed_at, created_at
		FROM quiz_results
		ORDER BY completed_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.QuizResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, rows.Err()
}

// Count returns the number of logged results
func (r *ResultRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM quiz_results").Scan(&count)
	return count, err
}

// CountBySubject returns the number of logged results for a subject
func (r *ResultRepository) CountBySubject(subject string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM quiz_results WHERE subject = ?", subject).Scan(&count)
	return count, err
}

// Reset removes all logged results. Only the explicit reset flow calls this.
func (r *ResultRepository) Reset() error {
	_, err := r.db.Exec("DELETE FROM quiz_results")
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanResult is the single deserialization boundary for QuizResult rows
func scanResult(row rowScanner) (*models.QuizResult, error) {
	result := &models.QuizResult{}
	var answersJSON string

	err := row.Scan(
		&result.ID,
		&result.UID,
		&result.QuizID,
		&result.QuizTitle,
		&result.Subject,
		&result.Topic,
		&result.Score,
		&result.TotalQuestions,
		&result.CorrectAnswers,
		&result.TimeSpentSeconds,
		&result.PointsEarned,
		&answersJSON,
		&result.CompletedAt,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answersJSON), &result.Answers); err != nil {
		return nil, err
	}

	return result, nil
}
