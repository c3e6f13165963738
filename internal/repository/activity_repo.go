package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// ActivityRepository handles the append-only activity event log
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ActivityRepository) WithTx(tx *database.Tx) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

// Append writes a new activity event with a fresh uid and createdAt
func (r *ActivityRepository) Append(activity *models.Activity) error {
	if activity.UID == "" {
		activity.UID = uuid.New().String()
	}
	activity.CreatedAt = time.Now()
	if activity.Timestamp.IsZero() {
		activity.Timestamp = activity.CreatedAt
	}

	query := `
		INSERT INTO activities
			(uid, type, subject, topic, quiz_id, quiz_title, score, points,
			 achievement_id, achievement_name, level, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		activity.UID, activity.Type, activity.Subject, activity.Topic,
		activity.QuizID, activity.QuizTitle, activity.Score, activity.Points,
		activity.AchievementID, activity.AchievementName, activity.Level,
		activity.Timestamp, activity.CreatedAt)
	if err != nil {
		return err
	}

	activity.ID = id
	return nil
}

// Upsert writes an activity keeping its uid, replacing any existing record
// with the same uid. Used by import.
func (r *ActivityRepository) Upsert(activity *models.Activity) error {
	if activity.UID == "" {
		return r.Append(activity)
	}
	if _, err := r.db.Exec("DELETE FROM activities WHERE uid = ?", activity.UID); err != nil {
		return err
	}
	return r.Append(activity)
}

// List returns activities newest-first by timestamp, ties broken by insertion
// order. A limit of 0 returns all records.
func (r *ActivityRepository) List(limit int) ([]models.Activity, error) {
	query := `
		SELECT id, uid, type, subject, topic, quiz_id, quiz_title, score, points,
		       achievement_id, achievement_name, level, timestamp, created_at
		FROM activities
		ORDER BY timestamp DESC, id DESC
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

	var activities []models.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}

	return activities, rows.Err()
}

// CountSince returns the number of events of the given type at or after the
// given time. Used by achievement predicates (e.g. quizzes completed today).
func (r *ActivityRepository) CountSince(activityType string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM activities WHERE type = ? AND timestamp >= ?",
		activityType, since).Scan(&count)
	return count, err
}

// Count returns the number of logged activities
func (r *ActivityRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// Reset removes all logged activities. Only the explicit reset flow calls this.
func (r *ActivityRepository) Reset() error {
	_, err := r.db.Exec("DELETE FROM activities")
	return err
}

// scanActivity is the single deserialization boundary for Activity rows
func scanActivity(row rowScanner) (*models.Activity, error) {
	activity := &models.Activity{}
	var subject, topic, quizID, quizTitle, achievementID, achievementName sql.NullString
	var score, points, level sql.NullInt64

	err := row.Scan(
		&activity.ID,
		&activity.UID,
		&activity.Type,
		&subject,
		&topic,
		&quizID,
		&quizTitle,
		&score,
		&points,
		&achievementID,
		&achievementName,
		&level,
		&activity.Timestamp,
		&activity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	activity.Subject = nullString(subject)
	activity.Topic = nullString(topic)
	activity.QuizID = nullString(quizID)
	activity.QuizTitle = nullString(quizTitle)
	activity.AchievementID = nullString(achievementID)
	activity.AchievementName = nullString(achievementName)
	activity.Score = nullInt(score)
	activity.Points = nullInt(points)
	activity.Level = nullInt(level)

	return activity, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
