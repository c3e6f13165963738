package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// ProgressRepository handles the UserProgress singleton row
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ProgressRepository) WithTx(tx *database.Tx) *ProgressRepository {
	return &ProgressRepository{db: tx}
}

// Get retrieves the progress singleton, or nil if never initialized
func (r *ProgressRepository) Get() (*models.UserProgress, error) {
	query := `
		SELECT id, total_points, completed_quizzes, current_streak, level,
		       completed_topics, completed_quiz_ids, last_activity, created_at, updated_at
		FROM user_progress
		WHERE id = ?
	`

	p := &models.UserProgress{}
	var topicsJSON, quizIDsJSON string
	var lastActivity sql.NullTime

	err := r.db.QueryRow(query, models.ProgressID).Scan(
		&p.ID,
		&p.TotalPoints,
		&p.CompletedQuizzes,
		&p.CurrentStreak,
		&p.Level,
		&topicsJSON,
		&quizIDsJSON,
		&lastActivity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastActivity.Valid {
		p.LastActivity = lastActivity.Time
	}
	if err := json.Unmarshal([]byte(topicsJSON), &p.CompletedTopics); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(quizIDsJSON), &p.CompletedQuizIDs); err != nil {
		return nil, err
	}

	return p, nil
}

// Save merges the patch over the existing progress (or the documented
// defaults when none exists), recomputes level from totalPoints and writes
// the row. List-valued fields replace the stored lists whole.
func (r *ProgressRepository) Save(patch models.ProgressPatch) (*models.UserProgress, error) {
	existing, err := r.Get()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := existing
	if p == nil {
		p = &models.UserProgress{
			ID:               models.ProgressID,
			Level:            1,
			CompletedTopics:  []string{},
			CompletedQuizIDs: []string{},
			CreatedAt:        now,
		}
	}

	if patch.TotalPoints != nil {
		p.TotalPoints = *patch.TotalPoints
	}
	if patch.CompletedQuizzes != nil {
		p.CompletedQuizzes = *patch.CompletedQuizzes
	}
	if patch.CurrentStreak != nil {
		p.CurrentStreak = *patch.CurrentStreak
	}
	if patch.CompletedTopics != nil {
		p.CompletedTopics = patch.CompletedTopics
	}
	if patch.CompletedQuizIDs != nil {
		p.CompletedQuizIDs = patch.CompletedQuizIDs
	}
	if patch.LastActivity != nil {
		p.LastActivity = *patch.LastActivity
	}

	// The level invariant is enforced here, on the write path, and nowhere else.
	p.Level = models.LevelForPoints(p.TotalPoints)
	p.UpdatedAt = now

	topicsJSON, err := json.Marshal(p.CompletedTopics)
	if err != nil {
		return nil, err
	}
	quizIDsJSON, err := json.Marshal(p.CompletedQuizIDs)
	if err != nil {
		return nil, err
	}

	var lastActivity interface{}
	if !p.LastActivity.IsZero() {
		lastActivity = p.LastActivity
	}

	if existing == nil {
		query := `
			INSERT INTO user_progress
				(id, total_points, completed_quizzes, current_streak, level,
				 completed_topics, completed_quiz_ids, last_activity, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = r.db.Exec(query,
			p.ID, p.TotalPoints, p.CompletedQuizzes, p.CurrentStreak, p.Level,
			string(topicsJSON), string(quizIDsJSON), lastActivity, p.CreatedAt, p.UpdatedAt)
	} else {
		query := `
			UPDATE user_progress
			SET total_points = ?, completed_quizzes = ?, current_streak = ?, level = ?,
			    completed_topics = ?, completed_quiz_ids = ?, last_activity = ?, updated_at = ?
			WHERE id = ?
		`
		_, err = r.db.Exec(query,
			p.TotalPoints, p.CompletedQuizzes, p.CurrentStreak, p.Level,
			string(topicsJSON), string(quizIDsJSON), lastActivity, p.UpdatedAt, p.ID)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Reset removes the progress singleton. Only the explicit reset flow calls this.
func (r *ProgressRepository) Reset() error {
	_, err := r.db.Exec("DELETE FROM user_progress WHERE id = ?", models.ProgressID)
	return err
}

// Count returns the number of progress rows (0 or 1)
func (r *ProgressRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM user_progress").Scan(&count)
	return count, err
}
