package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// AchievementRepository handles the fixed achievement catalog
type AchievementRepository struct {
	db database.DBTX
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db database.DBTX) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *AchievementRepository) WithTx(tx *database.Tx) *AchievementRepository {
	return &AchievementRepository{db: tx}
}

// Seed inserts catalog entries that do not exist yet. Existing rows keep
// their earned state; only descriptive fields are refreshed.
func (r *AchievementRepository) Seed(catalog []models.Achievement) error {
	for _, a := range catalog {
		existing, err := r.GetByID(a.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		if existing == nil {
			query := `
				INSERT INTO achievements
					(id, name, description, icon, requirement, points, category,
					 earned, earned_date, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`
			if _, err := r.db.Exec(query,
				a.ID, a.Name, a.Description, a.Icon, a.Requirement, a.Points,
				a.Category, false, nil, now, now); err != nil {
				return err
			}
			continue
		}

		query := `
			UPDATE achievements
			SET name = ?, description = ?, icon = ?, requirement = ?, points = ?,
			    category = ?, updated_at = ?
			WHERE id = ?
		`
		if _, err := r.db.Exec(query,
			a.Name, a.Description, a.Icon, a.Requirement, a.Points,
			a.Category, now, a.ID); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a single achievement, or nil when absent
func (r *AchievementRepository) GetByID(id string) (*models.Achievement, error) {
	query := `
		SELECT id, name, description, icon, requirement, points, category,
		       earned, earned_date, created_at, updated_at
		FROM achievements
		WHERE id = ?
	`

	a, err := scanAchievement(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the full catalog ordered by category then id
func (r *AchievementRepository) List() ([]models.Achievement, error) {
	query := `
		SELECT id, name, description, icon, requirement, points, category,
		       earned, earned_date, created_at, updated_at
		FROM achievements
		ORDER BY category, id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, *a)
	}

	return achievements, rows.Err()
}

// MarkEarned flips an achievement to earned with the given date. The update
// is a no-op when the achievement was already earned, so the flip happens at
// most once and never reverts.
func (r *AchievementRepository) MarkEarned(id string, earnedDate time.Time) (bool, error) {
	query := `
		UPDATE achievements
		SET earned = ?, earned_date = ?, updated_at = ?
		WHERE id = ? AND earned = ?
	`

	result, err := r.db.Exec(query, true, earnedDate, time.Now(), id, false)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Upsert writes an achievement including its earned state. Backup restore
// uses this to bring earned flags back; normal play goes through MarkEarned.
func (r *AchievementRepository) Upsert(a *models.Achievement) error {
	existing, err := r.GetByID(a.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing == nil {
		query := `
			INSERT INTO achievements
				(id, name, description, icon, requirement, points, category,
				 earned, earned_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.Exec(query,
			a.ID, a.Name, a.Description, a.Icon, a.Requirement, a.Points,
			a.Category, a.Earned, a.EarnedDate, now, now)
		return err
	}

	query := `
		UPDATE achievements
		SET name = ?, description = ?, icon = ?, requirement = ?, points = ?,
		    category = ?, earned = ?, earned_date = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		a.Name, a.Description, a.Icon, a.Requirement, a.Points,
		a.Category, a.Earned, a.EarnedDate, now, a.ID)
	return err
}

// Count returns the catalog size
func (r *AchievementRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM achievements").Scan(&count)
	return count, err
}

// Reset clears earned state on the whole catalog. Only the explicit reset
// flow calls this.
func (r *AchievementRepository) Reset() error {
	_, err := r.db.Exec(
		"UPDATE achievements SET earned = ?, earned_date = NULL, updated_at = ?",
		false, time.Now())
	return err
}

// scanAchievement is the single deserialization boundary for Achievement rows
func scanAchievement(row rowScanner) (*models.Achievement, error) {
	a := &models.Achievement{}
	var earnedDate sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Icon,
		&a.Requirement,
		&a.Points,
		&a.Category,
		&a.Earned,
		&earnedDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if earnedDate.Valid {
		a.EarnedDate = &earnedDate.Time
	}

	return a, nil
}
