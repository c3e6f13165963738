package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// SettingsRepository handles the settings singleton and the preferences
// key-value store
type SettingsRepository struct {
	db database.DBTX
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SettingsRepository) WithTx(tx *database.Tx) *SettingsRepository {
	return &SettingsRepository{db: tx}
}

// Get retrieves the settings singleton, or nil when it has not been written yet
func (r *SettingsRepository) Get() (*models.Settings, error) {
	query := `
		SELECT language, sound_enabled, notifications_enabled, theme,
		       auto_save, offline_mode, created_at, updated_at
		FROM settings
		WHERE id = ?
	`

	s := &models.Settings{}
	err := r.db.QueryRow(query, models.SettingsID).Scan(
		&s.Language,
		&s.SoundEnabled,
		&s.NotificationsEnabled,
		&s.Theme,
		&s.AutoSave,
		&s.OfflineMode,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Save merges a partial update over the stored settings, or over the
// defaults when nothing has been stored yet, and returns the result
func (r *SettingsRepository) Save(patch *models.SettingsPatch) (*models.Settings, error) {
	existing, err := r.Get()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var s models.Settings
	isNew := existing == nil
	if isNew {
		s = models.DefaultSettings()
		s.CreatedAt = now
	} else {
		s = *existing
	}

	if patch.Language != nil {
		s.Language = *patch.Language
	}
	if patch.SoundEnabled != nil {
		s.SoundEnabled = *patch.SoundEnabled
	}
	if patch.NotificationsEnabled != nil {
		s.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}
	if patch.AutoSave != nil {
		s.AutoSave = *patch.AutoSave
	}
	if patch.OfflineMode != nil {
		s.OfflineMode = *patch.OfflineMode
	}
	s.UpdatedAt = now

	if isNew {
		query := `
			INSERT INTO settings
				(id, language, sound_enabled, notifications_enabled, theme,
				 auto_save, offline_mode, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := r.db.Exec(query,
			models.SettingsID, s.Language, s.SoundEnabled, s.NotificationsEnabled,
			s.Theme, s.AutoSave, s.OfflineMode, s.CreatedAt, s.UpdatedAt); err != nil {
			return nil, err
		}
		return &s, nil
	}

	query := `
		UPDATE settings
		SET language = ?, sound_enabled = ?, notifications_enabled = ?,
		    theme = ?, auto_save = ?, offline_mode = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query,
		s.Language, s.SoundEnabled, s.NotificationsEnabled, s.Theme,
		s.AutoSave, s.OfflineMode, s.UpdatedAt, models.SettingsID); err != nil {
		return nil, err
	}

	return &s, nil
}

// Replace overwrites the settings singleton wholesale. Backup restore uses
// this instead of the merge in Save.
func (r *SettingsRepository) Replace(s *models.Settings) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE id = ?", models.SettingsID); err != nil {
		return err
	}

	query := `
		INSERT INTO settings
			(id, language, sound_enabled, notifications_enabled, theme,
			 auto_save, offline_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		models.SettingsID, s.Language, s.SoundEnabled, s.NotificationsEnabled,
		s.Theme, s.AutoSave, s.OfflineMode, s.CreatedAt, s.UpdatedAt)
	return err
}

// Reset removes the settings singleton so the next Save starts from defaults
func (r *SettingsRepository) Reset() error {
	_, err := r.db.Exec("DELETE FROM settings WHERE id = ?", models.SettingsID)
	return err
}

// SetPreference stores a free-form key-value preference
func (r *SettingsRepository) SetPreference(key, value string) error {
	_, err := r.db.Exec(r.db.GetDialect().UpsertPreference(), key, value)
	return err
}

// GetPreference retrieves a preference value. The second return reports
// whether the key was present.
func (r *SettingsRepository) GetPreference(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE name = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// DeletePreference removes a preference; absent keys are not an error
func (r *SettingsRepository) DeletePreference(key string) error {
	_, err := r.db.Exec("DELETE FROM preferences WHERE name = ?", key)
	return err
}

// ResetPreferences clears the whole key-value store
func (r *SettingsRepository) ResetPreferences() error {
	_, err := r.db.Exec("DELETE FROM preferences")
	return err
}
