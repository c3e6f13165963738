package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// ContentRepository handles cached question banks and other content blobs
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ContentRepository) WithTx(tx *database.Tx) *ContentRepository {
	return &ContentRepository{db: tx}
}

// Put stores a content entry, replacing any previous entry with the same id.
// A zero ttl means the entry never expires.
func (r *ContentRepository) Put(entry *models.ContentEntry, ttl time.Duration) error {
	now := time.Now()
	entry.LastUpdated = now
	if ttl > 0 {
		expires := now.Add(ttl)
		entry.ExpiresAt = &expires
	} else {
		entry.ExpiresAt = nil
	}

	if _, err := r.db.Exec("DELETE FROM content_cache WHERE id = ?", entry.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO content_cache (id, type, data, version, last_updated, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		entry.ID, entry.Type, string(entry.Data), entry.Version,
		entry.LastUpdated, entry.ExpiresAt)
	return err
}

// Get retrieves a content entry by id. An entry past its expiry is deleted
// on the spot and reported as a miss, so readers never see stale content.
func (r *ContentRepository) Get(id string) (*models.ContentEntry, error) {
	query := `
		SELECT id, type, data, version, last_updated, expires_at
		FROM content_cache
		WHERE id = ?
	`

	entry, err := scanContentEntry(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if entry.Expired(time.Now()) {
		if err := r.Delete(id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return entry, nil
}

// ListByType returns all live entries of a content type, skipping expired ones
func (r *ContentRepository) ListByType(contentType string) ([]models.ContentEntry, error) {
	query := `
		SELECT id, type, data, version, last_updated, expires_at
		FROM content_cache
		WHERE type = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, contentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var entries []models.ContentEntry
	for rows.Next() {
		entry, err := scanContentEntry(rows)
		if err != nil {
			return nil, err
		}
		if entry.Expired(now) {
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// Delete removes a content entry. Deleting an absent id is not an error.
func (r *ContentRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM content_cache WHERE id = ?", id)
	return err
}

// DeleteExpired sweeps entries whose expiry has passed and returns how many
// were removed. The background sweep uses this so abandoned entries do not
// pile up waiting for a read.
func (r *ContentRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM content_cache WHERE expires_at IS NOT NULL AND expires_at <= ?",
		time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of stored entries, expired ones included
func (r *ContentRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content_cache").Scan(&count)
	return count, err
}

// Reset removes all cached content
func (r *ContentRepository) Reset() error {
	_, err := r.db.Exec("DELETE FROM content_cache")
	return err
}

// scanContentEntry is the single deserialization boundary for content rows
func scanContentEntry(row rowScanner) (*models.ContentEntry, error) {
	entry := &models.ContentEntry{}
	var data string
	var expiresAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.Type,
		&data,
		&entry.Version,
		&entry.LastUpdated,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Data = []byte(data)
	if expiresAt.Valid {
		entry.ExpiresAt = &expiresAt.Time
	}

	return entry, nil
}
