package repository

import (
	"database/sql"
	"encoding/json"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// WebCacheRepository stores full HTTP responses for the offline gateway,
// grouped into named partitions
type WebCacheRepository struct {
	db database.DBTX
}

// NewWebCacheRepository creates a new web cache repository
func NewWebCacheRepository(db database.DBTX) *WebCacheRepository {
	return &WebCacheRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *WebCacheRepository) WithTx(tx *database.Tx) *WebCacheRepository {
	return &WebCacheRepository{db: tx}
}

// Upsert stores a response, replacing any previous response for the same
// partition and URL
func (r *WebCacheRepository) Upsert(cached *models.CachedResponse) error {
	headers, err := json.Marshal(cached.Headers)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(r.db.GetDialect().UpsertWebCache(),
		cached.Partition, cached.URL, cached.Status, cached.ContentType,
		string(headers), cached.Body, cached.FetchedAt)
	return err
}

// Get retrieves a cached response from a partition, or nil on a miss
func (r *WebCacheRepository) Get(partition, url string) (*models.CachedResponse, error) {
	query := `
		SELECT partition_name, url, status, content_type, headers, body, fetched_at
		FROM web_cache
		WHERE partition_name = ? AND url = ?
	`

	cached, err := scanCachedResponse(r.db.QueryRow(query, partition, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// GetAnyPartition retrieves the freshest cached response for a URL across
// all partitions. The last-resort lookup when the named partition misses.
func (r *WebCacheRepository) GetAnyPartition(url string) (*models.CachedResponse, error) {
	query := `
		SELECT partition_name, url, status, content_type, headers, body, fetched_at
		FROM web_cache
		WHERE url = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	cached, err := scanCachedResponse(r.db.QueryRow(query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// ListPartitions returns the distinct partition names currently stored
func (r *WebCacheRepository) ListPartitions() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT partition_name FROM web_cache ORDER BY partition_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partitions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		partitions = append(partitions, name)
	}

	return partitions, rows.Err()
}

// DeletePartition removes every response in a partition
func (r *WebCacheRepository) DeletePartition(partition string) error {
	_, err := r.db.Exec("DELETE FROM web_cache WHERE partition_name = ?", partition)
	return err
}

// DeletePartitionsExcept removes every partition not in keep and returns
// the names that were removed
func (r *WebCacheRepository) DeletePartitionsExcept(keep []string) ([]string, error) {
	partitions, err := r.ListPartitions()
	if err != nil {
		return nil, err
	}

	keepSet := make(map[string]bool, len(keep))
	for _, name := range keep {
		keepSet[name] = true
	}

	var removed []string
	for _, name := range partitions {
		if keepSet[name] {
			continue
		}
		if err := r.DeletePartition(name); err != nil {
			return removed, err
		}
		removed = append(removed, name)
	}

	return removed, nil
}

// Count returns the number of cached responses in a partition
func (r *WebCacheRepository) Count(partition string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM web_cache WHERE partition_name = ?", partition).Scan(&count)
	return count, err
}

// scanCachedResponse is the single deserialization boundary for web cache rows
func scanCachedResponse(row rowScanner) (*models.CachedResponse, error) {
	cached := &models.CachedResponse{}
	var headers string

	err := row.Scan(
		&cached.Partition,
		&cached.URL,
		&cached.Status,
		&cached.ContentType,
		&headers,
		&cached.Body,
		&cached.FetchedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(headers), &cached.Headers); err != nil {
		return nil, err
	}

	return cached, nil
}
