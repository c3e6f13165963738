package models

import (
	"encoding/json"
	"time"
)

// Content types stored in the content cache
const (
	ContentTypeQuiz        = "quiz"
	ContentTypeSubject     = "subject"
	ContentTypeTopic       = "topic"
	ContentTypeAchievement = "achievement"
)

// ContentEntry is an opaque, versioned content blob with optional expiry.
// A read past ExpiresAt behaves as a miss and removes the entry.
type ContentEntry struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	Version     string          `json:"version"`
	LastUpdated time.Time       `json:"lastUpdated"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

// Expired reports whether the entry has an expiry in the past
func (e *ContentEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
