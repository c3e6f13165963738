package models

import "time"

// ProgressID is the key of the per-device UserProgress singleton row.
const ProgressID = "default"

// PointsPerLevel is the canonical level divisor: level = totalPoints/100 + 1.
// The level field is recomputed from totalPoints on every progress write and
// nowhere else.
const PointsPerLevel = 100

// UserProgress is the per-device progress singleton
type UserProgress struct {
	ID               string    `json:"id"`
	TotalPoints      int       `json:"totalPoints"`
	CompletedQuizzes int       `json:"completedQuizzes"`
	CurrentStreak    int       `json:"currentStreak"`
	Level            int       `json:"level"`
	CompletedTopics  []string  `json:"completedTopics"`
	CompletedQuizIDs []string  `json:"completedQuizIds"`
	LastActivity     time.Time `json:"lastActivity"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// LevelForPoints returns the level implied by a point total
func LevelForPoints(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/PointsPerLevel + 1
}

// ProgressPatch is a partial update of UserProgress. Nil fields are left
// unchanged; list-valued fields replace the stored value whole.
type ProgressPatch struct {
	TotalPoints      *int       `json:"totalPoints,omitempty"`
	CompletedQuizzes *int       `json:"completedQuizzes,omitempty"`
	CurrentStreak    *int       `json:"currentStreak,omitempty"`
	CompletedTopics  []string   `json:"completedTopics,omitempty"`
	CompletedQuizIDs []string   `json:"completedQuizIds,omitempty"`
	LastActivity     *time.Time `json:"lastActivity,omitempty"`
}
