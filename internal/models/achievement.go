package models

import "time"

// Achievement categories
const (
	AchievementCategoryQuiz    = "quiz"
	AchievementCategoryStreak  = "streak"
	AchievementCategoryLevel   = "level"
	AchievementCategorySubject = "subject"
	AchievementCategorySpecial = "special"
)

// Achievement is a one-time-awardable flag from a fixed catalog. The earned
// flag flips false to true exactly once and never reverts.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Requirement string     `json:"requirement"`
	Points      int        `json:"points"`
	Category    string     `json:"category"`
	Earned      bool       `json:"earned"`
	EarnedDate  *time.Time `json:"earnedDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
