package models

import "time"

// Activity event types
const (
	ActivityQuizCompleted     = "quiz_completed"
	ActivityTopicUnlocked     = "topic_unlocked"
	ActivityAchievementEarned = "achievement_earned"
	ActivityLevelUp           = "level_up"
)

// Activity is an append-only event used for the recent-activity feed and
// achievement derivation. Payload fields are type-specific and nil when
// absent.
type Activity struct {
	ID              int64      `json:"-"`
	UID             string     `json:"id"`
	Type            string     `json:"type"`
	Subject         *string    `json:"subject,omitempty"`
	Topic           *string    `json:"topic,omitempty"`
	QuizID          *string    `json:"quizId,omitempty"`
	QuizTitle       *string    `json:"quizTitle,omitempty"`
	Score           *int       `json:"score,omitempty"`
	Points          *int       `json:"points,omitempty"`
	AchievementID   *string    `json:"achievementId,omitempty"`
	AchievementName *string    `json:"achievementName,omitempty"`
	Level           *int       `json:"level,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	CreatedAt       time.Time  `json:"createdAt"`
}
