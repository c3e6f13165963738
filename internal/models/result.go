package models

import "time"

// AnswerRecord is a single per-question outcome within a quiz attempt
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Selected   int    `json:"selected"`
	Correct    bool   `json:"correct"`
	TimeTaken  int    `json:"timeTakenSeconds,omitempty"`
}

// QuizResult is one completed quiz attempt. Records are append-only and
// immutable once written.
type QuizResult struct {
	ID               int64          `json:"-"`
	UID              string         `json:"id"`
	QuizID           string         `json:"quizId"`
	QuizTitle        string         `json:"quizTitle"`
	Subject          string         `json:"subject"`
	Topic            string         `json:"topic"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	CorrectAnswers   int            `json:"correctAnswers"`
	TimeSpentSeconds int            `json:"timeSpent"`
	PointsEarned     int            `json:"pointsEarned"`
	Answers          []AnswerRecord `json:"answers"`
	CompletedAt      time.Time      `json:"completedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// QuizSubmission is the payload for completing a quiz
type QuizSubmission struct {
	QuizID           string         `json:"quizId"`
	QuizTitle        string         `json:"quizTitle"`
	Subject          string         `json:"subject"`
	Topic            string         `json:"topic"`
	TopicCompleted   bool           `json:"topicCompleted"`
	TotalQuestions   int            `json:"totalQuestions"`
	TimeSpentSeconds int            `json:"timeSpent"`
	BasePoints       int            `json:"basePoints"`
	Answers          []AnswerRecord `json:"answers"`
}
