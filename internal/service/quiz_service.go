package service

import (
	"fmt"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/validation"
)

// PerfectScoreBonus is added to the points of a flawless quiz
const PerfectScoreBonus = 10

// QuizOutcome is everything a quiz completion produced
type QuizOutcome struct {
	Result       *models.QuizResult   `json:"result"`
	Progress     *models.UserProgress `json:"progress"`
	Achievements []models.Achievement `json:"newAchievements,omitempty"`
	LeveledUp    bool                 `json:"leveledUp"`
}

// QuizService handles quiz completion. A completion touches the result log,
// the progress store, the activity log, and the achievement catalog; all of
// it happens in one transaction so a failure leaves no partial state.
type QuizService struct {
	db           *database.DB
	progressRepo *repository.ProgressRepository
	resultRepo   *repository.ResultRepository
	activityRepo *repository.ActivityRepository
	achievements *AchievementService
}

// NewQuizService creates a new quiz service
func NewQuizService(
	db *database.DB,
	progressRepo *repository.ProgressRepository,
	resultRepo *repository.ResultRepository,
	activityRepo *repository.ActivityRepository,
	achievements *AchievementService,
) *QuizService {
	return &QuizService{
		db:           db,
		progressRepo: progressRepo,
		resultRepo:   resultRepo,
		activityRepo: activityRepo,
		achievements: achievements,
	}
}

// CompleteQuiz records a finished quiz and applies every derived update
func (s *QuizService) CompleteQuiz(sub *models.QuizSubmission) (*QuizOutcome, error) {
	if err := validation.ValidateSubmission(sub); err != nil {
		return nil, err
	}

	now := time.Now()
	correct := 0
	for _, a := range sub.Answers {
		if a.Correct {
			correct++
		}
	}

	score := correct * 100 / sub.TotalQuestions
	points := sub.BasePoints
	if score >= 100 {
		points += PerfectScoreBonus
	}

	result := &models.QuizResult{
		QuizID:           sub.QuizID,
		QuizTitle:        sub.QuizTitle,
		Subject:          sub.Subject,
		Topic:            sub.Topic,
		Score:            score,
		TotalQuestions:   sub.TotalQuestions,
		CorrectAnswers:   correct,
		TimeSpentSeconds: sub.TimeSpentSeconds,
		PointsEarned:     points,
		Answers:          sub.Answers,
		CompletedAt:      now,
	}

	outcome := &QuizOutcome{Result: result}

	err := s.db.WithTx(func(tx *database.Tx) error {
		progressRepo := s.progressRepo.WithTx(tx)
		resultRepo := s.resultRepo.WithTx(tx)
		activityRepo := s.activityRepo.WithTx(tx)

		if err := resultRepo.Append(result); err != nil {
			return fmt.Errorf("failed to log result: %w", err)
		}

		before, err := progressRepo.Get()
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		patch := s.buildProgressPatch(before, sub, result, now)
		progress, err := progressRepo.Save(patch)
		if err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		if err := activityRepo.Append(&models.Activity{
			Type:      models.ActivityQuizCompleted,
			Subject:   &result.Subject,
			Topic:     &result.Topic,
			QuizID:    &result.QuizID,
			QuizTitle: &result.QuizTitle,
			Score:     &result.Score,
			Points:    &result.PointsEarned,
			Timestamp: now,
		}); err != nil {
			return fmt.Errorf("failed to log activity: %w", err)
		}

		if sub.TopicCompleted && sub.Topic != "" && !contains(beforeTopics(before), sub.Topic) {
			if err := activityRepo.Append(&models.Activity{
				Type:      models.ActivityTopicUnlocked,
				Subject:   &result.Subject,
				Topic:     &result.Topic,
				Timestamp: now,
			}); err != nil {
				return fmt.Errorf("failed to log topic unlock: %w", err)
			}
		}

		earned, err := s.achievements.WithTx(tx).Evaluate(progress, result)
		if err != nil {
			return err
		}

		// Achievement points feed back into the total
		bonus := 0
		for _, a := range earned {
			bonus += a.Points
			if err := activityRepo.Append(&models.Activity{
				Type:            models.ActivityAchievementEarned,
				AchievementID:   &a.ID,
				AchievementName: &a.Name,
				Points:          &a.Points,
				Timestamp:       now,
			}); err != nil {
				return fmt.Errorf("failed to log achievement: %w", err)
			}
		}
		if bonus > 0 {
			total := progress.TotalPoints + bonus
			progress, err = progressRepo.Save(models.ProgressPatch{TotalPoints: &total})
			if err != nil {
				return fmt.Errorf("failed to apply achievement points: %w", err)
			}
		}

		levelBefore := 1
		if before != nil {
			levelBefore = before.Level
		}
		if progress.Level > levelBefore {
			if err := activityRepo.Append(&models.Activity{
				Type:      models.ActivityLevelUp,
				Level:     &progress.Level,
				Timestamp: now,
			}); err != nil {
				return fmt.Errorf("failed to log level up: %w", err)
			}
			outcome.LeveledUp = true
		}

		outcome.Progress = progress
		outcome.Achievements = earned
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// buildProgressPatch folds a quiz completion into the stored progress
func (s *QuizService) buildProgressPatch(
	before *models.UserProgress,
	sub *models.QuizSubmission,
	result *models.QuizResult,
	now time.Time,
) models.ProgressPatch {
	totalPoints := result.PointsEarned
	completedQuizzes := 1
	streak := 0
	var topics, quizIDs []string

	if before != nil {
		totalPoints += before.TotalPoints
		completedQuizzes += before.CompletedQuizzes
		streak = before.CurrentStreak
		topics = append(topics, before.CompletedTopics...)
		quizIDs = append(quizIDs, before.CompletedQuizIDs...)
	}

	// The streak counts consecutive correct answers across quizzes; a wrong
	// answer resets it
	for _, a := range sub.Answers {
		if a.Correct {
			streak++
		} else {
			streak = 0
		}
	}

	if !contains(quizIDs, sub.QuizID) {
		quizIDs = append(quizIDs, sub.QuizID)
	}
	if sub.TopicCompleted && sub.Topic != "" && !contains(topics, sub.Topic) {
		topics = append(topics, sub.Topic)
	}

	if topics == nil {
		topics = []string{}
	}

	return models.ProgressPatch{
		TotalPoints:      &totalPoints,
		CompletedQuizzes: &completedQuizzes,
		CurrentStreak:    &streak,
		CompletedTopics:  topics,
		CompletedQuizIDs: quizIDs,
		LastActivity:     &now,
	}
}

func beforeTopics(p *models.UserProgress) []string {
	if p == nil {
		return nil
	}
	return p.CompletedTopics
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
