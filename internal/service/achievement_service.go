package service

import (
	"fmt"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// Catalog returns the fixed achievement catalog seeded at startup
func Catalog() []models.Achievement {
	return []models.Achievement{
		{
			ID:          "first-quiz",
			Name:        "First Steps",
			Description: "Complete your first quiz",
			Icon:        "\U0001F3AF",
			Requirement: "Complete 1 quiz",
			Points:      10,
			Category:    models.AchievementCategoryQuiz,
		},
		{
			ID:          "math-master",
			Name:        "Math Master",
			Description: "Complete 10 math quizzes",
			Icon:        "\U0001F9EE",
			Requirement: "Complete 10 math quizzes",
			Points:      50,
			Category:    models.AchievementCategorySubject,
		},
		{
			ID:          "biology-expert",
			Name:        "Biology Expert",
			Description: "Complete 10 biology quizzes",
			Icon:        "\U0001F9EC",
			Requirement: "Complete 10 biology quizzes",
			Points:      50,
			Category:    models.AchievementCategorySubject,
		},
		{
			ID:          "perfect-score",
			Name:        "Perfectionist",
			Description: "Score 100% on a quiz",
			Icon:        "⭐",
			Requirement: "Score 100% on any quiz",
			Points:      25,
			Category:    models.AchievementCategorySpecial,
		},
		{
			ID:          "level-5",
			Name:        "Rising Star",
			Description: "Reach level 5",
			Icon:        "\U0001F31F",
			Requirement: "Reach level 5",
			Points:      50,
			Category:    models.AchievementCategoryLevel,
		},
		{
			ID:          "speed-learner",
			Name:        "Speed Learner",
			Description: "Complete 3 quizzes in one day",
			Icon:        "⚡",
			Requirement: "Complete 3 quizzes within 24 hours",
			Points:      30,
			Category:    models.AchievementCategoryStreak,
		},
	}
}

// AchievementService evaluates and awards achievements
type AchievementService struct {
	achievementRepo *repository.AchievementRepository
	resultRepo      *repository.ResultRepository
	activityRepo    *repository.ActivityRepository
}

// NewAchievementService creates a new achievement service
func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	resultRepo *repository.ResultRepository,
	activityRepo *repository.ActivityRepository,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		resultRepo:      resultRepo,
		activityRepo:    activityRepo,
	}
}

// WithTx returns a copy of the service with its repositories bound to the
// given transaction
func (s *AchievementService) WithTx(tx *database.Tx) *AchievementService {
	return &AchievementService{
		achievementRepo: s.achievementRepo.WithTx(tx),
		resultRepo:      s.resultRepo.WithTx(tx),
		activityRepo:    s.activityRepo.WithTx(tx),
	}
}

// Seed writes the catalog into the store, keeping any earned state
func (s *AchievementService) Seed() error {
	return s.achievementRepo.Seed(Catalog())
}

// List returns the full catalog with earned state
func (s *AchievementService) List() ([]models.Achievement, error) {
	return s.achievementRepo.List()
}

// Evaluate checks every unearned achievement against the state after a quiz
// completion and awards the ones whose condition now holds. Returns the
// newly earned achievements.
func (s *AchievementService) Evaluate(
	progress *models.UserProgress,
	result *models.QuizResult,
) ([]models.Achievement, error) {
	achievements, err := s.achievementRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	now := time.Now()
	var earned []models.Achievement
	for _, a := range achievements {
		if a.Earned {
			continue
		}

		met, err := s.conditionMet(a.ID, progress, result, now)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}

		flipped, err := s.achievementRepo.MarkEarned(a.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to award %s: %w", a.ID, err)
		}
		if flipped {
			a.Earned = true
			a.EarnedDate = &now
			earned = append(earned, a)
		}
	}

	return earned, nil
}

func (s *AchievementService) conditionMet(
	id string,
	progress *models.UserProgress,
	result *models.QuizResult,
	now time.Time,
) (bool, error) {
	switch id {
	case "first-quiz":
		return progress.CompletedQuizzes >= 1, nil

	case "math-master":
		count, err := s.resultRepo.CountBySubject("math")
		if err != nil {
			return false, err
		}
		return count >= 10, nil

	case "biology-expert":
		count, err := s.resultRepo.CountBySubject("biology")
		if err != nil {
			return false, err
		}
		return count >= 10, nil

	case "perfect-score":
		return result != nil && result.Score >= 100, nil

	case "level-5":
		return progress.Level >= 5, nil

	case "speed-learner":
		count, err := s.activityRepo.CountSince(
			models.ActivityQuizCompleted, now.Add(-24*time.Hour))
		if err != nil {
			return false, err
		}
		// The activity for the current quiz is already logged
		return count >= 3, nil
	}

	return false, nil
}
