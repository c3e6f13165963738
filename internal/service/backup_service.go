package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/validation"
)

// BackupService handles export and import of all learner state
type BackupService struct {
	db              *database.DB
	progressRepo    *repository.ProgressRepository
	resultRepo      *repository.ResultRepository
	activityRepo    *repository.ActivityRepository
	achievementRepo *repository.AchievementRepository
	settingsRepo    *repository.SettingsRepository
	contentRepo     *repository.ContentRepository
}

// NewBackupService creates a new backup service
func NewBackupService(
	db *database.DB,
	progressRepo *repository.ProgressRepository,
	resultRepo *repository.ResultRepository,
	activityRepo *repository.ActivityRepository,
	achievementRepo *repository.AchievementRepository,
	settingsRepo *repository.SettingsRepository,
	contentRepo *repository.ContentRepository,
) *BackupService {
	return &BackupService{
		db:              db,
		progressRepo:    progressRepo,
		resultRepo:      resultRepo,
		activityRepo:    activityRepo,
		achievementRepo: achievementRepo,
		settingsRepo:    settingsRepo,
		contentRepo:     contentRepo,
	}
}

// Export collects the state of every store into a single envelope
func (s *BackupService) Export() (*models.Backup, error) {
	progress, err := s.progressRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}

	results, err := s.resultRepo.List(0)
	if err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}

	activities, err := s.activityRepo.List(0)
	if err != nil {
		return nil, fmt.Errorf("failed to export activities: %w", err)
	}

	achievements, err := s.achievementRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to export achievements: %w", err)
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}

	return &models.Backup{
		Version:   models.BackupVersion,
		Timestamp: time.Now(),
		Data: models.BackupData{
			Progress:     progress,
			Results:      results,
			Activities:   activities,
			Achievements: achievements,
			Settings:     settings,
		},
	}, nil
}

// ExportTo writes the export as indented JSON
func (s *BackupService) ExportTo(w io.Writer) error {
	backup, err := s.Export()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import validates a backup and writes it into the stores in one
// transaction. Nothing is written when validation fails. Records are
// matched by id, so importing the same backup twice does not duplicate.
func (s *BackupService) Import(backup *models.Backup) error {
	if err := validation.ValidateBackup(backup); err != nil {
		return err
	}

	return s.db.WithTx(func(tx *database.Tx) error {
		if backup.Data.Progress != nil {
			p := backup.Data.Progress
			patch := models.ProgressPatch{
				TotalPoints:      &p.TotalPoints,
				CompletedQuizzes: &p.CompletedQuizzes,
				CurrentStreak:    &p.CurrentStreak,
				CompletedTopics:  p.CompletedTopics,
				CompletedQuizIDs: p.CompletedQuizIDs,
			}
			if !p.LastActivity.IsZero() {
				patch.LastActivity = &p.LastActivity
			}
			if patch.CompletedTopics == nil {
				patch.CompletedTopics = []string{}
			}
			if patch.CompletedQuizIDs == nil {
				patch.CompletedQuizIDs = []string{}
			}
			if _, err := s.progressRepo.WithTx(tx).Save(patch); err != nil {
				return fmt.Errorf("failed to import progress: %w", err)
			}
		}

		resultRepo := s.resultRepo.WithTx(tx)
		for i := range backup.Data.Results {
			if err := resultRepo.Upsert(&backup.Data.Results[i]); err != nil {
				return fmt.Errorf("failed to import result %s: %w", backup.Data.Results[i].UID, err)
			}
		}

		activityRepo := s.activityRepo.WithTx(tx)
		for i := range backup.Data.Activities {
			if err := activityRepo.Upsert(&backup.Data.Activities[i]); err != nil {
				return fmt.Errorf("failed to import activity %s: %w", backup.Data.Activities[i].UID, err)
			}
		}

		achievementRepo := s.achievementRepo.WithTx(tx)
		for i := range backup.Data.Achievements {
			if err := achievementRepo.Upsert(&backup.Data.Achievements[i]); err != nil {
				return fmt.Errorf("failed to import achievement %s: %w", backup.Data.Achievements[i].ID, err)
			}
		}

		if backup.Data.Settings != nil {
			if err := s.settingsRepo.WithTx(tx).Replace(backup.Data.Settings); err != nil {
				return fmt.Errorf("failed to import settings: %w", err)
			}
		}

		return nil
	})
}

// ImportFrom decodes and imports a JSON export
func (s *BackupService) ImportFrom(r io.Reader) error {
	var backup models.Backup
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	return s.Import(&backup)
}

// Stats summarizes the stored state
type Stats struct {
	TotalPoints        int   `json:"totalPoints"`
	Level              int   `json:"level"`
	CurrentStreak      int   `json:"currentStreak"`
	CompletedQuizzes   int   `json:"completedQuizzes"`
	LoggedResults      int   `json:"loggedResults"`
	LoggedActivities   int   `json:"loggedActivities"`
	EarnedAchievements int   `json:"earnedAchievements"`
	CachedEntries      int   `json:"cachedEntries"`
	EstimatedBytes     int64 `json:"estimatedBytes"`
}

// Stats collects counts across every store
func (s *BackupService) Stats() (*Stats, error) {
	stats := &Stats{}

	progress, err := s.progressRepo.Get()
	if err != nil {
		return nil, err
	}
	if progress != nil {
		stats.TotalPoints = progress.TotalPoints
		stats.Level = progress.Level
		stats.CurrentStreak = progress.CurrentStreak
		stats.CompletedQuizzes = progress.CompletedQuizzes
	} else {
		stats.Level = 1
	}

	if stats.LoggedResults, err = s.resultRepo.Count(); err != nil {
		return nil, err
	}
	if stats.LoggedActivities, err = s.activityRepo.Count(); err != nil {
		return nil, err
	}

	achievements, err := s.achievementRepo.List()
	if err != nil {
		return nil, err
	}
	for _, a := range achievements {
		if a.Earned {
			stats.EarnedAchievements++
		}
	}

	if stats.CachedEntries, err = s.contentRepo.Count(); err != nil {
		return nil, err
	}

	// Serialized export size approximates the footprint of the stored state
	var counter countingWriter
	if err := s.ExportTo(&counter); err != nil {
		return nil, err
	}
	stats.EstimatedBytes = counter.n

	return stats, nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// ClearAll wipes every store in one transaction. The achievement catalog
// survives with earned state cleared.
func (s *BackupService) ClearAll() error {
	err := s.db.WithTx(func(tx *database.Tx) error {
		if err := s.progressRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		if err := s.resultRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset results: %w", err)
		}
		if err := s.activityRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset activities: %w", err)
		}
		if err := s.achievementRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset achievements: %w", err)
		}
		if err := s.settingsRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		if err := s.settingsRepo.WithTx(tx).ResetPreferences(); err != nil {
			return fmt.Errorf("failed to reset preferences: %w", err)
		}
		if err := s.contentRepo.WithTx(tx).Reset(); err != nil {
			return fmt.Errorf("failed to reset content cache: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("All learner data cleared")
	return nil
}
