package service

import (
	"path/filepath"
	"testing"

	"stemquest/internal/database"
	"stemquest/internal/repository"
)

// testEnv wires repositories and services over a temporary SQLite database
type testEnv struct {
	db           *database.DB
	progress     *repository.ProgressRepository
	results      *repository.ResultRepository
	activities   *repository.ActivityRepository
	achievements *repository.AchievementRepository
	settings     *repository.SettingsRepository
	content      *repository.ContentRepository

	achievementSvc *AchievementService
	quizSvc        *QuizService
	backupSvc      *BackupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:           db,
		progress:     repository.NewProgressRepository(db),
		results:      repository.NewResultRepository(db),
		activities:   repository.NewActivityRepository(db),
		achievements: repository.NewAchievementRepository(db),
		settings:     repository.NewSettingsRepository(db),
		content:      repository.NewContentRepository(db),
	}

	env.achievementSvc = NewAchievementService(env.achievements, env.results, env.activities)
	if err := env.achievementSvc.Seed(); err != nil {
		t.Fatalf("Failed to seed achievements: %v", err)
	}

	env.quizSvc = NewQuizService(db, env.progress, env.results, env.activities, env.achievementSvc)
	env.backupSvc = NewBackupService(db, env.progress, env.results, env.activities,
		env.achievements, env.settings, env.content)

	return env
}
