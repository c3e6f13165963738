package service

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"stemquest/internal/models"
)

func TestBackupExport(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.quizSvc.CompleteQuiz(submission()); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	backup, err := env.backupSvc.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if backup.Version != models.BackupVersion {
		t.Errorf("Expected version %s, got %s", models.BackupVersion, backup.Version)
	}
	if backup.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
	if backup.Data.Progress == nil {
		t.Fatal("Expected progress in the export")
	}
	if len(backup.Data.Results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(backup.Data.Results))
	}
	if len(backup.Data.Achievements) == 0 {
		t.Error("Expected the achievement catalog in the export")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.quizSvc.CompleteQuiz(submission()); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}
	sub2 := submission()
	sub2.QuizID = "math-002"
	if _, err := env.quizSvc.CompleteQuiz(sub2); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	var buf bytes.Buffer
	if err := env.backupSvc.ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo failed: %v", err)
	}

	resultsBefore, _ := env.results.Count()
	activitiesBefore, _ := env.activities.Count()
	progressBefore, err := env.progress.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Restore into a wiped database
	if err := env.backupSvc.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if err := env.achievementSvc.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := env.backupSvc.ImportFrom(&buf); err != nil {
		t.Fatalf("ImportFrom failed: %v", err)
	}

	resultsAfter, _ := env.results.Count()
	if resultsAfter != resultsBefore {
		t.Errorf("Expected %d results after import, got %d", resultsBefore, resultsAfter)
	}
	activitiesAfter, _ := env.activities.Count()
	if activitiesAfter != activitiesBefore {
		t.Errorf("Expected %d activities after import, got %d", activitiesBefore, activitiesAfter)
	}

	progressAfter, err := env.progress.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if progressAfter == nil {
		t.Fatal("Expected progress after import")
	}
	if progressAfter.TotalPoints != progressBefore.TotalPoints {
		t.Errorf("Expected %d points, got %d", progressBefore.TotalPoints, progressAfter.TotalPoints)
	}
	if progressAfter.Level != progressBefore.Level {
		t.Errorf("Expected level %d, got %d", progressBefore.Level, progressAfter.Level)
	}

	earned := 0
	achievements, err := env.achievements.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, a := range achievements {
		if a.Earned {
			earned++
		}
	}
	if earned == 0 {
		t.Error("Expected earned achievements restored")
	}
}

func TestBackupImportIdempotent(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.quizSvc.CompleteQuiz(submission()); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	backup, err := env.backupSvc.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Importing on top of existing data must not duplicate records
	if err := env.backupSvc.Import(backup); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if err := env.backupSvc.Import(backup); err != nil {
		t.Fatalf("Second import failed: %v", err)
	}

	count, err := env.results.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 result after repeated imports, got %d", count)
	}
}

func TestBackupImportRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	backup := &models.Backup{
		Version:   "2.0",
		Timestamp: time.Now(),
	}
	if err := env.backupSvc.Import(backup); err == nil {
		t.Fatal("Expected an unsupported version to fail")
	}

	// A payload that fails validation must leave the stores untouched
	bad := &models.Backup{
		Version:   models.BackupVersion,
		Timestamp: time.Now(),
		Data: models.BackupData{
			Results: []models.QuizResult{{QuizID: "x"}},
		},
	}
	if err := env.backupSvc.Import(bad); err == nil {
		t.Fatal("Expected a result without id to fail")
	}

	count, err := env.results.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected nothing written, got %d results", count)
	}
}

func TestBackupImportFromRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	if err := env.backupSvc.ImportFrom(bytes.NewBufferString("not json")); err == nil {
		t.Fatal("Expected malformed JSON to fail")
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.backupSvc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Level != 1 || stats.TotalPoints != 0 {
		t.Errorf("Expected empty stats at level 1, got %+v", stats)
	}

	if _, err := env.quizSvc.CompleteQuiz(submission()); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	stats, err = env.backupSvc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CompletedQuizzes != 1 {
		t.Errorf("Expected 1 completed quiz, got %d", stats.CompletedQuizzes)
	}
	if stats.LoggedResults != 1 {
		t.Errorf("Expected 1 logged result, got %d", stats.LoggedResults)
	}
	if stats.EarnedAchievements == 0 {
		t.Error("Expected at least one earned achievement")
	}
	if stats.EstimatedBytes == 0 {
		t.Error("Expected a nonzero size estimate")
	}
}

func TestExportIsValidJSON(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.quizSvc.CompleteQuiz(submission()); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	var buf bytes.Buffer
	if err := env.backupSvc.ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo failed: %v", err)
	}

	var decoded models.Backup
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if decoded.Version != models.BackupVersion {
		t.Errorf("Expected version %s, got %s", models.BackupVersion, decoded.Version)
	}
}
