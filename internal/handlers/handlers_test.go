package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/service"
)

// handlerEnv wires repositories, services, and handlers over a temporary
// SQLite database
type handlerEnv struct {
	db         *database.DB
	auth       *AuthHandler
	middleware *Middleware
	progress   *ProgressHandler
	quiz       *QuizHandler
	activity   *ActivityHandler
	reward     *AchievementHandler
	content    *ContentHandler
	settings   *SettingsHandler
	backup     *BackupHandler

	authService *service.AuthService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
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

	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	contentRepo := repository.NewContentRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)

	sms, err := service.NewSMSService("", "", "", "", false)
	if err != nil {
		t.Fatalf("Failed to create SMS service: %v", err)
	}
	tokens := security.NewTokenIssuer("test-secret", time.Hour)

	authService := service.NewAuthService(userRepo, sessionRepo, otpRepo, sms, tokens,
		time.Hour, 5*time.Minute, 5)

	achievementSvc := service.NewAchievementService(achievementRepo, resultRepo, activityRepo)
	if err := achievementSvc.Seed(); err != nil {
		t.Fatalf("Failed to seed achievements: %v", err)
	}
	quizSvc := service.NewQuizService(db, progressRepo, resultRepo, activityRepo, achievementSvc)
	backupSvc := service.NewBackupService(db, progressRepo, resultRepo, activityRepo,
		achievementRepo, settingsRepo, contentRepo)

	return &handlerEnv{
		db:          db,
		auth:        NewAuthHandler(authService, nil, ""),
		middleware:  NewMiddleware(authService, security.NewRateLimiter(5, time.Minute)),
		progress:    NewProgressHandler(progressRepo),
		quiz:        NewQuizHandler(quizSvc, resultRepo),
		activity:    NewActivityHandler(activityRepo),
		reward:      NewAchievementHandler(achievementSvc),
		content:     NewContentHandler(contentRepo),
		settings:    NewSettingsHandler(settingsRepo),
		backup:      NewBackupHandler(backupSvc),
		authService: authService,
	}
}

// jsonRequest builds a request with a JSON body
func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a recorded JSON response body
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}
