package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stemquest/internal/config"
	"stemquest/internal/database"
	"stemquest/internal/handlers"
	"stemquest/internal/offline"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	contentRepo := repository.NewContentRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	webCacheRepo := repository.NewWebCacheRepository(db)

	// Initialize services
	smsService, err := service.NewSMSService(cfg.AWSRegion, cfg.SESFromEmail,
		cfg.SESFromName, cfg.SMSGatewayDomain, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize SMS service: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set, issued access tokens use an empty key")
	}
	tokenIssuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionDuration)

	authService := service.NewAuthService(userRepo, sessionRepo, otpRepo,
		smsService, tokenIssuer, cfg.SessionDuration, cfg.OTPExpiry, cfg.OTPMaxAttempts)

	achievementService := service.NewAchievementService(achievementRepo, resultRepo, activityRepo)
	if err := achievementService.Seed(); err != nil {
		log.Fatalf("Failed to seed achievement catalog: %v", err)
	}

	quizService := service.NewQuizService(db, progressRepo, resultRepo, activityRepo, achievementService)
	backupService := service.NewBackupService(db, progressRepo, resultRepo, activityRepo,
		achievementRepo, settingsRepo, contentRepo)

	var googleOAuth *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleOAuth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	// Initialize handlers
	otpLimiter := security.NewRateLimiter(5, time.Minute)
	middleware := handlers.NewMiddleware(authService, otpLimiter)
	authHandler := handlers.NewAuthHandler(authService, googleOAuth, cfg.OAuthRedirectBaseURL)
	progressHandler := handlers.NewProgressHandler(progressRepo)
	quizHandler := handlers.NewQuizHandler(quizService, resultRepo)
	activityHandler := handlers.NewActivityHandler(activityRepo)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	contentHandler := handlers.NewContentHandler(contentRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	backupHandler := handlers.NewBackupHandler(backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/otp/send", middleware.RateLimit(authHandler.SendCode))
	mux.HandleFunc("POST /api/auth/otp/verify", middleware.RateLimit(authHandler.VerifyCode))
	mux.HandleFunc("POST /api/auth/grade", middleware.RequireAuth(authHandler.SelectGrade))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleOAuthCallback)

	// Progress and quiz routes
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progressHandler.Get))
	mux.HandleFunc("PATCH /api/progress", middleware.RequireAuth(progressHandler.Update))
	mux.HandleFunc("POST /api/quizzes/complete", middleware.RequireGrade(quizHandler.Complete))
	mux.HandleFunc("GET /api/results", middleware.RequireAuth(quizHandler.ListResults))
	mux.HandleFunc("GET /api/activities", middleware.RequireAuth(activityHandler.List))
	mux.HandleFunc("GET /api/achievements", middleware.RequireAuth(achievementHandler.List))

	// Content cache routes
	mux.HandleFunc("GET /api/content", middleware.RequireGrade(contentHandler.List))
	mux.HandleFunc("GET /api/content/{id}", middleware.RequireGrade(contentHandler.Get))
	mux.HandleFunc("PUT /api/content/{id}", middleware.RequireGrade(contentHandler.Put))
	mux.HandleFunc("DELETE /api/content/{id}", middleware.RequireGrade(contentHandler.Delete))

	// Settings and preferences routes
	mux.HandleFunc("GET /api/settings", middleware.RequireAuth(settingsHandler.Get))
	mux.HandleFunc("PATCH /api/settings", middleware.RequireAuth(settingsHandler.Update))
	mux.HandleFunc("POST /api/settings/reset", middleware.RequireAuth(settingsHandler.Reset))
	mux.HandleFunc("GET /api/preferences/{name}", middleware.RequireAuth(settingsHandler.GetPreference))
	mux.HandleFunc("PUT /api/preferences/{name}", middleware.RequireAuth(settingsHandler.SetPreference))
	mux.HandleFunc("DELETE /api/preferences/{name}", middleware.RequireAuth(settingsHandler.DeletePreference))

	// Backup, stats, and reset routes
	mux.HandleFunc("GET /api/export", middleware.RequireAuth(backupHandler.Export))
	mux.HandleFunc("POST /api/import", middleware.RequireAuth(backupHandler.Import))
	mux.HandleFunc("GET /api/stats", middleware.RequireAuth(backupHandler.Stats))
	mux.HandleFunc("POST /api/reset", middleware.RequireAuth(backupHandler.Reset))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Offline gateway proxying the app origin
	gateway, err := offline.NewGateway(cfg.UpstreamURL, webCacheRepo)
	if err != nil {
		log.Fatalf("Failed to initialize offline gateway: %v", err)
	}
	if err := gateway.Activate(); err != nil {
		log.Printf("Warning: Failed to retire stale cache partitions: %v", err)
	}
	if len(cfg.PrecacheURLs) > 0 {
		if err := gateway.Install(cfg.PrecacheURLs); err != nil {
			log.Printf("Warning: Failed to precache app shell: %v", err)
		}
	}

	gatewayServer := &http.Server{
		Addr:        ":" + cfg.GatewayPort,
		Handler:     handlers.Logging(gateway),
		IdleTimeout: 60 * time.Second,
	}

	// Start background cleanup
	go cleanupLoop(authService, contentRepo)

	go func() {
		log.Printf("Offline gateway starting on http://localhost%s (upstream %s)", gatewayServer.Addr, cfg.UpstreamURL)
		if err := gatewayServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gateway failed: %v", err)
		}
	}()

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupLoop periodically removes expired sessions, verification codes,
// and content cache entries
func cleanupLoop(authService *service.AuthService, contentRepo *repository.ContentRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		authService.CleanupExpired()

		removed, err := contentRepo.DeleteExpired()
		if err != nil {
			log.Printf("Failed to sweep expired content: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Removed %d expired content entries", removed)
		}
	}
}
