package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	GatewayPort    string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	SessionDuration time.Duration
	OTPExpiry       time.Duration
	OTPMaxAttempts  int
	JWTSecret       string

	// Upstream origin the offline gateway proxies to, and the URLs the
	// gateway precaches at startup
	UpstreamURL  string
	PrecacheURLs []string

	// OTP delivery via Amazon SES and a carrier email-to-SMS gateway
	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
	SMSGatewayDomain string

	// Optional "sign in with Google" flow
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	Debug bool
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		GatewayPort:    getEnv("GATEWAY_PORT", "8090"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./stemquest.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		OTPExpiry:       getDuration("OTP_EXPIRY", 5*time.Minute),
		OTPMaxAttempts:  5,
		JWTSecret:       getEnv("JWT_SECRET", ""),

		UpstreamURL:  getEnv("UPSTREAM_URL", "http://localhost:5173"),
		PrecacheURLs: getList("PRECACHE_URLS", "/"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "STEM Quest"),
		SMSGatewayDomain: getEnv("SMS_GATEWAY_DOMAIN", ""),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),

		Debug: getEnv("DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList reads a comma separated environment variable or returns a default value
func getList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)

	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// getDuration reads a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
