// Package config provides centralized default values for FlapTrack
package config

import (
	"os"
	"strconv"
	"time"
)

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvFloat reads environment variable as float with fallback
func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Server Configuration
var (
	Port = getEnvString("PORT", "8080")
)

// Presence Reporting Configuration
var (
	// Fixed UTC offset applied to every calendar-boundary computation.
	// Threaded explicitly into the splitter and aggregators, never a hidden default.
	LocalUTCOffsetHours = getEnvInt("LOCAL_UTC_OFFSET_HOURS", 1)

	// Cap on events echoed back in a report, most-recent-first (display concern).
	RecentEventsCap = getEnvInt("RECENT_EVENTS_CAP", 50)
)

// Storage Configuration
var (
	SQLitePath    = getEnvString("SQLITE_PATH", "./data/flaptrack.db")
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken    = getEnvString("TURSO_AUTH_TOKEN", "")

	// Captured frames referenced by events live under this directory.
	FrameDir = getEnvString("FRAME_DIR", "./data/frames")
)

// Classifier Configuration
var (
	GeminiAPIKey        = getEnvString("GEMINI_API_KEY", "")
	VisionCredentials   = getEnvString("VISION_CREDENTIALS_FILE", "")
	ConfidenceFloor     = getEnvFloat("CONFIDENCE_FLOOR", 0.5)
	CropX               = getEnvInt("CROP_X", 0)
	CropY               = getEnvInt("CROP_Y", 0)
	CropWidth           = getEnvInt("CROP_WIDTH", 320)
	CropHeight          = getEnvInt("CROP_HEIGHT", 80)
	ClassifierEnabled   = getEnvString("CLASSIFIER", "vision") // "vision" or "none"
	GeminiModel         = getEnvString("GEMINI_MODEL", "gemini-2.5-flash")
	ClassifyTimeoutSecs = getEnvInt("CLASSIFY_TIMEOUT_SECONDS", 30)
)

// Auth Configuration
var (
	JWTSecret = getEnvString("JWT_SECRET", "")
	// bcrypt hash of the admin password; empty disables the mutating endpoints
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	TokenLifetime     = time.Duration(getEnvInt("TOKEN_LIFETIME_HOURS", 24)) * time.Hour
)

// Cache Configuration
var (
	ReportCacheTTL = time.Duration(getEnvInt("REPORT_CACHE_TTL_MINUTES", 10)) * time.Minute
)

// Email Configuration
var (
	SummaryEmailTo = getEnvString("SUMMARY_EMAIL_TO", "")
)
