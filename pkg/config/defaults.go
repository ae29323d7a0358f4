// Package config provides centralized default values for the Haven Wellness backend
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loading configuration overrides from .env file...")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvIntSlice(key string, defaultValue []int) []int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}

	var values []int
	for _, part := range strings.Split(valStr, ",") {
		val, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			log.Printf("Config override ignored: %s contains non-numeric value %q", key, part)
			return defaultValue
		}
		values = append(values, val)
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	AllowedOrigins     []string

	// Database Configuration
	DBDriver                 string
	DBPath                   string
	DBAuthToken              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Booking Experiment
	ABBookingExperiment bool
	ContactFormPath     string
	ExternalBookingURL  string

	// Visitor / Consent Cookies
	VisitorCookieName    string
	VisitorCookieMaxAge  int
	ConsentCookieName    string
	SessionTTL           time.Duration
	SessionCleanupPeriod time.Duration

	// Interaction Tracking
	ScrollDepthThresholds []int
	LinkTextMaxLength     int

	// Promotional Dialogs
	PromoDismissDurationDays int
	PromoDisplayDelaySeconds int

	// Analytics Sink (GA4 Measurement Protocol)
	GA4MeasurementID string
	GA4APISecret     string
	GA4Endpoint      string
	SinkTimeout      time.Duration

	// Admin Dashboard
	JWTSecret         string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	// Content Cache
	ContentCacheTTL time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	AllowedOrigins = strings.Split(getEnvString("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:4321,http://127.0.0.1:3000"), ",")

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "haven.db")
	DBAuthToken = getEnvString("DB_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Booking Experiment
	ABBookingExperiment = getEnvBool("AB_BOOKING_EXPERIMENT", false)
	ContactFormPath = getEnvString("CONTACT_FORM_PATH", "/contact")
	ExternalBookingURL = getEnvString("EXTERNAL_BOOKING_URL", "")

	// Cookies / Sessions
	VisitorCookieName = getEnvString("VISITOR_COOKIE_NAME", "hw_visitor")
	VisitorCookieMaxAge = getEnvInt("VISITOR_COOKIE_MAX_AGE_DAYS", 365) * 24 * 60 * 60
	ConsentCookieName = getEnvString("CONSENT_COOKIE_NAME", "cookie_consent")
	SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	SessionCleanupPeriod = getEnvDuration("SESSION_CLEANUP_PERIOD", 30*time.Minute)

	// Interaction Tracking
	ScrollDepthThresholds = getEnvIntSlice("SCROLL_DEPTH_THRESHOLDS", []int{25, 50, 75, 90})
	LinkTextMaxLength = getEnvInt("LINK_TEXT_MAX_LENGTH", 100)

	// Promotional Dialogs
	PromoDismissDurationDays = getEnvInt("PROMO_DISMISS_DURATION_DAYS", 7)
	PromoDisplayDelaySeconds = getEnvInt("PROMO_DISPLAY_DELAY_SECONDS", 5)

	// Analytics Sink
	GA4MeasurementID = getEnvString("GA4_MEASUREMENT_ID", "")
	GA4APISecret = getEnvString("GA4_API_SECRET", "")
	GA4Endpoint = getEnvString("GA4_ENDPOINT", "https://www.google-analytics.com/mp/collect")
	SinkTimeout = getEnvDuration("SINK_TIMEOUT", 3*time.Second)

	// Admin Dashboard
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour)

	// Content Cache
	ContentCacheTTL = time.Duration(getEnvInt("CONTENT_CACHE_TTL_HOURS", 24)) * time.Hour
}

// GetSlowQueryThreshold returns the threshold above which queries are logged as slow.
func GetSlowQueryThreshold() time.Duration {
	return SlowQueryThreshold
}
