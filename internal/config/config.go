package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr string
	GinMode  string

	DBDriver   string
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	SessionSecret string

	ChangeFeed     string
	NATSURL        string
	LocalCachePath string

	MailAPIURL string
	MailAPIKey string
	MailFrom   string

	CalendarID           string
	CalendarClientID     string
	CalendarClientSecret string
	CalendarRefreshToken string
	CalendarBaseURL      string

	BlobURL               string
	BlobKey               string
	BlobBucket            string
	InlineAttachmentBytes int64

	ReminderSchedule string
	NotifyQueueSize  int
	OpenAIAPIKey     string
}

func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "release"),
		DBPassword: getEnv("DB_PASSWORD", "releasepassword"),
		DBName:     getEnv("DB_NAME", "release_planner"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		ChangeFeed:     getEnv("CHANGE_FEED", "memory"),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		LocalCachePath: getEnv("LOCAL_CACHE_PATH", "release-cache.db"),

		MailAPIURL: getEnv("MAIL_API_URL", ""),
		MailAPIKey: getEnv("MAIL_API_KEY", ""),
		MailFrom:   getEnv("MAIL_FROM", "Release Planner <noreply@example.com>"),

		CalendarID:           getEnv("CALENDAR_ID", "primary"),
		CalendarClientID:     getEnv("CALENDAR_CLIENT_ID", ""),
		CalendarClientSecret: getEnv("CALENDAR_CLIENT_SECRET", ""),
		CalendarRefreshToken: getEnv("CALENDAR_REFRESH_TOKEN", ""),
		CalendarBaseURL:      getEnv("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),

		BlobURL:               getEnv("BLOB_URL", ""),
		BlobKey:               getEnv("BLOB_KEY", ""),
		BlobBucket:            getEnv("BLOB_BUCKET", "attachments"),
		InlineAttachmentBytes: getEnvInt64("INLINE_ATTACHMENT_MAX_BYTES", 512*1024),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		NotifyQueueSize:  int(getEnvInt64("NOTIFY_QUEUE_SIZE", 256)),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
	}
}

// LocalOnly reports whether the service runs without a remote store, on
// the local cache alone.
func (c *Config) LocalOnly() bool {
	return c.DBDriver == "none"
}

// CalendarConfigured reports whether calendar credentials are present
func (c *Config) CalendarConfigured() bool {
	return c.CalendarClientID != "" && c.CalendarClientSecret != "" && c.CalendarRefreshToken != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
