package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel  string
	LogFormat string

	// Session tokens
	JWTSecret  string
	SessionTTL time.Duration

	// Completion provider
	CompletionProvider   string
	GeminiAPIKey         string
	GeminiModel          string
	OpenAIAPIKey         string
	OpenAIModel          string
	CompletionConcurrent int
	CompletionTimeout    time.Duration
	ChatHistoryWindow    int

	// Section tracking
	SectionPolicy string

	// Redis (optional, pub/sub fan-out)
	RedisURL string

	// Content
	ContentPath string

	// Contact form
	FormspreeFormID string
	ContactTo       string
	SMTPHost        string
	SMTPPort        string
	SMTPUser        string
	SMTPPass        string
	SMTPFrom        string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "console"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		SessionTTL:           getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),
		CompletionProvider:   getEnvOrDefault("COMPLETION_PROVIDER", "gemini"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:         getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		CompletionConcurrent: getEnvAsIntOrDefault("COMPLETION_CONCURRENT_REQUESTS", 5),
		CompletionTimeout:    getEnvAsDurationOrDefault("COMPLETION_TIMEOUT", 30*time.Second),
		ChatHistoryWindow:    getEnvAsIntOrDefault("CHAT_HISTORY_WINDOW", 20),
		SectionPolicy:        getEnvOrDefault("SECTION_POLICY", "last-writer"),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		ContentPath:          getEnvOrDefault("CONTENT_PATH", ""),
		FormspreeFormID:      getEnvOrDefault("FORMSPREE_FORM_ID", ""),
		ContactTo:            getEnvOrDefault("CONTACT_TO", ""),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "noreply@portfolio.local"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go duration strings ("45s", "2h").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
