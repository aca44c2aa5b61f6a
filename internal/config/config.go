package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	GeminiTransport string // "rest" | "sdk"

	// Redis (optional; in-memory stores are used when empty)
	RedisURL string

	// Sessions
	SessionSecret   string
	SessionTTLHours int

	// Rate limiting
	ChatRateLimitPerMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:        mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:       strings.TrimRight(getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		GeminiTransport:     strings.ToLower(getEnvOrDefault("GEMINI_TRANSPORT", "rest")),
		RedisURL:            getEnvOrDefault("REDIS_URL", ""),
		SessionSecret:       getEnvOrDefault("SESSION_SECRET", ""),
		SessionTTLHours:     getEnvAsIntOrDefault("SESSION_TTL_HOURS", 24),
		ChatRateLimitPerMin: getEnvAsIntOrDefault("CHAT_RATE_LIMIT_PER_MINUTE", 30),
	}

	// Sessions are process-local unless Redis is configured, so a random
	// secret only costs existing cookies on restart.
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
	}

	if cfg.GeminiTransport != "rest" && cfg.GeminiTransport != "sdk" {
		panic(fmt.Sprintf("GEMINI_TRANSPORT must be \"rest\" or \"sdk\", got %q", cfg.GeminiTransport))
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

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	return hex.EncodeToString(b)
}
