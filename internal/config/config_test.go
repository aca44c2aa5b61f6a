package config

import (
	"testing"
)

// chatEnv lists every variable Load reads so each case starts from a known
// environment.
var chatEnv = []string{
	"PORT", "ENV", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	"GEMINI_TRANSPORT", "REDIS_URL", "SESSION_SECRET", "SESSION_TTL_HOURS",
	"CHAT_RATE_LIMIT_PER_MINUTE",
}

func setChatEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range chatEnv {
		t.Setenv(key, env[key])
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"GEMINI_API_KEY": "test-key"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.GeminiAPIKey != "test-key" {
					t.Errorf("Expected API key 'test-key', got %q", cfg.GeminiAPIKey)
				}
				if cfg.Port != "8080" {
					t.Errorf("Expected default port 8080, got %q", cfg.Port)
				}
				if cfg.GeminiModel != "gemini-1.5-flash" {
					t.Errorf("Expected default model, got %q", cfg.GeminiModel)
				}
				if cfg.GeminiTransport != "rest" {
					t.Errorf("Expected default transport 'rest', got %q", cfg.GeminiTransport)
				}
				if cfg.GeminiBaseURL != "https://generativelanguage.googleapis.com" {
					t.Errorf("Unexpected base URL %q", cfg.GeminiBaseURL)
				}
				if cfg.RedisURL != "" {
					t.Errorf("Expected no Redis URL, got %q", cfg.RedisURL)
				}
				if cfg.SessionTTLHours != 24 || cfg.ChatRateLimitPerMin != 30 {
					t.Errorf("Expected TTL 24 and limit 30, got %d and %d", cfg.SessionTTLHours, cfg.ChatRateLimitPerMin)
				}
				if len(cfg.SessionSecret) != 64 {
					t.Errorf("Expected generated 64-char secret, got %d chars", len(cfg.SessionSecret))
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"GEMINI_API_KEY":             "test-key",
				"PORT":                       "9090",
				"GEMINI_MODEL":               "gemini-1.5-pro",
				"GEMINI_BASE_URL":            "http://localhost:9999/",
				"GEMINI_TRANSPORT":           "SDK",
				"SESSION_SECRET":             "s3cret",
				"SESSION_TTL_HOURS":          "2",
				"CHAT_RATE_LIMIT_PER_MINUTE": "0",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9090" || cfg.GeminiModel != "gemini-1.5-pro" {
					t.Errorf("Expected port and model overrides, got %q and %q", cfg.Port, cfg.GeminiModel)
				}
				if cfg.GeminiBaseURL != "http://localhost:9999" {
					t.Errorf("Expected trailing slash trimmed, got %q", cfg.GeminiBaseURL)
				}
				if cfg.GeminiTransport != "sdk" {
					t.Errorf("Expected transport lowercased to 'sdk', got %q", cfg.GeminiTransport)
				}
				if cfg.SessionSecret != "s3cret" {
					t.Errorf("Expected configured secret, got %q", cfg.SessionSecret)
				}
				if cfg.SessionTTLHours != 2 || cfg.ChatRateLimitPerMin != 0 {
					t.Errorf("Expected TTL 2 and limit 0, got %d and %d", cfg.SessionTTLHours, cfg.ChatRateLimitPerMin)
				}
			},
		},
		{
			name: "non-numeric integers fall back",
			env: map[string]string{
				"GEMINI_API_KEY":             "test-key",
				"SESSION_TTL_HOURS":          "a day",
				"CHAT_RATE_LIMIT_PER_MINUTE": "lots",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.SessionTTLHours != 24 || cfg.ChatRateLimitPerMin != 30 {
					t.Errorf("Expected TTL 24 and limit 30, got %d and %d", cfg.SessionTTLHours, cfg.ChatRateLimitPerMin)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setChatEnv(t, tc.env)
			tc.check(t, Load())
		})
	}
}

func TestLoad_Panics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{}},
		{"unknown transport", map[string]string{"GEMINI_API_KEY": "test-key", "GEMINI_TRANSPORT": "grpc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setChatEnv(t, tc.env)

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Expected Load to panic")
				}
			}()
			Load()
		})
	}
}
