package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds server configuration, read from environment variables.
type Config struct {
	ListenAddr     string
	DBPath         string
	Backend        string
	Model          string
	BaseURL        string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	GenTimeout     time.Duration
	TokenWarnLimit int
	Debug          bool
}

// Load reads configuration from the environment with sensible
// defaults: a local ollama-style server on the usual port.
func Load() Config {
	return Config{
		ListenAddr:     envOrDefault("CHATBOT_ADDR", ":8100"),
		DBPath:         envOrDefault("CHATBOT_DB_PATH", "chatbot.db"),
		Backend:        envOrDefault("CHATBOT_BACKEND", "local"),
		Model:          envOrDefault("CHATBOT_MODEL", "llama3.1:8b"),
		BaseURL:        envOrDefault("CHATBOT_BASE_URL", "http://localhost:11434/v1/"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GenTimeout:     time.Duration(envIntOrDefault("CHATBOT_GEN_TIMEOUT_SECONDS", 30)) * time.Second,
		TokenWarnLimit: envIntOrDefault("CHATBOT_TOKEN_WARN_LIMIT", 6144),
		Debug:          envBoolOrDefault("DEBUG", false),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBoolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
