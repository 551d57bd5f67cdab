package config

import (
	"os"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Port string
	DB   DB
	Chat Chat
}

type DB struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Chat struct {
	// GeminiAPIKey may be empty: the chat service then runs with an
	// unavailable agent and every turn gets the fallback reply.
	GeminiAPIKey string
	GeminiModel  string
	AgentTimeout time.Duration
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnvDefault("APP_PORT", ":8080"),
		DB: DB{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
		},
		Chat: Chat{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			AgentTimeout: getEnvDuration("AGENT_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}
