// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds all static application configuration read at startup.
type Config struct {
	Port        string
	FrontendURL string

	StoreBackend string
	DBPath       string
	RedisAddr    string
	RedisDB      int
	SessionTTL   time.Duration

	ModelURL  string
	ModelName string

	Voice       string
	VoiceRate   string
	VoiceVolume string

	Features Features
}

// Features toggles optional pipeline stages. The service is one pipeline with
// optional stages, not two forked variants.
type Features struct {
	// Speech enables text-to-speech synthesis of replies and /api/voices.
	Speech bool
	// Leads enables contact extraction, meeting signals, response shaping
	// and the meeting/slots/leads endpoints.
	Leads bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		DBPath:       getEnv("DB_PATH", "./data/eva.db"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour),

		ModelURL:  getEnv("MODEL_URL", "http://localhost:11434/api/chat"),
		ModelName: getEnv("MODEL_NAME", "llama3:8b"),

		Voice:       getEnv("TTS_VOICE", "es-MX-DaliaNeural"),
		VoiceRate:   getEnv("TTS_RATE", "+0%"),
		VoiceVolume: getEnv("TTS_VOLUME", "+0%"),

		Features: Features{
			Speech: getEnvBool("FEATURE_SPEECH", false),
			Leads:  getEnvBool("FEATURE_LEADS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.StoreBackend {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, sqlite, redis; got %q", c.StoreBackend)
	}
	if c.StoreBackend == StoreSQLite && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty with the sqlite backend")
	}
	if c.StoreBackend == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty with the redis backend")
	}
	if c.ModelURL == "" {
		return fmt.Errorf("MODEL_URL cannot be empty")
	}
	if c.ModelName == "" {
		return fmt.Errorf("MODEL_NAME cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
