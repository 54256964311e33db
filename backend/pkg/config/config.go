package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "tgosint/backend/pkg/errors"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port    string
	Env     string
	DataDir string // Root folder holding one sub-folder per subject

	// Analysis
	TopMentions   int  // Rows shown for mention rankings
	TopReplies    int  // Rows shown for reply-pair rankings
	ArchiveRepair bool // Try to salvage malformed archive files before skipping them

	// Telegram directory lookups
	TelegramAPIURL    string
	TelegramBotToken  string // Empty disables network lookups
	LookupTimeout     time.Duration
	LookupConcurrency int
	LookupRate        float64 // Requests per second

	// Neo4j export
	Neo4jExport   bool
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DataDir:           getEnv("DATA_DIR", "data"),
		TopMentions:       getEnvInt("TOP_MENTIONS", 20),
		TopReplies:        getEnvInt("TOP_REPLIES", 10),
		ArchiveRepair:     getEnvBool("ARCHIVE_REPAIR", false),
		TelegramAPIURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		LookupTimeout:     time.Duration(getEnvInt("LOOKUP_TIMEOUT", 10)) * time.Second,
		LookupConcurrency: getEnvInt("LOOKUP_CONCURRENCY", 4),
		LookupRate:        getEnvFloat("LOOKUP_RATE", 5),
		Neo4jExport:       getEnvBool("NEO4J_EXPORT", false),
		Neo4jURI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:         getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return apperrors.NewConfigMissingRequired("DATA_DIR")
	}
	if c.TopMentions <= 0 {
		return apperrors.NewConfigValidationFailed("TOP_MENTIONS", "must be positive")
	}
	if c.TopReplies <= 0 {
		return apperrors.NewConfigValidationFailed("TOP_REPLIES", "must be positive")
	}
	if c.LookupTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("LOOKUP_TIMEOUT", "must be positive")
	}
	if c.LookupConcurrency <= 0 {
		return apperrors.NewConfigValidationFailed("LOOKUP_CONCURRENCY", "must be positive")
	}
	if c.LookupRate <= 0 {
		return apperrors.NewConfigValidationFailed("LOOKUP_RATE", "must be positive")
	}
	if c.TelegramBotToken != "" && c.TelegramAPIURL == "" {
		return apperrors.NewConfigMissingRequired("TELEGRAM_API_URL")
	}
	// Neo4j settings only matter once export is switched on
	if c.Neo4jExport {
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LookupEnabled reports whether identity lookups may hit the network.
func (c *Config) LookupEnabled() bool {
	return c.TelegramBotToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
