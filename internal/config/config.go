package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Openings a session can begin with.
const (
	OpeningIntro       = "intro"       // Headmistress's branching welcome from the story graph
	OpeningOrientation = "orientation" // Linear first-visit script
)

type Config struct {
	Environment     string
	LogLevel        slog.Level
	LogFile         string // Empty logs to stderr
	RedisURL        string // Empty disables event broadcasting
	StoryFile       string // Empty uses the embedded campus graph
	OrientationFile string // Empty uses the embedded orientation script
	Opening         string
	PlayerName      string // Pre-fills character setup
	MetricsAddr     string // Empty disables the /metrics endpoint
}

// Load reads configuration from the environment. Each env file is loaded
// first without overriding variables that are already set; with no files
// given, a .env in the working directory is used when present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:         getEnv("LOG_FILE", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		StoryFile:       getEnv("STORY_FILE", ""),
		OrientationFile: getEnv("ORIENTATION_FILE", ""),
		Opening:         strings.ToLower(getEnv("OPENING", OpeningIntro)),
		PlayerName:      getEnv("PLAYER_NAME", ""),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Opening {
	case OpeningIntro, OpeningOrientation:
	default:
		return fmt.Errorf("invalid OPENING %q: must be %q or %q", c.Opening, OpeningIntro, OpeningOrientation)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
