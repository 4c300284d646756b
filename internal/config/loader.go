package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
)

const envPrefix = "MDK"

// Option overrides a loaded setting, typically from a command line flag.
type Option func(*Config)

// Load reads an optional .env file, processes MDK_* environment variables,
// applies opts, resolves the version list and validates the result.
// An explicitly named envFile must exist; the implicit ./.env may be absent.
func Load(envFile string, opts ...Option) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.resolveVersions(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", errpkg.ErrConfigNotFound, envFile)
		}
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// resolveVersions picks the version list: explicit list, then file, then defaults.
func (c *Config) resolveVersions() error {
	c.Versions = normalizeVersions(c.Versions)
	if len(c.Versions) > 0 {
		return nil
	}

	if c.VersionsFile != "" {
		versions, err := LoadVersionsFile(c.VersionsFile)
		if err != nil {
			return err
		}
		c.Versions = versions
		return nil
	}

	c.Versions = DefaultVersions()
	return nil
}

// CreateDirs ensures the destination root exists.
func CreateDirs(cfg *Config) error {
	if err := os.MkdirAll(cfg.DestRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", cfg.DestRoot, err)
	}
	slog.Debug("directory created or verified", "path", cfg.DestRoot)
	return nil
}

// SetupLogger configures the global slog logger based on configuration.
// Supports "json" or "text" formats and log levels: debug, info, warn, error.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
