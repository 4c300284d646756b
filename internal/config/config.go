package config

import (
	"fmt"
	"time"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
	"github.com/veranemoloko/mdk-downloader/internal/validation"
)

// Config holds all application configuration settings.
type Config struct {
	DestRoot         string `envconfig:"DEST_ROOT" default:"./mdks" validate:"required"`
	ProgressFileName string `envconfig:"PROGRESS_FILE" default:".download_progress.json" validate:"required,excludesall=/\\"`

	ListingBaseURL string `envconfig:"LISTING_BASE_URL" default:"https://files.minecraftforge.net/net/minecraftforge/forge" validate:"required,direct_host"`
	MavenBaseURL   string `envconfig:"MAVEN_BASE_URL" default:"https://maven.minecraftforge.net/net/minecraftforge/forge" validate:"required,direct_host"`
	Product        string `envconfig:"PRODUCT" default:"forge" validate:"required,excludesall=/\\"`
	Suffix         string `envconfig:"SUFFIX" default:"mdk" validate:"required,excludesall=/\\"`
	DirPrefix      string `envconfig:"DIR_PREFIX" default:"MC_" validate:"excludesall=/\\"`

	Versions     []string `envconfig:"VERSIONS"`
	VersionsFile string   `envconfig:"VERSIONS_FILE"`

	Workers            int           `envconfig:"WORKERS" default:"10" validate:"min=1,max=256"`
	DiscoveryWorkers   int           `envconfig:"DISCOVERY_WORKERS" default:"1" validate:"min=1,max=64"`
	CheckpointInterval int           `envconfig:"CHECKPOINT_INTERVAL" default:"10" validate:"min=1"`
	DiscoveryTimeout   time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"30s" validate:"gt=0"`
	DownloadTimeout    time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"60s" validate:"gt=0"`
	UserAgent          string        `envconfig:"USER_AGENT" default:"mdk-downloader"`

	StatusAddr      string        `envconfig:"STATUS_ADDR"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	DryRun bool `envconfig:"DRY_RUN" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(c.Versions) == 0 {
		return errpkg.ErrNoVersions
	}

	if err := validation.ValidateVersions(c.Versions); err != nil {
		return err
	}

	return nil
}

// Layout returns the path and URL scheme derived from c.
func (c *Config) Layout() domain.Layout {
	return domain.Layout{
		Root:           c.DestRoot,
		ProgressFile:   c.ProgressFileName,
		ListingBaseURL: c.ListingBaseURL,
		MavenBaseURL:   c.MavenBaseURL,
		Product:        c.Product,
		Suffix:         c.Suffix,
		DirPrefix:      c.DirPrefix,
	}
}
