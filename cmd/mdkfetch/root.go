package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	h "github.com/veranemoloko/mdk-downloader/internal/api/http"
	cfgpkg "github.com/veranemoloko/mdk-downloader/internal/config"
	"github.com/veranemoloko/mdk-downloader/internal/discovery"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
	"github.com/veranemoloko/mdk-downloader/internal/report"
	repo "github.com/veranemoloko/mdk-downloader/internal/repository"
	svc "github.com/veranemoloko/mdk-downloader/internal/service"
	"github.com/veranemoloko/mdk-downloader/internal/storage"
	"github.com/veranemoloko/mdk-downloader/internal/worker"
)

type rootFlags struct {
	envFile      string
	root         string
	workers      int
	versions     []string
	versionsFile string
	statusAddr   string
	dryRun       bool
	logLevel     string
	logFormat    string
}

func newRootCommand() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "mdkfetch",
		Short: "Download every published Forge MDK archive into a local mirror",
		Long: `mdkfetch scans the Forge listing page of each configured Minecraft version,
downloads the MDK archive of every Forge build found and records progress so
that an interrupted run resumes where it stopped.

Settings are read from MDK_* environment variables and an optional .env file.
Flags override both.`,
		Args: func(cmd *cobra.Command, args []string) error {
			return withCode(ExitInvalidArgs, cobra.NoArgs(cmd, args))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, f)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(ExitInvalidArgs, err)
	})

	flags := cmd.Flags()
	flags.StringVar(&f.envFile, "env-file", "", "path to a .env file (default ./.env when present)")
	flags.StringVar(&f.root, "root", "", "destination root directory")
	flags.IntVarP(&f.workers, "workers", "w", 0, "number of concurrent downloads")
	flags.StringSliceVar(&f.versions, "versions", nil, "comma separated Minecraft versions to scan")
	flags.StringVar(&f.versionsFile, "versions-file", "", "YAML file listing the Minecraft versions to scan")
	flags.StringVar(&f.statusAddr, "status-addr", "", "listen address of the status server, disabled when empty")
	flags.BoolVar(&f.dryRun, "dry-run", false, "discover and plan without downloading")
	flags.StringVar(&f.logLevel, "loglevel", "", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "logformat", "", "log format: text, json")

	return cmd
}

// options turns the flags that were set explicitly into config overrides.
func (f rootFlags) options(cmd *cobra.Command) []cfgpkg.Option {
	var opts []cfgpkg.Option
	changed := cmd.Flags().Changed

	if changed("root") {
		opts = append(opts, func(c *cfgpkg.Config) { c.DestRoot = f.root })
	}
	if changed("workers") {
		opts = append(opts, func(c *cfgpkg.Config) { c.Workers = f.workers })
	}
	if changed("versions") {
		opts = append(opts, func(c *cfgpkg.Config) { c.Versions = f.versions })
	}
	if changed("versions-file") {
		opts = append(opts, func(c *cfgpkg.Config) {
			c.VersionsFile = f.versionsFile
			c.Versions = nil
		})
	}
	if changed("status-addr") {
		opts = append(opts, func(c *cfgpkg.Config) { c.StatusAddr = f.statusAddr })
	}
	if changed("dry-run") {
		opts = append(opts, func(c *cfgpkg.Config) { c.DryRun = f.dryRun })
	}
	if changed("loglevel") {
		opts = append(opts, func(c *cfgpkg.Config) { c.LogLevel = f.logLevel })
	}
	if changed("logformat") {
		opts = append(opts, func(c *cfgpkg.Config) { c.LogFormat = f.logFormat })
	}
	return opts
}

func runFetch(cmd *cobra.Command, f rootFlags) error {
	cfg, err := cfgpkg.Load(f.envFile, f.options(cmd)...)
	if err != nil {
		return withCode(ExitInvalidArgs, err)
	}

	logger := cfgpkg.SetupLogger(cfg, os.Stderr)
	logger.Debug("configuration loaded successfully", "versions", len(cfg.Versions), "workers", cfg.Workers)

	if err := cfgpkg.CreateDirs(cfg); err != nil {
		return withCode(ExitStorageError, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout := cfg.Layout()
	progressStore := repo.NewProgressStorage(layout.ProgressPath(), logger)
	discoverer := discovery.NewDiscoverer(layout, cfg.DiscoveryTimeout, cfg.UserAgent, logger)
	fetcher := worker.NewDownloadWorker(storage.NewFileStorage(layout.Root), layout, cfg.DownloadTimeout, cfg.UserAgent, logger)

	orchestrator := svc.NewOrchestrator(
		progressStore,
		discoverer,
		fetcher,
		report.NewPrinter(cmd.OutOrStdout()),
		svc.Options{
			Root:               layout.Root,
			Versions:           cfg.Versions,
			Workers:            cfg.Workers,
			DiscoveryWorkers:   cfg.DiscoveryWorkers,
			CheckpointInterval: cfg.CheckpointInterval,
			DryRun:             cfg.DryRun,
		},
		logger,
	)
	logger.Info("run started", "run_id", orchestrator.RunID(), "root", layout.Root, "dry_run", cfg.DryRun)

	if cfg.StatusAddr != "" {
		server := startStatusServer(cfg.StatusAddr, orchestrator, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("status server shutdown failed", "error", err)
			}
		}()
	}

	stats, err := orchestrator.Run(ctx)
	switch {
	case errors.Is(err, errpkg.ErrProgressSave):
		return withCode(ExitStorageError, err)
	case errors.Is(err, context.Canceled):
		logger.Warn("run interrupted, progress saved", "run_id", orchestrator.RunID(), "completed", stats.Completed, "total", stats.Total)
		return withCode(ExitInterrupted, err)
	case err != nil:
		return err
	}

	logger.Info("run finished",
		"run_id", orchestrator.RunID(),
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return nil
}

func startStatusServer(addr string, provider h.StatusProvider, logger *slog.Logger) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           h.NewRouter(provider, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("status server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", "error", err)
		}
	}()

	return server
}
