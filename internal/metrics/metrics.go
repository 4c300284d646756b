package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DiscoveryScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_discovery_scans_total",
		Help: "Total number of listing pages scanned",
	})

	DiscoveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_discovery_failures_total",
		Help: "Total number of listing pages that could not be fetched or parsed",
	})

	VersionsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_versions_discovered_total",
		Help: "Total number of fine identifiers discovered",
	})

	DownloadsSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_downloads_success_total",
		Help: "Total number of successful downloads",
	})

	DownloadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_downloads_failed_total",
		Help: "Total number of failed downloads",
	})

	DownloadsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_downloads_skipped_total",
		Help: "Total number of tasks skipped as already completed",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mdk_downloader_download_duration_seconds",
		Help:    "Download duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_download_bytes_total",
		Help: "Total bytes downloaded",
	})

	CheckpointSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdk_downloader_checkpoint_saves_total",
		Help: "Total number of progress snapshots written",
	})
)
