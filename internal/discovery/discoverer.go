package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
	errpkg "github.com/veranemoloko/mdk-downloader/internal/errors"
	"github.com/veranemoloko/mdk-downloader/internal/metrics"
)

const maxListingSize = 16 << 20

// Discoverer scrapes the build identifiers published under a coarse identifier.
type Discoverer struct {
	httpClient *http.Client
	layout     domain.Layout
	userAgent  string
	logger     *slog.Logger
}

// NewDiscoverer creates a Discoverer whose requests are bounded by timeout.
func NewDiscoverer(layout domain.Layout, timeout time.Duration, userAgent string, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		httpClient: &http.Client{Timeout: timeout},
		layout:     layout,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Discover fetches and parses the listing page of coarse. It never returns an
// error: failures are reported through Discovery.Err with an empty version set.
func (d *Discoverer) Discover(ctx context.Context, coarse string) domain.Discovery {
	result := domain.Discovery{Coarse: coarse}
	listingURL := d.layout.ListingURL(coarse)

	metrics.DiscoveryScans.Inc()

	fines, err := d.scan(ctx, listingURL, coarse)
	if err != nil {
		result.Err = err
		metrics.DiscoveryFailures.Inc()
		d.logger.Debug("listing scan failed", "coarse", coarse, "url", listingURL, "error", err)
		return result
	}

	result.Fines = fines
	metrics.VersionsDiscovered.Add(float64(len(fines)))
	d.logger.Debug("listing scanned", "coarse", coarse, "url", listingURL, "versions", len(fines))
	return result
}

func (d *Discoverer) scan(ctx context.Context, listingURL, coarse string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", errpkg.ErrListingStatus, resp.Status)
	}

	return ExtractVersions(io.LimitReader(resp.Body, maxListingSize), coarse)
}
