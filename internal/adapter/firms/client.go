// Package firms fetches NASA FIRMS active-fire feeds: the mandatory
// MODIS global CSVs and the optional per-sensor VIIRS country GeoJSON
// documents. CSV fetch failures propagate to the caller; GeoJSON
// failures degrade to an unavailable source result.
package firms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hazewatch/hotspot-etl/internal/observability"
)

// DefaultBaseURL is the production FIRMS host.
const DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov"

// Feed paths relative to the base URL.
const (
	pathMODIS7d     = "/data/active_fire/MODIS_C6_1_Global_7d.csv"
	pathMODIS24h    = "/data/active_fire/MODIS_C6_1_Global_24h.csv"
	pathVIIRSSNPP   = "/api/country/json/viirs-snpp/24h/IDN"
	pathVIIRSNOAA20 = "/api/country/json/viirs-noaa20/24h/IDN"
)

// Client talks to FIRMS. The global CSV bodies run to tens of
// megabytes, so their timeout is configurable and defaults to none;
// the GeoJSON feeds are capped at the configured feed timeout (10s in
// production) because they are optional and must fail fast.
type Client struct {
	csv     *resty.Client
	feed    *resty.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a FIRMS client against the given base URL. A zero
// csvTimeout leaves the CSV fetches unbounded.
func NewClient(baseURL string, csvTimeout, feedTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		csv:     resty.New().SetBaseURL(baseURL).SetTimeout(csvTimeout),
		feed:    resty.New().SetBaseURL(baseURL).SetTimeout(feedTimeout),
		logger:  logger,
		metrics: metrics,
	}
}

// fetch retrieves a feed body, recording per-source metrics.
func fetch(ctx context.Context, c *resty.Client, path, source string, metrics *observability.Metrics) ([]byte, error) {
	start := time.Now()
	resp, err := c.R().SetContext(ctx).Get(path)
	metrics.SourceFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode())
	}
	return resp.Body(), nil
}
