// Package openaq fetches current air-quality readings from the OpenAQ
// v2 API. The data is contextual only: no measurement feeds the risk
// model, and an empty result set is informational rather than an error.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hazewatch/hotspot-etl/internal/observability"
)

// DefaultBaseURL is the production OpenAQ v2 host.
const DefaultBaseURL = "https://api.openaq.org"

const (
	pathLatest   = "/v2/latest"
	source       = "openaq"
	resultLimit  = "1000"
	countryID    = "ID"
	fetchTimeout = 15 * time.Second
)

// Station is one monitoring location with its latest readings, keyed
// by parameter name (pm25, pm10, …).
type Station struct {
	City         string             `json:"city"`
	Location     string             `json:"location"`
	Measurements map[string]float64 `json:"measurements"`
}

// Client talks to OpenAQ.
type Client struct {
	http    *resty.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates an OpenAQ client against the given base URL.
func NewClient(baseURL string, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(fetchTimeout),
		logger:  logger,
		metrics: metrics,
	}
}

// latestResponse mirrors the /v2/latest payload shape.
type latestResponse struct {
	Results []struct {
		Location     string `json:"location"`
		City         string `json:"city"`
		Measurements []struct {
			Parameter string  `json:"parameter"`
			Value     float64 `json:"value"`
		} `json:"measurements"`
	} `json:"results"`
}

// Latest fetches the newest readings for Indonesian stations. An empty
// result set returns an empty slice with no error.
func (c *Client) Latest(ctx context.Context) ([]Station, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"country": countryID, "limit": resultLimit}).
		Get(pathLatest)
	c.metrics.SourceFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SourceFailures.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.IsError() {
		c.metrics.SourceFailures.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode())
	}

	var body latestResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		c.metrics.SourceFailures.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	stations := make([]Station, 0, len(body.Results))
	for _, r := range body.Results {
		s := Station{
			City:         r.City,
			Location:     r.Location,
			Measurements: make(map[string]float64, len(r.Measurements)),
		}
		if s.City == "" {
			s.City = "Unknown"
		}
		for _, m := range r.Measurements {
			s.Measurements[m.Parameter] = m.Value
		}
		stations = append(stations, s)
	}

	c.metrics.SourceRows.WithLabelValues(source).Add(float64(len(stations)))
	c.logger.Debug("fetched air quality", "source", source, "stations", len(stations))
	return stations, nil
}
