package firms

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hazewatch/hotspot-etl/internal/domain"
)

// VIIRSFeed is one optional per-sensor GeoJSON source. It implements
// the secondary-feed contract: any failure (network, timeout, decode)
// yields an unavailable result for this sensor only, never an error.
type VIIRSFeed struct {
	client *Client
	sensor string
	path   string
}

// VIIRSSNPP returns the Suomi-NPP 24h feed for Indonesia.
func (c *Client) VIIRSSNPP() *VIIRSFeed {
	return &VIIRSFeed{client: c, sensor: domain.SensorVIIRSSNPP, path: pathVIIRSSNPP}
}

// VIIRSNOAA20 returns the NOAA-20 24h feed for Indonesia.
func (c *Client) VIIRSNOAA20() *VIIRSFeed {
	return &VIIRSFeed{client: c, sensor: domain.SensorVIIRSNOAA20, path: pathVIIRSNOAA20}
}

// Name returns the sensor identifier used for logging and metrics.
func (f *VIIRSFeed) Name() string { return f.sensor }

// Live fetches the sensor's 24h feature collection.
func (f *VIIRSFeed) Live(ctx context.Context) domain.SourceResult {
	c := f.client

	body, err := fetch(ctx, c.feed, f.path, f.sensor, c.metrics)
	if err != nil {
		c.metrics.SourceFailures.WithLabelValues(f.sensor).Inc()
		return domain.Unavailable(f.sensor, err)
	}

	table, err := parseFeatureCollection(body, f.sensor)
	if err != nil {
		c.metrics.SourceFailures.WithLabelValues(f.sensor).Inc()
		return domain.Unavailable(f.sensor, fmt.Errorf("parse %s: %w", f.sensor, err))
	}

	c.metrics.SourceRows.WithLabelValues(f.sensor).Add(float64(table.Len()))
	c.logger.Debug("fetched geojson feed", "source", f.sensor, "rows", table.Len())
	return domain.OK(f.sensor, table)
}

// featureCollection mirrors the FIRMS country API shape: only the
// property bag of each feature is consumed.
type featureCollection struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// parseFeatureCollection flattens each feature's property bag into a
// hotspot. VIIRS brightness bands (bright_ti4/ti5) are not comparable
// to MODIS brightness, so the table carries no brightness column and
// the unifier's intersection handles the rest.
func parseFeatureCollection(body []byte, sensor string) (domain.Table, error) {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return domain.Table{}, fmt.Errorf("decode feature collection: %w", err)
	}

	table := domain.NewTable(domain.ColLatitude, domain.ColLongitude,
		domain.ColConfidence, domain.ColFRP, domain.ColAcqTime)

	for _, f := range fc.Features {
		p := f.Properties
		h := domain.Hotspot{
			Sensor:     sensor,
			Latitude:   propFloat(p, "latitude"),
			Longitude:  propFloat(p, "longitude"),
			Brightness: domain.Null(),
			Confidence: domain.ParseConfidence(propString(p, "confidence")),
			FRP:        domain.OrZero(propFloat(p, "frp")),
			AcqTime:    domain.ParseAcqTime(propString(p, "acq_date"), propString(p, "acq_time")),
		}
		h.ID = domain.GenerateID(sensor, h.Latitude, h.Longitude, h.AcqTime)
		table.Rows = append(table.Rows, h)
	}
	return table, nil
}

// propFloat coerces a property value to float64, null on anything it
// cannot read as a number.
func propFloat(p map[string]any, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case string:
		return domain.ParseFloatOrNull(v)
	default:
		return domain.Null()
	}
}

// propString renders a property value as a string. JSON numbers lose
// their decoration ("47", not "47.00") so HHMM zero-padding still works.
func propString(p map[string]any, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
