package firms

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/hazewatch/hotspot-etl/internal/domain"
)

// CSV column headers consumed from the MODIS global files. Anything
// else in the file (scan, track, satellite, version, …) is ignored.
const (
	hdrLatitude   = "latitude"
	hdrLongitude  = "longitude"
	hdrBrightness = "brightness"
	hdrConfidence = "confidence"
	hdrFRP        = "frp"
	hdrAcqDate    = "acq_date"
	hdrAcqTime    = "acq_time"
)

// TrainingWindow fetches the 7-day MODIS global CSV. This feed is
// mandatory; errors propagate and abort the run.
func (c *Client) TrainingWindow(ctx context.Context) (domain.Table, error) {
	return c.fetchCSV(ctx, pathMODIS7d, "modis-7d")
}

// Live fetches the 24-hour MODIS global CSV. Also mandatory.
func (c *Client) Live(ctx context.Context) (domain.Table, error) {
	return c.fetchCSV(ctx, pathMODIS24h, "modis-24h")
}

func (c *Client) fetchCSV(ctx context.Context, path, source string) (domain.Table, error) {
	body, err := fetch(ctx, c.csv, path, source, c.metrics)
	if err != nil {
		c.metrics.SourceFailures.WithLabelValues(source).Inc()
		return domain.Table{}, err
	}

	table, err := parseCSV(body)
	if err != nil {
		c.metrics.SourceFailures.WithLabelValues(source).Inc()
		return domain.Table{}, fmt.Errorf("parse %s: %w", source, err)
	}

	c.metrics.SourceRows.WithLabelValues(source).Add(float64(table.Len()))
	c.logger.Debug("fetched csv feed", "source", source, "rows", table.Len())
	return table, nil
}

// parseCSV turns a MODIS CSV body into a hotspot table. The column set
// reflects what the header actually provides; frp coerces to 0,
// confidence to null, and an unparseable date/time pair gives a null
// timestamp with the row retained.
func parseCSV(body []byte) (domain.Table, error) {
	r := csv.NewReader(bytes.NewReader(body))
	header, err := r.Read()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	has := func(name string) bool {
		_, ok := idx[name]
		return ok
	}
	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	cols := domain.NewColumnSet()
	if has(hdrLatitude) {
		cols.Add(domain.ColLatitude)
	}
	if has(hdrLongitude) {
		cols.Add(domain.ColLongitude)
	}
	if has(hdrBrightness) {
		cols.Add(domain.ColBrightness)
	}
	if has(hdrConfidence) {
		cols.Add(domain.ColConfidence)
	}
	if has(hdrFRP) {
		cols.Add(domain.ColFRP)
	}
	if has(hdrAcqDate) && has(hdrAcqTime) {
		cols.Add(domain.ColAcqTime)
	}

	table := domain.Table{Columns: cols}
	records, err := r.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read records: %w", err)
	}

	for _, rec := range records {
		h := domain.Hotspot{
			Sensor:     domain.SensorMODIS,
			Latitude:   domain.ParseFloatOrNull(field(rec, hdrLatitude)),
			Longitude:  domain.ParseFloatOrNull(field(rec, hdrLongitude)),
			Brightness: domain.ParseFloatOrNull(field(rec, hdrBrightness)),
			Confidence: domain.ParseConfidence(field(rec, hdrConfidence)),
			FRP:        domain.ParseFloatOrZero(field(rec, hdrFRP)),
			AcqTime:    domain.ParseAcqTime(field(rec, hdrAcqDate), field(rec, hdrAcqTime)),
		}
		h.ID = domain.GenerateID(h.Sensor, h.Latitude, h.Longitude, h.AcqTime)
		table.Rows = append(table.Rows, h)
	}
	return table, nil
}
