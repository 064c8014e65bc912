package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Column names a field a sensor feed may or may not provide. Consumers
// must reference columns by name; the order of a column set is never
// meaningful.
type Column string

const (
	ColLatitude   Column = "latitude"
	ColLongitude  Column = "longitude"
	ColLat        Column = "lat" // post-unification alias of latitude
	ColLon        Column = "lon" // post-unification alias of longitude
	ColBrightness Column = "brightness"
	ColConfidence Column = "confidence"
	ColFRP        Column = "frp"
	ColAcqTime    Column = "acq_datetime"
	ColRisk       Column = "risk"
	ColAIRisk     Column = "ai_risk"
)

// Sensor identifiers for the supported FIRMS feeds.
const (
	SensorMODIS       = "modis"
	SensorVIIRSSNPP   = "viirs-snpp"
	SensorVIIRSNOAA20 = "viirs-noaa20"
)

// Hotspot is one satellite-detected thermal anomaly. Float fields use
// NaN for null; AcqTime uses the zero time. Which fields are actually
// populated is governed by the owning Table's column set.
type Hotspot struct {
	ID         string    `json:"id"`
	Sensor     string    `json:"sensor"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	Brightness float64   `json:"brightness"`
	Confidence float64   `json:"confidence"`
	FRP        float64   `json:"frp"`
	AcqTime    time.Time `json:"acq_datetime"`

	Risk   int `json:"risk"`
	AIRisk int `json:"ai_risk"`

	ColorHex string `json:"color_hex,omitempty"`
	ColorRGB [3]int `json:"color,omitempty"`
}

// MarshalJSON renders null sentinels as JSON null: encoding/json
// rejects NaN floats, and a zero acquisition time is a null timestamp,
// not a real instant.
func (h Hotspot) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID         string     `json:"id"`
		Sensor     string     `json:"sensor"`
		Latitude   *float64   `json:"lat"`
		Longitude  *float64   `json:"lon"`
		Brightness *float64   `json:"brightness"`
		Confidence *float64   `json:"confidence"`
		FRP        *float64   `json:"frp"`
		AcqTime    *time.Time `json:"acq_datetime"`
		Risk       int        `json:"risk"`
		AIRisk     int        `json:"ai_risk"`
		ColorHex   string     `json:"color_hex,omitempty"`
		ColorRGB   *[3]int    `json:"color,omitempty"`
	}
	opt := func(v float64) *float64 {
		if IsNull(v) {
			return nil
		}
		return &v
	}
	w := wire{
		ID:         h.ID,
		Sensor:     h.Sensor,
		Latitude:   opt(h.Latitude),
		Longitude:  opt(h.Longitude),
		Brightness: opt(h.Brightness),
		Confidence: opt(h.Confidence),
		FRP:        opt(h.FRP),
		Risk:       h.Risk,
		AIRisk:     h.AIRisk,
		ColorHex:   h.ColorHex,
	}
	if !h.AcqTime.IsZero() {
		t := h.AcqTime
		w.AcqTime = &t
	}
	if h.ColorHex != "" {
		rgb := h.ColorRGB
		w.ColorRGB = &rgb
	}
	return json.Marshal(w)
}

// IsNull reports whether a float field holds the null sentinel.
func IsNull(v float64) bool { return math.IsNaN(v) }

// Null returns the float null sentinel.
func Null() float64 { return math.NaN() }

// OrZero collapses null to 0, keeping threshold checks and feature
// vectors total.
func OrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// ColumnSet tracks which columns a table carries.
type ColumnSet map[Column]struct{}

// NewColumnSet builds a set from the given columns.
func NewColumnSet(cols ...Column) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set.
func (s ColumnSet) Has(c Column) bool {
	_, ok := s[c]
	return ok
}

// Add returns s with c included.
func (s ColumnSet) Add(c Column) ColumnSet {
	s[c] = struct{}{}
	return s
}

// Intersect returns the columns present in both sets.
func (s ColumnSet) Intersect(other ColumnSet) ColumnSet {
	out := make(ColumnSet)
	for c := range s {
		if other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the column names in lexical order, for logging and
// stable test output only.
func (s ColumnSet) Sorted() []Column {
	out := make([]Column, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Table is an ordered collection of hotspots sharing one column set.
// Row order is insertion order; the unifier preserves adapter order
// when concatenating.
type Table struct {
	Columns ColumnSet
	Rows    []Hotspot
}

// NewTable creates an empty table with the given columns.
func NewTable(cols ...Column) Table {
	return Table{Columns: NewColumnSet(cols...)}
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Project narrows the table to the given column set. Row data is not
// rewritten; a projected-away column is simply no longer part of the
// contract and must not be read.
func (t Table) Project(cols ColumnSet) Table {
	return Table{Columns: t.Columns.Intersect(cols), Rows: t.Rows}
}

// Field returns the numeric value of a column for this hotspot. The
// second return is false for unknown or non-numeric columns. ColLat and
// ColLon resolve to the same storage as latitude/longitude: the
// unifier's rename is a column-set operation, not a data move.
func (h Hotspot) Field(c Column) (float64, bool) {
	switch c {
	case ColLatitude, ColLat:
		return h.Latitude, true
	case ColLongitude, ColLon:
		return h.Longitude, true
	case ColBrightness:
		return h.Brightness, true
	case ColConfidence:
		return h.Confidence, true
	case ColFRP:
		return h.FRP, true
	case ColRisk:
		return float64(h.Risk), true
	case ColAIRisk:
		return float64(h.AIRisk), true
	default:
		return 0, false
	}
}

// GenerateID produces a deterministic ID from the detection's identity
// fields. Re-fetching the same detection yields the same ID, which makes
// downstream upserts and Kafka-key dedupe replay-safe.
func GenerateID(sensor string, lat, lon float64, acqTime time.Time) string {
	input := fmt.Sprintf("%s|%.5f|%.5f|%d", sensor, lat, lon, acqTime.UTC().Unix())
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if sensor == "" {
		return short
	}
	return sensor + "-" + short
}
