// Package domain models NASA FIRMS active-fire detection data.
//
// # Data Sources
//
// Hotspot records come from the NASA Fire Information for Resource
// Management System (FIRMS), https://firms.modaps.eosdis.nasa.gov/.
// Two delivery formats are consumed:
//
//	MODIS global CSV:   24h and 7d rolling windows, one row per detection.
//	VIIRS country JSON: per-sensor (SNPP, NOAA-20) 24h feature collections;
//	                    each feature's property bag is one detection.
//
// # FIRMS Data Conventions
//
// Acquisition time:
//
//	Split across two fields: acq_date ("2026-08-24") and acq_time, an
//	HHMM integer that loses its leading zeros in transit ("47" = 00:47).
//	The time field is zero-padded to four digits and the pair is parsed
//	against "2006-01-02 1504" as UTC. Unparseable pairs yield a null
//	(zero) timestamp; the row is kept.
//
// Confidence:
//
//	MODIS reports a 0–100 numeric score. VIIRS reports a category:
//	"l" (low), "n" (nominal), "h" (high). Categories are mapped onto the
//	numeric scale at 30/60/90 so that each category lands exactly on a
//	risk threshold boundary (one, two, and three thresholds crossed).
//	Non-numeric, non-categorical values become null.
//
// FRP (fire radiative power):
//
//	Megawatts, always ≥ 0. Missing or malformed values are coerced to 0
//	so the risk heuristic and feature vector stay total functions.
//
// Brightness:
//
//	MODIS band-21 brightness temperature (Kelvin). VIIRS uses different
//	bands (bright_ti4/ti5) that are not comparable, so VIIRS tables do
//	not carry a brightness column at all.
//
// Null representation:
//
//	Optional float fields use NaN as the null sentinel; the zero
//	time.Time is the null timestamp. Column presence is tracked per
//	table, not per row: every record in a Table has the same columns.
//
// # Risk Scale
//
// The 0–5 risk label counts crossed thresholds: confidence ≥ 30, ≥ 60,
// ≥ 85 and frp ≥ 30, ≥ 80. The sum is clamped to [0,5], which is
// redundant with the current five thresholds but kept as a contract in
// case the set grows. The same function labels both the 7-day training window and
// the live table so training labels and display labels never diverge.
//
// # ID Generation
//
// Hotspot IDs are deterministic SHA-256 hashes of sensor|lat|lon|time,
// so re-fetching the same detection produces the same ID. Downstream
// consumers (Kafka export, map tooltips) can dedupe on it. See [GenerateID].
package domain
