package domain

import (
	"strconv"
	"strings"
	"time"
)

// acqTimeLayout parses "acq_date acq_time" with the time zero-padded to
// four digits, e.g. "2026-08-24 0047".
const acqTimeLayout = "2006-01-02 1504"

// ParseFloatOrNull parses a string as float64, returning the null
// sentinel on empty or malformed input.
func ParseFloatOrNull(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null()
	}
	return v
}

// ParseFloatOrZero parses a string as float64, returning 0 on empty or
// malformed input. Used for frp, which is defined to default to 0.
func ParseFloatOrZero(s string) float64 {
	v := ParseFloatOrNull(s)
	return OrZero(v)
}

// VIIRS categorical confidence, mapped onto the 0–100 scale so each
// category lands exactly on a risk threshold boundary.
const (
	confidenceLow     = 30
	confidenceNominal = 60
	confidenceHigh    = 90
)

// ParseConfidence coerces a confidence field to the 0–100 numeric
// scale. Accepts numeric strings (MODIS) and the VIIRS l/n/h
// categories; anything else is null.
func ParseConfidence(s string) float64 {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "l", "low":
		return confidenceLow
	case "n", "nominal":
		return confidenceNominal
	case "h", "high":
		return confidenceHigh
	}
	return ParseFloatOrNull(s)
}

// ParseAcqTime reconstructs the acquisition instant from FIRMS's split
// date and HHMM time fields, interpreted as UTC. The time field is
// zero-padded to four digits first ("47" → "0047"). Unparseable
// combinations return the zero time; the row is retained upstream.
func ParseAcqTime(acqDate, acqTime string) time.Time {
	acqDate = strings.TrimSpace(acqDate)
	acqTime = strings.TrimSpace(acqTime)
	if acqDate == "" || acqTime == "" || len(acqTime) > 4 {
		return time.Time{}
	}
	for len(acqTime) < 4 {
		acqTime = "0" + acqTime
	}
	t, err := time.Parse(acqTimeLayout, acqDate+" "+acqTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
