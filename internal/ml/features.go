// Package ml trains and applies the hotspot risk classifier: a seeded
// bagged ensemble of depth-capped CART decision trees over a frozen
// six-feature contract. The feature order and name set used at training
// time must be reproduced exactly at prediction time; both paths build
// their matrices through this package so they cannot drift apart.
package ml

import (
	"fmt"

	"github.com/hazewatch/hotspot-etl/internal/domain"
)

// FeatureNames is the frozen feature contract, in order. Swapping any
// two entries silently corrupts predictions, so nothing outside this
// package builds feature rows.
var FeatureNames = [NumFeatures]string{"brightness", "confidence", "frp", "lat", "lon", "hour"}

// NumFeatures is the width of every feature row.
const NumFeatures = 6

// NumClasses is the size of the 0–5 risk label scale.
const NumClasses = 6

// TrainingSet is a feature matrix with aligned labels, ready to fit.
type TrainingSet struct {
	X       [][]float64
	Y       []int
	Dropped int // rows excluded for null features, never imputed
}

// featureRow assembles the six features for one hotspot. Columns absent
// from the table's column set contribute 0. nullSeen reports whether any
// present column held a null value for this row.
func featureRow(h domain.Hotspot, cols domain.ColumnSet) (row [NumFeatures]float64, nullSeen bool) {
	get := func(c domain.Column) float64 {
		if !cols.Has(c) {
			return 0
		}
		v, _ := h.Field(c)
		if domain.IsNull(v) {
			nullSeen = true
			return 0
		}
		return v
	}

	row[0] = get(domain.ColBrightness)
	row[1] = get(domain.ColConfidence)
	row[2] = get(domain.ColFRP)

	// lat/lon may appear under either name depending on whether the
	// table has passed the unifier's rename; default to 0, never fail.
	switch {
	case cols.Has(domain.ColLat):
		row[3] = get(domain.ColLat)
		row[4] = get(domain.ColLon)
	case cols.Has(domain.ColLatitude):
		row[3] = get(domain.ColLatitude)
		row[4] = get(domain.ColLongitude)
	}

	if !h.AcqTime.IsZero() {
		row[5] = float64(h.AcqTime.UTC().Hour())
	}
	return row, nullSeen
}

// TrainingMatrix builds the training set from a heuristic-labeled
// table. Rows with a null among the six features are dropped rather
// than imputed; a missing acquisition timestamp is tolerated here
// (hour defaults to 0) because the 7-day window is messier than live
// data. The table must already carry the risk column.
func TrainingMatrix(t domain.Table) (TrainingSet, error) {
	if !t.Columns.Has(domain.ColRisk) {
		return TrainingSet{}, fmt.Errorf("training table lacks a %s column", domain.ColRisk)
	}

	set := TrainingSet{X: make([][]float64, 0, t.Len()), Y: make([]int, 0, t.Len())}
	for _, h := range t.Rows {
		row, nullSeen := featureRow(h, t.Columns)
		if nullSeen || h.Risk < 0 || h.Risk >= NumClasses {
			set.Dropped++
			continue
		}
		set.X = append(set.X, row[:])
		set.Y = append(set.Y, h.Risk)
	}
	return set, nil
}

// PredictionMatrix builds feature rows for the live table in the exact
// order used at training time. Live records always carry an acquisition
// timestamp by construction of the adapters, so a zero time here is an
// error, not a default. Remaining nulls are coerced to 0, matching the
// ingestion invariant.
func PredictionMatrix(t domain.Table) ([][]float64, error) {
	X := make([][]float64, t.Len())
	for i, h := range t.Rows {
		if h.AcqTime.IsZero() {
			return nil, fmt.Errorf("row %d: %w", i, domain.ErrMissingAcqTime)
		}
		row, _ := featureRow(h, t.Columns)
		X[i] = row[:]
	}
	return X, nil
}
