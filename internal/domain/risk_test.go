package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		frp        float64
		expected   int
	}{
		{"all zero", 0, 0, 0},
		{"below first threshold", 20, 0, 0},
		{"confidence low", 30, 0, 1},
		{"confidence mid", 60, 0, 2},
		{"confidence high", 85, 0, 3},
		{"frp moderate", 0, 30, 1},
		{"frp high", 0, 80, 2},
		{"maximum", 100, 100, 5},
		{"end-to-end pair low", 20, 0, 0},
		{"end-to-end pair high", 90, 100, 5},
		{"null confidence treated as zero", Null(), 50, 1},
		{"null frp treated as zero", 60, Null(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RiskScore(tt.confidence, tt.frp))
		})
	}
}

func TestRiskScore_MonotoneAndBounded(t *testing.T) {
	grid := []float64{-10, 0, 15, 29.9, 30, 45, 60, 79.9, 80, 85, 99, 150}

	for _, c := range grid {
		prev := -1
		for _, f := range grid {
			r := RiskScore(c, f)
			assert.GreaterOrEqual(t, r, 0)
			assert.LessOrEqual(t, r, 5)
			// non-decreasing in frp for fixed confidence
			assert.GreaterOrEqual(t, r, prev, "confidence=%v frp=%v", c, f)
			prev = r
		}
	}

	for _, f := range grid {
		prev := -1
		for _, c := range grid {
			r := RiskScore(c, f)
			// non-decreasing in confidence for fixed frp
			assert.GreaterOrEqual(t, r, prev, "confidence=%v frp=%v", c, f)
			prev = r
		}
	}
}

func TestLabelRisk_Idempotent(t *testing.T) {
	table := Table{
		Columns: NewColumnSet(ColLatitude, ColLongitude, ColConfidence, ColFRP),
		Rows: []Hotspot{
			{Confidence: 20, FRP: 0},
			{Confidence: 90, FRP: 100},
			{Confidence: Null(), FRP: 45},
		},
	}

	once := LabelRisk(table)
	twice := LabelRisk(once)

	assert.True(t, once.Columns.Has(ColRisk))
	for i := range once.Rows {
		assert.Equal(t, once.Rows[i].Risk, twice.Rows[i].Risk)
	}
	assert.Equal(t, []int{0, 5, 1}, []int{once.Rows[0].Risk, once.Rows[1].Risk, once.Rows[2].Risk})
}

func TestColorFromRisk(t *testing.T) {
	assert.Equal(t, "#00b050", ColorFromRisk(0))
	assert.Equal(t, "#ff3333", ColorFromRisk(5))
	assert.Equal(t, "#aaaaaa", ColorFromRisk(-1))
	assert.Equal(t, "#aaaaaa", ColorFromRisk(6))
}

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [3]int
	}{
		{"green", "#00b050", [3]int{0, 176, 80}},
		{"red", "#ff3333", [3]int{255, 51, 51}},
		{"no hash prefix", "ffd24d", [3]int{255, 210, 77}},
		{"surrounding whitespace", " #66c266 ", [3]int{102, 194, 102}},
		{"too short", "#fff", [3]int{255, 255, 255}},
		{"too long", "#ff3333ff", [3]int{255, 255, 255}},
		{"not hex", "#zzzzzz", [3]int{255, 255, 255}},
		{"empty", "", [3]int{255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HexToRGB(tt.input))
		})
	}
}

func TestColorize(t *testing.T) {
	table := LabelRisk(Table{
		Columns: NewColumnSet(ColConfidence, ColFRP),
		Rows:    []Hotspot{{Confidence: 90, FRP: 100}, {Confidence: 10}},
	})

	colored := Colorize(table)

	assert.Equal(t, "#ff3333", colored.Rows[0].ColorHex)
	assert.Equal(t, [3]int{255, 51, 51}, colored.Rows[0].ColorRGB)
	assert.Equal(t, "#00b050", colored.Rows[1].ColorHex)
}
