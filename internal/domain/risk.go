package domain

import (
	"strconv"
	"strings"
)

// Risk thresholds. Each crossed threshold contributes 1 to the 0–5 label.
var (
	confidenceThresholds = []float64{30, 60, 85}
	frpThresholds        = []float64{30, 80}
)

// RiskScore maps confidence and frp onto the 0–5 risk scale by counting
// crossed thresholds. Nulls count as 0. The result is clamped to [0,5];
// with the current five thresholds the clamp is a no-op, but it is part
// of the contract so future threshold additions cannot push the label
// off the scale.
func RiskScore(confidence, frp float64) int {
	c := OrZero(confidence)
	f := OrZero(frp)

	risk := 0
	for _, t := range confidenceThresholds {
		if c >= t {
			risk++
		}
	}
	for _, t := range frpThresholds {
		if f >= t {
			risk++
		}
	}

	if risk < 0 {
		return 0
	}
	if risk > 5 {
		return 5
	}
	return risk
}

// LabelRisk attaches the heuristic risk label to every row and adds the
// risk column. Re-labeling an already-labeled table recomputes from
// confidence and frp only, so the operation is idempotent.
func LabelRisk(t Table) Table {
	out := Table{Columns: t.Columns.Clone().Add(ColRisk), Rows: make([]Hotspot, len(t.Rows))}
	for i, h := range t.Rows {
		h.Risk = RiskScore(h.Confidence, h.FRP)
		out.Rows[i] = h
	}
	return out
}

// riskPalette maps the 0–5 scale to display colors, green through red.
var riskPalette = map[int]string{
	0: "#00b050",
	1: "#66c266",
	2: "#ffd24d",
	3: "#ffb84d",
	4: "#ff704d",
	5: "#ff3333",
}

// neutralGray is the color for out-of-scale or unknown risk values.
const neutralGray = "#aaaaaa"

// ColorFromRisk returns the display hex color for a risk label.
func ColorFromRisk(risk int) string {
	if c, ok := riskPalette[risk]; ok {
		return c
	}
	return neutralGray
}

// fallbackWhite is substituted for any malformed color string so the
// renderer always receives a valid opaque RGB triple.
var fallbackWhite = [3]int{255, 255, 255}

// HexToRGB converts a "#rrggbb" string to an RGB triple, substituting
// opaque white for anything it cannot parse.
func HexToRGB(hexColor string) [3]int {
	h := strings.TrimPrefix(strings.TrimSpace(hexColor), "#")
	if len(h) != 6 {
		return fallbackWhite
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return fallbackWhite
		}
		rgb[i] = int(v)
	}
	return rgb
}

// Colorize stamps every row with its risk-derived hex color and RGB triple.
func Colorize(t Table) Table {
	out := Table{Columns: t.Columns.Clone(), Rows: make([]Hotspot, len(t.Rows))}
	for i, h := range t.Rows {
		h.ColorHex = ColorFromRisk(h.Risk)
		h.ColorRGB = HexToRGB(h.ColorHex)
		out.Rows[i] = h
	}
	return out
}
