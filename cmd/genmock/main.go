// Command genmock generates synthetic FIRMS feed fixtures: MODIS CSVs
// and VIIRS GeoJSON documents suitable for a local mock server. It uses
// the actual domain package for risk scoring so the printed stats match
// real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -rows 500
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hazewatch/hotspot-etl/internal/domain"
)

var baseDate = time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for fixture files")
	rows := flag.Int("rows", 500, "hotspots per MODIS file")
	seed := flag.Int64("seed", 1, "rng seed for reproducible fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	rng := rand.New(rand.NewSource(*seed))
	bounds, err := domain.DefaultCatalog().Lookup("indonesia")
	if err != nil {
		return err
	}

	modis := generateMODIS(rng, bounds, *rows)
	if err := writeMODISCSV(filepath.Join(*outDir, "modis_7d.csv"), modis); err != nil {
		return err
	}
	live := modis[:len(modis)/4]
	if err := writeMODISCSV(filepath.Join(*outDir, "modis_24h.csv"), live); err != nil {
		return err
	}

	for _, sensor := range []string{domain.SensorVIIRSSNPP, domain.SensorVIIRSNOAA20} {
		viirs := generateVIIRS(rng, bounds, *rows/5)
		name := fmt.Sprintf("%s.json", sensor)
		if err := writeGeoJSON(filepath.Join(*outDir, name), viirs); err != nil {
			return err
		}
	}

	printStats(live)
	return nil
}

// modisRow carries the raw string fields written to the CSV, mirroring
// the columns of the real MODIS global files.
type modisRow struct {
	lat, lon   float64
	brightness float64
	confidence string
	frp        string
	acqDate    string
	acqTime    string
}

func generateMODIS(rng *rand.Rand, b domain.Bounds, n int) []modisRow {
	rows := make([]modisRow, n)
	for i := range rows {
		r := modisRow{
			lat:        b.LatMin + rng.Float64()*(b.LatMax-b.LatMin),
			lon:        b.LonMin + rng.Float64()*(b.LonMax-b.LonMin),
			brightness: 300 + rng.Float64()*80,
			acqDate:    baseDate.AddDate(0, 0, -rng.Intn(7)).Format("2006-01-02"),
			acqTime:    strconv.Itoa(rng.Intn(24)*100 + rng.Intn(60)),
		}
		// Mostly numeric confidence, with the occasional low-confidence
		// categorical value the real feed sometimes carries.
		if rng.Intn(20) == 0 {
			r.confidence = "low"
		} else {
			r.confidence = strconv.Itoa(rng.Intn(101))
		}
		// frp is sometimes blank in the real files.
		if rng.Intn(10) != 0 {
			r.frp = strconv.FormatFloat(rng.Float64()*120, 'f', 1, 64)
		}
		rows[i] = r
	}
	return rows
}

func writeMODISCSV(path string, rows []modisRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"latitude", "longitude", "brightness", "scan", "track",
		"acq_date", "acq_time", "satellite", "confidence", "version", "bright_t31", "frp", "daynight"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.lat, 'f', 4, 64),
			strconv.FormatFloat(r.lon, 'f', 4, 64),
			strconv.FormatFloat(r.brightness, 'f', 1, 64),
			"1.0", "1.0",
			r.acqDate, r.acqTime,
			"Terra", r.confidence, "6.1NRT", "295.0", r.frp, "D",
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	log.Printf("wrote %s: %d rows", path, len(rows))
	return nil
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   map[string]any `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func generateVIIRS(rng *rand.Rand, b domain.Bounds, n int) []feature {
	categories := []string{"l", "n", "h"}
	features := make([]feature, n)
	for i := range features {
		lat := b.LatMin + rng.Float64()*(b.LatMax-b.LatMin)
		lon := b.LonMin + rng.Float64()*(b.LonMax-b.LonMin)
		features[i] = feature{
			Type:     "Feature",
			Geometry: map[string]any{"type": "Point", "coordinates": []float64{lon, lat}},
			Properties: map[string]any{
				"latitude":   lat,
				"longitude":  lon,
				"bright_ti4": 295 + rng.Float64()*60,
				"acq_date":   baseDate.Format("2006-01-02"),
				"acq_time":   rng.Intn(24)*100 + rng.Intn(60),
				"confidence": categories[rng.Intn(len(categories))],
				"frp":        rng.Float64() * 120,
			},
		}
	}
	return features
}

func writeGeoJSON(path string, features []feature) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	doc := map[string]any{"type": "FeatureCollection", "features": features}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	log.Printf("wrote %s: %d features", path, len(features))
	return nil
}

func printStats(rows []modisRow) {
	byRisk := map[int]int{}
	for _, r := range rows {
		conf := domain.ParseConfidence(r.confidence)
		frp := domain.ParseFloatOrZero(r.frp)
		byRisk[domain.RiskScore(conf, frp)]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Live rows: %d\n", len(rows))
	for risk := 0; risk <= 5; risk++ {
		fmt.Printf("risk %d: %d\n", risk, byRisk[risk])
	}
}
