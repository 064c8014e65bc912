// Package pipeline orchestrates the fire-hotspot scoring cycle:
// fetch the satellite feeds, unify their schemas, filter to the
// configured region, attach heuristic and model risk scores, and
// publish the result as the serving snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazewatch/hotspot-etl/internal/domain"
	"github.com/hazewatch/hotspot-etl/internal/ml"
	"github.com/hazewatch/hotspot-etl/internal/observability"
)

// PrimaryFeed supplies the mandatory MODIS tables. Errors from this
// feed are fatal to the run that sees them.
type PrimaryFeed interface {
	TrainingWindow(ctx context.Context) (domain.Table, error)
	Live(ctx context.Context) (domain.Table, error)
}

// SecondaryFeed supplies an optional sensor. Failures degrade to an
// unavailable result, never an error.
type SecondaryFeed interface {
	Name() string
	Live(ctx context.Context) domain.SourceResult
}

// Exporter publishes scored hotspots downstream. A nil exporter
// disables export.
type Exporter interface {
	ExportScored(ctx context.Context, rows []domain.Hotspot) error
}

// Analytics summarizes a scored snapshot for the rendering layer.
type Analytics struct {
	Count          int         `json:"count"`
	MeanRisk       float64     `json:"mean_risk"`
	MeanFRP        float64     `json:"mean_frp"`
	MeanBrightness float64     `json:"mean_brightness"`
	HighRiskShare  float64     `json:"high_risk_share"` // share with risk >= 4
	ByRisk         map[int]int `json:"by_risk"`
	ByHour         map[int]int `json:"by_hour"` // acquisition hour in WIB (UTC+7)
}

// Acquisition timestamps are UTC; the per-hour chart buckets them in
// Indonesian local time. WIB has no DST, so a fixed zone suffices.
var jakartaTime = time.FixedZone("WIB", 7*60*60)

// Snapshot is the rendering hand-off: the latest scored, colored,
// region-filtered table plus summary analytics.
type Snapshot struct {
	Region      string           `json:"region"`
	Bounds      domain.Bounds    `json:"bounds"`
	GeneratedAt time.Time        `json:"generated_at"`
	Columns     []domain.Column  `json:"columns"`
	Hotspots    []domain.Hotspot `json:"hotspots"`
	Analytics   Analytics        `json:"analytics"`
}

// Options configures a Pipeline.
type Options struct {
	Region        string
	MinConfidence float64
	Forest        ml.Config
}

// Pipeline runs the scoring cycle and holds the trained model and the
// latest snapshot. The cycle itself is sequential; the mutex only
// guards the snapshot hand-off to the HTTP layer.
type Pipeline struct {
	primary     PrimaryFeed
	secondaries []SecondaryFeed
	exporter    Exporter
	catalog     domain.Catalog
	opts        Options
	logger      *slog.Logger
	metrics     *observability.Metrics

	ready atomic.Bool

	mu       sync.RWMutex
	model    *ml.Forest
	snapshot *Snapshot
}

// New creates a Pipeline. exporter may be nil.
func New(primary PrimaryFeed, secondaries []SecondaryFeed, exporter Exporter,
	catalog domain.Catalog, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Pipeline, error) {
	if _, err := catalog.Lookup(opts.Region); err != nil {
		return nil, err
	}
	return &Pipeline{
		primary:     primary,
		secondaries: secondaries,
		exporter:    exporter,
		catalog:     catalog,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// CheckReadiness returns nil once a refresh has produced a snapshot.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced a snapshot yet")
	}
	return nil
}

// Snapshot returns the latest scored snapshot, if one exists.
func (p *Pipeline) Snapshot() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return Snapshot{}, false
	}
	return *p.snapshot, true
}

// Importances returns the trained model's per-feature importance
// scores, if a model exists. Diagnostic display only.
func (p *Pipeline) Importances() ([]ml.Importance, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return nil, false
	}
	return p.model.Importances(), true
}

// Train fetches the 7-day window, labels it with the heuristic, and
// fits the classifier. The training feed is mandatory: its failure
// propagates and must abort the run.
func (p *Pipeline) Train(ctx context.Context) error {
	start := time.Now()

	window, err := p.primary.TrainingWindow(ctx)
	if err != nil {
		return fmt.Errorf("fetch training window: %w", err)
	}

	labeled := domain.LabelRisk(window)
	set, err := ml.TrainingMatrix(labeled)
	if err != nil {
		return fmt.Errorf("build training matrix: %w", err)
	}
	if set.Dropped > 0 {
		p.logger.Info("dropped training rows with null features", "dropped", set.Dropped, "kept", len(set.X))
	}
	p.metrics.TrainingRowsDropped.Set(float64(set.Dropped))

	model, err := ml.Train(set, p.opts.Forest)
	if err != nil {
		return fmt.Errorf("fit risk model: %w", err)
	}

	p.mu.Lock()
	p.model = model
	p.mu.Unlock()

	p.metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("risk model trained",
		"rows", len(set.X),
		"trees", p.opts.Forest.Trees,
		"max_depth", p.opts.Forest.MaxDepth,
		"duration", time.Since(start),
	)
	return nil
}

// Refresh runs one fetch-unify-score cycle and swaps in the resulting
// snapshot. A primary feed failure is returned as an error; secondary
// failures degrade to "no data from that sensor". An empty region is an
// informational state and still produces a (zero-row) snapshot.
func (p *Pipeline) Refresh(ctx context.Context) error {
	p.mu.RLock()
	model := p.model
	p.mu.RUnlock()
	if model == nil {
		return errors.New("refresh before training")
	}

	start := time.Now()
	bounds, err := p.catalog.Lookup(p.opts.Region)
	if err != nil {
		return err
	}

	live, err := p.primary.Live(ctx)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch primary feed: %w", err)
	}

	results := make([]domain.SourceResult, 0, len(p.secondaries))
	for _, feed := range p.secondaries {
		r := feed.Live(ctx)
		if !r.Available() {
			p.logger.Warn("optional source unavailable, continuing without it",
				"source", feed.Name(), "error", r.Err)
			p.metrics.SourceFailures.WithLabelValues(feed.Name()).Inc()
		}
		results = append(results, r)
	}

	unified := Unify(live, results)
	filtered := FilterRegion(unified, bounds)
	if filtered.Empty() && !unified.Empty() {
		p.logger.Info("no hotspots in region", "region", p.opts.Region, "unified_rows", unified.Len())
	}

	scored := FilterMinConfidence(filtered, p.opts.MinConfidence)
	scored = domain.LabelRisk(scored)
	scored = RenameLatLon(scored)

	scored, err = p.predict(model, scored)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("predict risk: %w", err)
	}
	scored = domain.Colorize(scored)

	snap := &Snapshot{
		Region:      p.opts.Region,
		Bounds:      bounds,
		GeneratedAt: domain.Now().UTC(),
		Columns:     scored.Columns.Sorted(),
		Hotspots:    scored.Rows,
		Analytics:   summarize(scored),
	}

	if p.exporter != nil && !scored.Empty() {
		if err := p.exporter.ExportScored(ctx, scored.Rows); err != nil {
			// Export is best-effort: the snapshot still serves.
			p.logger.Warn("export scored hotspots failed", "error", err)
		}
	}

	p.mu.Lock()
	p.snapshot = snap
	p.mu.Unlock()
	p.ready.Store(true)

	outcome := "success"
	if scored.Empty() {
		outcome = "empty"
	}
	p.metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	p.metrics.SnapshotHotspots.Set(float64(scored.Len()))
	p.metrics.LastRefreshTime.SetToCurrentTime()
	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("snapshot refreshed",
		"region", p.opts.Region,
		"hotspots", scored.Len(),
		"duration", time.Since(start),
	)
	return nil
}

// predict applies the trained model to the live table, attaching the
// ai_risk column. The feature matrix is built by the same code that
// built the training matrix, so the contract cannot drift.
func (p *Pipeline) predict(model *ml.Forest, t domain.Table) (domain.Table, error) {
	if t.Empty() {
		return domain.Table{Columns: t.Columns.Clone().Add(domain.ColAIRisk)}, nil
	}

	X, err := ml.PredictionMatrix(t)
	if err != nil {
		return domain.Table{}, err
	}
	labels, err := model.PredictAll(X)
	if err != nil {
		return domain.Table{}, err
	}

	out := domain.Table{Columns: t.Columns.Clone().Add(domain.ColAIRisk), Rows: make([]domain.Hotspot, len(t.Rows))}
	for i, h := range t.Rows {
		h.AIRisk = labels[i]
		out.Rows[i] = h
	}
	return out, nil
}

// Run trains once, then refreshes on the given interval until the
// context is cancelled. The initial training failure is fatal; a failed
// refresh logs and leaves the previous snapshot serving.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if err := p.Train(ctx); err != nil {
		return err
	}

	if err := p.Refresh(ctx); err != nil {
		p.logger.Error("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("refresh failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

// summarize computes the rendering analytics over a scored table.
func summarize(t domain.Table) Analytics {
	a := Analytics{
		Count:  t.Len(),
		ByRisk: make(map[int]int),
		ByHour: make(map[int]int),
	}
	if t.Empty() {
		return a
	}

	hasBrightness := t.Columns.Has(domain.ColBrightness)
	var riskSum, frpSum, brightSum float64
	var brightCount, highRisk int

	for _, h := range t.Rows {
		riskSum += float64(h.Risk)
		frpSum += domain.OrZero(h.FRP)
		if h.Risk >= 4 {
			highRisk++
		}
		if hasBrightness && !domain.IsNull(h.Brightness) {
			brightSum += h.Brightness
			brightCount++
		}
		a.ByRisk[h.Risk]++
		if !h.AcqTime.IsZero() {
			a.ByHour[h.AcqTime.In(jakartaTime).Hour()]++
		}
	}

	n := float64(t.Len())
	a.MeanRisk = riskSum / n
	a.MeanFRP = frpSum / n
	a.HighRiskShare = float64(highRisk) / n
	if brightCount > 0 {
		a.MeanBrightness = brightSum / float64(brightCount)
	}
	return a
}
