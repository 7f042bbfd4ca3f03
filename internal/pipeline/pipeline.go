// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline produces the weekly digest. ProduceWeek fetches
// candidates from every adapter, normalizes, filters, dedups, scores and
// selects them, then commits the run and its ledger keys in one step.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/filter"
	"github.com/pdiddy/research-digest/internal/ledger"
	"github.com/pdiddy/research-digest/internal/normalize"
	"github.com/pdiddy/research-digest/internal/rank"
	"github.com/pdiddy/research-digest/internal/source"
	"github.com/pdiddy/research-digest/internal/store"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Drop reasons added by the dedup stage.
const (
	ReasonAlreadyPublished = "already_published"
	ReasonDuplicate        = "duplicate_in_run"
)

// ErrRunInProgress is returned when ProduceWeek is called while another
// call on the same Pipeline has not finished.
var ErrRunInProgress = errors.New("a run is already in progress")

// Store is the persistence the pipeline needs.
type Store interface {
	ledger.Reader
	ledger.Committer
	RunByWeek(ctx context.Context, weekKey string) (types.WeeklyRun, error)
}

// Enricher fills missing paper metadata such as open access status.
type Enricher interface {
	Enrich(ctx context.Context, papers []types.Paper) []types.Paper
}

// Pipeline wires the stages to a store. Adapters, Backfiller and Enricher
// are built from the configuration when left nil.
type Pipeline struct {
	Store    Store
	Adapters []source.Adapter

	// Backfiller fills missing DOI, journal and abstract after dedup.
	Backfiller Enricher

	// Enricher resolves open access status after backfill.
	Enricher Enricher

	Metrics *Metrics
	Log     zerolog.Logger

	// Now is the clock; time.Now when nil.
	Now func() time.Time

	running sync.Mutex
}

// New returns a pipeline over st with fresh metrics.
func New(st Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{Store: st, Metrics: NewMetrics(), Log: log}
}

// Adapters builds the enabled source adapters.
func Adapters(cfg types.Config, log zerolog.Logger) []source.Adapter {
	s := cfg.Sources
	var out []source.Adapter
	if s.Crossref.Enabled {
		out = append(out, source.NewCrossref(s.HTTPConfig, s.Crossref))
	}
	if s.PubMed.Enabled {
		out = append(out, source.NewPubMed(s.HTTPConfig, s.PubMed))
	}
	if s.RSS.Enabled && len(s.RSS.Feeds) > 0 {
		out = append(out, source.NewRSS(s.HTTPConfig, s.RSS, cfg.Heuristics, log))
	}
	return out
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Pipeline) adapters(cfg types.Config) []source.Adapter {
	if p.Adapters != nil {
		return p.Adapters
	}
	return Adapters(cfg, p.Log)
}

func (p *Pipeline) backfiller(cfg types.Config, window source.Window) Enricher {
	if p.Backfiller != nil {
		return p.Backfiller
	}
	if b := source.NewCrossrefBackfill(cfg.Sources.HTTPConfig, cfg.Sources.Crossref, window, p.Log); b != nil {
		return b
	}
	return nil
}

func (p *Pipeline) enricher(cfg types.Config) Enricher {
	if p.Enricher != nil {
		return p.Enricher
	}
	if u := source.NewUnpaywall(cfg.Sources.HTTPConfig, cfg.Sources.Unpaywall, p.Log); u != nil {
		return u
	}
	return nil
}

func (p *Pipeline) metrics() *Metrics {
	if p.Metrics == nil {
		p.Metrics = NewMetrics()
	}
	return p.Metrics
}

// ProduceWeek returns the run for the current ISO week. Without
// forceRefresh an existing run is returned unchanged. Otherwise a new run
// is produced and committed together with its ledger keys; on any failure
// before or during the commit nothing is persisted. An invalid cfg fails
// with config.ErrConfigurationInvalid before the store is touched.
func (p *Pipeline) ProduceWeek(ctx context.Context, cfg types.Config, forceRefresh bool) (types.WeeklyRun, error) {
	if err := config.Validate(cfg); err != nil {
		return types.WeeklyRun{}, err
	}
	if !p.running.TryLock() {
		return types.WeeklyRun{}, ErrRunInProgress
	}
	defer p.running.Unlock()

	m := p.metrics()
	started := time.Now()
	now := p.now()
	week := types.WeekKey(now)
	log := p.Log.With().Str("week", week).Logger()

	if !forceRefresh {
		run, err := p.Store.RunByWeek(ctx, week)
		if err == nil {
			m.RunsTotal.WithLabelValues(OutcomeCached).Inc()
			log.Debug().Msg("returning existing run")
			return run, nil
		}
		if !errors.Is(err, store.ErrRunNotFound) {
			m.RunsTotal.WithLabelValues(OutcomeFailed).Inc()
			return types.WeeklyRun{}, fmt.Errorf("checking existing run: %w", err)
		}
	}

	run, err := p.produce(ctx, cfg, now, week, forceRefresh, log)
	if err != nil {
		m.RunsTotal.WithLabelValues(OutcomeFailed).Inc()
		return types.WeeklyRun{}, err
	}
	m.RunsTotal.WithLabelValues(OutcomeProduced).Inc()
	m.RunDuration.Observe(time.Since(started).Seconds())
	p.writeMetrics(cfg, log)
	return run, nil
}

func (p *Pipeline) produce(ctx context.Context, cfg types.Config, now time.Time, week string, force bool, log zerolog.Logger) (types.WeeklyRun, error) {
	m := p.metrics()
	norm, err := normalize.New(cfg.Heuristics)
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("%w: %v", config.ErrConfigurationInvalid, err)
	}

	excludeWeek := ""
	if force {
		excludeWeek = week
	}
	led, err := ledger.Load(ctx, p.Store, excludeWeek)
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("loading ledger: %w", err)
	}

	window := source.NewWindow(now, cfg.TimeWindowDays)
	coll := source.Collect(ctx, p.adapters(cfg), cfg.Topics, window, cfg.Sources.AdapterTimeout, log)
	stats := types.RunStats{Fetched: len(coll.Candidates), Drops: make(map[string]int)}
	for src, n := range coll.Fetched {
		m.RecordsFetched.WithLabelValues(string(src)).Add(float64(n))
	}
	for _, f := range coll.Failures {
		m.SourceFailures.WithLabelValues(string(f.Source)).Inc()
		stats.SourceErrors = append(stats.SourceErrors, f.Error())
	}

	papers, drops := norm.All(coll.Candidates)
	stats.Normalized = len(papers)
	maps.Copy(stats.Drops, drops)

	eligible, drops := filter.New(cfg, window).Apply(papers)
	stats.Filtered = len(eligible)
	maps.Copy(stats.Drops, drops)

	unseen, seen := led.Unseen(eligible)
	collapsed, merged := ledger.Collapse(unseen)
	if b := p.backfiller(cfg, window); b != nil {
		// A backfilled DOI can reveal a published paper or a duplicate.
		var more int
		collapsed, more = led.Unseen(b.Enrich(ctx, collapsed))
		seen += more
		collapsed, more = ledger.Collapse(collapsed)
		merged += more
	}
	stats.Deduped = len(collapsed)
	if seen > 0 {
		stats.Drops[ReasonAlreadyPublished] = seen
	}
	if merged > 0 {
		stats.Drops[ReasonDuplicate] = merged
	}
	for reason, n := range stats.Drops {
		m.Drops.WithLabelValues(reason).Add(float64(n))
	}

	if e := p.enricher(cfg); e != nil {
		collapsed = e.Enrich(ctx, collapsed)
	}

	scored := rank.NewScorer(cfg, now).ScoreAll(collapsed)
	chosen := rank.Selector{
		Topics:      cfg.Topics,
		MinPerTopic: cfg.MinPapersPerTopic,
		MaxTotal:    cfg.MaxPapersPerWeek,
	}.Select(scored)
	stats.Selected = len(chosen)

	snapshot, err := json.Marshal(cfg)
	if err != nil {
		return types.WeeklyRun{}, fmt.Errorf("encoding config snapshot: %w", err)
	}
	run := types.WeeklyRun{
		WeekKey:        week,
		RunID:          uuid.NewString(),
		GeneratedAt:    now,
		Papers:         publish(chosen),
		Stats:          stats,
		ConfigSnapshot: snapshot,
	}

	if err := ctx.Err(); err != nil {
		return types.WeeklyRun{}, fmt.Errorf("run abandoned before commit: %w", err)
	}
	for _, sp := range run.Papers {
		led.Stage(sp.Paper)
	}
	if err := led.Flush(ctx, p.Store, run); err != nil {
		if !errors.Is(err, store.ErrPersistence) {
			err = fmt.Errorf("%w: %v", store.ErrPersistence, err)
		}
		return types.WeeklyRun{}, err
	}
	m.PapersSelected.Add(float64(len(run.Papers)))

	log.Info().
		Int("fetched", stats.Fetched).
		Int("normalized", stats.Normalized).
		Int("eligible", stats.Filtered).
		Int("deduped", stats.Deduped).
		Int("selected", stats.Selected).
		Int("source_errors", len(stats.SourceErrors)).
		Msg("weekly run committed")

	// The run is committed; cancellation from here on must not turn it into
	// a failure.
	persisted, err := p.Store.RunByWeek(context.WithoutCancel(ctx), week)
	if err != nil {
		log.Warn().Err(err).Msg("reloading committed run; returning it from memory")
		return run, nil
	}
	return persisted, nil
}

// publish assigns rank, slug and display scores in selection order.
func publish(chosen []rank.Scored) []types.SelectedPaper {
	out := make([]types.SelectedPaper, 0, len(chosen))
	slugs := make(slugger, len(chosen))
	for i, c := range chosen {
		out = append(out, types.SelectedPaper{
			Paper:     c.Paper,
			Rank:      i + 1,
			Slug:      slugs.next(c.Paper.Title),
			Score:     types.RoundScore(c.Score),
			Breakdown: c.Breakdown.Rounded(),
		})
	}
	return out
}

func (p *Pipeline) writeMetrics(cfg types.Config, log zerolog.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := p.metrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("writing metrics textfile")
	}
}
