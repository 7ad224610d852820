// Package pipeline runs the fetch-merge-analyze-publish cycle: pull the
// current odds window, capture opening lines, join public splits, run the
// detectors, and fan fresh picks out to storage, archive, notifications, and
// the WebSocket hub.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/epinal/sharpline/internal/domain"
	"github.com/epinal/sharpline/internal/ingest"
	"github.com/epinal/sharpline/internal/ingest/oddsapi"
	"github.com/epinal/sharpline/internal/metrics"
	"github.com/epinal/sharpline/internal/notify"
	"github.com/epinal/sharpline/internal/picks"
)

// Orchestrator coordinates one full pipeline cycle and the watch loop around
// it. Optional collaborators (archiver, notifier, broadcast) may be nil.
type Orchestrator struct {
	odds         *oddsapi.Client
	splitsLoader *ingest.SplitsLoader
	merger       *ingest.Merger
	generator    *picks.Generator

	openingLines domain.OpeningLineStore
	pickStore    domain.PickStore
	seen         domain.SeenCache
	splitsCache  domain.SplitsCache

	archiver domain.SnapshotArchiver
	notifier *notify.Notifier
	// broadcast pushes a fresh pick to live subscribers (the WebSocket hub).
	broadcast func(domain.Pick)

	interval time.Duration
	seenTTL  time.Duration
	logger   *slog.Logger
}

// Deps bundles the orchestrator's collaborators. Archiver, Notifier, and
// Broadcast are optional.
type Deps struct {
	Odds         *oddsapi.Client
	SplitsLoader *ingest.SplitsLoader
	Merger       *ingest.Merger
	Generator    *picks.Generator
	OpeningLines domain.OpeningLineStore
	PickStore    domain.PickStore
	Seen         domain.SeenCache
	SplitsCache  domain.SplitsCache
	Archiver     domain.SnapshotArchiver
	Notifier     *notify.Notifier
	Broadcast    func(domain.Pick)
}

// NewOrchestrator creates an Orchestrator running one cycle every interval.
// Fresh picks stay deduplicated for seenTTL.
func NewOrchestrator(deps Deps, interval, seenTTL time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		odds:         deps.Odds,
		splitsLoader: deps.SplitsLoader,
		merger:       deps.Merger,
		generator:    deps.Generator,
		openingLines: deps.OpeningLines,
		pickStore:    deps.PickStore,
		seen:         deps.Seen,
		splitsCache:  deps.SplitsCache,
		archiver:     deps.Archiver,
		notifier:     deps.Notifier,
		broadcast:    deps.Broadcast,
		interval:     interval,
		seenTTL:      seenTTL,
		logger:       logger.With(slog.String("component", "pipeline")),
	}
}

// Run executes cycles until ctx is cancelled: one immediately, then one per
// interval tick. Cycle errors are logged and the loop continues; only ctx
// cancellation stops it.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("pipeline starting", slog.Duration("interval", o.interval))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := o.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("pipeline cycle failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				o.logger.Info("pipeline stopped")
				return ctx.Err()
			case <-ticker.C:
				if _, err := o.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
					o.logger.Error("pipeline cycle failed", slog.String("error", err.Error()))
				}
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil // clean shutdown
	}
	return err
}

// RunOnce executes a single pipeline cycle and returns the fresh picks it
// emitted.
func (o *Orchestrator) RunOnce(ctx context.Context) ([]domain.Pick, error) {
	start := time.Now()
	fresh, err := o.cycle(ctx)
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PipelineRuns.WithLabelValues("ok").Inc()
	return fresh, nil
}

func (o *Orchestrator) cycle(ctx context.Context) ([]domain.Pick, error) {
	snap, err := o.odds.FetchOdds(ctx)
	if err != nil {
		metrics.OddsFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pipeline: fetch odds: %w", err)
	}
	metrics.OddsFetches.WithLabelValues("ok").Inc()

	if len(snap.Games) == 0 {
		return nil, fmt.Errorf("pipeline: empty odds window for %s: %w", snap.Sport, domain.ErrNoOddsData)
	}

	date := snap.FetchedAt.UTC().Format("20060102")

	opening, err := o.captureOpeningLines(ctx, snap, date)
	if err != nil {
		return nil, err
	}

	splits := o.loadSplits(ctx, snap)

	games := o.merger.Merge(snap, opening, splits)
	metrics.GamesAnalyzed.Add(float64(len(games)))

	allPicks, err := o.generator.Generate(ctx, games)
	if err != nil {
		return nil, fmt.Errorf("pipeline: generate picks: %w", err)
	}

	fresh := o.dedupe(ctx, allPicks)

	if len(fresh) > 0 {
		if err := o.pickStore.InsertBatch(ctx, fresh); err != nil {
			return nil, fmt.Errorf("pipeline: persist picks: %w", err)
		}
	}

	o.publish(ctx, snap, date, fresh)

	o.logger.Info("pipeline cycle complete",
		slog.Int("games", len(games)),
		slog.Int("picks", len(allPicks)),
		slog.Int("fresh", len(fresh)),
	)
	return fresh, nil
}

// captureOpeningLines records the current lines as the day's opening for any
// game not yet captured, then returns the stored opening lines keyed by game
// id. SetIfAbsent makes repeat captures within a day no-ops, so the first
// sighting wins.
func (o *Orchestrator) captureOpeningLines(ctx context.Context, snap domain.OddsSnapshot, date string) (map[string]domain.OpeningLine, error) {
	for _, g := range snap.Games {
		spread, total := ingest.CurrentLines(g)
		if spread == nil && total == nil {
			continue
		}
		line := domain.OpeningLine{
			GameID:     g.ID,
			Date:       date,
			Spread:     spread,
			Total:      total,
			CapturedAt: snap.FetchedAt,
		}
		if err := o.openingLines.SetIfAbsent(ctx, line); err != nil {
			return nil, fmt.Errorf("pipeline: capture opening line %s: %w", g.ID, err)
		}
	}

	lines, err := o.openingLines.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load opening lines: %w", err)
	}

	out := make(map[string]domain.OpeningLine, len(lines))
	for _, line := range lines {
		out[line.GameID] = line
	}
	return out, nil
}

// loadSplits reads the splits file and refreshes the cache. Games missing
// from the file fall back to the last cached figures so a stale scraper does
// not blank out every percentage at once.
func (o *Orchestrator) loadSplits(ctx context.Context, snap domain.OddsSnapshot) map[string]domain.PublicSplits {
	out, err := o.splitsLoader.Load()
	if err != nil {
		o.logger.Warn("splits load failed, using cached figures",
			slog.String("error", err.Error()))
		out = map[string]domain.PublicSplits{}
	}

	if len(out) > 0 && o.splitsCache != nil {
		batch := make([]domain.PublicSplits, 0, len(out))
		for _, s := range out {
			batch = append(batch, s)
		}
		if err := o.splitsCache.SetBatch(ctx, batch); err != nil {
			o.logger.Warn("splits cache refresh failed", slog.String("error", err.Error()))
		}
	}

	if o.splitsCache != nil {
		for _, g := range snap.Games {
			if _, ok := out[g.ID]; ok {
				continue
			}
			cached, err := o.splitsCache.Get(ctx, g.ID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					o.logger.Warn("splits cache lookup failed",
						slog.String("game_id", g.ID),
						slog.String("error", err.Error()))
				}
				continue
			}
			out[g.ID] = cached
		}
	}

	return out
}

// dedupe filters out picks whose (game, market, side) was already emitted
// within the seen TTL.
func (o *Orchestrator) dedupe(ctx context.Context, all []domain.Pick) []domain.Pick {
	fresh := make([]domain.Pick, 0, len(all))
	for _, p := range all {
		key := fmt.Sprintf("%s:%s:%s", p.GameID, p.Market, p.Pick)
		first, err := o.seen.MarkSeen(ctx, key, o.seenTTL)
		if err != nil {
			// Fail open: a cache outage should not swallow picks.
			o.logger.Warn("seen cache error, emitting anyway",
				slog.String("key", key),
				slog.String("error", err.Error()))
			first = true
		}
		if !first {
			metrics.PicksDeduplicated.Inc()
			continue
		}
		metrics.PicksGenerated.WithLabelValues(string(p.Tier)).Inc()
		fresh = append(fresh, p)
	}
	return fresh
}

// publish fans fresh picks out to cold storage, notification channels, and
// live subscribers. Failures here are logged, not fatal: the picks are
// already persisted.
func (o *Orchestrator) publish(ctx context.Context, snap domain.OddsSnapshot, date string, fresh []domain.Pick) {
	if o.archiver != nil {
		if _, err := o.archiver.ArchiveOddsSnapshot(ctx, snap); err != nil {
			o.logger.Warn("odds archive failed", slog.String("error", err.Error()))
		}
		if len(fresh) > 0 {
			// The archive key is fixed per date, so each write must carry
			// the whole day's slate or later cycles would clobber earlier
			// picks.
			slate, err := o.dayPicks(ctx, date)
			if err != nil {
				o.logger.Warn("day slate load failed", slog.String("error", err.Error()))
				slate = fresh
			}
			if _, err := o.archiver.ArchivePicks(ctx, date, slate); err != nil {
				o.logger.Warn("picks archive failed", slog.String("error", err.Error()))
			}
		}
	}

	for _, p := range fresh {
		if o.notifier != nil {
			if err := o.notifier.NotifyPick(ctx, p); err != nil {
				o.logger.Warn("pick notification failed",
					slog.String("pick_id", p.ID),
					slog.String("error", err.Error()))
			}
		}
		if o.broadcast != nil {
			o.broadcast(p)
		}
	}
}

// dayPicks loads every pick stored for the given date, oldest first, so the
// archived document holds the full day rather than one cycle's output.
func (o *Orchestrator) dayPicks(ctx context.Context, date string) ([]domain.Pick, error) {
	start, err := time.Parse("20060102", date)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse archive date %q: %w", date, err)
	}
	end := start.Add(24 * time.Hour)

	slate, err := o.pickStore.ListRecent(ctx, domain.ListOpts{Since: &start, Until: &end})
	if err != nil {
		return nil, fmt.Errorf("pipeline: load day slate: %w", err)
	}
	for i, j := 0, len(slate)-1; i < j; i, j = i+1, j-1 {
		slate[i], slate[j] = slate[j], slate[i]
	}
	return slate, nil
}
