package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/epinal/sharpline/internal/detect"
	"github.com/epinal/sharpline/internal/domain"
	"github.com/epinal/sharpline/internal/ingest"
	"github.com/epinal/sharpline/internal/ingest/oddsapi"
	"github.com/epinal/sharpline/internal/notify"
	"github.com/epinal/sharpline/internal/picks"
	"github.com/epinal/sharpline/internal/pipeline"
	"github.com/epinal/sharpline/internal/score"
	"github.com/epinal/sharpline/internal/server"
	"github.com/epinal/sharpline/internal/server/handler"
	"github.com/epinal/sharpline/internal/server/ws"
)

// RunMode executes a single pipeline cycle and exits. Suitable for cron.
func (a *App) RunMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting run mode")

	orch, err := a.buildPipeline(deps, nil)
	if err != nil {
		return err
	}

	fresh, err := orch.RunOnce(ctx)
	if err != nil {
		notifyFailure(ctx, deps.Notifier, err)
		return fmt.Errorf("app: run mode: %w", err)
	}

	a.logger.InfoContext(ctx, "run mode complete", slog.Int("fresh_picks", len(fresh)))
	return nil
}

// WatchMode runs the pipeline loop until the context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	orch, err := a.buildPipeline(deps, nil)
	if err != nil {
		return err
	}
	return orch.Run(ctx)
}

// ServeMode runs the pipeline loop alongside the HTTP + WebSocket API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	hub := ws.NewHub(a.cfg.Mode, a.logger)

	orch, err := a.buildPipeline(deps, hub.BroadcastPick)
	if err != nil {
		return err
	}

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(),
		Picks:    handler.NewPickHandler(deps.PickStore, a.logger),
		Pipeline: handler.NewPipelineHandler(orch, a.logger),
	}
	if deps.BlobReader != nil {
		handlers.Archive = handler.NewArchiveHandler(deps.BlobReader)
	}

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		handlers,
		hub,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("app: ws hub: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return orch.Run(ctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	// Shut the HTTP server down when the context is cancelled so Start
	// unblocks.
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildPipeline assembles the ingest clients, detectors, and orchestrator
// from the configuration and wired dependencies.
func (a *App) buildPipeline(deps *Dependencies, broadcast func(domain.Pick)) (*pipeline.Orchestrator, error) {
	oddsClient := oddsapi.NewClient(oddsapi.Config{
		BaseURL:         a.cfg.OddsAPI.BaseURL,
		APIKey:          a.cfg.OddsAPI.APIKey,
		Sport:           a.cfg.OddsAPI.Sport,
		Regions:         a.cfg.OddsAPI.Regions,
		Timeout:         a.cfg.OddsAPI.Timeout.Duration,
		MaxRetryElapsed: a.cfg.OddsAPI.MaxRetryElapsed.Duration,
	}, a.logger)

	generator, err := picks.NewGenerator(picks.Config{
		SpreadRLM: detect.SpreadRLMConfig{
			MinPublicThreshold: a.cfg.Detect.SpreadMinPublicThreshold,
			MinLineMove:        a.cfg.Detect.SpreadMinLineMove,
		},
		TotalRLM: detect.TotalRLMConfig{
			MinTotalMove:       a.cfg.Detect.TotalMinMove,
			StrongTotalMove:    a.cfg.Detect.TotalStrongMove,
			MinPublicThreshold: a.cfg.Detect.TotalMinPublicThreshold,
		},
		MLDivergence: detect.MLDivergenceConfig{
			MinDivergence:    a.cfg.Detect.MinDivergence,
			StrongDivergence: a.cfg.Detect.StrongDivergence,
		},
		ATSTrend: detect.ATSTrendConfig{
			ExtremeThreshold: a.cfg.Detect.ATSExtremeThreshold,
		},
		Scorer: score.Config{
			Tier1Threshold: a.cfg.Scorer.Tier1Threshold,
			Tier2Threshold: a.cfg.Scorer.Tier2Threshold,
			LeanThreshold:  a.cfg.Scorer.LeanThreshold,
			MinSignals:     a.cfg.Scorer.MinSignals,
		},
		MaxConcurrency: a.cfg.Pipeline.MaxConcurrency,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("app: build generator: %w", err)
	}

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Odds:         oddsClient,
		SplitsLoader: ingest.NewSplitsLoader(a.cfg.Splits.Path, a.logger),
		Merger:       ingest.NewMerger(a.logger),
		Generator:    generator,
		OpeningLines: deps.OpeningLines,
		PickStore:    deps.PickStore,
		Seen:         deps.Seen,
		SplitsCache:  deps.SplitsCache,
		Archiver:     deps.Archiver,
		Notifier:     deps.Notifier,
		Broadcast:    broadcast,
	},
		a.cfg.Pipeline.ScrapeInterval.Duration,
		a.cfg.Pipeline.SeenTTL.Duration,
		a.logger,
	)
	return orch, nil
}

func notifyFailure(ctx context.Context, notifier *notify.Notifier, err error) {
	if notifier == nil {
		return
	}
	_ = notifier.NotifyAll(ctx, "Pipeline run failed", err.Error())
}
