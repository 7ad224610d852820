// Package picks orchestrates the detectors, scorer, and sharp-side resolver
// into final pick recommendations with best-price lookup across bookmakers.
package picks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/epinal/sharpline/internal/detect"
	"github.com/epinal/sharpline/internal/domain"
	"github.com/epinal/sharpline/internal/score"
)

// Config bundles the detector and scorer thresholds used by the Generator.
type Config struct {
	SpreadRLM    detect.SpreadRLMConfig
	TotalRLM     detect.TotalRLMConfig
	MLDivergence detect.MLDivergenceConfig
	ATSTrend     detect.ATSTrendConfig
	Scorer       score.Config
	// MaxConcurrency bounds the number of games evaluated in parallel by
	// Generate. Zero means one goroutine per game.
	MaxConcurrency int
}

// DefaultConfig returns the production thresholds for every component.
func DefaultConfig() Config {
	return Config{
		SpreadRLM:      detect.DefaultSpreadRLMConfig(),
		TotalRLM:       detect.DefaultTotalRLMConfig(),
		MLDivergence:   detect.DefaultMLDivergenceConfig(),
		ATSTrend:       detect.DefaultATSTrendConfig(),
		Scorer:         score.DefaultConfig(),
		MaxConcurrency: 8,
	}
}

// Generator runs every detector on a game, scores the spread and total
// markets separately, and emits up to two Picks per game.
type Generator struct {
	spreadRLM    *detect.SpreadRLM
	totalRLM     *detect.TotalRLM
	mlDivergence *detect.MLDivergence
	atsTrend     *detect.ATSTrend
	scorer       *score.Scorer
	maxInFlight  int
	logger       *slog.Logger
}

// NewGenerator creates a Generator, constructing and validating every
// detector and the scorer from cfg.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	spreadRLM, err := detect.NewSpreadRLM(cfg.SpreadRLM)
	if err != nil {
		return nil, fmt.Errorf("picks: %w", err)
	}
	totalRLM, err := detect.NewTotalRLM(cfg.TotalRLM)
	if err != nil {
		return nil, fmt.Errorf("picks: %w", err)
	}
	mlDivergence, err := detect.NewMLDivergence(cfg.MLDivergence)
	if err != nil {
		return nil, fmt.Errorf("picks: %w", err)
	}
	atsTrend, err := detect.NewATSTrend(cfg.ATSTrend)
	if err != nil {
		return nil, fmt.Errorf("picks: %w", err)
	}
	scorer, err := score.New(cfg.Scorer)
	if err != nil {
		return nil, fmt.Errorf("picks: %w", err)
	}
	return &Generator{
		spreadRLM:    spreadRLM,
		totalRLM:     totalRLM,
		mlDivergence: mlDivergence,
		atsTrend:     atsTrend,
		scorer:       scorer,
		maxInFlight:  cfg.MaxConcurrency,
		logger:       logger.With(slog.String("component", "pick_generator")),
	}, nil
}

// Generate evaluates every game and returns all picks sorted by confidence,
// highest first. Games are independent, so they are evaluated concurrently;
// a game that cannot be scored simply contributes no picks.
func (g *Generator) Generate(ctx context.Context, games []domain.GameRecord) ([]domain.Pick, error) {
	var (
		mu    sync.Mutex
		picks []domain.Pick
	)

	eg, ctx := errgroup.WithContext(ctx)
	if g.maxInFlight > 0 {
		eg.SetLimit(g.maxInFlight)
	}

	for _, game := range games {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gamePicks := g.AnalyzeGame(game)
			if len(gamePicks) == 0 {
				return nil
			}
			mu.Lock()
			picks = append(picks, gamePicks...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("picks: generate: %w", err)
	}

	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].Confidence != picks[j].Confidence {
			return picks[i].Confidence > picks[j].Confidence
		}
		return picks[i].GameID < picks[j].GameID
	})

	g.logger.Info("generated picks",
		slog.Int("games", len(games)),
		slog.Int("picks", len(picks)),
	)
	return picks, nil
}

// AnalyzeGame runs all four detectors once and derives the spread-market and
// total-market picks. Spread-RLM and ML-divergence act as spread primaries
// with the ATS trend as confirmation; the total market is triggered by the
// total-RLM signal alone, again with ATS confirmation.
func (g *Generator) AnalyzeGame(game domain.GameRecord) []domain.Pick {
	spreadSig := g.spreadRLM.Detect(game)
	totalSig := g.totalRLM.Detect(game)
	mlSig := g.mlDivergence.Detect(game)
	atsSig := g.atsTrend.Detect(game)

	confirmations := []domain.Signal{atsSig}

	var out []domain.Pick
	if pick, ok := g.spreadPick(game, []domain.Signal{spreadSig, mlSig}, confirmations, atsSig); ok {
		out = append(out, pick)
	}
	if pick, ok := g.totalPick(game, totalSig, confirmations, atsSig); ok {
		out = append(out, pick)
	}
	return out
}

func (g *Generator) spreadPick(game domain.GameRecord, primaries, confirmations []domain.Signal, atsSig domain.Signal) (domain.Pick, bool) {
	detected := detectedOf(primaries)
	if len(detected) == 0 {
		return domain.Pick{}, false
	}

	confidence := g.scorer.ScoreWithBoost(detected, confirmations)
	if confidence.Tier == domain.TierPass {
		return domain.Pick{}, false
	}

	side, ok := score.ResolveSharpSide(detected)
	if !ok {
		return domain.Pick{}, false
	}

	best, ok := FindBestLine(game, domain.MarketSpreads, side)
	if !ok {
		g.logger.Debug("no spread listing for sharp side",
			slog.String("game_id", game.GameID),
			slog.String("side", string(side)),
		)
		return domain.Pick{}, false
	}

	team := game.HomeTeam
	if side == domain.SideAway {
		team = game.AwayTeam
	}
	pickStr := fmt.Sprintf("%s %+.1f", team, best.Point)
	bestBook := fmt.Sprintf("%s %s %+.1f %+d", best.Bookmaker, team, best.Point, best.AmericanOdds)

	return g.buildPick(game, domain.MarketSpreads, pickStr, bestBook, confidence, detected, atsSig), true
}

func (g *Generator) totalPick(game domain.GameRecord, totalSig domain.Signal, confirmations []domain.Signal, atsSig domain.Signal) (domain.Pick, bool) {
	if !totalSig.Detected {
		return domain.Pick{}, false
	}

	confidence := g.scorer.ScoreWithBoost([]domain.Signal{totalSig}, confirmations)
	if confidence.Tier == domain.TierPass {
		return domain.Pick{}, false
	}

	// The total detector's own sharp side is authoritative; no vote needed.
	side := totalSig.SharpSide
	if side == "" {
		return domain.Pick{}, false
	}

	best, ok := FindBestLine(game, domain.MarketTotals, side)
	if !ok {
		g.logger.Debug("no totals listing for sharp side",
			slog.String("game_id", game.GameID),
			slog.String("side", string(side)),
		)
		return domain.Pick{}, false
	}

	pickStr := fmt.Sprintf("%s %g", strings.ToUpper(string(side)), best.Point)
	bestBook := fmt.Sprintf("%s %s %+d", best.Bookmaker, pickStr, best.AmericanOdds)

	return g.buildPick(game, domain.MarketTotals, pickStr, bestBook, confidence, []domain.Signal{totalSig}, atsSig), true
}

// buildPick assembles the final Pick, joining each contributing signal's
// reasoning into the combined explanation.
func (g *Generator) buildPick(
	game domain.GameRecord,
	market domain.MarketKey,
	pickStr, bestBook string,
	confidence domain.ConfidenceScore,
	primaries []domain.Signal,
	atsSig domain.Signal,
) domain.Pick {
	reasons := make([]string, 0, len(primaries)+1)
	for _, sig := range primaries {
		if sig.Detected {
			reasons = append(reasons, sig.Reasoning)
		}
	}
	if atsSig.Detected {
		reasons = append(reasons, atsSig.Reasoning)
	}

	pick := domain.Pick{
		ID:         uuid.Must(uuid.NewRandom()).String(),
		GameID:     game.GameID,
		Game:       game.Label(),
		Market:     market,
		Pick:       pickStr,
		Tier:       confidence.Tier,
		Confidence: confidence.Confidence,
		Signals:    confidence.Signals,
		Reasoning:  strings.Join(reasons, " | "),
		BestBook:   bestBook,
		Timestamp:  time.Now().UTC(),
	}

	g.logger.Info("pick generated",
		slog.String("tier", string(pick.Tier)),
		slog.String("pick", pick.Pick),
		slog.Float64("confidence", pick.Confidence),
	)
	return pick
}

func detectedOf(signals []domain.Signal) []domain.Signal {
	out := make([]domain.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Detected {
			out = append(out, sig)
		}
	}
	return out
}
