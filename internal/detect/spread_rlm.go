package detect

import (
	"fmt"

	"github.com/epinal/sharpline/internal/domain"
)

// SpreadRLMConfig holds the thresholds for spread reverse-line-movement
// detection.
type SpreadRLMConfig struct {
	// MinPublicThreshold is the minimum public share on one side for that
	// side to count as "heavily bet" (inclusive).
	MinPublicThreshold float64
	// MinLineMove is the line movement in points that must be exceeded
	// (strictly) for the move to count.
	MinLineMove float64
}

// DefaultSpreadRLMConfig returns the production thresholds.
func DefaultSpreadRLMConfig() SpreadRLMConfig {
	return SpreadRLMConfig{
		MinPublicThreshold: 0.55,
		MinLineMove:        1.5,
	}
}

// SpreadRLM detects reverse line movement on the spread: the line moving
// against the side holding the majority of public bets, read as sharp money
// on the other side.
type SpreadRLM struct {
	cfg SpreadRLMConfig
}

// NewSpreadRLM creates a spread RLM detector, validating the thresholds.
func NewSpreadRLM(cfg SpreadRLMConfig) (*SpreadRLM, error) {
	if cfg.MinPublicThreshold <= 0 || cfg.MinPublicThreshold > 1 {
		return nil, fmt.Errorf("spread_rlm: min_public_threshold %.2f out of (0,1]: %w",
			cfg.MinPublicThreshold, domain.ErrInvalidConfig)
	}
	if cfg.MinLineMove <= 0 {
		return nil, fmt.Errorf("spread_rlm: min_line_move %.2f must be positive: %w",
			cfg.MinLineMove, domain.ErrInvalidConfig)
	}
	return &SpreadRLM{cfg: cfg}, nil
}

// Name returns the detector identifier.
func (d *SpreadRLM) Name() string { return "spread_rlm" }

// Type returns the signal type this detector emits.
func (d *SpreadRLM) Type() domain.SignalType { return domain.SignalSpreadRLM }

// Detect fires "sharp on away" when the home line moves up (toward away) by
// more than MinLineMove despite the public majority sitting on home, and
// symmetrically "sharp on home" for a downward move against an away-heavy
// public. Confidence rises linearly with movement beyond the threshold,
// capped at 0.90.
func (d *SpreadRLM) Detect(game domain.GameRecord) domain.Signal {
	if game.OpeningSpread == nil || game.CurrentSpread == nil {
		return notDetected(domain.SignalSpreadRLM, "Missing opening or current spread data")
	}

	publicPctHome := pctOrDefault(game.PublicPctHome)
	lineMovement := *game.CurrentSpread - *game.OpeningSpread
	publicOnAway := 1.0 - publicPctHome
	magnitude := lineMovement
	if magnitude < 0 {
		magnitude = -magnitude
	}

	publicOnHomeStrong := publicPctHome >= d.cfg.MinPublicThreshold
	publicOnAwayStrong := publicOnAway >= d.cfg.MinPublicThreshold

	switch {
	case publicOnHomeStrong && lineMovement > d.cfg.MinLineMove:
		// Line moved toward away despite the public on home: sharp on away.
		return domain.Signal{
			Detected:   true,
			Type:       domain.SignalSpreadRLM,
			SharpSide:  domain.SideAway,
			Magnitude:  magnitude,
			Confidence: min(0.90, 0.75+(magnitude-d.cfg.MinLineMove)*0.05),
			Reasoning: fmt.Sprintf(
				"Line moved %+.1f pts AGAINST %s despite %.0f%% public on %s. Sharp money on %s.",
				lineMovement, game.HomeTeam, publicPctHome*100, game.HomeTeam, game.AwayTeam,
			),
		}
	case publicOnAwayStrong && lineMovement < -d.cfg.MinLineMove:
		return domain.Signal{
			Detected:   true,
			Type:       domain.SignalSpreadRLM,
			SharpSide:  domain.SideHome,
			Magnitude:  magnitude,
			Confidence: min(0.90, 0.75+(magnitude-d.cfg.MinLineMove)*0.05),
			Reasoning: fmt.Sprintf(
				"Line moved %+.1f pts AGAINST %s despite %.0f%% public on %s. Sharp money on %s.",
				lineMovement, game.AwayTeam, publicOnAway*100, game.AwayTeam, game.HomeTeam,
			),
		}
	default:
		sig := notDetected(domain.SignalSpreadRLM, fmt.Sprintf(
			"No RLM detected. Line movement: %+.1f, Public: %.0f%% %s",
			lineMovement, publicPctHome*100, game.HomeTeam,
		))
		sig.Magnitude = magnitude
		return sig
	}
}
