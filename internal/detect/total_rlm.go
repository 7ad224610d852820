package detect

import (
	"fmt"

	"github.com/epinal/sharpline/internal/domain"
)

// TotalRLMConfig holds the thresholds for total (over/under) reverse-line-
// movement detection.
type TotalRLMConfig struct {
	// MinTotalMove is the minimum total movement in points (inclusive).
	MinTotalMove float64
	// StrongTotalMove is the movement at which the confidence formula
	// switches to the strong band.
	StrongTotalMove float64
	// MinPublicThreshold is the minimum public share on the faded side
	// (inclusive).
	MinPublicThreshold float64
}

// DefaultTotalRLMConfig returns the production thresholds.
func DefaultTotalRLMConfig() TotalRLMConfig {
	return TotalRLMConfig{
		MinTotalMove:       2.0,
		StrongTotalMove:    4.0,
		MinPublicThreshold: 0.60,
	}
}

// TotalRLM detects reverse line movement on the game total: the total being
// bet down against an Over-heavy public (sharp under) or up against an
// Under-heavy public (sharp over).
type TotalRLM struct {
	cfg TotalRLMConfig
}

// NewTotalRLM creates a total RLM detector, validating the thresholds.
func NewTotalRLM(cfg TotalRLMConfig) (*TotalRLM, error) {
	if cfg.MinPublicThreshold <= 0 || cfg.MinPublicThreshold > 1 {
		return nil, fmt.Errorf("total_rlm: min_public_threshold %.2f out of (0,1]: %w",
			cfg.MinPublicThreshold, domain.ErrInvalidConfig)
	}
	if cfg.MinTotalMove <= 0 {
		return nil, fmt.Errorf("total_rlm: min_total_move %.2f must be positive: %w",
			cfg.MinTotalMove, domain.ErrInvalidConfig)
	}
	if cfg.StrongTotalMove < cfg.MinTotalMove {
		return nil, fmt.Errorf("total_rlm: strong_total_move %.2f below min_total_move %.2f: %w",
			cfg.StrongTotalMove, cfg.MinTotalMove, domain.ErrInvalidConfig)
	}
	return &TotalRLM{cfg: cfg}, nil
}

// Name returns the detector identifier.
func (d *TotalRLM) Name() string { return "total_rlm" }

// Type returns the signal type this detector emits.
func (d *TotalRLM) Type() domain.SignalType { return domain.SignalTotalRLM }

// confidence applies the two-band step function: movements at or beyond
// StrongTotalMove score 0.80 + 0.02 per extra point (capped at 0.90), weaker
// movements score 0.70 + 0.05 per point beyond MinTotalMove.
func (d *TotalRLM) confidence(magnitude float64) float64 {
	if magnitude >= d.cfg.StrongTotalMove {
		return min(0.90, 0.80+(magnitude-d.cfg.StrongTotalMove)*0.02)
	}
	return 0.70 + (magnitude-d.cfg.MinTotalMove)*0.05
}

// Detect fires "sharp on under" when the total drops by at least MinTotalMove
// while the public is on the Over, and "sharp on over" for the mirror case.
func (d *TotalRLM) Detect(game domain.GameRecord) domain.Signal {
	if game.OpeningTotal == nil || game.CurrentTotal == nil {
		return notDetected(domain.SignalTotalRLM, "Missing opening or current total data")
	}

	publicPctOver := pctOrDefault(game.PublicPctOver)
	publicPctUnder := 1.0 - publicPctOver
	totalMovement := *game.CurrentTotal - *game.OpeningTotal
	magnitude := totalMovement
	if magnitude < 0 {
		magnitude = -magnitude
	}

	switch {
	case totalMovement <= -d.cfg.MinTotalMove && publicPctOver >= d.cfg.MinPublicThreshold:
		return domain.Signal{
			Detected:   true,
			Type:       domain.SignalTotalRLM,
			SharpSide:  domain.SideUnder,
			Magnitude:  magnitude,
			Confidence: d.confidence(magnitude),
			Reasoning: fmt.Sprintf(
				"Total dropped %.1f pts (%g → %g) AGAINST %.0f%% public on Over. Sharp money on UNDER.",
				magnitude, *game.OpeningTotal, *game.CurrentTotal, publicPctOver*100,
			),
		}
	case totalMovement >= d.cfg.MinTotalMove && publicPctUnder >= d.cfg.MinPublicThreshold:
		return domain.Signal{
			Detected:   true,
			Type:       domain.SignalTotalRLM,
			SharpSide:  domain.SideOver,
			Magnitude:  magnitude,
			Confidence: d.confidence(magnitude),
			Reasoning: fmt.Sprintf(
				"Total rose %.1f pts (%g → %g) AGAINST %.0f%% public on Under. Sharp money on OVER.",
				totalMovement, *game.OpeningTotal, *game.CurrentTotal, publicPctUnder*100,
			),
		}
	default:
		sig := notDetected(domain.SignalTotalRLM, fmt.Sprintf(
			"No total RLM detected. Total movement: %+.1f, Public: %.0f%% Over",
			totalMovement, publicPctOver*100,
		))
		sig.Magnitude = magnitude
		return sig
	}
}
