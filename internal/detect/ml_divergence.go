package detect

import (
	"fmt"

	"github.com/epinal/sharpline/internal/domain"
)

// MLDivergenceConfig holds the thresholds for moneyline-vs-spread divergence
// detection.
type MLDivergenceConfig struct {
	// MinDivergence is the minimum gap between ML and spread public shares
	// (inclusive).
	MinDivergence float64
	// StrongDivergence is the gap at which the confidence formula switches
	// to the strong band.
	StrongDivergence float64
}

// DefaultMLDivergenceConfig returns the production thresholds.
func DefaultMLDivergenceConfig() MLDivergenceConfig {
	return MLDivergenceConfig{
		MinDivergence:    0.15,
		StrongDivergence: 0.30,
	}
}

// MLDivergence detects a gap between the public's moneyline and spread
// positions on the home team. A big gap marks a public trap: "the team wins
// but does not cover" (or the reverse), with sharp money on the other read.
type MLDivergence struct {
	cfg MLDivergenceConfig
}

// NewMLDivergence creates an ML divergence detector, validating the
// thresholds.
func NewMLDivergence(cfg MLDivergenceConfig) (*MLDivergence, error) {
	if cfg.MinDivergence <= 0 || cfg.MinDivergence > 1 {
		return nil, fmt.Errorf("ml_divergence: min_divergence %.2f out of (0,1]: %w",
			cfg.MinDivergence, domain.ErrInvalidConfig)
	}
	if cfg.StrongDivergence < cfg.MinDivergence {
		return nil, fmt.Errorf("ml_divergence: strong_divergence %.2f below min_divergence %.2f: %w",
			cfg.StrongDivergence, cfg.MinDivergence, domain.ErrInvalidConfig)
	}
	return &MLDivergence{cfg: cfg}, nil
}

// Name returns the detector identifier.
func (d *MLDivergence) Name() string { return "ml_divergence" }

// Type returns the signal type this detector emits.
func (d *MLDivergence) Type() domain.SignalType { return domain.SignalMLDivergence }

// Detect fires when |ml% - spread%| on home reaches MinDivergence. More ML
// than spread money on home reads "home wins but doesn't cover", so the sharp
// side is the away dog with the points; the reverse gap puts the sharp side
// on home.
func (d *MLDivergence) Detect(game domain.GameRecord) domain.Signal {
	if game.PublicPctHomeML == nil || game.PublicPctHomeSpread == nil {
		return notDetected(domain.SignalMLDivergence, "Missing ML or spread public betting data")
	}

	mlPctHome := *game.PublicPctHomeML
	spreadPctHome := *game.PublicPctHomeSpread
	divergence := mlPctHome - spreadPctHome
	if divergence < 0 {
		divergence = -divergence
	}

	if divergence < d.cfg.MinDivergence {
		sig := notDetected(domain.SignalMLDivergence,
			fmt.Sprintf("No ML/Spread divergence detected. Gap: %.0f%%", divergence*100))
		sig.Magnitude = divergence
		return sig
	}

	var confidence float64
	if divergence >= d.cfg.StrongDivergence {
		confidence = min(0.85, 0.75+(divergence-d.cfg.StrongDivergence)*0.5)
	} else {
		confidence = 0.70 + (divergence-d.cfg.MinDivergence)*0.3
	}

	currentSpread := 0.0
	if game.CurrentSpread != nil {
		currentSpread = *game.CurrentSpread
	}

	var sharpSide domain.Side
	var reasoning string
	if mlPctHome > spreadPctHome {
		// Public: home wins outright but not by the margin. Sharp side is
		// the away dog getting points.
		sharpSide = domain.SideAway
		reasoning = fmt.Sprintf(
			"ML/Spread divergence: %.0f%% (%.0f%% ML vs %.0f%% spread on %s). Public says '%s wins but doesn't cover'. Sharp side: %s %+.1f",
			divergence*100, mlPctHome*100, spreadPctHome*100, game.HomeTeam,
			game.HomeTeam, game.AwayTeam, currentSpread,
		)
	} else {
		sharpSide = domain.SideHome
		reasoning = fmt.Sprintf(
			"ML/Spread divergence: %.0f%% (%.0f%% spread vs %.0f%% ML on %s). Public says '%s covers but might not win'. Sharp side: %s %+.1f",
			divergence*100, spreadPctHome*100, mlPctHome*100, game.HomeTeam,
			game.HomeTeam, game.HomeTeam, currentSpread,
		)
	}

	return domain.Signal{
		Detected:   true,
		Type:       domain.SignalMLDivergence,
		SharpSide:  sharpSide,
		Magnitude:  divergence,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}
