// Package score combines detector signals into a tiered confidence score and
// resolves the consensus sharp side when primary signals disagree.
package score

import (
	"fmt"

	"github.com/epinal/sharpline/internal/domain"
)

// maxConfirmationBoost caps the total confidence lift confirmation signals
// can contribute, no matter how many fire.
const maxConfirmationBoost = 0.10

// confidenceCeiling is the global upper bound on a boosted score.
const confidenceCeiling = 0.95

// Config holds the tier thresholds and the minimum-signal gate.
type Config struct {
	Tier1Threshold float64
	Tier2Threshold float64
	LeanThreshold  float64
	MinSignals     int
}

// DefaultConfig returns the production scoring thresholds.
func DefaultConfig() Config {
	return Config{
		Tier1Threshold: 0.85,
		Tier2Threshold: 0.75,
		LeanThreshold:  0.60,
		MinSignals:     2,
	}
}

// Scorer turns lists of detector signals into ConfidenceScores.
type Scorer struct {
	cfg Config
}

// New creates a Scorer, validating the threshold ordering and ranges.
func New(cfg Config) (*Scorer, error) {
	if cfg.Tier1Threshold <= 0 || cfg.Tier1Threshold > 1 {
		return nil, fmt.Errorf("score: tier1_threshold %.2f out of (0,1]: %w",
			cfg.Tier1Threshold, domain.ErrInvalidConfig)
	}
	if cfg.Tier2Threshold <= 0 || cfg.Tier2Threshold > cfg.Tier1Threshold {
		return nil, fmt.Errorf("score: tier2_threshold %.2f must be in (0, tier1]: %w",
			cfg.Tier2Threshold, domain.ErrInvalidConfig)
	}
	if cfg.LeanThreshold <= 0 || cfg.LeanThreshold > cfg.Tier2Threshold {
		return nil, fmt.Errorf("score: lean_threshold %.2f must be in (0, tier2]: %w",
			cfg.LeanThreshold, domain.ErrInvalidConfig)
	}
	if cfg.MinSignals < 1 {
		return nil, fmt.Errorf("score: min_signals %d must be at least 1: %w",
			cfg.MinSignals, domain.ErrInvalidConfig)
	}
	return &Scorer{cfg: cfg}, nil
}

// Score combines a flat list of signals. Fewer than MinSignals detected
// signals is an automatic PASS. The combined confidence is a self-weighted
// average: each signal is weighted by its own confidence, so strong signals
// pull the result toward themselves harder than a plain mean would.
func (s *Scorer) Score(signals []domain.Signal) domain.ConfidenceScore {
	detected := filterDetected(signals)

	if len(detected) < s.cfg.MinSignals {
		return domain.ConfidenceScore{
			Confidence:  0.0,
			Tier:        domain.TierPass,
			Signals:     []domain.SignalType{},
			SignalCount: len(detected),
		}
	}

	var weightedSum, weightTotal float64
	for _, sig := range detected {
		weightedSum += sig.Confidence * sig.Confidence
		weightTotal += sig.Confidence
	}

	confidence := 0.0
	if weightTotal > 0 {
		confidence = weightedSum / weightTotal
	}

	return domain.ConfidenceScore{
		Confidence:  confidence,
		Tier:        s.tier(confidence),
		Signals:     signalTypes(detected),
		SignalCount: len(detected),
	}
}

// ScoreWithBoost scores a market with separate primary and confirmation
// roles. Primaries are required triggers: with zero detected primaries the
// result is PASS no matter how strong the confirmations are. Detected
// confirmations lift the primary mean with harmonically diminishing returns
// (first up to +5%, second +2.5%, ...), capped at +10 points total, and the
// final confidence never exceeds 0.95.
func (s *Scorer) ScoreWithBoost(primary, confirmation []domain.Signal) domain.ConfidenceScore {
	detectedPrimary := filterDetected(primary)
	detectedConfirmation := filterDetected(confirmation)

	if len(detectedPrimary) == 0 {
		return domain.ConfidenceScore{
			Confidence:  0.0,
			Tier:        domain.TierPass,
			Signals:     []domain.SignalType{},
			SignalCount: 0,
		}
	}

	var primarySum float64
	for _, sig := range detectedPrimary {
		primarySum += sig.Confidence
	}
	primaryConfidence := primarySum / float64(len(detectedPrimary))

	var boost float64
	for i, sig := range detectedConfirmation {
		boost += sig.Confidence * (0.05 / float64(i+1))
	}
	if boost > maxConfirmationBoost {
		boost = maxConfirmationBoost
	}

	confidence := min(confidenceCeiling, primaryConfidence+boost)

	types := signalTypes(detectedPrimary)
	types = append(types, signalTypes(detectedConfirmation)...)

	return domain.ConfidenceScore{
		Confidence:  confidence,
		Tier:        s.tier(confidence),
		Signals:     types,
		SignalCount: len(detectedPrimary) + len(detectedConfirmation),
	}
}

func (s *Scorer) tier(confidence float64) domain.Tier {
	switch {
	case confidence >= s.cfg.Tier1Threshold:
		return domain.Tier1
	case confidence >= s.cfg.Tier2Threshold:
		return domain.Tier2
	case confidence >= s.cfg.LeanThreshold:
		return domain.TierLean
	default:
		return domain.TierPass
	}
}

func filterDetected(signals []domain.Signal) []domain.Signal {
	detected := make([]domain.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Detected {
			detected = append(detected, sig)
		}
	}
	return detected
}

func signalTypes(signals []domain.Signal) []domain.SignalType {
	types := make([]domain.SignalType, 0, len(signals))
	for _, sig := range signals {
		types = append(types, sig.Type)
	}
	return types
}
