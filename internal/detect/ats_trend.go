package detect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/epinal/sharpline/internal/domain"
)

// ATSTrendConfig holds the threshold for ATS streak-extreme analysis.
type ATSTrendConfig struct {
	// ExtremeThreshold is the cover rate at or above which a streak counts
	// as extreme hot; 1-ExtremeThreshold bounds the extreme cold band.
	ExtremeThreshold float64
}

// DefaultATSTrendConfig returns the production threshold.
func DefaultATSTrendConfig() ATSTrendConfig {
	return ATSTrendConfig{ExtremeThreshold: 0.70}
}

// ATSTrend flags teams on extreme against-the-spread streaks over their last
// 10 games and fades the streak: bet ON an extreme cold team, AGAINST an
// extreme hot one. This is a confirmation signal only; the scorer never lets
// it trigger a pick by itself.
type ATSTrend struct {
	cfg ATSTrendConfig
}

// NewATSTrend creates an ATS trend analyzer, validating the threshold.
func NewATSTrend(cfg ATSTrendConfig) (*ATSTrend, error) {
	if cfg.ExtremeThreshold <= 0.5 || cfg.ExtremeThreshold > 1 {
		return nil, fmt.Errorf("ats_extreme: extreme_threshold %.2f out of (0.5,1]: %w",
			cfg.ExtremeThreshold, domain.ErrInvalidConfig)
	}
	return &ATSTrend{cfg: cfg}, nil
}

// Name returns the detector identifier.
func (d *ATSTrend) Name() string { return "ats_extreme" }

// Type returns the signal type this detector emits.
func (d *ATSTrend) Type() domain.SignalType { return domain.SignalATSExtreme }

// Detect fires when exactly one team sits in an extreme band. Fading a cold
// streak carries 0.70 confidence; fading a hot streak 0.65, since hot streaks
// regress less reliably. Both teams extreme in the same direction, or
// neither, yields no signal.
func (d *ATSTrend) Detect(game domain.GameRecord) domain.Signal {
	homeRate, homeOK := parseATSRecord(game.HomeATSL10)
	awayRate, awayOK := parseATSRecord(game.AwayATSL10)

	if !homeOK || !awayOK {
		return notDetected(domain.SignalATSExtreme, "Missing or invalid ATS data")
	}

	coldBand := 1.0 - d.cfg.ExtremeThreshold
	homeCold := homeRate <= coldBand
	awayCold := awayRate <= coldBand
	homeHot := homeRate >= d.cfg.ExtremeThreshold
	awayHot := awayRate >= d.cfg.ExtremeThreshold

	magnitude := maxAbsDeviation(homeRate, awayRate)

	var sig domain.Signal
	switch {
	case homeCold && !awayCold:
		sig = domain.Signal{
			Detected: true, Type: domain.SignalATSExtreme,
			SharpSide: domain.SideHome, Confidence: 0.70,
			Reasoning: fmt.Sprintf("%s is %s ATS L10 (extreme cold streak). Fade the streak → bet %s.",
				game.HomeTeam, game.HomeATSL10, game.HomeTeam),
		}
	case awayCold && !homeCold:
		sig = domain.Signal{
			Detected: true, Type: domain.SignalATSExtreme,
			SharpSide: domain.SideAway, Confidence: 0.70,
			Reasoning: fmt.Sprintf("%s is %s ATS L10 (extreme cold streak). Fade the streak → bet %s.",
				game.AwayTeam, game.AwayATSL10, game.AwayTeam),
		}
	case homeHot && !awayHot:
		sig = domain.Signal{
			Detected: true, Type: domain.SignalATSExtreme,
			SharpSide: domain.SideAway, Confidence: 0.65,
			Reasoning: fmt.Sprintf("%s is %s ATS L10 (extreme hot streak). Fade the streak → bet %s.",
				game.HomeTeam, game.HomeATSL10, game.AwayTeam),
		}
	case awayHot && !homeHot:
		sig = domain.Signal{
			Detected: true, Type: domain.SignalATSExtreme,
			SharpSide: domain.SideHome, Confidence: 0.65,
			Reasoning: fmt.Sprintf("%s is %s ATS L10 (extreme hot streak). Fade the streak → bet %s.",
				game.AwayTeam, game.AwayATSL10, game.HomeTeam),
		}
	default:
		sig = notDetected(domain.SignalATSExtreme, fmt.Sprintf(
			"No extreme ATS trends. %s: %s, %s: %s",
			game.HomeTeam, game.HomeATSL10, game.AwayTeam, game.AwayATSL10,
		))
	}

	sig.Magnitude = magnitude
	return sig
}

// parseATSRecord converts a "W-L" record like "2-8" into a cover rate.
// Malformed or empty records report !ok and are treated as missing data.
func parseATSRecord(record string) (rate float64, ok bool) {
	winsStr, lossesStr, found := strings.Cut(record, "-")
	if !found {
		return 0, false
	}
	wins, err := strconv.Atoi(strings.TrimSpace(winsStr))
	if err != nil || wins < 0 {
		return 0, false
	}
	losses, err := strconv.Atoi(strings.TrimSpace(lossesStr))
	if err != nil || losses < 0 {
		return 0, false
	}
	total := wins + losses
	if total == 0 {
		return 0, false
	}
	return float64(wins) / float64(total), true
}

// maxAbsDeviation normalizes the stronger of the two teams' deviations from a
// .500 cover rate onto a 0-1 scale.
func maxAbsDeviation(homeRate, awayRate float64) float64 {
	h := homeRate - 0.5
	if h < 0 {
		h = -h
	}
	a := awayRate - 0.5
	if a < 0 {
		a = -a
	}
	return max(h, a) * 2.0
}
