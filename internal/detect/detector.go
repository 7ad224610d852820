// Package detect implements the sharp-money signal detectors. Each detector
// is a stateless, pure function of one merged game record: it either fires
// with a confidence and a sharp side, or returns a non-detected signal with a
// reasoning string. Detectors never return errors at detection time; missing
// or malformed input data produces a non-detected signal instead.
package detect

import (
	"github.com/epinal/sharpline/internal/domain"
)

// Detector is a single sharp-money signal detector.
type Detector interface {
	Name() string
	Type() domain.SignalType
	Detect(game domain.GameRecord) domain.Signal
}

// notDetected builds the zero-confidence signal all detectors return when
// they decline to fire.
func notDetected(t domain.SignalType, reasoning string) domain.Signal {
	return domain.Signal{
		Detected:   false,
		Type:       t,
		Confidence: 0.0,
		Reasoning:  reasoning,
	}
}

// pctOrDefault dereferences an optional public percentage, falling back to an
// even 50/50 split when the sportsbook reported no figure.
func pctOrDefault(p *float64) float64 {
	if p == nil {
		return 0.5
	}
	return *p
}
