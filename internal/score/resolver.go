package score

import "github.com/epinal/sharpline/internal/domain"

// ResolveSharpSide picks the consensus side when multiple detected signals
// fire for the same market. Each detected signal casts a vote for its sharp
// side weighted by its own confidence; the side with the strictly higher
// total wins. An exact tie breaks toward the side of the single signal with
// the highest individual confidence, with the earlier signal in the input
// winning equal confidences, so the outcome is fully deterministic.
//
// ok is false when no detected signal named a side; callers must then skip
// the market entirely.
func ResolveSharpSide(signals []domain.Signal) (side domain.Side, ok bool) {
	votes := make(map[domain.Side]float64)
	var order []domain.Side // sides in first-seen order

	for _, sig := range signals {
		if !sig.Detected || sig.SharpSide == "" {
			continue
		}
		if _, seen := votes[sig.SharpSide]; !seen {
			order = append(order, sig.SharpSide)
		}
		votes[sig.SharpSide] += sig.Confidence
	}

	if len(order) == 0 {
		return "", false
	}

	winner := order[0]
	tied := false
	for _, s := range order[1:] {
		switch {
		case votes[s] > votes[winner]:
			winner, tied = s, false
		case votes[s] == votes[winner]:
			tied = true
		}
	}
	if !tied {
		return winner, true
	}

	// Exact vote tie: fall back to the strongest single signal, first in
	// input order on equal confidence.
	var strongest *domain.Signal
	for i := range signals {
		sig := &signals[i]
		if !sig.Detected || sig.SharpSide == "" {
			continue
		}
		if strongest == nil || sig.Confidence > strongest.Confidence {
			strongest = sig
		}
	}
	return strongest.SharpSide, true
}
