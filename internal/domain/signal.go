package domain

import "time"

// SignalType identifies which detector produced a Signal.
type SignalType string

const (
	SignalSpreadRLM    SignalType = "spread_rlm"
	SignalTotalRLM     SignalType = "total_rlm"
	SignalMLDivergence SignalType = "ml_divergence"
	SignalATSExtreme   SignalType = "ats_extreme"
)

// Signal is the result of one detector run on one game. A non-detected signal
// carries Confidence 0 and an empty SharpSide; Reasoning always explains the
// outcome, detected or not.
type Signal struct {
	Detected   bool
	Type       SignalType
	Confidence float64 // 0.0 to 1.0
	SharpSide  Side    // empty when not detected
	Magnitude  float64 // movement/divergence strength, >= 0
	Reasoning  string
}

// Tier is the discrete confidence bucket a pick is classified into.
type Tier string

const (
	Tier1    Tier = "TIER_1"
	Tier2    Tier = "TIER_2"
	TierLean Tier = "LEAN"
	TierPass Tier = "PASS"
)

// ConfidenceScore is the combined assessment across signals for one market.
type ConfidenceScore struct {
	Confidence  float64
	Tier        Tier
	Signals     []SignalType // detected primaries first, then confirmations
	SignalCount int
}

// Pick is a final betting recommendation for one (game, market) pair.
type Pick struct {
	ID         string       `json:"id"`
	GameID     string       `json:"game_id"`
	Game       string       `json:"game"` // "AWAY @ HOME"
	Market     MarketKey    `json:"market"`
	Pick       string       `json:"pick"` // e.g. "MIL +10.5" or "UNDER 218.5"
	Tier       Tier         `json:"tier"`
	Confidence float64      `json:"confidence"`
	Signals    []SignalType `json:"signals"`
	Reasoning  string       `json:"reasoning"`
	BestBook   string       `json:"best_book"` // e.g. "DraftKings MIL +10.5 -108"
	Timestamp  time.Time    `json:"timestamp"`
}
