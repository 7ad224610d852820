package detect

import (
	"testing"

	"github.com/epinal/sharpline/internal/domain"
)

func TestATSTrendDetect(t *testing.T) {
	d, err := NewATSTrend(DefaultATSTrendConfig())
	if err != nil {
		t.Fatalf("NewATSTrend: %v", err)
	}

	tests := []struct {
		name           string
		game           domain.GameRecord
		wantDetected   bool
		wantSide       domain.Side
		wantConfidence float64
		wantMagnitude  float64
	}{
		{
			name:         "missing records",
			game:         domain.GameRecord{HomeTeam: "Heat", AwayTeam: "Magic"},
			wantDetected: false,
		},
		{
			name: "malformed record",
			game: domain.GameRecord{
				HomeATSL10: "seven and three",
				AwayATSL10: "5-5",
			},
			wantDetected: false,
		},
		{
			name: "home extreme cold, bet on home",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "2-8",
				AwayATSL10: "5-5",
			},
			wantDetected:   true,
			wantSide:       domain.SideHome,
			wantConfidence: 0.70,
			wantMagnitude:  0.6, // |0.2-0.5|*2
		},
		{
			name: "away extreme cold, bet on away",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "6-4",
				AwayATSL10: "1-9",
			},
			wantDetected:   true,
			wantSide:       domain.SideAway,
			wantConfidence: 0.70,
			wantMagnitude:  0.8,
		},
		{
			name: "home extreme hot, fade toward away",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "8-2",
				AwayATSL10: "5-5",
			},
			wantDetected:   true,
			wantSide:       domain.SideAway,
			wantConfidence: 0.65,
			wantMagnitude:  0.6,
		},
		{
			name: "away extreme hot, fade toward home",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "4-6",
				AwayATSL10: "9-1",
			},
			wantDetected:   true,
			wantSide:       domain.SideHome,
			wantConfidence: 0.65,
			wantMagnitude:  0.8,
		},
		{
			name: "both teams cold yields no signal",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "2-8",
				AwayATSL10: "3-7",
			},
			wantDetected: false,
		},
		{
			name: "neither team extreme yields no signal",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "6-4",
				AwayATSL10: "4-6",
			},
			wantDetected: false,
		},
		{
			name: "exactly at threshold counts as extreme",
			game: domain.GameRecord{
				HomeTeam:   "Heat",
				AwayTeam:   "Magic",
				HomeATSL10: "7-3",
				AwayATSL10: "5-5",
			},
			wantDetected:   true,
			wantSide:       domain.SideAway,
			wantConfidence: 0.65,
			wantMagnitude:  0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.game)

			if sig.Detected != tt.wantDetected {
				t.Fatalf("Detected = %v, want %v (reasoning: %s)", sig.Detected, tt.wantDetected, sig.Reasoning)
			}
			if !tt.wantDetected {
				return
			}
			if sig.SharpSide != tt.wantSide {
				t.Errorf("SharpSide = %q, want %q", sig.SharpSide, tt.wantSide)
			}
			if !approx(sig.Confidence, tt.wantConfidence) {
				t.Errorf("Confidence = %v, want %v", sig.Confidence, tt.wantConfidence)
			}
			if !approx(sig.Magnitude, tt.wantMagnitude) {
				t.Errorf("Magnitude = %v, want %v", sig.Magnitude, tt.wantMagnitude)
			}
		})
	}
}

func TestParseATSRecord(t *testing.T) {
	tests := []struct {
		record   string
		wantRate float64
		wantOK   bool
	}{
		{"7-3", 0.7, true},
		{"0-10", 0.0, true},
		{"10-0", 1.0, true},
		{" 6 - 4 ", 0.6, true},
		{"", 0, false},
		{"7", 0, false},
		{"7-3-1", 0, false},
		{"-2-8", 0, false},
		{"0-0", 0, false},
		{"a-b", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.record, func(t *testing.T) {
			rate, ok := parseATSRecord(tt.record)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !approx(rate, tt.wantRate) {
				t.Errorf("rate = %v, want %v", rate, tt.wantRate)
			}
		})
	}
}
