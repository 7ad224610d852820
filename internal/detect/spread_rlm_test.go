package detect

import (
	"math"
	"testing"

	"github.com/epinal/sharpline/internal/domain"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSpreadRLMDetect(t *testing.T) {
	d, err := NewSpreadRLM(DefaultSpreadRLMConfig())
	if err != nil {
		t.Fatalf("NewSpreadRLM: %v", err)
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
			name: "missing opening spread",
			game: domain.GameRecord{
				CurrentSpread: domain.Float(-5.5),
				PublicPctHome: domain.Float(0.65),
			},
			wantDetected: false,
		},
		{
			name: "missing current spread",
			game: domain.GameRecord{
				OpeningSpread: domain.Float(-7.5),
				PublicPctHome: domain.Float(0.65),
			},
			wantDetected: false,
		},
		{
			name: "line moves toward away against home-heavy public",
			game: domain.GameRecord{
				HomeTeam:      "Celtics",
				AwayTeam:      "Bucks",
				OpeningSpread: domain.Float(-7.5),
				CurrentSpread: domain.Float(-5.5),
				PublicPctHome: domain.Float(0.65),
			},
			wantDetected:   true,
			wantSide:       domain.SideAway,
			wantConfidence: 0.775,
			wantMagnitude:  2.0,
		},
		{
			name: "line moves toward home against away-heavy public",
			game: domain.GameRecord{
				HomeTeam:      "Celtics",
				AwayTeam:      "Bucks",
				OpeningSpread: domain.Float(-2.0),
				CurrentSpread: domain.Float(-4.0),
				PublicPctHome: domain.Float(0.40),
			},
			wantDetected:   true,
			wantSide:       domain.SideHome,
			wantConfidence: 0.775,
			wantMagnitude:  2.0,
		},
		{
			name: "movement exactly at threshold does not fire",
			game: domain.GameRecord{
				OpeningSpread: domain.Float(-7.0),
				CurrentSpread: domain.Float(-5.5),
				PublicPctHome: domain.Float(0.55),
			},
			wantDetected: false,
		},
		{
			name: "public below threshold does not fire",
			game: domain.GameRecord{
				OpeningSpread: domain.Float(-7.5),
				CurrentSpread: domain.Float(-5.5),
				PublicPctHome: domain.Float(0.50),
			},
			wantDetected: false,
		},
		{
			name: "confidence capped at 0.90 on a huge move",
			game: domain.GameRecord{
				OpeningSpread: domain.Float(-10.0),
				CurrentSpread: domain.Float(-5.0),
				PublicPctHome: domain.Float(0.70),
			},
			wantDetected:   true,
			wantSide:       domain.SideAway,
			wantConfidence: 0.90,
			wantMagnitude:  5.0,
		},
		{
			name: "nil public percentage defaults to even split and does not fire",
			game: domain.GameRecord{
				OpeningSpread: domain.Float(-7.5),
				CurrentSpread: domain.Float(-5.5),
			},
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := d.Detect(tt.game)

			if sig.Detected != tt.wantDetected {
				t.Fatalf("Detected = %v, want %v (reasoning: %s)", sig.Detected, tt.wantDetected, sig.Reasoning)
			}
			if sig.Type != domain.SignalSpreadRLM {
				t.Errorf("Type = %q, want %q", sig.Type, domain.SignalSpreadRLM)
			}
			if !tt.wantDetected {
				if sig.Confidence != 0 {
					t.Errorf("Confidence = %v, want 0 for non-detected signal", sig.Confidence)
				}
				if sig.SharpSide != "" {
					t.Errorf("SharpSide = %q, want empty for non-detected signal", sig.SharpSide)
				}
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
			if sig.Reasoning == "" {
				t.Error("Reasoning is empty")
			}
		})
	}
}

func TestNewSpreadRLMValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpreadRLMConfig
	}{
		{"zero public threshold", SpreadRLMConfig{MinPublicThreshold: 0, MinLineMove: 1.5}},
		{"public threshold above one", SpreadRLMConfig{MinPublicThreshold: 1.1, MinLineMove: 1.5}},
		{"zero line move", SpreadRLMConfig{MinPublicThreshold: 0.55, MinLineMove: 0}},
		{"negative line move", SpreadRLMConfig{MinPublicThreshold: 0.55, MinLineMove: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSpreadRLM(tt.cfg); err == nil {
				t.Errorf("NewSpreadRLM(%+v) succeeded, want error", tt.cfg)
			}
		})
	}
}
