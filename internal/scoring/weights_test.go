package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

func TestDefaultWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}
}

func TestWeightsValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *Weights)
	}{
		{
			name:   "missing version",
			mutate: func(w *Weights) { w.Version = "" },
		},
		{
			name:   "zero risk weight",
			mutate: func(w *Weights) { w.Risk.Expiry = 0 },
		},
		{
			name:   "negative rarity weight",
			mutate: func(w *Weights) { w.Rarity.Demand = -0.1 },
		},
		{
			name:   "empty expiry tiers",
			mutate: func(w *Weights) { w.Risk.ExpiryTiers = nil },
		},
		{
			name: "non-ascending tier bounds",
			mutate: func(w *Weights) {
				w.Risk.ExpiryTiers = []Tier{
					{Name: "a", UpTo: 30, Score: 100},
					{Name: "b", UpTo: 14, Score: 85},
				}
			},
		},
		{
			name:   "inverted rarity length thresholds",
			mutate: func(w *Weights) { w.Rarity.MinRarityLength = 3 },
		},
		{
			name:   "zero weekly rate",
			mutate: func(w *Weights) { w.Momentum.WeeklyRate = 0 },
		},
		{
			name:   "zero momentum divisor",
			mutate: func(w *Weights) { w.Forecast.MomentumDivisor = 0 },
		},
		{
			name:   "zero base value",
			mutate: func(w *Weights) { w.Value.BaseValue = 0 },
		},
		{
			name:   "risk multiplier above one",
			mutate: func(w *Weights) { w.Value.MinRiskMultiplier = 1.5 },
		},
		{
			name:   "empty tld multipliers",
			mutate: func(w *Weights) { w.Value.TLDMultipliers = nil },
		},
		{
			name:   "empty bucket scores",
			mutate: func(w *Weights) { w.Tables.BucketScores = nil },
		},
		{
			name:   "default bucket without score",
			mutate: func(w *Weights) { w.Tables.DefaultBucket = "mythic" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWeights()
			tt.mutate(w)
			err := w.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error should wrap ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestLookupTier(t *testing.T) {
	tiers := []Tier{
		{Name: "low", UpTo: 14, Score: 100},
		{Name: "mid", UpTo: 30, Score: 85},
		{Name: "high", UpTo: math.MaxFloat64, Score: 10},
	}

	tests := []struct {
		v    float64
		want string
	}{
		{0, "low"},
		{14, "low"}, // bounds are inclusive
		{14.5, "mid"},
		{30, "mid"},
		{31, "high"},
		{1e9, "high"},
		{-3, "low"},
	}

	for _, tt := range tests {
		if got := lookupTier(tiers, tt.v); got.Name != tt.want {
			t.Errorf("lookupTier(%v) = %s, want %s", tt.v, got.Name, tt.want)
		}
	}
}

func TestTopFactorsOrderAndTruncation(t *testing.T) {
	in := []models.ScoreFactor{
		{Name: "small", Contribution: 2},
		{Name: "negative", Contribution: -40},
		{Name: "big", Contribution: 35},
		{Name: "tie_b", Contribution: 10},
		{Name: "tie_a", Contribution: -10},
	}

	got := topFactors(in, 4)

	want := []string{"negative", "big", "tie_a", "tie_b"}
	if len(got) != len(want) {
		t.Fatalf("got %d factors, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("factor %d = %s, want %s", i, got[i].Name, name)
		}
	}
}
