package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return e
}

func testDomain(name, tld string, daysUntilExpiry float64) *models.DomainDescription {
	return &models.DomainDescription{
		TokenID:   name + "." + tld,
		Name:      name,
		TLD:       tld,
		ExpiresAt: testNow.Add(time.Duration(daysUntilExpiry * 24 * float64(time.Hour))),
	}
}

func TestNewWithNilWeights(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) should use defaults: %v", err)
	}
	if e.Weights().Version != "1" {
		t.Errorf("expected default weights version 1, got %q", e.Weights().Version)
	}
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	w := DefaultWeights()
	w.Risk.ExpiryTiers = nil
	_, err := New(w)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestScoreMissingExpiry(t *testing.T) {
	e := newTestEngine(t)
	d := testDomain("example", "com", 90)
	d.ExpiresAt = time.Time{}

	_, err := e.Score(d)
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestScoreRanges(t *testing.T) {
	e := newTestEngine(t)

	interest := 85.0
	domains := []*models.DomainDescription{
		testDomain("ab", "com", 10),
		testDomain("defi", "defi", 730),
		testDomain("longrandomstring", "biz", 45),
		{
			TokenID:      "busy.io",
			Name:         "busy",
			TLD:          "io",
			ExpiresAt:    testNow.Add(200 * 24 * time.Hour),
			Locked:       true,
			RegistrarID:  1,
			RenewalCount: 4,
			OfferCount:   7,
			Activity7d:   9,
			Activity30d:  20,
			TokenizedAt:  testNow.Add(-40 * 24 * time.Hour),
			RecentEvents: []models.DomainEvent{
				{Type: "offer", Timestamp: testNow.Add(-2 * time.Hour)},
				{Type: "transfer", Timestamp: testNow.Add(-50 * time.Hour)},
			},
			SearchInterest: &interest,
			SearchTrend:    models.TrendRising,
		},
	}

	for _, d := range domains {
		scores, err := e.Score(d)
		if err != nil {
			t.Fatalf("Score(%s): %v", d.TokenID, err)
		}
		for name, v := range map[string]int{
			"risk": scores.Risk, "rarity": scores.Rarity,
			"momentum": scores.Momentum, "forecast": scores.Forecast,
		} {
			if v < 0 || v > 100 {
				t.Errorf("%s: %s score %d out of [0,100]", d.TokenID, name, v)
			}
		}
		if scores.ForecastLow > float64(scores.Forecast) || scores.ForecastHigh < float64(scores.Forecast) {
			t.Errorf("%s: forecast %d outside band [%.0f,%.0f]",
				d.TokenID, scores.Forecast, scores.ForecastLow, scores.ForecastHigh)
		}
		if scores.CurrentValue < e.Weights().Value.MinValue {
			t.Errorf("%s: current value %.2f below floor", d.TokenID, scores.CurrentValue)
		}
		if scores.ProjectedValue < e.Weights().Value.MinValue {
			t.Errorf("%s: projected value %.2f below floor", d.TokenID, scores.ProjectedValue)
		}
		if scores.ValueConfidence < 0 || scores.ValueConfidence > 95 {
			t.Errorf("%s: confidence %d out of [0,95]", d.TokenID, scores.ValueConfidence)
		}
	}
}

func TestScoreIdempotent(t *testing.T) {
	e := newTestEngine(t)
	d := testDomain("swap", "io", 45)
	d.OfferCount = 3
	d.Activity7d = 2
	d.Activity30d = 5

	first, err := e.Score(d)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, err := e.Score(d)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("identical input produced different output:\n%s\n%s", a, b)
	}
}

func TestScoreExpiringShortPremium(t *testing.T) {
	// Two-character .com name ten days from expiry: high risk despite the
	// premium name, and notable rarity from its length.
	e := newTestEngine(t)
	scores, err := e.Score(testDomain("ab", "com", 10))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if scores.Risk < 60 {
		t.Errorf("risk = %d, want >= 60 for an imminently expiring domain", scores.Risk)
	}
	if scores.Rarity < 50 {
		t.Errorf("rarity = %d, want >= 50 for a 2-char name", scores.Rarity)
	}
}

func TestScoreLockedDictionaryUltra(t *testing.T) {
	// Locked dictionary word on an ultra-scarce TLD with live demand: risk
	// pinned to the floor, rarity pinned to the ceiling.
	e := newTestEngine(t)
	d := &models.DomainDescription{
		TokenID:      "defi.defi",
		Name:         "defi",
		TLD:          "defi",
		ExpiresAt:    testNow.Add(730 * 24 * time.Hour),
		Locked:       true,
		RegistrarID:  1,
		RenewalCount: 3,
		OfferCount:   10,
		Activity7d:   4,
		Activity30d:  12,
	}

	scores, err := e.Score(d)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores.Risk > 10 {
		t.Errorf("risk = %d, want near the low end", scores.Risk)
	}
	if scores.Rarity != 100 {
		t.Errorf("rarity = %d, want 100", scores.Rarity)
	}
}

func TestScoreExplainerCounts(t *testing.T) {
	e := newTestEngine(t)
	scores, err := e.Score(testDomain("wallet", "io", 120))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	checks := []struct {
		name    string
		factors []models.ScoreFactor
		max     int
	}{
		{"risk", scores.Explainers.Risk, maxRiskFactors},
		{"rarity", scores.Explainers.Rarity, maxRarityFactors},
		{"momentum", scores.Explainers.Momentum, maxMomentumFactors},
		{"forecast", scores.Explainers.Forecast, maxForecastFactors},
		{"value", scores.Explainers.Value, maxValueFactors},
	}
	for _, c := range checks {
		if len(c.factors) == 0 {
			t.Errorf("%s explainers empty", c.name)
		}
		if len(c.factors) > c.max {
			t.Errorf("%s explainers = %d, want at most %d", c.name, len(c.factors), c.max)
		}
		for i := 1; i < len(c.factors); i++ {
			prev := abs(c.factors[i-1].Contribution)
			cur := abs(c.factors[i].Contribution)
			if cur > prev {
				t.Errorf("%s explainers not sorted by |contribution|: %v then %v",
					c.name, prev, cur)
			}
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

type stubValuer struct {
	result *ValuationResult
	err    error
	calls  int
}

func (s *stubValuer) Evaluate(_ context.Context, _ ValuationRequest) (*ValuationResult, error) {
	s.calls++
	return s.result, s.err
}

func TestScoreWithValuationFallback(t *testing.T) {
	e := newTestEngine(t)
	d := testDomain("trade", "com", 120)

	base, err := e.Score(d)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	failing := &stubValuer{err: fmt.Errorf("service unavailable")}
	scores, err := e.ScoreWithValuation(context.Background(), d, failing)
	if err != nil {
		t.Fatalf("ScoreWithValuation should never fail on a collaborator error: %v", err)
	}
	if failing.calls != 1 {
		t.Errorf("valuer called %d times, want 1", failing.calls)
	}
	if scores.CurrentValue != base.CurrentValue || scores.ProjectedValue != base.ProjectedValue {
		t.Error("fallback should keep the deterministic estimate")
	}
}

func TestScoreWithValuationOverride(t *testing.T) {
	e := newTestEngine(t)
	d := testDomain("trade", "com", 120)

	v := &stubValuer{result: &ValuationResult{
		CurrentValue:   12500,
		ProjectedValue: 16000,
		Confidence:     88,
		Factors: []models.ScoreFactor{
			{Name: "comparable_sales", Contribution: 9000},
		},
	}}

	scores, err := e.ScoreWithValuation(context.Background(), d, v)
	if err != nil {
		t.Fatalf("ScoreWithValuation: %v", err)
	}
	if scores.CurrentValue != 12500 {
		t.Errorf("current value = %.2f, want 12500", scores.CurrentValue)
	}
	if scores.ProjectedValue != 16000 {
		t.Errorf("projected value = %.2f, want 16000", scores.ProjectedValue)
	}
	if scores.ValueConfidence != 88 {
		t.Errorf("confidence = %d, want 88", scores.ValueConfidence)
	}
	if len(scores.Explainers.Value) != 1 || scores.Explainers.Value[0].Name != "comparable_sales" {
		t.Errorf("value explainers not replaced: %+v", scores.Explainers.Value)
	}
}

func TestScoreWithValuationNilValuer(t *testing.T) {
	e := newTestEngine(t)
	d := testDomain("trade", "com", 120)

	scores, err := e.ScoreWithValuation(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("ScoreWithValuation: %v", err)
	}
	if scores.CurrentValue < e.Weights().Value.MinValue {
		t.Errorf("deterministic estimate missing: %.2f", scores.CurrentValue)
	}
}
