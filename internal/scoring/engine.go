package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// ErrInvalidTimestamp is returned when a load-bearing timestamp (expiry) is
// missing or unparseable. Optional timestamps default instead.
var ErrInvalidTimestamp = errors.New("invalid domain timestamp")

// Days a domain with no tokenization date is assumed to have existed.
const defaultAgeDays = 365

// ValuationRequest carries the attributes the external valuation
// collaborator evaluates.
type ValuationRequest struct {
	Name            string  `json:"name"`
	TLD             string  `json:"tld"`
	DaysUntilExpiry float64 `json:"days_until_expiry"`
	OfferCount      int     `json:"offer_count"`
	Activity30d     int     `json:"activity_30d"`
	RegistrarID     int     `json:"registrar_id"`
	TransferLock    bool    `json:"transfer_lock"`
}

// ValuationResult is the collaborator's value estimate.
type ValuationResult struct {
	CurrentValue   float64
	ProjectedValue float64
	Confidence     int
	Factors        []models.ScoreFactor
}

// Valuer is the optional external valuation collaborator. Implementations
// may fail or time out; the engine always recovers with its deterministic
// estimator and never surfaces a Valuer error to the caller.
type Valuer interface {
	Evaluate(ctx context.Context, req ValuationRequest) (*ValuationResult, error)
}

// Engine is a stateless scoring calculator over an immutable weights
// configuration. A single instance is safe for concurrent use: every
// calculation only reads configuration and writes call-local outputs.
type Engine struct {
	weights *Weights
	now     func() time.Time

	tldBucket       map[string]string
	bucketScore     map[string]float64
	dictionary      map[string]struct{}
	obscureTLDs     map[string]struct{}
	premiumTLDs     map[string]struct{}
	knownRegistrars map[int]struct{}
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock injects the time source used for day-count derivation. Tests
// freeze it so identical inputs yield bit-identical outputs.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New builds an engine from the given weights, or from DefaultWeights when
// w is nil. The weights document is validated here so a bad configuration
// fails at construction rather than at scoring time.
func New(w *Weights, opts ...Option) (*Engine, error) {
	if w == nil {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		weights:         w,
		now:             time.Now,
		tldBucket:       w.Tables.TLDBuckets,
		bucketScore:     w.Tables.BucketScores,
		dictionary:      make(map[string]struct{}, len(w.Tables.DictionaryWords)),
		obscureTLDs:     make(map[string]struct{}, len(w.Tables.ObscureTLDs)),
		premiumTLDs:     make(map[string]struct{}, len(w.Tables.PremiumTLDs)),
		knownRegistrars: make(map[int]struct{}, len(w.Tables.KnownRegistrars)),
	}
	for _, word := range w.Tables.DictionaryWords {
		e.dictionary[word] = struct{}{}
	}
	for _, tld := range w.Tables.ObscureTLDs {
		e.obscureTLDs[tld] = struct{}{}
	}
	for _, tld := range w.Tables.PremiumTLDs {
		e.premiumTLDs[tld] = struct{}{}
	}
	for _, id := range w.Tables.KnownRegistrars {
		e.knownRegistrars[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Weights returns the configuration the engine was built with.
func (e *Engine) Weights() *Weights {
	return e.weights
}

// Score computes all four sub-scores, the value estimate, and the ranked
// explainer factors for one domain. It is a pure function of the input and
// the engine's weights; nothing is cached or mutated between calls.
func (e *Engine) Score(d *models.DomainDescription) (*models.DomainScores, error) {
	if d.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: expiry is required", ErrInvalidTimestamp)
	}
	now := e.now()

	risk, riskFactors := e.risk(d, now)
	rarity, rarityFactors := e.rarity(d)
	momentum, momentumFactors := e.momentum(d, now)
	forecast := e.forecast(risk, rarity, momentum)
	value := e.value(d, risk, rarity, momentum)

	return &models.DomainScores{
		Risk:     risk,
		Rarity:   rarity,
		Momentum: momentum,
		Forecast: forecast.Score,

		ForecastLow:  forecast.Low,
		ForecastHigh: forecast.High,

		CurrentValue:    value.Current,
		ProjectedValue:  value.Projected,
		ValueConfidence: value.Confidence,

		Explainers: models.Explainers{
			Risk:     riskFactors,
			Rarity:   rarityFactors,
			Momentum: momentumFactors,
			Forecast: forecast.Factors,
			Value:    value.Factors,
		},
	}, nil
}

// ScoreWithValuation scores the domain and, when a collaborator is given,
// replaces the deterministic value estimate with its answer. Any
// collaborator failure or timeout falls back to the deterministic
// estimator already present in the result, so the combined call never
// fails because of the collaborator.
func (e *Engine) ScoreWithValuation(ctx context.Context, d *models.DomainDescription, v Valuer) (*models.DomainScores, error) {
	scores, err := e.Score(d)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return scores, nil
	}

	req := ValuationRequest{
		Name:            d.Name,
		TLD:             d.TLD,
		DaysUntilExpiry: daysBetween(e.now(), d.ExpiresAt),
		OfferCount:      d.OfferCount,
		Activity30d:     d.Activity30d,
		RegistrarID:     d.RegistrarID,
		TransferLock:    d.Locked,
	}
	res, err := v.Evaluate(ctx, req)
	if err != nil || res == nil {
		return scores, nil
	}

	if res.CurrentValue >= e.weights.Value.MinValue {
		scores.CurrentValue = res.CurrentValue
	}
	if res.ProjectedValue >= e.weights.Value.MinValue {
		scores.ProjectedValue = res.ProjectedValue
	}
	if res.Confidence > 0 {
		scores.ValueConfidence = int(clamp(float64(res.Confidence), 0, e.weights.Value.ConfidenceCap))
	}
	if len(res.Factors) > 0 {
		scores.Explainers.Value = topFactors(res.Factors, maxValueFactors)
	}
	return scores, nil
}

// daysBetween returns fractional days from a to b, negative when b < a.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

// ageDays derives the domain age used by the stability signal. A missing
// tokenization date means the domain is treated as 365 days old.
func ageDays(d *models.DomainDescription, now time.Time) float64 {
	if d.TokenizedAt.IsZero() {
		return defaultAgeDays
	}
	return daysBetween(d.TokenizedAt, now)
}
