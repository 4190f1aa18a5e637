// Package scoring implements the deterministic domain scoring engine:
// risk, rarity, momentum, and forecast scores plus a USD value estimate,
// each with ranked explainer factors.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is returned by New when the weights document is
// missing or malformed. Configuration errors fail at construction so a bad
// weights file cannot silently skew scores.
var ErrInvalidConfiguration = errors.New("invalid scoring configuration")

// Tier maps a continuous input to a discrete score. Bounds are inclusive
// upper limits evaluated in ascending order; the first match wins and the
// last tier is open-ended.
type Tier struct {
	Name  string  `mapstructure:"name" json:"name"`
	UpTo  float64 `mapstructure:"up_to" json:"up_to"`
	Score float64 `mapstructure:"score" json:"score"`
}

// RiskWeights configures the six risk signals. Expiry, Lock, Stability,
// Activity, and Registrar should sum to 1.0 by convention; the name-quality
// adjustment is additive outside that budget.
type RiskWeights struct {
	Expiry    float64 `mapstructure:"expiry" json:"expiry"`
	Lock      float64 `mapstructure:"lock" json:"lock"`
	Stability float64 `mapstructure:"stability" json:"stability"`
	Activity  float64 `mapstructure:"activity" json:"activity"`
	Registrar float64 `mapstructure:"registrar" json:"registrar"`

	AgeWeight     float64 `mapstructure:"age_weight" json:"age_weight"`
	RenewalWeight float64 `mapstructure:"renewal_weight" json:"renewal_weight"`
	OfferWeight   float64 `mapstructure:"offer_weight" json:"offer_weight"`
	RecencyWeight float64 `mapstructure:"recency_weight" json:"recency_weight"`

	ExpiryTiers  []Tier `mapstructure:"expiry_tiers" json:"expiry_tiers"`
	AgeTiers     []Tier `mapstructure:"age_tiers" json:"age_tiers"`
	RenewalTiers []Tier `mapstructure:"renewal_tiers" json:"renewal_tiers"`
	OfferTiers   []Tier `mapstructure:"offer_tiers" json:"offer_tiers"`
	RecencyTiers []Tier `mapstructure:"recency_tiers" json:"recency_tiers"`

	// Lock and registrar points are already weight-scaled contributions:
	// locked subtracts LockAdjustment, unlocked adds it.
	LockAdjustment    float64 `mapstructure:"lock_adjustment" json:"lock_adjustment"`
	RegistrarVerified float64 `mapstructure:"registrar_verified" json:"registrar_verified"`
	RegistrarKnown    float64 `mapstructure:"registrar_known" json:"registrar_known"`
	RegistrarUnknown  float64 `mapstructure:"registrar_unknown" json:"registrar_unknown"`

	NameLengthBands   []Tier  `mapstructure:"name_length_bands" json:"name_length_bands"`
	ObscureTLDPenalty float64 `mapstructure:"obscure_tld_penalty" json:"obscure_tld_penalty"`
	PremiumTLDBonus   float64 `mapstructure:"premium_tld_bonus" json:"premium_tld_bonus"`
	// Name-quality adjustments smaller than this are not surfaced as factors.
	NameAdjustmentMin float64 `mapstructure:"name_adjustment_min" json:"name_adjustment_min"`
}

// RarityWeights configures the four rarity signals.
type RarityWeights struct {
	Length      float64 `mapstructure:"length" json:"length"`
	WordMatch   float64 `mapstructure:"word_match" json:"word_match"`
	TLDScarcity float64 `mapstructure:"tld_scarcity" json:"tld_scarcity"`
	Demand      float64 `mapstructure:"demand" json:"demand"`

	// Length interpolation endpoints: names at or below MaxRarityLength
	// score 100, at or above MinRarityLength score 0, linear between.
	MaxRarityLength float64 `mapstructure:"max_rarity_length" json:"max_rarity_length"`
	MinRarityLength float64 `mapstructure:"min_rarity_length" json:"min_rarity_length"`

	DictionaryValue float64 `mapstructure:"dictionary_value" json:"dictionary_value"`
	BrandableValue  float64 `mapstructure:"brandable_value" json:"brandable_value"`
	BrandableMinLen int     `mapstructure:"brandable_min_len" json:"brandable_min_len"`
	BrandableMaxLen int     `mapstructure:"brandable_max_len" json:"brandable_max_len"`

	DemandPerOffer float64 `mapstructure:"demand_per_offer" json:"demand_per_offer"`
}

// MomentumWeights configures the three momentum signals.
type MomentumWeights struct {
	Trend  float64 `mapstructure:"trend" json:"trend"`
	Events float64 `mapstructure:"events" json:"events"`
	Search float64 `mapstructure:"search" json:"search"`

	// WeeklyRate normalizes a 7-day count to a 30-day-equivalent rate.
	WeeklyRate       float64 `mapstructure:"weekly_rate" json:"weekly_rate"`
	EventWindowHours float64 `mapstructure:"event_window_hours" json:"event_window_hours"`
	EventPoints      float64 `mapstructure:"event_points" json:"event_points"`
	SearchDefault    float64 `mapstructure:"search_default" json:"search_default"`
	SearchTrendShift float64 `mapstructure:"search_trend_shift" json:"search_trend_shift"`
}

// ForecastWeights configures the derived 6-month outlook score.
type ForecastWeights struct {
	BaseAnnualGrowth float64 `mapstructure:"base_annual_growth" json:"base_annual_growth"`
	RarityBoost      float64 `mapstructure:"rarity_boost" json:"rarity_boost"`
	MomentumDivisor  float64 `mapstructure:"momentum_divisor" json:"momentum_divisor"`
	RiskPenalty      float64 `mapstructure:"risk_penalty" json:"risk_penalty"`

	GrowthBase     float64 `mapstructure:"growth_base" json:"growth_base"`
	GrowthScale    float64 `mapstructure:"growth_scale" json:"growth_scale"`
	GrowthCap      float64 `mapstructure:"growth_cap" json:"growth_cap"`
	ConfidenceBand float64 `mapstructure:"confidence_band" json:"confidence_band"`
}

// ValueWeights configures the multiplicative value estimator.
type ValueWeights struct {
	BaseValue float64 `mapstructure:"base_value" json:"base_value"`
	MinValue  float64 `mapstructure:"min_value" json:"min_value"`

	// LengthBands map name length to a multiplier via Tier.Score.
	LengthBands []Tier `mapstructure:"length_bands" json:"length_bands"`

	HighKeywordMultiplier   float64 `mapstructure:"high_keyword_multiplier" json:"high_keyword_multiplier"`
	MediumKeywordMultiplier float64 `mapstructure:"medium_keyword_multiplier" json:"medium_keyword_multiplier"`
	ExactHighFactor         float64 `mapstructure:"exact_high_factor" json:"exact_high_factor"`
	ExactMediumFactor       float64 `mapstructure:"exact_medium_factor" json:"exact_medium_factor"`

	// TLDMultipliers are keyed by scarcity bucket name.
	TLDMultipliers map[string]float64 `mapstructure:"tld_multipliers" json:"tld_multipliers"`

	OfferFactor    float64 `mapstructure:"offer_factor" json:"offer_factor"`
	ActivityFactor float64 `mapstructure:"activity_factor" json:"activity_factor"`
	MarketCap      float64 `mapstructure:"market_cap" json:"market_cap"`

	MaxRiskDiscount   float64 `mapstructure:"max_risk_discount" json:"max_risk_discount"`
	MinRiskMultiplier float64 `mapstructure:"min_risk_multiplier" json:"min_risk_multiplier"`

	BaseGrowth           float64 `mapstructure:"base_growth" json:"base_growth"`
	MomentumGrowthFactor float64 `mapstructure:"momentum_growth_factor" json:"momentum_growth_factor"`
	RarityGrowthFactor   float64 `mapstructure:"rarity_growth_factor" json:"rarity_growth_factor"`
	RiskGrowthPenalty    float64 `mapstructure:"risk_growth_penalty" json:"risk_growth_penalty"`

	BaseConfidence        float64 `mapstructure:"base_confidence" json:"base_confidence"`
	ConfidenceStep        float64 `mapstructure:"confidence_step" json:"confidence_step"`
	ConfidenceCap         float64 `mapstructure:"confidence_cap" json:"confidence_cap"`
	ActiveMarketThreshold int     `mapstructure:"active_market_threshold" json:"active_market_threshold"`
	OfferThreshold        int     `mapstructure:"offer_threshold" json:"offer_threshold"`
}

// ReferenceTables hold the static lexical data the calculators consult.
// They are configuration, not code: callers can replace any of them without
// touching scoring logic.
type ReferenceTables struct {
	TLDBuckets    map[string]string  `mapstructure:"tld_buckets" json:"tld_buckets"`
	BucketScores  map[string]float64 `mapstructure:"bucket_scores" json:"bucket_scores"`
	DefaultBucket string             `mapstructure:"default_bucket" json:"default_bucket"`

	DictionaryWords     []string `mapstructure:"dictionary_words" json:"dictionary_words"`
	HighValueKeywords   []string `mapstructure:"high_value_keywords" json:"high_value_keywords"`
	MediumValueKeywords []string `mapstructure:"medium_value_keywords" json:"medium_value_keywords"`

	ObscureTLDs []string `mapstructure:"obscure_tlds" json:"obscure_tlds"`
	PremiumTLDs []string `mapstructure:"premium_tlds" json:"premium_tlds"`

	KnownRegistrars []int `mapstructure:"known_registrars" json:"known_registrars"`
}

// Weights is the versioned scoring configuration document. Sub-weights
// within each dimension should sum to 1.0 by convention so scores stay in
// their declared range; this is not enforced.
type Weights struct {
	Version  string          `mapstructure:"version" json:"version"`
	Risk     RiskWeights     `mapstructure:"risk" json:"risk"`
	Rarity   RarityWeights   `mapstructure:"rarity" json:"rarity"`
	Momentum MomentumWeights `mapstructure:"momentum" json:"momentum"`
	Forecast ForecastWeights `mapstructure:"forecast" json:"forecast"`
	Value    ValueWeights    `mapstructure:"value" json:"value"`
	Tables   ReferenceTables `mapstructure:"tables" json:"tables"`
}

// DefaultWeights returns the documented built-in configuration, version "1".
func DefaultWeights() *Weights {
	return &Weights{
		Version: "1",
		Risk: RiskWeights{
			Expiry:    0.35,
			Lock:      0.15,
			Stability: 0.20,
			Activity:  0.20,
			Registrar: 0.10,

			AgeWeight:     0.6,
			RenewalWeight: 0.4,
			OfferWeight:   0.6,
			RecencyWeight: 0.4,

			ExpiryTiers: []Tier{
				{Name: "critical", UpTo: 14, Score: 100},
				{Name: "urgent", UpTo: 30, Score: 85},
				{Name: "warning", UpTo: 60, Score: 65},
				{Name: "moderate", UpTo: 90, Score: 45},
				{Name: "stable", UpTo: 180, Score: 25},
				{Name: "safe", UpTo: 365, Score: 10},
				{Name: "very_low", UpTo: math.MaxFloat64, Score: 0},
			},
			AgeTiers: []Tier{
				{Name: "new", UpTo: 30, Score: 80},
				{Name: "young", UpTo: 90, Score: 55},
				{Name: "established", UpTo: 365, Score: 25},
				{Name: "mature", UpTo: math.MaxFloat64, Score: 10},
			},
			RenewalTiers: []Tier{
				{Name: "never", UpTo: 0, Score: 70},
				{Name: "rare", UpTo: 2, Score: 45},
				{Name: "normal", UpTo: 5, Score: 20},
				{Name: "frequent", UpTo: math.MaxFloat64, Score: 5},
			},
			OfferTiers: []Tier{
				{Name: "none", UpTo: 0, Score: 80},
				{Name: "low", UpTo: 2, Score: 60},
				{Name: "moderate", UpTo: 5, Score: 40},
				{Name: "high", UpTo: 10, Score: 20},
				{Name: "very_high", UpTo: math.MaxFloat64, Score: 10},
			},
			RecencyTiers: []Tier{
				{Name: "today", UpTo: 1, Score: 0},
				{Name: "this_week", UpTo: 7, Score: 10},
				{Name: "this_month", UpTo: 30, Score: 40},
				{Name: "this_quarter", UpTo: 90, Score: 70},
				{Name: "dormant", UpTo: math.MaxFloat64, Score: 90},
			},

			LockAdjustment:    15,
			RegistrarVerified: 0,
			RegistrarKnown:    5,
			RegistrarUnknown:  15,

			NameLengthBands: []Tier{
				{Name: "very_short", UpTo: 4, Score: -15},
				{Name: "short", UpTo: 8, Score: 0},
				{Name: "medium", UpTo: 12, Score: 8},
				{Name: "long", UpTo: 18, Score: 15},
				{Name: "very_long", UpTo: math.MaxFloat64, Score: 25},
			},
			ObscureTLDPenalty: 10,
			PremiumTLDBonus:   5,
			NameAdjustmentMin: 3,
		},
		Rarity: RarityWeights{
			Length:      0.40,
			WordMatch:   0.25,
			TLDScarcity: 0.25,
			Demand:      0.10,

			MaxRarityLength: 4,
			MinRarityLength: 12,

			DictionaryValue: 100,
			BrandableValue:  60,
			BrandableMinLen: 4,
			BrandableMaxLen: 8,

			DemandPerOffer: 20,
		},
		Momentum: MomentumWeights{
			Trend:  0.50,
			Events: 0.25,
			Search: 0.25,

			WeeklyRate:       4.3,
			EventWindowHours: 72,
			EventPoints:      33,
			SearchDefault:    50,
			SearchTrendShift: 0.15,
		},
		Forecast: ForecastWeights{
			BaseAnnualGrowth: 0.15,
			RarityBoost:      0.5,
			MomentumDivisor:  500,
			RiskPenalty:      0.3,

			GrowthBase:     40,
			GrowthScale:    120,
			GrowthCap:      60,
			ConfidenceBand: 8,
		},
		Value: ValueWeights{
			BaseValue: 100,
			MinValue:  100,

			LengthBands: []Tier{
				{Name: "ultra_short", UpTo: 3, Score: 50},
				{Name: "very_short", UpTo: 5, Score: 10},
				{Name: "short", UpTo: 7, Score: 5},
				{Name: "medium", UpTo: 10, Score: 2},
				{Name: "long", UpTo: math.MaxFloat64, Score: 1},
			},

			HighKeywordMultiplier:   15,
			MediumKeywordMultiplier: 5,
			ExactHighFactor:         2,
			ExactMediumFactor:       1.5,

			TLDMultipliers: map[string]float64{
				"ultra":    3,
				"rare":     2,
				"common":   1.2,
				"abundant": 0.8,
			},

			OfferFactor:    0.1,
			ActivityFactor: 0.02,
			MarketCap:      3,

			MaxRiskDiscount:   0.7,
			MinRiskMultiplier: 0.3,

			BaseGrowth:           0.075,
			MomentumGrowthFactor: 0.4,
			RarityGrowthFactor:   0.25,
			RiskGrowthPenalty:    0.15,

			BaseConfidence:        70,
			ConfidenceStep:        10,
			ConfidenceCap:         95,
			ActiveMarketThreshold: 10,
			OfferThreshold:        3,
		},
		Tables: ReferenceTables{
			TLDBuckets: map[string]string{
				"defi": "ultra", "dao": "ultra", "nft": "ultra", "x": "ultra",
				"ai": "rare", "io": "rare", "crypto": "rare", "eth": "rare",
				"com": "common", "net": "common", "org": "common", "co": "common",
				"xyz": "common", "app": "common", "dev": "common",
				"info": "abundant", "biz": "abundant", "online": "abundant",
				"site": "abundant", "club": "abundant", "top": "abundant",
			},
			BucketScores: map[string]float64{
				"ultra":    100,
				"rare":     70,
				"common":   40,
				"abundant": 10,
			},
			DefaultBucket: "common",

			DictionaryWords: []string{
				"app", "bank", "base", "book", "car", "cash", "chain", "cloud",
				"coin", "data", "defi", "game", "gold", "home", "link", "mail",
				"market", "money", "music", "news", "pay", "play", "shop",
				"smart", "store", "swap", "tech", "token", "trade", "wallet",
				"web", "world",
			},
			HighValueKeywords: []string{
				"ai", "chain", "coin", "crypto", "dao", "defi", "meta", "nft",
				"pay", "swap", "token", "wallet", "web3",
			},
			MediumValueKeywords: []string{
				"app", "cloud", "data", "game", "hub", "lab", "market", "net",
				"shop", "store", "tech",
			},

			ObscureTLDs: []string{"biz", "click", "download", "loan", "racing", "work"},
			PremiumTLDs: []string{"com", "net", "org", "io", "ai"},

			KnownRegistrars: []int{1, 2, 3, 5, 8, 13},
		},
	}
}

// Validate fails fast on a weights document that would produce skewed or
// undefined scores. All errors wrap ErrInvalidConfiguration.
func (w *Weights) Validate() error {
	if w.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidConfiguration)
	}
	if err := validateDimension("risk", map[string]float64{
		"expiry":    w.Risk.Expiry,
		"lock":      w.Risk.Lock,
		"stability": w.Risk.Stability,
		"activity":  w.Risk.Activity,
		"registrar": w.Risk.Registrar,
		"age":       w.Risk.AgeWeight,
		"renewal":   w.Risk.RenewalWeight,
		"offer":     w.Risk.OfferWeight,
		"recency":   w.Risk.RecencyWeight,
	}); err != nil {
		return err
	}
	if err := validateDimension("rarity", map[string]float64{
		"length":       w.Rarity.Length,
		"word_match":   w.Rarity.WordMatch,
		"tld_scarcity": w.Rarity.TLDScarcity,
		"demand":       w.Rarity.Demand,
	}); err != nil {
		return err
	}
	if err := validateDimension("momentum", map[string]float64{
		"trend":  w.Momentum.Trend,
		"events": w.Momentum.Events,
		"search": w.Momentum.Search,
	}); err != nil {
		return err
	}
	for name, tiers := range map[string][]Tier{
		"risk.expiry_tiers":      w.Risk.ExpiryTiers,
		"risk.age_tiers":         w.Risk.AgeTiers,
		"risk.renewal_tiers":     w.Risk.RenewalTiers,
		"risk.offer_tiers":       w.Risk.OfferTiers,
		"risk.recency_tiers":     w.Risk.RecencyTiers,
		"risk.name_length_bands": w.Risk.NameLengthBands,
		"value.length_bands":     w.Value.LengthBands,
	} {
		if err := validateTiers(name, tiers); err != nil {
			return err
		}
	}
	if w.Rarity.MinRarityLength <= w.Rarity.MaxRarityLength {
		return fmt.Errorf("%w: rarity length thresholds must satisfy max_rarity_length < min_rarity_length", ErrInvalidConfiguration)
	}
	if w.Momentum.WeeklyRate <= 0 {
		return fmt.Errorf("%w: momentum.weekly_rate must be positive", ErrInvalidConfiguration)
	}
	if w.Momentum.EventWindowHours <= 0 {
		return fmt.Errorf("%w: momentum.event_window_hours must be positive", ErrInvalidConfiguration)
	}
	if w.Forecast.MomentumDivisor == 0 {
		return fmt.Errorf("%w: forecast.momentum_divisor must not be zero", ErrInvalidConfiguration)
	}
	if w.Forecast.ConfidenceBand < 0 {
		return fmt.Errorf("%w: forecast.confidence_band must not be negative", ErrInvalidConfiguration)
	}
	if w.Value.BaseValue <= 0 {
		return fmt.Errorf("%w: value.base_value must be positive", ErrInvalidConfiguration)
	}
	if w.Value.MinValue <= 0 {
		return fmt.Errorf("%w: value.min_value must be positive", ErrInvalidConfiguration)
	}
	if w.Value.MinRiskMultiplier <= 0 || w.Value.MinRiskMultiplier > 1 {
		return fmt.Errorf("%w: value.min_risk_multiplier must be in (0,1]", ErrInvalidConfiguration)
	}
	if w.Value.MarketCap < 1 {
		return fmt.Errorf("%w: value.market_cap must be at least 1", ErrInvalidConfiguration)
	}
	if w.Value.ConfidenceCap < 0 || w.Value.ConfidenceCap > 95 {
		return fmt.Errorf("%w: value.confidence_cap must be between 0 and 95", ErrInvalidConfiguration)
	}
	if len(w.Value.TLDMultipliers) == 0 {
		return fmt.Errorf("%w: value.tld_multipliers must not be empty", ErrInvalidConfiguration)
	}
	if len(w.Tables.BucketScores) == 0 {
		return fmt.Errorf("%w: tables.bucket_scores must not be empty", ErrInvalidConfiguration)
	}
	if w.Tables.DefaultBucket == "" {
		return fmt.Errorf("%w: tables.default_bucket is required", ErrInvalidConfiguration)
	}
	if _, ok := w.Tables.BucketScores[w.Tables.DefaultBucket]; !ok {
		return fmt.Errorf("%w: tables.default_bucket %q has no bucket score", ErrInvalidConfiguration, w.Tables.DefaultBucket)
	}
	return nil
}

func validateDimension(dim string, fields map[string]float64) error {
	for name, v := range fields {
		if v <= 0 {
			return fmt.Errorf("%w: %s.%s weight must be positive", ErrInvalidConfiguration, dim, name)
		}
	}
	return nil
}

func validateTiers(name string, tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfiguration, name)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].UpTo <= tiers[i-1].UpTo {
			return fmt.Errorf("%w: %s bounds must be strictly ascending", ErrInvalidConfiguration, name)
		}
	}
	return nil
}

// lookupTier returns the first tier whose inclusive bound covers v; the last
// tier catches everything beyond the configured bounds.
func lookupTier(tiers []Tier, v float64) Tier {
	for _, t := range tiers {
		if v <= t.UpTo {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
