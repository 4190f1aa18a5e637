package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// valueResult is the deterministic USD estimate with its explainers.
type valueResult struct {
	Current    float64
	Projected  float64
	Confidence int
	Factors    []models.ScoreFactor
}

// value estimates a USD price through multiplicative layers: base, name
// length, keyword match, TLD scarcity, market activity, then a risk
// discount. Factor contributions record the USD delta each layer added or
// removed, so the explainers read in currency terms.
func (e *Engine) value(d *models.DomainDescription, risk, rarity, momentum int) valueResult {
	w := e.weights.Value
	name := strings.ToLower(d.Name)
	tld := strings.ToLower(d.TLD)
	factors := make([]models.ScoreFactor, 0, 5)

	base := w.BaseValue

	lengthBand := lookupTier(w.LengthBands, float64(len(name)))
	lengthValue := base * lengthBand.Score
	factors = append(factors, models.ScoreFactor{
		Name:         "name_length",
		Description:  fmt.Sprintf("%d-char name (%s band, x%.0f)", len(name), lengthBand.Name, lengthBand.Score),
		Value:        float64(len(name)),
		Weight:       lengthBand.Score,
		Contribution: lengthValue - base,
	})

	keywordMult, keyword, keywordMatched := e.keywordMultiplier(name, w)
	keywordValue := lengthValue * keywordMult
	keywordDesc := "no keyword match"
	if keywordMatched {
		keywordDesc = fmt.Sprintf("keyword %q (x%.1f)", keyword, keywordMult)
	}
	factors = append(factors, models.ScoreFactor{
		Name:         "keyword",
		Description:  keywordDesc,
		Value:        keywordMult,
		Weight:       keywordMult,
		Contribution: keywordValue - lengthValue,
	})

	bucket := e.tldBucketFor(tld)
	tldMult, ok := w.TLDMultipliers[bucket]
	if !ok {
		tldMult = w.TLDMultipliers[e.weights.Tables.DefaultBucket]
	}
	tldValue := keywordValue * tldMult
	factors = append(factors, models.ScoreFactor{
		Name:         "tld",
		Description:  fmt.Sprintf(".%s is a %s TLD (x%.1f)", tld, bucket, tldMult),
		Value:        tldMult,
		Weight:       tldMult,
		Contribution: tldValue - keywordValue,
	})

	offers := nonNegative(d.OfferCount)
	activity := nonNegative(d.Activity30d)
	marketMult := math.Min(1+float64(offers)*w.OfferFactor+float64(activity)*w.ActivityFactor, w.MarketCap)
	marketValue := tldValue * marketMult
	factors = append(factors, models.ScoreFactor{
		Name:         "market_activity",
		Description:  fmt.Sprintf("%d offers, %d events in 30d (x%.2f)", offers, activity, marketMult),
		Value:        marketMult,
		Weight:       marketMult,
		Contribution: marketValue - tldValue,
	})

	riskMult := math.Max(w.MinRiskMultiplier, 1-float64(risk)/100*w.MaxRiskDiscount)
	current := math.Max(marketValue*riskMult, w.MinValue)
	factors = append(factors, models.ScoreFactor{
		Name:         "risk_discount",
		Description:  fmt.Sprintf("risk %d discounts value (x%.2f)", risk, riskMult),
		Value:        float64(risk),
		Weight:       riskMult,
		Contribution: current - marketValue,
	})

	growth := w.BaseGrowth +
		(float64(momentum)-50)/100*w.MomentumGrowthFactor +
		float64(rarity)/100*w.RarityGrowthFactor -
		float64(risk)/100*w.RiskGrowthPenalty
	projected := math.Max(current*(1+growth), w.MinValue)

	confidence := w.BaseConfidence
	if activity > w.ActiveMarketThreshold {
		confidence += w.ConfidenceStep
	}
	if offers > w.OfferThreshold {
		confidence += w.ConfidenceStep
	}
	if keywordMatched {
		confidence += w.ConfidenceStep
	}

	return valueResult{
		Current:    current,
		Projected:  projected,
		Confidence: int(clamp(confidence, 0, w.ConfidenceCap)),
		Factors:    topFactors(factors, maxValueFactors),
	}
}

// keywordMultiplier checks the label against the high-value keyword set
// first, then the medium set. Substring matches use the set multiplier;
// an exact full-name match doubles it (high) or takes x1.5 (medium).
func (e *Engine) keywordMultiplier(name string, w ValueWeights) (mult float64, keyword string, matched bool) {
	for _, kw := range e.weights.Tables.HighValueKeywords {
		if !strings.Contains(name, kw) {
			continue
		}
		if name == kw {
			return w.HighKeywordMultiplier * w.ExactHighFactor, kw, true
		}
		return w.HighKeywordMultiplier, kw, true
	}
	for _, kw := range e.weights.Tables.MediumValueKeywords {
		if !strings.Contains(name, kw) {
			continue
		}
		if name == kw {
			return w.MediumKeywordMultiplier * w.ExactMediumFactor, kw, true
		}
		return w.MediumKeywordMultiplier, kw, true
	}
	return 1, "", false
}
