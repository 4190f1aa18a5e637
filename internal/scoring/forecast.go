package scoring

import (
	"fmt"
	"math"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// forecastResult is the derived 6-month outlook with its confidence band.
type forecastResult struct {
	Score   int
	Low     float64
	High    float64
	Factors []models.ScoreFactor
}

// forecast derives a 6-month growth-adjusted score from the three primary
// scores; it never re-reads raw domain attributes. An annual growth rate is
// boosted by rarity, nudged by momentum, penalized by risk, compounded down
// to six months, and mapped onto the score scale.
func (e *Engine) forecast(risk, rarity, momentum int) forecastResult {
	w := e.weights.Forecast
	riskNorm := float64(risk) / 100
	rarityNorm := float64(rarity) / 100

	base := w.BaseAnnualGrowth
	rarityBoost := rarityNorm * w.RarityBoost
	momentumShift := (float64(momentum) - 50) / w.MomentumDivisor
	riskDrag := riskNorm * w.RiskPenalty
	annual := base + rarityBoost + momentumShift - riskDrag

	sixMonth := math.Sqrt(1+math.Max(0, annual)) - 1
	score := clampScore(w.GrowthBase + math.Min(sixMonth*w.GrowthScale, w.GrowthCap))

	// Band is fixed width, roughly 60% confidence at a 6-month horizon.
	low := clamp(float64(score)-w.ConfidenceBand, 0, 100)
	high := clamp(float64(score)+w.ConfidenceBand, 0, 100)

	// Each component expressed in annual percentage points for display.
	factors := []models.ScoreFactor{
		{
			Name:         "growth_potential",
			Description:  fmt.Sprintf("%.1f%% projected 6-month growth", sixMonth*100),
			Value:        sixMonth * 100,
			Weight:       1,
			Contribution: base * 100,
		},
		{
			Name:         "rarity_impact",
			Description:  fmt.Sprintf("rarity %d boosts growth", rarity),
			Value:        float64(rarity),
			Weight:       w.RarityBoost,
			Contribution: rarityBoost * 100,
		},
		{
			Name:         "momentum_impact",
			Description:  fmt.Sprintf("momentum %d vs neutral 50", momentum),
			Value:        float64(momentum),
			Weight:       1 / w.MomentumDivisor,
			Contribution: momentumShift * 100,
		},
		{
			Name:         "risk_impact",
			Description:  fmt.Sprintf("risk %d drags growth", risk),
			Value:        float64(risk),
			Weight:       w.RiskPenalty,
			Contribution: -riskDrag * 100,
		},
	}

	return forecastResult{
		Score:   score,
		Low:     low,
		High:    high,
		Factors: topFactors(factors, maxForecastFactors),
	}
}
