package scoring

import (
	"math"
	"sort"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// Explainer truncation per dimension.
const (
	maxRiskFactors     = 3
	maxRarityFactors   = 3
	maxMomentumFactors = 3
	maxForecastFactors = 2
	maxValueFactors    = 4
)

// topFactors sorts by descending absolute contribution and keeps at most n.
// Ties break on name so identical inputs always explain identically.
func topFactors(factors []models.ScoreFactor, n int) []models.ScoreFactor {
	sort.SliceStable(factors, func(i, j int) bool {
		ci, cj := math.Abs(factors[i].Contribution), math.Abs(factors[j].Contribution)
		if ci != cj {
			return ci > cj
		}
		return factors[i].Name < factors[j].Name
	})
	if len(factors) > n {
		factors = factors[:n]
	}
	return factors
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampScore rounds to an integer score in [0,100].
func clampScore(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}
