package scoring

import (
	"fmt"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// momentum scores short-term trending interest; higher is hotter. Three
// weighted signals summed and clamped.
func (e *Engine) momentum(d *models.DomainDescription, now time.Time) (int, []models.ScoreFactor) {
	w := e.weights.Momentum
	factors := make([]models.ScoreFactor, 0, 3)
	var sum float64

	trend, delta := activityTrend(d, w)
	c := trend * w.Trend
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "activity_trend",
		Description:  fmt.Sprintf("7d activity vs 30d baseline (%+.0f%%)", delta),
		Value:        trend,
		Weight:       w.Trend,
		Contribution: c,
	})

	recent := recentEventCount(d.RecentEvents, now, w.EventWindowHours)
	events := clamp(float64(recent)*w.EventPoints, 0, 100)
	c = events * w.Events
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "recent_events",
		Description:  fmt.Sprintf("%d events in the last %.0fh", recent, w.EventWindowHours),
		Value:        events,
		Weight:       w.Events,
		Contribution: c,
	})

	search, searchDesc := searchPopularity(d, w)
	c = search * w.Search
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "search_popularity",
		Description:  searchDesc,
		Value:        search,
		Weight:       w.Search,
		Contribution: c,
	})

	return clampScore(sum), topFactors(factors, maxMomentumFactors)
}

// activityTrend compares the 7-day count, normalized to a 30-day-equivalent
// rate, against the 30-day baseline. With no baseline the delta stays 0, so
// a brand-new high-activity domain reads as neutral rather than spiking.
func activityTrend(d *models.DomainDescription, w MomentumWeights) (score, delta float64) {
	a7 := float64(nonNegative(d.Activity7d))
	a30 := float64(nonNegative(d.Activity30d))
	if a30 > 0 {
		delta = (a7*w.WeeklyRate - a30) / a30 * 100
	}
	return clamp(50+delta/2, 0, 100), delta
}

func recentEventCount(events []models.DomainEvent, now time.Time, windowHours float64) int {
	cutoff := now.Add(-time.Duration(windowHours * float64(time.Hour)))
	var n int
	for _, ev := range events {
		if !ev.Timestamp.Before(cutoff) && !ev.Timestamp.After(now) {
			n++
		}
	}
	return n
}

// searchPopularity uses the externally supplied trend signal, defaulting to
// a neutral 50 when absent, shifted by the trend direction before weighting.
func searchPopularity(d *models.DomainDescription, w MomentumWeights) (float64, string) {
	score := w.SearchDefault
	desc := "no search signal, assuming neutral interest"
	if d.SearchInterest != nil {
		score = clamp(*d.SearchInterest, 0, 100)
		desc = fmt.Sprintf("search interest %.0f", score)
	}
	switch d.SearchTrend {
	case models.TrendRising:
		score = clamp(score*(1+w.SearchTrendShift), 0, 100)
		desc += ", rising"
	case models.TrendDeclining:
		score = clamp(score*(1-w.SearchTrendShift), 0, 100)
		desc += ", declining"
	}
	return score, desc
}
