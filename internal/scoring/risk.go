package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// risk combines six signals into a 0-100 score; higher is riskier. Signals
// are summed unclamped, then the total is clamped, so a strong safety
// signal (long expiry, transfer lock) can cancel out risk elsewhere.
func (e *Engine) risk(d *models.DomainDescription, now time.Time) (int, []models.ScoreFactor) {
	w := e.weights.Risk
	factors := make([]models.ScoreFactor, 0, 6)
	var sum float64

	days := daysBetween(now, d.ExpiresAt)
	expiry := lookupTier(w.ExpiryTiers, days)
	c := expiry.Score * w.Expiry
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "expiry",
		Description:  fmt.Sprintf("expiry tier %s (%.0f days left)", expiry.Name, days),
		Value:        expiry.Score,
		Weight:       w.Expiry,
		Contribution: c,
	})

	// Lock points are weight-scaled already: locked is a safety signal that
	// subtracts risk, unlocked adds the same amount.
	lock := w.LockAdjustment
	lockDesc := "transfer lock disabled"
	if d.Locked {
		lock = -w.LockAdjustment
		lockDesc = "transfer lock enabled"
	}
	sum += lock
	factors = append(factors, models.ScoreFactor{
		Name:         "transfer_lock",
		Description:  lockDesc,
		Value:        lock,
		Weight:       w.Lock,
		Contribution: lock,
	})

	age := ageDays(d, now)
	ageTier := lookupTier(w.AgeTiers, age)
	renewals := nonNegative(d.RenewalCount)
	renewTier := lookupTier(w.RenewalTiers, float64(renewals))
	stability := ageTier.Score*w.AgeWeight + renewTier.Score*w.RenewalWeight
	c = stability * w.Stability
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "ownership_stability",
		Description:  fmt.Sprintf("age %s (%.0f days), renewals %s (%d)", ageTier.Name, age, renewTier.Name, renewals),
		Value:        stability,
		Weight:       w.Stability,
		Contribution: c,
	})

	offers := nonNegative(d.OfferCount)
	offerTier := lookupTier(w.OfferTiers, float64(offers))
	recency := activityRecencyDays(d)
	recencyTier := lookupTier(w.RecencyTiers, recency)
	activity := offerTier.Score*w.OfferWeight + recencyTier.Score*w.RecencyWeight
	c = activity * w.Activity
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "market_activity",
		Description:  fmt.Sprintf("offers %s (%d), activity %s", offerTier.Name, offers, recencyTier.Name),
		Value:        activity,
		Weight:       w.Activity,
		Contribution: c,
	})

	trust, trustDesc := e.registrarTrust(d.RegistrarID)
	sum += trust
	factors = append(factors, models.ScoreFactor{
		Name:         "registrar",
		Description:  trustDesc,
		Value:        trust,
		Weight:       w.Registrar,
		Contribution: trust,
	})

	// Name-quality adjustment sits outside the 1.0 weight budget and is only
	// surfaced as a factor when it moves the score meaningfully.
	adj := e.nameQuality(d)
	sum += adj
	if math.Abs(adj) > w.NameAdjustmentMin {
		factors = append(factors, models.ScoreFactor{
			Name:         "name_quality",
			Description:  fmt.Sprintf("%d-char name on .%s", len(d.Name), strings.ToLower(d.TLD)),
			Value:        adj,
			Weight:       1,
			Contribution: adj,
		})
	}

	return clampScore(sum), topFactors(factors, maxRiskFactors)
}

// activityRecencyDays derives a days-since-activity proxy from the rolling
// activity windows: 0 for activity this week, 15 for this month, 90 beyond.
func activityRecencyDays(d *models.DomainDescription) float64 {
	switch {
	case d.Activity7d > 0:
		return 0
	case d.Activity30d > 0:
		return 15
	default:
		return 90
	}
}

func (e *Engine) registrarTrust(id int) (float64, string) {
	w := e.weights.Risk
	switch {
	case id <= 0:
		return w.RegistrarUnknown, "registrar unknown"
	default:
		if _, ok := e.knownRegistrars[id]; ok {
			return w.RegistrarVerified, fmt.Sprintf("registrar %d verified", id)
		}
		return w.RegistrarKnown, fmt.Sprintf("registrar %d not on allowlist", id)
	}
}

func (e *Engine) nameQuality(d *models.DomainDescription) float64 {
	w := e.weights.Risk
	adj := lookupTier(w.NameLengthBands, float64(len(d.Name))).Score
	tld := strings.ToLower(d.TLD)
	if _, ok := e.obscureTLDs[tld]; ok {
		adj += w.ObscureTLDPenalty
	}
	if _, ok := e.premiumTLDs[tld]; ok {
		adj -= w.PremiumTLDBonus
	}
	return adj
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
