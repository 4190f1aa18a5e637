// Package models defines the core domain entities: domain descriptions, scores, and alerts.
package models

import (
	"errors"
	"time"
)

// Trend directions accepted on the optional search-interest signal.
const (
	TrendRising    = "rising"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// DomainEvent is a single on-chain or marketplace event observed for a domain.
type DomainEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// DomainDescription is the scoring input for one tokenized domain.
// Name holds the label only ("defi"), TLD the extension without dot ("com").
// Zero values are the documented defaults: counts default to 0, Locked to
// false, RegistrarID 0 means unknown, a zero TokenizedAt is treated as a
// 365-day-old domain, a nil SearchInterest as a neutral signal of 50.
type DomainDescription struct {
	TokenID      string    `json:"token_id"`
	Name         string    `json:"name"`
	TLD          string    `json:"tld"`
	ExpiresAt    time.Time `json:"expires_at"`
	Locked       bool      `json:"locked"`
	RegistrarID  int       `json:"registrar_id"`
	RenewalCount int       `json:"renewal_count"`
	OfferCount   int       `json:"offer_count"`
	Activity7d   int       `json:"activity_7d"`
	Activity30d  int       `json:"activity_30d"`

	RecentEvents []DomainEvent `json:"recent_events,omitempty"`
	TokenizedAt  time.Time     `json:"tokenized_at,omitempty"`

	SearchInterest *float64 `json:"search_interest,omitempty"`
	SearchTrend    string   `json:"search_trend,omitempty"`
}

// Validate checks the caller contract for a domain description.
// Expiry is load-bearing for risk scoring, so a zero timestamp is an error
// rather than a defaulted field.
func (d *DomainDescription) Validate() error {
	if d.Name == "" {
		return errors.New("domain name must not be empty")
	}
	if d.TLD == "" {
		return errors.New("domain TLD must not be empty")
	}
	if d.ExpiresAt.IsZero() {
		return errors.New("domain expiry timestamp must be set")
	}
	if d.RegistrarID < 0 {
		return errors.New("registrar ID must not be negative")
	}
	if d.RenewalCount < 0 {
		return errors.New("renewal count must not be negative")
	}
	if d.OfferCount < 0 {
		return errors.New("offer count must not be negative")
	}
	if d.Activity7d < 0 || d.Activity30d < 0 {
		return errors.New("activity counts must not be negative")
	}
	if d.SearchInterest != nil && (*d.SearchInterest < 0 || *d.SearchInterest > 100) {
		return errors.New("search interest must be between 0 and 100")
	}
	switch d.SearchTrend {
	case "", TrendRising, TrendDeclining, TrendStable:
	default:
		return errors.New("search trend must be rising, declining, or stable")
	}
	return nil
}
