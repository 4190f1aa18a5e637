package models

import "time"

// TrackedDomain is the per-token persisted state used for offer-spike
// detection. Records merge by token ID across runs with last-seen-count
// semantics.
type TrackedDomain struct {
	TokenID string
	Name    string
	TLD     string

	LastOfferCount  int
	LastActivity30d int

	Risk         int
	Rarity       int
	Momentum     int
	Forecast     int
	CurrentValue float64

	UpdatedAt time.Time
}

// OfferAlert records an offer-count jump on a tracked domain.
type OfferAlert struct {
	TokenID string
	Name    string
	TLD     string

	OldOfferCount int
	NewOfferCount int
	OfferDelta    int

	Risk           int
	Rarity         int
	Momentum       int
	Forecast       int
	CurrentValue   float64
	ProjectedValue float64

	DetectedAt time.Time
	Notified   bool
}

// AlertGroup bundles the alerts of one TLD for a single notification,
// ranked by the best projected value inside the group.
type AlertGroup struct {
	TLD       string
	BestValue float64
	Domains   []OfferAlert
}
