// Package tracker watches tracked domains across polls and raises alerts
// when offer counts jump. State merges by token ID with last-seen-count
// semantics and is checkpointed to storage.
package tracker

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aliserag/Dometrics-sub001/internal/logger"
	"github.com/Aliserag/Dometrics-sub001/internal/models"
	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
	"github.com/Aliserag/Dometrics-sub001/internal/storage"
)

type Config struct {
	OfferDelta         int
	TopK               int
	CooldownMultiplier int
	CheckpointInterval int
	Concurrency        int
}

func DefaultConfig() Config {
	return Config{
		OfferDelta:         1,
		TopK:               10,
		CooldownMultiplier: 5,
		CheckpointInterval: 12,
		Concurrency:        8,
	}
}

type notifiedRecord struct {
	OfferCount int
	SentAt     time.Time
}

type Tracker struct {
	storage         *storage.Storage
	engine          *scoring.Engine
	valuer          scoring.Valuer
	tracked         map[string]*models.TrackedDomain
	notifiedDomains map[string]notifiedRecord
	config          Config
	cycleCount      int
}

// New builds a tracker over the given engine and storage. The valuer may be
// nil; scoring then stays fully deterministic.
func New(s *storage.Storage, engine *scoring.Engine, valuer scoring.Valuer, config Config) *Tracker {
	t := &Tracker{
		storage:         s,
		engine:          engine,
		valuer:          valuer,
		tracked:         make(map[string]*models.TrackedDomain),
		notifiedDomains: make(map[string]notifiedRecord),
		config:          config,
	}

	persisted, err := s.LoadAllTracked()
	if err != nil {
		logger.Warn("Failed to load persisted tracked domains: %v", err)
	} else {
		t.tracked = persisted
		logger.Info("Loaded %d persisted tracked domains", len(persisted))
	}

	return t
}

type scoredDomain struct {
	domain models.DomainDescription
	scores *models.DomainScores
	err    error
}

// ProcessPoll scores every fetched domain, merges last-seen offer counts,
// and returns alerts for domains whose offer count jumped by at least the
// configured delta. The first sighting of a token records a baseline and
// never alerts.
func (t *Tracker) ProcessPoll(ctx context.Context, domains []models.DomainDescription) []models.OfferAlert {
	scored := t.scoreAll(ctx, domains)

	var alerts []models.OfferAlert
	var processed, firstSeen int
	now := time.Now()

	for _, sd := range scored {
		if sd.err != nil {
			logger.Warn("Failed to score %s.%s: %v", sd.domain.Name, sd.domain.TLD, sd.err)
			continue
		}
		d, scores := sd.domain, sd.scores
		processed++

		state, known := t.tracked[d.TokenID]
		if !known {
			state = &models.TrackedDomain{TokenID: d.TokenID}
			t.tracked[d.TokenID] = state
			firstSeen++
		}

		if known {
			delta := d.OfferCount - state.LastOfferCount
			if delta >= t.config.OfferDelta {
				alerts = append(alerts, models.OfferAlert{
					TokenID:        d.TokenID,
					Name:           d.Name,
					TLD:            d.TLD,
					OldOfferCount:  state.LastOfferCount,
					NewOfferCount:  d.OfferCount,
					OfferDelta:     delta,
					Risk:           scores.Risk,
					Rarity:         scores.Rarity,
					Momentum:       scores.Momentum,
					Forecast:       scores.Forecast,
					CurrentValue:   scores.CurrentValue,
					ProjectedValue: scores.ProjectedValue,
					DetectedAt:     now,
				})
			}
		}

		state.Name = d.Name
		state.TLD = d.TLD
		state.LastOfferCount = d.OfferCount
		state.LastActivity30d = d.Activity30d
		state.Risk = scores.Risk
		state.Rarity = scores.Rarity
		state.Momentum = scores.Momentum
		state.Forecast = scores.Forecast
		state.CurrentValue = scores.CurrentValue
		state.UpdatedAt = now

		// Snapshots and alerts reference the tracked row, so a first sighting
		// persists eagerly instead of waiting for the next checkpoint.
		if !known {
			if err := t.storage.SaveTracked(state); err != nil {
				logger.Warn("Failed to persist new tracked domain %s: %v", d.TokenID, err)
				continue
			}
		}

		if err := t.storage.AddSnapshot(d.TokenID, scores, now); err != nil {
			logger.Warn("Failed to store snapshot for %s: %v", d.TokenID, err)
		}
	}

	logger.Debug("Processed %d domains: %d first-seen, %d offer alerts",
		processed, firstSeen, len(alerts))

	t.cycleCount++
	if t.cycleCount%t.config.CheckpointInterval == 0 {
		t.checkpoint()
	}

	return alerts
}

// scoreAll scores domains concurrently with bounded parallelism. The engine
// is safe for concurrent use; per-domain failures are carried in the result
// rather than aborting the poll.
func (t *Tracker) scoreAll(ctx context.Context, domains []models.DomainDescription) []scoredDomain {
	scored := make([]scoredDomain, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Concurrency)

	for i := range domains {
		i := i
		g.Go(func() error {
			scored[i].domain = domains[i]
			scored[i].scores, scored[i].err = t.engine.ScoreWithValuation(gctx, &domains[i], t.valuer)
			return nil
		})
	}
	_ = g.Wait()
	return scored
}

func (t *Tracker) checkpoint() {
	for tokenID, state := range t.tracked {
		if err := t.storage.SaveTracked(state); err != nil {
			logger.Warn("Failed to checkpoint tracked domain %s: %v", tokenID, err)
		}
	}
}

// Shutdown persists all tracked state before the process exits.
func (t *Tracker) Shutdown() {
	logger.Info("Checkpointing %d tracked domains before shutdown", len(t.tracked))
	t.checkpoint()
}

// GroupByTLD bundles alerts per TLD for notification.
func (t *Tracker) GroupByTLD(alerts []models.OfferAlert) []models.AlertGroup {
	groups := make(map[string]*models.AlertGroup)

	for _, alert := range alerts {
		if _, exists := groups[alert.TLD]; !exists {
			groups[alert.TLD] = &models.AlertGroup{TLD: alert.TLD}
		}

		groups[alert.TLD].Domains = append(groups[alert.TLD].Domains, alert)
		if alert.ProjectedValue > groups[alert.TLD].BestValue {
			groups[alert.TLD].BestValue = alert.ProjectedValue
		}
	}

	for _, group := range groups {
		sort.Slice(group.Domains, func(i, j int) bool {
			return group.Domains[i].ProjectedValue > group.Domains[j].ProjectedValue
		})
	}

	result := make([]models.AlertGroup, 0, len(groups))
	for _, group := range groups {
		result = append(result, *group)
	}

	return result
}

// FilterRecentlySent drops alerts already notified within the cooldown,
// unless the offer count has kept climbing since the last notification.
func (t *Tracker) FilterRecentlySent(groups []models.AlertGroup, cooldown time.Duration) []models.AlertGroup {
	now := time.Now()
	var result []models.AlertGroup

	for _, group := range groups {
		var filtered []models.OfferAlert

		for _, alert := range group.Domains {
			rec, exists := t.notifiedDomains[alert.TokenID]

			if exists && now.Sub(rec.SentAt) < cooldown && alert.NewOfferCount <= rec.OfferCount {
				continue
			}

			filtered = append(filtered, alert)
		}

		if len(filtered) > 0 {
			newGroup := group
			newGroup.Domains = filtered
			newGroup.BestValue = filtered[0].ProjectedValue
			result = append(result, newGroup)
		}
	}

	return result
}

// RecordNotified remembers which domains were just notified, for cooldown.
func (t *Tracker) RecordNotified(groups []models.AlertGroup) {
	now := time.Now()
	for _, group := range groups {
		for _, alert := range group.Domains {
			t.notifiedDomains[alert.TokenID] = notifiedRecord{
				OfferCount: alert.NewOfferCount,
				SentAt:     now,
			}
		}
	}
}

// PostProcessAlerts groups, ranks, truncates to top K, and applies the
// notification cooldown.
func (t *Tracker) PostProcessAlerts(alerts []models.OfferAlert, pollInterval time.Duration) []models.AlertGroup {
	groups := t.GroupByTLD(alerts)

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].BestValue > groups[j].BestValue
	})

	if len(groups) > t.config.TopK {
		groups = groups[:t.config.TopK]
	}

	cooldown := time.Duration(t.config.CooldownMultiplier) * pollInterval
	groups = t.FilterRecentlySent(groups, cooldown)

	return groups
}
