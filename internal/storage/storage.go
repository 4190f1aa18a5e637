// Package storage provides SQLite-backed persistence for tracked domains,
// score snapshots, and offer alerts.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db         *sql.DB
	maxDomains int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/dometrics/data.db.
func New(maxDomains int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "dometrics", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Storage{db: db, maxDomains: maxDomains}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tracked_domains (
			token_id          TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			tld               TEXT NOT NULL,
			last_offer_count  INTEGER NOT NULL DEFAULT 0,
			last_activity_30d INTEGER NOT NULL DEFAULT 0,
			risk              INTEGER NOT NULL DEFAULT 0,
			rarity            INTEGER NOT NULL DEFAULT 0,
			momentum          INTEGER NOT NULL DEFAULT 0,
			forecast          INTEGER NOT NULL DEFAULT 0,
			current_value     REAL NOT NULL DEFAULT 0,
			updated_at        INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS score_snapshots (
			id              TEXT PRIMARY KEY,
			token_id        TEXT NOT NULL REFERENCES tracked_domains(token_id) ON DELETE CASCADE,
			risk            INTEGER NOT NULL,
			rarity          INTEGER NOT NULL,
			momentum        INTEGER NOT NULL,
			forecast        INTEGER NOT NULL,
			forecast_low    REAL NOT NULL,
			forecast_high   REAL NOT NULL,
			current_value   REAL NOT NULL,
			projected_value REAL NOT NULL,
			confidence      INTEGER NOT NULL,
			scored_at       INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS offer_alerts (
			id              TEXT PRIMARY KEY,
			token_id        TEXT NOT NULL REFERENCES tracked_domains(token_id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			tld             TEXT NOT NULL,
			old_offers      INTEGER NOT NULL,
			new_offers      INTEGER NOT NULL,
			offer_delta     INTEGER NOT NULL,
			risk            INTEGER NOT NULL,
			rarity          INTEGER NOT NULL,
			momentum        INTEGER NOT NULL,
			forecast        INTEGER NOT NULL,
			current_value   REAL NOT NULL,
			projected_value REAL NOT NULL,
			detected_at     INTEGER NOT NULL,
			notified        INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_token ON score_snapshots(token_id, scored_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_detected_at ON offer_alerts(detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_value ON offer_alerts(projected_value DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveTracked upserts one tracked-domain record; records merge by token ID.
func (s *Storage) SaveTracked(d *models.TrackedDomain) error {
	if d.TokenID == "" {
		return fmt.Errorf("tracked domain token ID must not be empty")
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO tracked_domains
			(token_id, name, tld, last_offer_count, last_activity_30d,
			 risk, rarity, momentum, forecast, current_value, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		d.TokenID, d.Name, d.TLD, d.LastOfferCount, d.LastActivity30d,
		d.Risk, d.Rarity, d.Momentum, d.Forecast, d.CurrentValue,
		d.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save tracked domain: %w", err)
	}
	return nil
}

const trackedCols = `token_id, name, tld, last_offer_count, last_activity_30d,
	risk, rarity, momentum, forecast, current_value, updated_at`

func scanTracked(scan func(...any) error) (*models.TrackedDomain, error) {
	var d models.TrackedDomain
	var updatedAtNano int64
	err := scan(
		&d.TokenID, &d.Name, &d.TLD, &d.LastOfferCount, &d.LastActivity30d,
		&d.Risk, &d.Rarity, &d.Momentum, &d.Forecast, &d.CurrentValue,
		&updatedAtNano,
	)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Unix(0, updatedAtNano)
	return &d, nil
}

// LoadTracked returns the persisted state for one token, or nil when the
// token has never been seen.
func (s *Storage) LoadTracked(tokenID string) (*models.TrackedDomain, error) {
	row := s.db.QueryRow(`SELECT `+trackedCols+` FROM tracked_domains WHERE token_id = ?`, tokenID)
	d, err := scanTracked(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked domain: %w", err)
	}
	return d, nil
}

// LoadAllTracked returns every persisted tracked-domain record keyed by token ID.
func (s *Storage) LoadAllTracked() (map[string]*models.TrackedDomain, error) {
	rows, err := s.db.Query(`SELECT ` + trackedCols + ` FROM tracked_domains`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked domains: %w", err)
	}
	defer rows.Close()

	tracked := make(map[string]*models.TrackedDomain)
	for rows.Next() {
		d, err := scanTracked(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked domain: %w", err)
		}
		tracked[d.TokenID] = d
	}
	return tracked, rows.Err()
}

// AddSnapshot records one scoring result for a token's history.
func (s *Storage) AddSnapshot(tokenID string, scores *models.DomainScores, scoredAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO score_snapshots
			(id, token_id, risk, rarity, momentum, forecast,
			 forecast_low, forecast_high, current_value, projected_value,
			 confidence, scored_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), tokenID,
		scores.Risk, scores.Rarity, scores.Momentum, scores.Forecast,
		scores.ForecastLow, scores.ForecastHigh,
		scores.CurrentValue, scores.ProjectedValue, scores.ValueConfidence,
		scoredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// CountSnapshots returns the number of stored snapshots for a token.
func (s *Storage) CountSnapshots(tokenID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM score_snapshots WHERE token_id = ?`, tokenID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// AddAlert records one offer-spike alert.
func (s *Storage) AddAlert(a *models.OfferAlert) error {
	_, err := s.db.Exec(`
		INSERT INTO offer_alerts
			(id, token_id, name, tld, old_offers, new_offers, offer_delta,
			 risk, rarity, momentum, forecast, current_value, projected_value,
			 detected_at, notified)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), a.TokenID, a.Name, a.TLD,
		a.OldOfferCount, a.NewOfferCount, a.OfferDelta,
		a.Risk, a.Rarity, a.Momentum, a.Forecast,
		a.CurrentValue, a.ProjectedValue,
		a.DetectedAt.UnixNano(), boolToInt(a.Notified),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetTopAlerts returns the k alerts with the highest projected value.
func (s *Storage) GetTopAlerts(k int) ([]models.OfferAlert, error) {
	rows, err := s.db.Query(`
		SELECT token_id, name, tld, old_offers, new_offers, offer_delta,
		       risk, rarity, momentum, forecast, current_value, projected_value,
		       detected_at, notified
		FROM offer_alerts ORDER BY projected_value DESC LIMIT ?`, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.OfferAlert
	for rows.Next() {
		var a models.OfferAlert
		var detectedAtNano int64
		var notified int

		err := rows.Scan(
			&a.TokenID, &a.Name, &a.TLD,
			&a.OldOfferCount, &a.NewOfferCount, &a.OfferDelta,
			&a.Risk, &a.Rarity, &a.Momentum, &a.Forecast,
			&a.CurrentValue, &a.ProjectedValue,
			&detectedAtNano, &notified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		a.DetectedAt = time.Unix(0, detectedAtNano)
		a.Notified = notified != 0
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// ClearAlerts deletes every stored alert.
func (s *Storage) ClearAlerts() error {
	if _, err := s.db.Exec(`DELETE FROM offer_alerts`); err != nil {
		return fmt.Errorf("failed to clear alerts: %w", err)
	}
	return nil
}

// RotateDomains keeps at most maxDomains newest tracked domains by
// updated_at. Cascading deletes remove associated snapshots and alerts.
func (s *Storage) RotateDomains() error {
	_, err := s.db.Exec(`
		DELETE FROM tracked_domains WHERE token_id NOT IN (
			SELECT token_id FROM tracked_domains ORDER BY updated_at DESC LIMIT ?
		)`, s.maxDomains)
	if err != nil {
		return fmt.Errorf("failed to rotate tracked domains: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
