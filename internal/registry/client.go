// Package registry reads tokenized-domain records from a registry/subgraph
// gateway. The engine makes no assumptions about how this data is obtained;
// this client is the external data collaborator feeding it.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/logger"
	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// Client provides access to the registry gateway API.
type Client struct {
	apiURL     string
	httpClient *http.Client

	maxRetries     int
	retryDelayBase time.Duration
}

// ClientConfig tunes retry behavior.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// tokenRecord is one tokenized domain as the gateway serves it.
type tokenRecord struct {
	TokenID      string        `json:"tokenId"`
	Name         string        `json:"name"`
	TLD          string        `json:"tld"`
	ExpiresAt    string        `json:"expiresAt"`
	TransferLock bool          `json:"transferLock"`
	RegistrarID  int           `json:"registrarId"`
	RenewalCount int           `json:"renewalCount"`
	OfferCount   int           `json:"offerCount"`
	Activity7d   int           `json:"activity7d"`
	Activity30d  int           `json:"activity30d"`
	TokenizedAt  string        `json:"tokenizedAt"`
	Events       []tokenEvent  `json:"events"`
	SearchTrend  *searchSignal `json:"searchTrend"`
}

type tokenEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type searchSignal struct {
	Interest  float64 `json:"interest"`
	Direction string  `json:"direction"`
}

// NewClient creates a new registry client.
func NewClient(apiURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		apiURL:         apiURL,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// FetchDomains retrieves tokenized domains, optionally filtered to the
// given TLDs, newest activity first. Records with an unparseable expiry are
// skipped: expiry is load-bearing for risk scoring and cannot be defaulted.
func (c *Client) FetchDomains(ctx context.Context, tlds []string, limit int) ([]models.DomainDescription, error) {
	u, err := url.Parse(c.apiURL + "/domains")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("sort", "activity")
	if len(tlds) > 0 {
		q.Set("tlds", strings.Join(tlds, ","))
	}
	u.RawQuery = q.Encode()

	resp, err := c.doRequest(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch domains: %w", err)
	}
	defer resp.Body.Close()

	var records []tokenRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode domains: %w", err)
	}

	domains := make([]models.DomainDescription, 0, len(records))
	var skipped int
	for _, rec := range records {
		d, err := mapRecord(rec)
		if err != nil {
			skipped++
			logger.Warn("Skipping domain %s.%s: %v", rec.Name, rec.TLD, err)
			continue
		}
		domains = append(domains, d)
	}
	if skipped > 0 {
		logger.Info("Skipped %d of %d domain records", skipped, len(records))
	}

	if len(domains) > limit {
		domains = domains[:limit]
	}
	return domains, nil
}

// mapRecord converts a gateway record into a scoring input.
func mapRecord(rec tokenRecord) (models.DomainDescription, error) {
	var d models.DomainDescription

	expiresAt, err := time.Parse(time.RFC3339, rec.ExpiresAt)
	if err != nil {
		return d, fmt.Errorf("invalid expiry timestamp %q: %w", rec.ExpiresAt, err)
	}

	d = models.DomainDescription{
		TokenID:      rec.TokenID,
		Name:         strings.ToLower(rec.Name),
		TLD:          strings.ToLower(rec.TLD),
		ExpiresAt:    expiresAt,
		Locked:       rec.TransferLock,
		RegistrarID:  rec.RegistrarID,
		RenewalCount: rec.RenewalCount,
		OfferCount:   rec.OfferCount,
		Activity7d:   rec.Activity7d,
		Activity30d:  rec.Activity30d,
	}

	// Tokenization date is optional; a zero value means "assume stable".
	if rec.TokenizedAt != "" {
		if tokenizedAt, err := time.Parse(time.RFC3339, rec.TokenizedAt); err == nil {
			d.TokenizedAt = tokenizedAt
		}
	}

	for _, ev := range rec.Events {
		ts, err := time.Parse(time.RFC3339, ev.Timestamp)
		if err != nil {
			continue
		}
		d.RecentEvents = append(d.RecentEvents, models.DomainEvent{Type: ev.Type, Timestamp: ts})
	}

	if rec.SearchTrend != nil {
		interest := rec.SearchTrend.Interest
		d.SearchInterest = &interest
		d.SearchTrend = rec.SearchTrend.Direction
	}

	if err := d.Validate(); err != nil {
		return models.DomainDescription{}, err
	}
	return d, nil
}

// doRequest performs an HTTP request with linear-backoff retry on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
