// Package valuation calls the optional external valuation service. The
// service may fail or time out; callers always recover with the engine's
// deterministic estimator, so errors here never reach the end user.
package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
)

// Client implements scoring.Valuer against an HTTP valuation endpoint.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// evaluateResponse is the service's answer. Currency amounts arrive as
// decimal strings to avoid float drift on the wire.
type evaluateResponse struct {
	CurrentValue   string `json:"currentValue"`
	ProjectedValue string `json:"projectedValue"`
	Confidence     int    `json:"confidence"`
	Factors        []struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		Value        float64 `json:"value"`
		Weight       float64 `json:"weight"`
		Contribution float64 `json:"contribution"`
	} `json:"factors"`
}

// NewClient creates a valuation client with a bounded request timeout.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Evaluate asks the service for a value estimate.
func (c *Client) Evaluate(ctx context.Context, req scoring.ValuationRequest) (*scoring.ValuationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal valuation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("valuation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("valuation service returned status %d", resp.StatusCode)
	}

	var er evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("failed to decode valuation response: %w", err)
	}

	current, err := decimal.NewFromString(er.CurrentValue)
	if err != nil {
		return nil, fmt.Errorf("invalid current value %q: %w", er.CurrentValue, err)
	}
	projected, err := decimal.NewFromString(er.ProjectedValue)
	if err != nil {
		return nil, fmt.Errorf("invalid projected value %q: %w", er.ProjectedValue, err)
	}

	result := &scoring.ValuationResult{
		CurrentValue:   current.InexactFloat64(),
		ProjectedValue: projected.InexactFloat64(),
		Confidence:     er.Confidence,
	}
	for _, f := range er.Factors {
		result.Factors = append(result.Factors, models.ScoreFactor{
			Name:         f.Name,
			Description:  f.Description,
			Value:        f.Value,
			Weight:       f.Weight,
			Contribution: f.Contribution,
		})
	}
	return result, nil
}
