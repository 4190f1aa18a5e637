package valuation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/scoring"
)

func TestEvaluate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/evaluate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}

		var req scoring.ValuationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Name != "swap" || req.TLD != "defi" {
			t.Errorf("unexpected request payload: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"currentValue":   "12500.50",
			"projectedValue": "16000",
			"confidence":     85,
			"factors": []map[string]any{
				{"name": "comparable_sales", "description": "3 recent sales", "value": 3, "weight": 1, "contribution": 9000},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	res, err := c.Evaluate(context.Background(), scoring.ValuationRequest{
		Name: "swap", TLD: "defi", DaysUntilExpiry: 120, OfferCount: 4,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if res.CurrentValue != 12500.50 {
		t.Errorf("current value = %v, want 12500.50", res.CurrentValue)
	}
	if res.ProjectedValue != 16000 {
		t.Errorf("projected value = %v, want 16000", res.ProjectedValue)
	}
	if res.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", res.Confidence)
	}
	if len(res.Factors) != 1 || res.Factors[0].Name != "comparable_sales" {
		t.Errorf("factors not mapped: %+v", res.Factors)
	}
}

func TestEvaluate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	if _, err := c.Evaluate(context.Background(), scoring.ValuationRequest{Name: "x", TLD: "com"}); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestEvaluate_MalformedAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"currentValue":   "not-a-number",
			"projectedValue": "100",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	if _, err := c.Evaluate(context.Background(), scoring.ValuationRequest{Name: "x", TLD: "com"}); err == nil {
		t.Fatal("expected error for malformed decimal amount")
	}
}

func TestEvaluate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, 20*time.Millisecond)
	if _, err := c.Evaluate(context.Background(), scoring.ValuationRequest{Name: "x", TLD: "com"}); err == nil {
		t.Fatal("expected timeout error")
	}
}
