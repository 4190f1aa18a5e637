package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello World"},
		{"Hello_World", "Hello\\_World"},
		{"Test*bold*", "Test\\*bold\\*"},
		{"Price: $100.50", "Price: $100\\.50"},
		{"[link](url)", "\\[link\\]\\(url\\)"},
		{"~strikethrough~", "\\~strikethrough\\~"},
		{"`code`", "\\`code\\`"},
		{">blockquote", "\\>blockquote"},
		{"#header", "\\#header"},
		{"+plus-minus", "\\+plus\\-minus"},
		{"=equal|pipe", "\\=equal\\|pipe"},
		{"{brace}", "\\{brace\\}"},
		{"end!", "end\\!"},
		{"", ""},
		{"_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeMarkdownV2(tt.input)
			if result != tt.expected {
				t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{100, "$100"},
		{1234.56, "$1235"},
		{99.4, "$99"},
		{0, "$0"},
	}
	for _, tt := range tests {
		if got := formatUSD(tt.input); got != tt.expected {
			t.Errorf("formatUSD(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	c := &Client{}
	detectedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	groups := []models.AlertGroup{
		{
			TLD:       "defi",
			BestValue: 9000,
			Domains: []models.OfferAlert{
				{
					TokenID:        "swap.defi",
					Name:           "swap",
					TLD:            "defi",
					OldOfferCount:  2,
					NewOfferCount:  5,
					OfferDelta:     3,
					Risk:           12,
					Rarity:         95,
					Momentum:       70,
					Forecast:       68,
					CurrentValue:   7200,
					ProjectedValue: 9000,
					DetectedAt:     detectedAt,
				},
			},
		},
	}

	msg := c.formatMessage(groups)

	for _, want := range []string{
		"New Offers on Tracked Domains",
		"2026\\-03\\-01 12:00:00",
		"swap\\.defi",
		"$7200",
		"$9000",
		"offers 2 → 5",
		"risk 12",
		"rarity 95",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestNewClient_InvalidChatID(t *testing.T) {
	// NewClient with non-numeric chatID should return an error
	// Note: This test exercises the chat ID parsing error path
	// The bot token validation happens first (network call), so we use a clearly
	// invalid format to test the error handling flow
	_, err := NewClient("", "not-a-number", 3, time.Second)
	if err == nil {
		t.Error("Expected error for invalid chat ID, got nil")
	}
}
