package models

// ScoreFactor is one ranked contributing signal behind a score. Value is the
// raw signal, Weight the multiplier applied, Contribution the signed effect
// on the final number. Factors are plain key-value data so they can cross
// the dashboard boundary unchanged.
type ScoreFactor struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Explainers holds the ranked factors per scoring dimension.
type Explainers struct {
	Risk     []ScoreFactor `json:"risk"`
	Rarity   []ScoreFactor `json:"rarity"`
	Momentum []ScoreFactor `json:"momentum"`
	Forecast []ScoreFactor `json:"forecast"`
	Value    []ScoreFactor `json:"value"`
}

// DomainScores is the full scoring output for one domain. Sub-scores are
// clamped to [0,100], currency values floored at 100, confidence capped at 95.
type DomainScores struct {
	Risk     int `json:"risk"`
	Rarity   int `json:"rarity"`
	Momentum int `json:"momentum"`
	Forecast int `json:"forecast"`

	ForecastLow  float64 `json:"forecast_low"`
	ForecastHigh float64 `json:"forecast_high"`

	CurrentValue    float64 `json:"current_value"`
	ProjectedValue  float64 `json:"projected_value"`
	ValueConfidence int     `json:"value_confidence"`

	Explainers Explainers `json:"explainers"`
}
