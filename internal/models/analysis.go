// Package models provides domain models for the chart advisor application.
package models

import (
	"fmt"
	"time"
)

// Signal represents a trading recommendation from the analysis engine.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Valid reports whether the signal is a known recommendation value.
func (s Signal) Valid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalHold:
		return true
	}
	return false
}

// TradeDuration is the suggested holding duration for a recommendation.
type TradeDuration string

const (
	Duration5s  TradeDuration = "5s"
	Duration15s TradeDuration = "15s"
	Duration1m  TradeDuration = "1m"
)

// Valid reports whether the duration is a known value. The empty string is
// accepted because the external model may omit the field.
func (d TradeDuration) Valid() bool {
	switch d {
	case "", Duration5s, Duration15s, Duration1m:
		return true
	}
	return false
}

// IndicatorSummary holds the model's free-text reading of standard indicators.
type IndicatorSummary struct {
	RSI            string `json:"rsi,omitempty"`
	MACD           string `json:"macd,omitempty"`
	MovingAverages string `json:"movingAverages,omitempty"`
}

// AnalysisResult is the outcome of one chart analysis request. The JSON
// field names are the wire contract with the external inference endpoint
// and must not change. A result is immutable once created.
type AnalysisResult struct {
	IsValidChart      bool             `json:"isValidChart"`
	Symbol            string           `json:"symbol"`
	Recommendation    Signal           `json:"recommendation"`
	Confidence        float64          `json:"confidence"`
	Reasoning         []string         `json:"reasoning"`
	SupportLevels     []string         `json:"supportLevels"`
	ResistanceLevels  []string         `json:"resistanceLevels"`
	Indicators        IndicatorSummary `json:"indicators"`
	Summary           string           `json:"summary"`
	SuggestedDuration TradeDuration    `json:"suggestedDuration"`
}

// Validate checks the result against the response schema. A result with
// IsValidChart=false is a legitimate outcome (the model declined the image)
// and only needs a well-formed envelope; a valid-chart result must carry an
// enumerated recommendation and an in-range confidence.
func (r *AnalysisResult) Validate() error {
	if !r.IsValidChart {
		return nil
	}
	if !r.Recommendation.Valid() {
		return fmt.Errorf("recommendation must be one of BUY/SELL/HOLD, got %q", r.Recommendation)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", r.Confidence)
	}
	if !r.SuggestedDuration.Valid() {
		return fmt.Errorf("unknown suggested duration %q", r.SuggestedDuration)
	}
	if len(r.Reasoning) == 0 {
		return fmt.Errorf("reasoning is required")
	}
	return nil
}

// HistoryEntry is an AnalysisResult retained in the user's history.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Result    AnalysisResult `json:"result"`
}

// HistoryCap is the maximum number of retained history entries. Older
// entries are evicted once the cap is exceeded.
const HistoryCap = 50
