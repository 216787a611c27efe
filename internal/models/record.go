package models

import (
	"encoding/json"
	"math"
)

// SectorRecord is one row of the fundamentals table: ticker, sector
// membership and market capitalization in millions of USD.
type SectorRecord struct {
	Ticker        string  `json:"ticker"`
	Sector        string  `json:"sector"`
	MarketCapMUSD float64 `json:"market_cap_musd"`
}

// ReturnRecord is one row of the returns table. ReturnPct is a fraction
// (0.025 means 2.5%); NaN marks a value that could not be parsed.
type ReturnRecord struct {
	Ticker    string  `json:"ticker"`
	ReturnPct float64 `json:"return_pct"`
}

// MergedRecord joins a SectorRecord with its ReturnRecord on ticker and
// carries the assigned color category.
type MergedRecord struct {
	Ticker        string        `json:"ticker"`
	Sector        string        `json:"sector"`
	MarketCapMUSD float64       `json:"market_cap_musd"`
	ReturnPct     float64       `json:"return_pct"`
	Category      ColorCategory `json:"category"`
}

// MarshalJSON emits return_pct as null when the value is the NaN sentinel,
// since encoding/json rejects NaN.
func (r MergedRecord) MarshalJSON() ([]byte, error) {
	type jsonRecord struct {
		Ticker        string        `json:"ticker"`
		Sector        string        `json:"sector"`
		MarketCapMUSD float64       `json:"market_cap_musd"`
		ReturnPct     *float64      `json:"return_pct"`
		Category      ColorCategory `json:"category"`
	}

	out := jsonRecord{
		Ticker:        r.Ticker,
		Sector:        r.Sector,
		MarketCapMUSD: r.MarketCapMUSD,
		Category:      r.Category,
	}
	if !math.IsNaN(r.ReturnPct) {
		v := r.ReturnPct
		out.ReturnPct = &v
	}
	return json.Marshal(out)
}

// ColorCategory is the discrete visual bucket assigned to a daily return
type ColorCategory string

const (
	CategoryDeepNegative     ColorCategory = "deep_negative"
	CategoryMildNegative     ColorCategory = "mild_negative"
	CategoryNearZeroNegative ColorCategory = "near_zero_negative"
	CategoryNearZeroPositive ColorCategory = "near_zero_positive"
	CategoryMildPositive     ColorCategory = "mild_positive"
	CategoryStrongPositive   ColorCategory = "strong_positive"

	// CategoryUnclassified marks returns outside every bin (or NaN).
	// A valid state, rendered with a neutral color, never dropped.
	CategoryUnclassified ColorCategory = "unclassified"
)

// Summary holds the headline counts displayed above the chart
type Summary struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// NewSummary counts records with strictly positive and strictly negative
// returns. NaN returns count toward the total only.
func NewSummary(records []MergedRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch {
		case r.ReturnPct > 0:
			s.Positive++
		case r.ReturnPct < 0:
			s.Negative++
		}
	}
	return s
}
