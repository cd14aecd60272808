package models

import "time"

// DailyBar is one trading day of OHLC data for a single ticker. Series are
// ordered by date with one bar per trading day; weekend/holiday gaps are left
// as-is by the fetch stage.
type DailyBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// IndicatorRow carries the daily indicator values derived from a contiguous
// run of bars. ATR and EMA stay nil until their lookback window has filled.
type IndicatorRow struct {
	Date time.Time `json:"date"`
	ATR  *float64  `json:"atr,omitempty"`
	EMA  *float64  `json:"ema,omitempty"`
}

// EnrichedTrade is a trade extended with the nearest-prior daily indicator
// values and the engineered feature row. Created fresh per analysis run and
// never mutated afterwards.
type EnrichedTrade struct {
	Trade

	DailyATR *float64 `json:"daily_atr,omitempty"`
	DailyEMA *float64 `json:"daily_ema,omitempty"`
	// EMARatio is (entry_price / daily EMA) - 1, nil when the EMA is
	// missing or zero.
	EMARatio *float64 `json:"daily_ema_ratio,omitempty"`

	Features *FeatureRow `json:"features,omitempty"`
}
