package models

import (
	"strings"
	"time"
)

// Trade direction values as they appear in journal exports.
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// TradeTag is a user-assigned label on a trade, optionally grouped into a
// category ("Setup", "Mistake", ...).
type TradeTag struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Trade is one journaled trade. Pointer fields are optional in the journal:
// an open trade has no exit, and price extremes are only present when the
// journal tracked them. PnL is the journal's own realized figure and is
// trusted as-is.
type Trade struct {
	ID           int64      `json:"id"`
	Ticker       string     `json:"ticker"`
	Direction    string     `json:"direction"`
	EntryPrice   float64    `json:"entry_price"`
	ExitPrice    *float64   `json:"exit_price,omitempty"`
	Quantity     float64    `json:"quantity"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time,omitempty"`
	StopLoss     *float64   `json:"stop_loss,omitempty"`
	TakeProfit   *float64   `json:"take_profit,omitempty"`
	Commissions  *float64   `json:"commissions,omitempty"`
	HighestPrice *float64   `json:"highest_price,omitempty"`
	LowestPrice  *float64   `json:"lowest_price,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PnL          float64    `json:"pnl"`
	StrategyTag  *string    `json:"strategy_tag,omitempty"`
	Tags         []TradeTag `json:"tags,omitempty"`
}

// IsLong reports whether the trade is a long position. Any direction other
// than "long" is treated as short.
func (t *Trade) IsLong() bool {
	return strings.EqualFold(t.Direction, DirectionLong)
}

// HasExit reports whether the trade is completed.
func (t *Trade) HasExit() bool {
	return t.ExitTime != nil
}

// IsWin reports whether the trade realized a positive PnL.
func (t *Trade) IsWin() bool {
	return t.PnL > 0
}

// Duration returns the holding time of a completed trade. ok is false for an
// open trade.
func (t *Trade) Duration() (time.Duration, bool) {
	if t.ExitTime == nil {
		return 0, false
	}
	return t.ExitTime.Sub(t.EntryTime), true
}

// MFE returns the maximum favorable excursion in price units: how far the
// market moved in the trade's favor from entry, clipped at zero. ok is false
// when the required price extreme was not tracked.
func (t *Trade) MFE() (float64, bool) {
	if t.IsLong() {
		if t.HighestPrice == nil {
			return 0, false
		}
		return clipNonNegative(*t.HighestPrice - t.EntryPrice), true
	}
	if t.LowestPrice == nil {
		return 0, false
	}
	return clipNonNegative(t.EntryPrice - *t.LowestPrice), true
}

// MAE returns the maximum adverse excursion in price units: how far the
// market moved against the trade from entry, clipped at zero. ok is false
// when the required price extreme was not tracked.
func (t *Trade) MAE() (float64, bool) {
	if t.IsLong() {
		if t.LowestPrice == nil {
			return 0, false
		}
		return clipNonNegative(t.EntryPrice - *t.LowestPrice), true
	}
	if t.HighestPrice == nil {
		return 0, false
	}
	return clipNonNegative(*t.HighestPrice - t.EntryPrice), true
}

// PriceBoundsValid reports whether the tracked extremes actually bound the
// entry price: lowest <= entry <= highest. Both extremes must be present.
func (t *Trade) PriceBoundsValid() bool {
	if t.HighestPrice == nil || t.LowestPrice == nil {
		return false
	}
	return *t.LowestPrice <= t.EntryPrice && t.EntryPrice <= *t.HighestPrice
}

func clipNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
