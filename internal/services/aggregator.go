package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// UntaggedLabel buckets trades that carry no strategy tag.
const UntaggedLabel = "Untagged"

// Aggregator groups validated trades by temporal and categorical keys and
// computes consistent per-group performance metrics.
type Aggregator struct {
	logger *logrus.Logger
}

// NewAggregator creates a statistical aggregator.
func NewAggregator(logger *logrus.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// TimePatterns groups completed trades by hour of exit and by weekday of
// exit. Only trades with an exit timestamp participate; groups that see no
// trades are omitted rather than zero-filled.
func (a *Aggregator) TimePatterns(trades []models.Trade) *models.TimePatternResult {
	result := &models.TimePatternResult{
		Hourly: make(map[int]models.TimePerformance),
		Daily:  []models.DailyPerformance{},
	}
	if len(trades) == 0 {
		a.logger.Warn("no trades provided for time-pattern analysis")
		return result
	}

	hourGroups := make(map[int][]models.Trade)
	dayGroups := make(map[time.Weekday][]models.Trade)
	for _, t := range trades {
		if !t.HasExit() {
			continue
		}
		hour := t.ExitTime.Hour()
		hourGroups[hour] = append(hourGroups[hour], t)
		day := t.ExitTime.Weekday()
		dayGroups[day] = append(dayGroups[day], t)
	}

	for hour, group := range hourGroups {
		result.Hourly[hour] = timePerformanceFor(group)
	}

	for _, day := range weekdayOrder {
		group, ok := dayGroups[day]
		if !ok {
			continue
		}
		result.Daily = append(result.Daily, models.DailyPerformance{
			Day:             day.String(),
			TimePerformance: timePerformanceFor(group),
		})
	}

	return result
}

// StrategyEffectiveness groups trades by strategy tag, substituting
// "Untagged" for absent tags, and computes total P&L, win rate, trade count,
// and profit factor per tag.
func (a *Aggregator) StrategyEffectiveness(trades []models.Trade) map[string]models.StrategyPerformance {
	performance := make(map[string]models.StrategyPerformance)
	if len(trades) == 0 {
		a.logger.Warn("no trades provided for strategy-effectiveness analysis")
		return performance
	}

	groups := make(map[string][]models.Trade)
	for _, t := range trades {
		label := UntaggedLabel
		if t.StrategyTag != nil && *t.StrategyTag != "" {
			label = *t.StrategyTag
		}
		groups[label] = append(groups[label], t)
	}

	for label, group := range groups {
		var totalPnL, grossProfit, grossLoss float64
		wins := 0
		for _, t := range group {
			totalPnL += t.PnL
			if t.PnL > 0 {
				grossProfit += t.PnL
				wins++
			} else if t.PnL < 0 {
				grossLoss += -t.PnL
			}
		}

		perf := models.StrategyPerformance{
			TotalPnL:   round2(totalPnL),
			WinRate:    round2(float64(wins) / float64(len(group))),
			TradeCount: len(group),
		}
		if grossLoss > 0 {
			pf := round2(grossProfit / grossLoss)
			perf.ProfitFactor = &pf
		} else if grossProfit > 0 {
			// No losing trades: the ratio is undefined, not infinite.
			perf.AllProfit = true
		}
		performance[label] = perf
	}

	return performance
}

func timePerformanceFor(group []models.Trade) models.TimePerformance {
	var totalPnL float64
	wins := 0
	for _, t := range group {
		totalPnL += t.PnL
		if t.IsWin() {
			wins++
		}
	}
	return models.TimePerformance{
		TotalPnL:   round2(totalPnL),
		WinRate:    round2(float64(wins) / float64(len(group))),
		TradeCount: len(group),
	}
}

// round2 rounds through decimal so reported metrics hold an exact two-place
// value instead of a nearest float.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
