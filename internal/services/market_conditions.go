package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// BarFetcher retrieves daily-bar series for a set of tickers. Implemented by
// marketdata.Fetcher; tests substitute fakes.
type BarFetcher interface {
	Fetch(ctx context.Context, tickers []string, start, end time.Time) map[string][]models.DailyBar
}

// Reference instruments consulted for prior-day market conditions. Journal
// ticker names; the fetcher resolves provider symbols.
const (
	refIndex      = "SPY"
	refVolatility = "VIX"
	refDollar     = "DXY"
	refGold       = "GC"
)

// Instrument families a condition is relevant to. Index and volatility
// conditions speak to equity-index trades, dollar and gold conditions to
// metals trades.
var (
	equityIndexFamily = map[string]bool{
		"ES": true, "MES": true, "NQ": true, "MNQ": true, "SPY": true, "QQQ": true,
	}
	metalsFamily = map[string]bool{
		"GC": true, "MGC": true, "SI": true, "GLD": true,
	}
)

type conditionRule struct {
	bucket string
	ref    string
	up     bool
	family map[string]bool
}

var conditionRules = []conditionRule{
	{bucket: "spy_up_day", ref: refIndex, up: true, family: equityIndexFamily},
	{bucket: "spy_down_day", ref: refIndex, up: false, family: equityIndexFamily},
	{bucket: "vix_up_day", ref: refVolatility, up: true, family: equityIndexFamily},
	{bucket: "vix_down_day", ref: refVolatility, up: false, family: equityIndexFamily},
	{bucket: "dxy_up_day", ref: refDollar, up: true, family: metalsFamily},
	{bucket: "dxy_down_day", ref: refDollar, up: false, family: metalsFamily},
	{bucket: "gold_up_day", ref: refGold, up: true, family: metalsFamily},
	{bucket: "gold_down_day", ref: refGold, up: false, family: metalsFamily},
}

// ConditionAnalyzer correlates trade performance with the previous calendar
// day's directional condition of a set of reference instruments.
type ConditionAnalyzer struct {
	fetcher BarFetcher
	logger  *logrus.Logger
}

// NewConditionAnalyzer creates a market-condition analyzer over the given
// fetcher.
func NewConditionAnalyzer(fetcher BarFetcher, logger *logrus.Logger) *ConditionAnalyzer {
	return &ConditionAnalyzer{fetcher: fetcher, logger: logger}
}

// Analyze buckets each completed trade under the prior-day conditions of the
// reference instruments its ticker is relevant to. A missing condition value
// excludes the trade from that bucket only; unavailable market data yields an
// empty result, never an error.
func (c *ConditionAnalyzer) Analyze(ctx context.Context, trades []models.Trade) *models.MarketCorrelationResult {
	result := &models.MarketCorrelationResult{
		Conditions: make(map[string]models.ConditionPerformance),
	}

	var completed []models.Trade
	for _, t := range trades {
		if t.Ticker != "" && t.HasExit() {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		return result
	}

	minDate := normalizeDate(*completed[0].ExitTime)
	maxDate := minDate
	for _, t := range completed[1:] {
		d := normalizeDate(*t.ExitTime)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	refs := []string{refIndex, refVolatility, refDollar, refGold}
	series := c.fetcher.Fetch(ctx, refs, minDate.AddDate(0, 0, -7), maxDate.AddDate(0, 0, 1))
	for ref, bars := range series {
		series[ref] = sortedBars(bars)
	}

	available := 0
	for _, ref := range refs {
		if len(series[ref]) > 0 {
			available++
		}
	}
	if available == 0 {
		c.logger.Warn("no reference market data available, market-condition analysis returns empty")
		return result
	}

	buckets := make(map[string][]models.Trade)
	for _, t := range completed {
		prevDay := normalizeDate(*t.ExitTime).AddDate(0, 0, -1)
		for _, rule := range conditionRules {
			if !rule.family[t.Ticker] {
				continue
			}
			bar, ok := lastBarOnOrBefore(series[rule.ref], prevDay)
			if !ok {
				continue
			}
			if (bar.Close > bar.Open) == rule.up {
				buckets[rule.bucket] = append(buckets[rule.bucket], t)
			}
		}
	}

	for bucket, group := range buckets {
		perf := timePerformanceFor(group)
		result.Conditions[bucket] = models.ConditionPerformance{
			TotalPnL:   perf.TotalPnL,
			WinRate:    perf.WinRate,
			TradeCount: perf.TradeCount,
		}
	}

	return result
}

// sortedBars returns bars in ascending date order, copying only when the
// input is out of order.
func sortedBars(bars []models.DailyBar) []models.DailyBar {
	inOrder := func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) }
	if sort.SliceIsSorted(bars, inOrder) {
		return bars
	}
	out := append([]models.DailyBar(nil), bars...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// lastBarOnOrBefore backward-searches an ascending series for the latest bar
// dated at or before day.
func lastBarOnOrBefore(bars []models.DailyBar, day time.Time) (models.DailyBar, bool) {
	idx := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(day)
	})
	if idx == 0 {
		return models.DailyBar{}, false
	}
	return bars[idx-1], true
}

// normalizeDate truncates a timestamp to its UTC calendar day.
func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
