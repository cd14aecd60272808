package services

import (
	"sort"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// EnrichTrades joins each trade to the most recent prior daily indicator row
// for its ticker: the latest row dated at or before the trade's entry date.
// Trades dated before any indicator row, or whose ticker has no series, keep
// nil indicator fields. A fresh row set is returned; inputs are not touched.
func EnrichTrades(trades []models.Trade, indicators map[string][]models.IndicatorRow) []models.EnrichedTrade {
	enriched := make([]models.EnrichedTrade, 0, len(trades))

	// The binary search needs ascending dates; providers are not trusted
	// to deliver them.
	sorted := make(map[string][]models.IndicatorRow, len(indicators))
	for ticker, series := range indicators {
		sorted[ticker] = sortedIndicatorRows(series)
	}

	for _, t := range trades {
		row := models.EnrichedTrade{Trade: t}

		series := sorted[t.Ticker]
		entryDate := normalizeDate(t.EntryTime)
		idx := sort.Search(len(series), func(i int) bool {
			return series[i].Date.After(entryDate)
		})
		if idx > 0 {
			match := series[idx-1]
			if match.ATR != nil {
				v := *match.ATR
				row.DailyATR = &v
			}
			if match.EMA != nil {
				v := *match.EMA
				row.DailyEMA = &v
				if v != 0 {
					ratio := t.EntryPrice/v - 1
					row.EMARatio = &ratio
				}
			}
		}

		enriched = append(enriched, row)
	}

	return enriched
}

// sortedIndicatorRows returns rows in ascending date order, copying only
// when the input is out of order.
func sortedIndicatorRows(rows []models.IndicatorRow) []models.IndicatorRow {
	inOrder := func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) }
	if sort.SliceIsSorted(rows, inOrder) {
		return rows
	}
	out := append([]models.IndicatorRow(nil), rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
