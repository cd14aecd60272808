package marketdata

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/cache"
	"github.com/tradewell/trade-analytics-go/internal/models"
)

// Fetcher retrieves daily-bar series for journal tickers, memoizing by
// (resolved symbol, date range) and degrading per-ticker failures to empty
// series. One provider call per distinct ticker bounds the external calls to
// the batch's ticker count, not its trade count.
type Fetcher struct {
	provider Provider
	cache    cache.SeriesCache
	logger   *logrus.Logger
}

// NewFetcher creates a fetcher over the given provider and cache.
func NewFetcher(provider Provider, seriesCache cache.SeriesCache, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		cache:    seriesCache,
		logger:   logger,
	}
}

// Fetch returns one series per requested ticker. A ticker whose fetch fails
// maps to an empty series; the failure is logged, never raised, so one bad
// symbol cannot abort the batch.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, start, end time.Time) map[string][]models.DailyBar {
	series := make(map[string][]models.DailyBar, len(tickers))

	f.logger.WithFields(logrus.Fields{
		"tickers": len(tickers),
		"start":   start.Format("2006-01-02"),
		"end":     end.Format("2006-01-02"),
	}).Info("fetching daily market data")

	for _, ticker := range tickers {
		if _, done := series[ticker]; done {
			continue
		}

		symbol := ResolveSymbol(ticker)
		key := cache.Key(symbol, start, end)

		if bars, ok := f.cache.Get(key); ok {
			series[ticker] = bars
			continue
		}

		bars, err := f.provider.FetchDaily(ctx, symbol, start, end)
		if err != nil {
			f.logger.WithError(err).WithFields(logrus.Fields{
				"ticker": ticker,
				"symbol": symbol,
			}).Warn("market data fetch failed, continuing with empty series")
			series[ticker] = nil
			continue
		}
		if len(bars) == 0 {
			f.logger.WithFields(logrus.Fields{
				"ticker": ticker,
				"symbol": symbol,
			}).Warn("no market data returned for ticker")
		}

		f.cache.Set(key, bars)
		series[ticker] = bars
	}

	return series
}
