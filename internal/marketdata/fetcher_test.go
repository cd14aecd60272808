package marketdata

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewell/trade-analytics-go/internal/cache"
	"github.com/tradewell/trade-analytics-go/internal/models"
)

// fakeProvider serves canned series keyed by resolved symbol and records
// call counts per symbol.
type fakeProvider struct {
	series map[string][]models.DailyBar
	errs   map[string]error
	calls  map[string]int
}

func (p *fakeProvider) FetchDaily(_ context.Context, symbol string, _, _ time.Time) ([]models.DailyBar, error) {
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[symbol]++
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	return p.series[symbol], nil
}

func fetcherLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func esBars() []models.DailyBar {
	return []models.DailyBar{
		{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Open: 5000, High: 5010, Low: 4990, Close: 5005},
	}
}

func TestResolveSymbol(t *testing.T) {
	assert.Equal(t, "ES=F", ResolveSymbol("ES"))
	assert.Equal(t, "GC=F", ResolveSymbol("GC"))
	assert.Equal(t, "^VIX", ResolveSymbol("VIX"))
	assert.Equal(t, "DX-Y.NYB", ResolveSymbol("DXY"))
	assert.Equal(t, "SPY", ResolveSymbol("SPY"), "unknown tickers pass through")
}

func TestFetchResolvesAliasesAndCaches(t *testing.T) {
	provider := &fakeProvider{series: map[string][]models.DailyBar{"ES=F": esBars()}}
	f := NewFetcher(provider, cache.NewMemorySeriesCache(time.Hour), fetcherLogger())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	series := f.Fetch(context.Background(), []string{"ES"}, start, end)
	require.Len(t, series["ES"], 1)
	assert.Equal(t, 1, provider.calls["ES=F"], "the journal ticker resolves to the futures symbol")

	// Same range again: served from cache.
	series = f.Fetch(context.Background(), []string{"ES"}, start, end)
	require.Len(t, series["ES"], 1)
	assert.Equal(t, 1, provider.calls["ES=F"])

	// A different range misses.
	f.Fetch(context.Background(), []string{"ES"}, start, end.AddDate(0, 0, 1))
	assert.Equal(t, 2, provider.calls["ES=F"])
}

func TestFetchDuplicateTickersOneCall(t *testing.T) {
	provider := &fakeProvider{series: map[string][]models.DailyBar{"ES=F": esBars()}}
	f := NewFetcher(provider, cache.NewMemorySeriesCache(time.Hour), fetcherLogger())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	series := f.Fetch(context.Background(), []string{"ES", "ES", "ES"}, start, end)

	assert.Len(t, series, 1)
	assert.Equal(t, 1, provider.calls["ES=F"])
}

func TestFetchFailureYieldsEmptySeries(t *testing.T) {
	provider := &fakeProvider{
		series: map[string][]models.DailyBar{"ES=F": esBars()},
		errs:   map[string]error{"NQ=F": errors.New("rate limited")},
	}
	f := NewFetcher(provider, cache.NewMemorySeriesCache(time.Hour), fetcherLogger())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	series := f.Fetch(context.Background(), []string{"ES", "NQ"}, start, end)

	require.Len(t, series, 2, "a failed ticker still gets a map entry")
	assert.Len(t, series["ES"], 1)
	assert.Empty(t, series["NQ"])
}

func TestFetchFailureNotCached(t *testing.T) {
	provider := &fakeProvider{errs: map[string]error{"ES=F": errors.New("rate limited")}}
	f := NewFetcher(provider, cache.NewMemorySeriesCache(time.Hour), fetcherLogger())

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	f.Fetch(context.Background(), []string{"ES"}, start, end)
	f.Fetch(context.Background(), []string{"ES"}, start, end)

	assert.Equal(t, 2, provider.calls["ES=F"], "failures are retried, not cached")
}
