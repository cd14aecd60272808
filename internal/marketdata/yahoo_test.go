package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewell/trade-analytics-go/internal/config"
)

func chartJSON(timestamps []int64, open, high, low, close string) string {
	ts := ""
	for i, v := range timestamps {
		if i > 0 {
			ts += ","
		}
		ts += fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":%s,"high":%s,"low":%s,"close":%s}]}}],"error":null}}`,
		ts, open, high, low, close)
}

func testClient(baseURL string) *YahooClient {
	return NewYahooClient(&config.MarketDataConfig{ProviderURL: baseURL, Timeout: 5})
}

func TestFetchDailyParsesBars(t *testing.T) {
	day1 := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, chartJSON(
			[]int64{day1.Unix(), day2.Unix()},
			"[5000,5005]", "[5010,5020]", "[4990,5000]", "[5005,5015]",
		))
	}))
	defer server.Close()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	bars, err := testClient(server.URL).FetchDaily(context.Background(), "ES=F", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/ES=F", gotPath)
	assert.Equal(t, []string{"1d"}, gotQuery["interval"])
	assert.Equal(t, []string{fmt.Sprintf("%d", start.Unix())}, gotQuery["period1"])
	// period2 is exclusive upstream, so the request pushes it past end.
	assert.Equal(t, []string{fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix())}, gotQuery["period2"])

	require.Len(t, bars, 2)
	assert.Equal(t, start, bars[0].Date, "timestamps normalize to UTC midnight")
	assert.InDelta(t, 5000, bars[0].Open, 1e-9)
	assert.InDelta(t, 5010, bars[0].High, 1e-9)
	assert.InDelta(t, 4990, bars[0].Low, 1e-9)
	assert.InDelta(t, 5005, bars[0].Close, 1e-9)
	assert.Equal(t, end, bars[1].Date)
}

func TestFetchDailyDropsNullRows(t *testing.T) {
	day1 := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chartJSON(
			[]int64{day1.Unix(), day2.Unix()},
			"[5000,null]", "[5010,5020]", "[4990,5000]", "[5005,5015]",
		))
	}))
	defer server.Close()

	bars, err := testClient(server.URL).FetchDaily(context.Background(), "ES=F",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, bars, 1, "rows missing any OHLC value are dropped")
	assert.InDelta(t, 5000, bars[0].Open, 1e-9)
}

func TestFetchDailyHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchDaily(context.Background(), "ES=F",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchDailyChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchDaily(context.Background(), "BOGUS",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestFetchDailyEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchDaily(context.Background(), "ES=F",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	assert.Error(t, err)
}
