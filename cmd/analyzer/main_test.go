package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewell/trade-analytics-go/internal/config"
)

func TestValidAnalysis(t *testing.T) {
	for _, name := range knownAnalyses {
		assert.True(t, validAnalysis(name), name)
	}
	assert.False(t, validAnalysis("sharpe"))
	assert.False(t, validAnalysis(""))
}

func TestLoadTrades(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.json")
	payload := `[{"id":1,"ticker":"ES","direction":"long","entry_price":5000,
		"quantity":1,"entry_time":"2024-03-05T10:00:00Z","pnl":150}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	trades, err := loadTrades(path)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "ES", trades[0].Ticker)
	assert.InDelta(t, 150.0, trades[0].PnL, 1e-9)
}

func TestLoadTradesBadInput(t *testing.T) {
	_, err := loadTrades(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "trades.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err = loadTrades(path)
	assert.Error(t, err)
}

func testMainConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		Analytics: config.AnalyticsConfig{
			ATRPeriod:          14,
			EMAPeriod:          21,
			LookbackBufferDays: 60,
			MinClusters:        2,
			MaxClusters:        20,
			KMeansInits:        10,
		},
		MarketData: config.MarketDataConfig{
			CacheBackend: "memory",
			CacheTTL:     "24h",
		},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunReturnsErrorOnMissingTrades(t *testing.T) {
	opts := options{
		tradesPath: filepath.Join(t.TempDir(), "missing.json"),
		analysis:   "time_patterns",
	}

	err := run(testMainConfig(), quietLogger(), opts)
	assert.Error(t, err, "failures return instead of exiting so deferred cleanup runs")
}

func TestRunTimePatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.json")
	payload := `[{"id":1,"ticker":"ES","direction":"long","entry_price":5000,
		"quantity":1,"entry_time":"2024-03-05T10:00:00Z",
		"exit_time":"2024-03-05T11:00:00Z","exit_price":5010,"pnl":150}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	opts := options{tradesPath: path, analysis: "time_patterns"}
	assert.NoError(t, run(testMainConfig(), quietLogger(), opts))
}
