package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/cache"
	"github.com/tradewell/trade-analytics-go/internal/config"
	"github.com/tradewell/trade-analytics-go/internal/logging"
	"github.com/tradewell/trade-analytics-go/internal/marketdata"
	"github.com/tradewell/trade-analytics-go/internal/models"
	"github.com/tradewell/trade-analytics-go/internal/services"
	"github.com/tradewell/trade-analytics-go/internal/telemetry"
)

var knownAnalyses = []string{"time_patterns", "strategy", "market_conditions", "features", "clusters", "all"}

type options struct {
	tradesPath string
	analysis   string
	clusters   int
	features   string
	tracing    bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.tradesPath, "trades", "", "path to a JSON file holding an array of trade records")
	flag.StringVar(&opts.analysis, "analysis", "all", "analysis to run: "+strings.Join(knownAnalyses, ", "))
	flag.IntVar(&opts.clusters, "clusters", 3, "number of clusters for the clustering analysis")
	flag.StringVar(&opts.features, "features", "duration_seconds,pnl,mfe,mae", "comma-separated clustering features")
	flag.BoolVar(&opts.tracing, "tracing", false, "emit OpenTelemetry spans to stdout")
	flag.Parse()

	if opts.tradesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -trades trades.json [-analysis all]")
		os.Exit(2)
	}
	if !validAnalysis(opts.analysis) {
		fmt.Fprintf(os.Stderr, "unknown analysis %q, expected one of: %s\n",
			opts.analysis, strings.Join(knownAnalyses, ", "))
		os.Exit(2)
	}

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Errors surface through run so its defers, telemetry shutdown
	// included, complete before the process exits.
	if err := run(cfg, logger, opts); err != nil {
		os.Exit(1)
	}
}

func validAnalysis(name string) bool {
	for _, known := range knownAnalyses {
		if name == known {
			return true
		}
	}
	return false
}

func run(cfg *config.Config, logger *logrus.Logger, opts options) error {
	ctx := context.Background()

	shutdown, err := telemetry.Init(ctx, opts.tracing)
	if err != nil {
		logger.WithError(err).Error("failed to initialize telemetry")
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.WithError(err).Warn("telemetry shutdown failed")
		}
	}()

	trades, err := loadTrades(opts.tradesPath)
	if err != nil {
		logger.WithError(err).Error("failed to load trades")
		return err
	}

	var seriesCache cache.SeriesCache
	switch cfg.MarketData.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		seriesCache = cache.NewRedisSeriesCache(client, cfg.MarketData.CacheTTLDuration(), logger)
	default:
		seriesCache = cache.NewMemorySeriesCache(cfg.MarketData.CacheTTLDuration())
	}

	provider := marketdata.NewYahooClient(&cfg.MarketData)
	fetcher := marketdata.NewFetcher(provider, seriesCache, logger)
	engine := services.NewEngine(cfg, logger, fetcher)

	output := make(map[string]any)

	selected := func(name string) bool {
		return opts.analysis == "all" || opts.analysis == name
	}

	if selected("time_patterns") {
		output["time_patterns"] = engine.TimePatterns(ctx, trades)
	}
	if selected("strategy") {
		output["strategy_effectiveness"] = engine.StrategyEffectiveness(ctx, trades)
	}
	if selected("market_conditions") {
		output["market_conditions"] = engine.MarketConditions(ctx, trades)
	}
	if selected("features") {
		output["enriched_trades"] = engine.ProcessTrades(ctx, trades)
	}
	if selected("clusters") {
		featureList := strings.Split(opts.features, ",")
		result, err := engine.ClusterTrades(ctx, trades, opts.clusters, featureList)
		if err != nil {
			if services.IsValidationError(err) {
				logger.WithError(err).Error("clustering rejected")
			} else {
				logger.WithError(err).Error("clustering failed")
			}
			return err
		}
		output["trade_clusters"] = result
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		logger.WithError(err).Error("failed to encode results")
		return err
	}
	return nil
}

func loadTrades(path string) ([]models.Trade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trades file: %w", err)
	}
	var trades []models.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("parse trades file: %w", err)
	}
	return trades, nil
}
