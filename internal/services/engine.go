package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tradewell/trade-analytics-go/internal/config"
	"github.com/tradewell/trade-analytics-go/internal/models"
	"github.com/tradewell/trade-analytics-go/internal/telemetry"
)

// Engine composes the analysis stages into one deterministic pipeline over a
// batch of validated trades. Each invocation is self-contained; the market
// series cache behind the fetcher is the only state shared between calls.
type Engine struct {
	cfg        *config.Config
	logger     *logrus.Logger
	fetcher    BarFetcher
	aggregator *Aggregator
	conditions *ConditionAnalyzer
}

// NewEngine creates an analysis engine over the given fetcher.
func NewEngine(cfg *config.Config, logger *logrus.Logger, fetcher BarFetcher) *Engine {
	return &Engine{
		cfg:        cfg,
		logger:     logger,
		fetcher:    fetcher,
		aggregator: NewAggregator(logger),
		conditions: NewConditionAnalyzer(fetcher, logger),
	}
}

// TimePatterns analyzes performance by hour of day and day of week.
func (e *Engine) TimePatterns(ctx context.Context, trades []models.Trade) *models.TimePatternResult {
	_, span := telemetry.StartSpan(ctx, "engine.TimePatterns",
		attribute.Int("trades", len(trades)))
	defer telemetry.FinishSpan(span, nil)

	return e.aggregator.TimePatterns(trades)
}

// StrategyEffectiveness analyzes performance grouped by strategy tag.
func (e *Engine) StrategyEffectiveness(ctx context.Context, trades []models.Trade) map[string]models.StrategyPerformance {
	_, span := telemetry.StartSpan(ctx, "engine.StrategyEffectiveness",
		attribute.Int("trades", len(trades)))
	defer telemetry.FinishSpan(span, nil)

	return e.aggregator.StrategyEffectiveness(trades)
}

// MarketConditions correlates trade performance with the previous day's
// reference-instrument conditions. Unavailable market data degrades to an
// empty result.
func (e *Engine) MarketConditions(ctx context.Context, trades []models.Trade) *models.MarketCorrelationResult {
	spanCtx, span := telemetry.StartSpan(ctx, "engine.MarketConditions",
		attribute.Int("trades", len(trades)))
	defer telemetry.FinishSpan(span, nil)

	return e.conditions.Analyze(spanCtx, trades)
}

// ClusterTrades partitions trades into k behavioral groups over the
// requested features.
func (e *Engine) ClusterTrades(ctx context.Context, trades []models.Trade, k int, features []string) (*models.ClusterResult, error) {
	_, span := telemetry.StartSpan(ctx, "engine.ClusterTrades",
		attribute.Int("trades", len(trades)),
		attribute.Int("clusters", k))

	if k < e.cfg.Analytics.MinClusters || k > e.cfg.Analytics.MaxClusters {
		err := newValidationError(fmt.Sprintf("cluster count %d outside allowed range [%d, %d]",
			k, e.cfg.Analytics.MinClusters, e.cfg.Analytics.MaxClusters))
		telemetry.FinishSpan(span, err)
		return nil, err
	}

	result, err := ClusterTrades(trades, k, features, e.cfg.Analytics.KMeansInits, e.logger)
	telemetry.FinishSpan(span, err)
	return result, err
}

// ProcessTrades runs the full enrichment chain: fetch daily bars for every
// distinct ticker, compute indicators, join each trade to its nearest prior
// indicator row, and engineer the feature columns. An empty batch yields an
// empty row set; a failure in one ticker's enrichment never aborts the
// others.
func (e *Engine) ProcessTrades(ctx context.Context, trades []models.Trade) []models.EnrichedTrade {
	spanCtx, span := telemetry.StartSpan(ctx, "engine.ProcessTrades",
		attribute.Int("trades", len(trades)))
	defer telemetry.FinishSpan(span, nil)

	runID := uuid.NewString()
	log := e.logger.WithField("run_id", runID)

	if len(trades) == 0 {
		log.Warn("empty trade batch, nothing to process")
		return []models.EnrichedTrade{}
	}

	tickerSet := make(map[string]bool)
	for _, t := range trades {
		tickerSet[t.Ticker] = true
	}
	tickers := make([]string, 0, len(tickerSet))
	for ticker := range tickerSet {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	fetchStart, fetchEnd, _ := e.FetchWindow(trades)
	series := e.fetcher.Fetch(spanCtx, tickers, fetchStart, fetchEnd)

	indicators := make(map[string][]models.IndicatorRow, len(series))
	for ticker, bars := range series {
		indicators[ticker] = e.computeTickerIndicators(ticker, bars, log)
	}

	enriched := EnrichTrades(trades, indicators)
	vocab := BuildVocabulary(trades)
	enriched = EngineerFeatures(enriched, vocab)

	log.WithFields(logrus.Fields{
		"trades":  len(enriched),
		"tickers": len(tickers),
	}).Info("trade enrichment complete")

	return enriched
}

// computeTickerIndicators guards the indicator stage: an unexpected failure
// for one ticker logs and substitutes undefined rows instead of aborting the
// batch.
func (e *Engine) computeTickerIndicators(ticker string, bars []models.DailyBar, log *logrus.Entry) (rows []models.IndicatorRow) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"ticker": ticker,
				"panic":  r,
			}).Error("indicator calculation failed, leaving indicators undefined")
			rows = make([]models.IndicatorRow, 0)
		}
	}()

	if len(bars) == 0 {
		log.WithField("ticker", ticker).Warn("no market data for ticker, indicators undefined")
		return []models.IndicatorRow{}
	}

	return ComputeIndicators(bars, e.cfg.Analytics.ATRPeriod, e.cfg.Analytics.EMAPeriod)
}

// FetchWindow reports the bar range the enrichment stage would request for a
// batch, exposed for observability.
func (e *Engine) FetchWindow(trades []models.Trade) (time.Time, time.Time, bool) {
	if len(trades) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDate := normalizeDate(trades[0].EntryTime)
	maxDate := minDate
	for _, t := range trades[1:] {
		d := normalizeDate(t.EntryTime)
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate.AddDate(0, 0, -e.cfg.Analytics.LookbackBufferDays), maxDate, true
}
