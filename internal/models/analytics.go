package models

// TimePerformance holds the per-bucket metrics of the time-pattern analysis.
type TimePerformance struct {
	TotalPnL   float64 `json:"total_pnl"`
	WinRate    float64 `json:"win_rate"`
	TradeCount int     `json:"trade_count"`
}

// DailyPerformance pairs a weekday name with its metrics. Slices of these are
// ordered Monday through Sunday with empty days omitted.
type DailyPerformance struct {
	Day string `json:"day"`
	TimePerformance
}

// TimePatternResult is the output of the time-pattern analysis. Hourly keys
// are hours 0-23 that actually occurred.
type TimePatternResult struct {
	Hourly map[int]TimePerformance `json:"hourly_performance"`
	Daily  []DailyPerformance      `json:"daily_performance"`
}

// StrategyPerformance holds per-strategy-tag metrics. ProfitFactor is nil
// when undefined; AllProfit marks the no-losses-with-winners case the ratio
// cannot express.
type StrategyPerformance struct {
	TotalPnL     float64  `json:"total_pnl"`
	WinRate      float64  `json:"win_rate"`
	ProfitFactor *float64 `json:"profit_factor,omitempty"`
	AllProfit    bool     `json:"all_profit,omitempty"`
	TradeCount   int      `json:"trade_count"`
}

// ConditionPerformance holds the metrics for one prior-day market-condition
// bucket.
type ConditionPerformance struct {
	TotalPnL   float64 `json:"total_pnl"`
	WinRate    float64 `json:"win_rate"`
	TradeCount int     `json:"trade_count"`
}

// MarketCorrelationResult maps condition bucket names to their metrics.
// Buckets with no matching trades are omitted.
type MarketCorrelationResult struct {
	Conditions map[string]ConditionPerformance `json:"market_correlation"`
}

// ClusterSummary is the per-cluster aggregate produced by the clustering
// engine. Means are rounded to two decimal places.
type ClusterSummary struct {
	ClusterID          int     `json:"cluster_id"`
	TradeCount         int     `json:"trade_count"`
	AvgPnL             float64 `json:"avg_pnl"`
	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
	AvgMFE             float64 `json:"avg_mfe"`
	AvgMAE             float64 `json:"avg_mae"`
}

// ClusterResult maps each clustered trade ID to its cluster and carries the
// per-cluster summaries, ordered by cluster ID.
type ClusterResult struct {
	TradeClusterMap map[int64]int    `json:"trade_cluster_map"`
	Summaries       []ClusterSummary `json:"cluster_summaries"`
}

// Trading session labels assigned by local-time bands.
const (
	SessionAsia       = "asia"
	SessionPremarket  = "premarket"
	SessionRegular    = "regular"
	SessionAfterhours = "afterhours"
	SessionOvernight  = "overnight"
)

// SessionLabels lists every session band in encoding order.
var SessionLabels = []string{SessionAsia, SessionPremarket, SessionRegular, SessionAfterhours, SessionOvernight}

// FeatureVocabulary is the distinct categorical vocabulary collected from a
// trade batch in a first pass. Encoding against the same vocabulary
// reproduces the same one-hot column set on new data.
type FeatureVocabulary struct {
	TagNames      []string `json:"tag_names"`
	TagCategories []string `json:"tag_categories"`
	Sessions      []string `json:"sessions"`
}

// FeatureRow holds the engineered columns for one trade. Pointer fields are
// nil where the input needed for the derivation was missing or a denominator
// was zero.
type FeatureRow struct {
	IsWin  int `json:"is_win"`
	IsLong int `json:"is_long"`

	DurationSeconds      *float64 `json:"duration_seconds,omitempty"`
	ProfitMargin         *float64 `json:"profit_margin,omitempty"`
	RiskRewardRatio      *float64 `json:"risk_reward_ratio,omitempty"`
	HighestExcursionPct  *float64 `json:"highest_price_excursion_pct,omitempty"`
	LowestExcursionPct   *float64 `json:"lowest_price_excursion_pct,omitempty"`
	NormalizedQuantity   *float64 `json:"normalized_quantity,omitempty"`

	DayOfWeek    int     `json:"day_of_week"`
	HourOfDay    int     `json:"hour_of_day"`
	MinuteOfHour int     `json:"minute_of_hour"`
	Session      string  `json:"session"`
	TimeSin      float64 `json:"time_sin"`
	TimeCos      float64 `json:"time_cos"`
	DayOfWeekSin float64 `json:"day_of_week_sin"`
	DayOfWeekCos float64 `json:"day_of_week_cos"`

	PriceMoveATR      *float64 `json:"price_move_atr,omitempty"`
	StopDistanceATR   *float64 `json:"stop_distance_atr,omitempty"`
	TargetDistanceATR *float64 `json:"target_distance_atr,omitempty"`
	ProfitToMAERatio  *float64 `json:"profit_to_mae_ratio,omitempty"`
	MFEToMAERatio     *float64 `json:"mfe_to_mae_ratio,omitempty"`

	// OneHot holds the binary categorical columns: ticker identity,
	// session_*, tag_name_*, tag_cat_*. The key set is fixed by the
	// vocabulary the batch was encoded against.
	OneHot map[string]int `json:"one_hot"`
}
