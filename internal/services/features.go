package services

import (
	"math"
	"sort"
	"strings"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// BuildVocabulary collects the distinct categorical vocabulary of a trade
// batch: tag names and tag categories, sorted, plus the fixed session list.
// Encoding a second batch against the same vocabulary reproduces the same
// one-hot column set.
func BuildVocabulary(trades []models.Trade) models.FeatureVocabulary {
	names := make(map[string]bool)
	categories := make(map[string]bool)
	for _, t := range trades {
		for _, tag := range t.Tags {
			if tag.Name != "" {
				names[tag.Name] = true
			}
			if tag.Category != "" {
				categories[tag.Category] = true
			}
		}
	}

	vocab := models.FeatureVocabulary{
		TagNames:      sortedKeys(names),
		TagCategories: sortedKeys(categories),
		Sessions:      append([]string(nil), models.SessionLabels...),
	}
	return vocab
}

// EngineerFeatures derives the numeric, temporal, market-context, and one-hot
// feature columns for each enriched trade, encoding categoricals against the
// supplied vocabulary. A new row set is returned; input rows are not mutated.
func EngineerFeatures(rows []models.EnrichedTrade, vocab models.FeatureVocabulary) []models.EnrichedTrade {
	out := make([]models.EnrichedTrade, len(rows))
	for i, row := range rows {
		out[i] = row
		out[i].Features = engineerRow(&row, vocab)
	}
	return out
}

func engineerRow(row *models.EnrichedTrade, vocab models.FeatureVocabulary) *models.FeatureRow {
	t := &row.Trade
	f := &models.FeatureRow{}

	if t.IsWin() {
		f.IsWin = 1
	}
	direction := -1.0
	if t.IsLong() {
		f.IsLong = 1
		direction = 1.0
	}

	if d, ok := t.Duration(); ok {
		seconds := d.Seconds()
		f.DurationSeconds = &seconds
	}

	if t.ExitPrice != nil && t.EntryPrice != 0 {
		margin := direction * (*t.ExitPrice - t.EntryPrice) / t.EntryPrice
		f.ProfitMargin = &margin
	}

	if t.TakeProfit != nil && t.StopLoss != nil {
		potentialGain := math.Abs(*t.TakeProfit - t.EntryPrice)
		potentialLoss := math.Abs(t.EntryPrice - *t.StopLoss)
		if potentialLoss != 0 {
			rr := potentialGain / potentialLoss
			f.RiskRewardRatio = &rr
		}
	}

	if t.EntryPrice != 0 {
		if t.HighestPrice != nil {
			pct := direction * (*t.HighestPrice - t.EntryPrice) / t.EntryPrice
			f.HighestExcursionPct = &pct
		}
		if t.LowestPrice != nil {
			pct := direction * (*t.LowestPrice - t.EntryPrice) / t.EntryPrice
			f.LowestExcursionPct = &pct
		}
		nq := t.Quantity / t.EntryPrice
		f.NormalizedQuantity = &nq
	}

	engineerTimeFeatures(t, f)
	engineerMarketContextFeatures(row, f)
	encodeCategorical(t, f, vocab)

	return f
}

func engineerTimeFeatures(t *models.Trade, f *models.FeatureRow) {
	entry := t.EntryTime

	// Monday=0 through Sunday=6.
	f.DayOfWeek = (int(entry.Weekday()) + 6) % 7
	f.HourOfDay = entry.Hour()
	f.MinuteOfHour = entry.Minute()

	timeDecimal := float64(entry.Hour()) + float64(entry.Minute())/60.0
	f.Session = sessionFor(timeDecimal)

	secondsOfDay := float64(entry.Hour()*3600 + entry.Minute()*60 + entry.Second())
	const secondsInDay = 24 * 60 * 60
	f.TimeSin = math.Sin(2 * math.Pi * secondsOfDay / secondsInDay)
	f.TimeCos = math.Cos(2 * math.Pi * secondsOfDay / secondsInDay)

	const daysInWeek = 7
	f.DayOfWeekSin = math.Sin(2 * math.Pi * float64(f.DayOfWeek) / daysInWeek)
	f.DayOfWeekCos = math.Cos(2 * math.Pi * float64(f.DayOfWeek) / daysInWeek)
}

// sessionFor assigns the trading-session band for a local time expressed as
// decimal hours. The 20:00 boundary belongs to after-hours.
func sessionFor(timeDecimal float64) string {
	switch {
	case timeDecimal >= 4 && timeDecimal < 9.5:
		return models.SessionPremarket
	case timeDecimal >= 9.5 && timeDecimal < 16:
		return models.SessionRegular
	case timeDecimal >= 16 && timeDecimal <= 20:
		return models.SessionAfterhours
	case timeDecimal >= 20 || timeDecimal < 4:
		return models.SessionAsia
	default:
		return models.SessionOvernight
	}
}

func engineerMarketContextFeatures(row *models.EnrichedTrade, f *models.FeatureRow) {
	t := &row.Trade
	direction := -1.0
	if t.IsLong() {
		direction = 1.0
	}

	if row.DailyATR != nil && *row.DailyATR != 0 {
		atr := *row.DailyATR
		if t.ExitPrice != nil {
			move := direction * (*t.ExitPrice - t.EntryPrice) / atr
			f.PriceMoveATR = &move
		}
		if t.StopLoss != nil {
			dist := direction * (t.EntryPrice - *t.StopLoss) / atr
			f.StopDistanceATR = &dist
		}
		if t.TakeProfit != nil {
			dist := direction * (*t.TakeProfit - t.EntryPrice) / atr
			f.TargetDistanceATR = &dist
		}
	}

	// Excursion ratios divide by |MAE|; a zero MAE leaves them undefined
	// rather than infinite.
	if f.LowestExcursionPct != nil && *f.LowestExcursionPct != 0 {
		mae := math.Abs(*f.LowestExcursionPct)
		if f.ProfitMargin != nil {
			ratio := *f.ProfitMargin / mae
			f.ProfitToMAERatio = &ratio
		}
		if f.HighestExcursionPct != nil {
			ratio := *f.HighestExcursionPct / mae
			f.MFEToMAERatio = &ratio
		}
	}
}

func encodeCategorical(t *models.Trade, f *models.FeatureRow, vocab models.FeatureVocabulary) {
	oneHot := make(map[string]int)

	if t.Ticker == "ES" {
		oneHot["ticker_is_es"] = 1
	} else {
		oneHot["ticker_is_es"] = 0
	}

	for _, session := range vocab.Sessions {
		col := "session_" + session
		if f.Session == session {
			oneHot[col] = 1
		} else {
			oneHot[col] = 0
		}
	}

	tagNames := make(map[string]bool, len(t.Tags))
	tagCategories := make(map[string]bool, len(t.Tags))
	for _, tag := range t.Tags {
		tagNames[tag.Name] = true
		tagCategories[tag.Category] = true
	}
	for _, name := range vocab.TagNames {
		col := "tag_name_" + slugify(name)
		if tagNames[name] {
			oneHot[col] = 1
		} else {
			oneHot[col] = 0
		}
	}
	for _, category := range vocab.TagCategories {
		col := "tag_cat_" + slugify(category)
		if tagCategories[category] {
			oneHot[col] = 1
		} else {
			oneHot[col] = 0
		}
	}

	f.OneHot = oneHot
}

func slugify(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, " ", "_"))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
