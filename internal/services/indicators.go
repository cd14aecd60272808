package services

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// Default indicator lookback periods, matching the daily context the journal
// was built around.
const (
	DefaultATRPeriod = 14
	DefaultEMAPeriod = 21
)

// ComputeIndicators derives the daily ATR and EMA rows for a contiguous bar
// series. Each indicator stays nil until its lookback window has filled.
//
// ATR is the rolling mean of true range over atrPeriod. EMA uses the standard
// smoothing factor 2/(period+1), seeded with the simple mean of the first
// emaPeriod closes; the seed convention is fixed here rather than delegated
// so the first defined value lands exactly at index emaPeriod-1.
func ComputeIndicators(bars []models.DailyBar, atrPeriod, emaPeriod int) []models.IndicatorRow {
	rows := make([]models.IndicatorRow, len(bars))
	for i, bar := range bars {
		rows[i] = models.IndicatorRow{Date: bar.Date}
	}
	if len(bars) == 0 {
		return rows
	}

	tr := trueRange(bars)

	if atrPeriod > 0 && len(tr) >= atrPeriod {
		sma := trend.NewSmaWithPeriod[float64](atrPeriod)
		atr := helper.ChanToSlice(sma.Compute(helper.SliceToChan(tr)))
		for i, v := range atr {
			value := v
			rows[i+atrPeriod-1].ATR = &value
		}
	}

	if emaPeriod > 0 && len(bars) >= emaPeriod {
		alpha := 2.0 / (float64(emaPeriod) + 1)
		var seed float64
		for i := 0; i < emaPeriod; i++ {
			seed += bars[i].Close
		}
		ema := seed / float64(emaPeriod)

		value := ema
		rows[emaPeriod-1].EMA = &value
		for i := emaPeriod; i < len(bars); i++ {
			ema = alpha*bars[i].Close + (1-alpha)*ema
			v := ema
			rows[i].EMA = &v
		}
	}

	return rows
}

// trueRange computes the per-day true range:
// max(high-low, |high-prior close|, |low-prior close|). The first day has no
// prior close, so its true range is the plain high-low span.
func trueRange(bars []models.DailyBar) []float64 {
	tr := make([]float64, len(bars))
	for i, bar := range bars {
		hl := bar.High - bar.Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(hl, math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
	}
	return tr
}
