package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// Feature names the clustering engine recognizes.
const (
	FeatureDuration = "duration_seconds"
	FeaturePnL      = "pnl"
	FeatureMFE      = "mfe"
	FeatureMAE      = "mae"
)

var clusterableFeatures = []string{FeatureDuration, FeaturePnL, FeatureMFE, FeatureMAE}

// ClusterTrades groups behaviorally similar trades with K-means over the
// requested feature subset. Trades missing any required field, or whose
// observed price extremes fail to bound the entry price, are excluded before
// clustering. Missing feature values are imputed with the column mean and all
// columns are standardized; the run is deterministic for identical inputs.
func ClusterTrades(trades []models.Trade, k int, features []string, inits int, logger *logrus.Logger) (*models.ClusterResult, error) {
	valid := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if clusterable(&t) {
			valid = append(valid, t)
		}
	}

	if len(valid) < k {
		return nil, newValidationError(fmt.Sprintf(
			"not enough valid trades (%d) with required fields for clustering into %d clusters", len(valid), k))
	}

	selected := make([]string, 0, len(features))
	for _, f := range features {
		if containsString(clusterableFeatures, f) {
			selected = append(selected, f)
		}
	}
	if len(selected) == 0 {
		return nil, newValidationError("none of the requested features are available")
	}
	if len(selected) != len(features) {
		logger.WithFields(logrus.Fields{
			"requested": features,
			"used":      selected,
		}).Warn("ignoring unrecognized clustering features")
	}

	matrix := buildFeatureMatrix(valid, selected)
	imputeColumnMeans(matrix)
	standardize(matrix)

	labels := runKMeans(matrix, k, kmeansSeed, inits)

	result := &models.ClusterResult{
		TradeClusterMap: make(map[int64]int, len(valid)),
	}
	groups := make(map[int][]models.Trade)
	for i, t := range valid {
		result.TradeClusterMap[t.ID] = labels[i]
		groups[labels[i]] = append(groups[labels[i]], t)
	}

	clusterIDs := make([]int, 0, len(groups))
	for id := range groups {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	for _, id := range clusterIDs {
		group := groups[id]
		var pnlSum, durationSum, mfeSum, maeSum float64
		for _, t := range group {
			pnlSum += t.PnL
			d, _ := t.Duration()
			durationSum += d.Seconds()
			mfe, _ := t.MFE()
			mfeSum += mfe
			mae, _ := t.MAE()
			maeSum += mae
		}
		n := float64(len(group))
		result.Summaries = append(result.Summaries, models.ClusterSummary{
			ClusterID:          id,
			TradeCount:         len(group),
			AvgPnL:             round2(pnlSum / n),
			AvgDurationSeconds: round2(durationSum / n),
			AvgMFE:             round2(mfeSum / n),
			AvgMAE:             round2(maeSum / n),
		})
	}

	return result, nil
}

// clusterable checks the required non-nil fields and the price-bound
// invariant.
func clusterable(t *models.Trade) bool {
	if t.ExitTime == nil || t.ExitPrice == nil || t.HighestPrice == nil || t.LowestPrice == nil {
		return false
	}
	return t.PriceBoundsValid()
}

func buildFeatureMatrix(trades []models.Trade, features []string) [][]float64 {
	matrix := make([][]float64, len(trades))
	for i, t := range trades {
		row := make([]float64, len(features))
		for j, feature := range features {
			row[j] = featureValue(&t, feature)
		}
		matrix[i] = row
	}
	return matrix
}

func featureValue(t *models.Trade, feature string) float64 {
	switch feature {
	case FeatureDuration:
		if d, ok := t.Duration(); ok {
			return d.Seconds()
		}
	case FeaturePnL:
		return t.PnL
	case FeatureMFE:
		if v, ok := t.MFE(); ok {
			return v
		}
	case FeatureMAE:
		if v, ok := t.MAE(); ok {
			return v
		}
	}
	return math.NaN()
}

// imputeColumnMeans replaces NaN cells with the mean of the defined values in
// their column. A column with no defined values becomes zeros.
func imputeColumnMeans(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	for col := 0; col < len(matrix[0]); col++ {
		sum := 0.0
		count := 0
		for _, row := range matrix {
			if !math.IsNaN(row[col]) {
				sum += row[col]
				count++
			}
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		for _, row := range matrix {
			if math.IsNaN(row[col]) {
				row[col] = mean
			}
		}
	}
}

// standardize scales each column to zero mean and unit variance. A
// zero-variance column collapses to zeros instead of dividing by zero.
func standardize(matrix [][]float64) {
	if len(matrix) == 0 {
		return
	}
	n := float64(len(matrix))
	for col := 0; col < len(matrix[0]); col++ {
		mean := 0.0
		for _, row := range matrix {
			mean += row[col]
		}
		mean /= n

		variance := 0.0
		for _, row := range matrix {
			diff := row[col] - mean
			variance += diff * diff
		}
		std := math.Sqrt(variance / n)

		for _, row := range matrix {
			if std == 0 {
				row[col] = 0
			} else {
				row[col] = (row[col] - mean) / std
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
