package services

import (
	"math"
	"math/rand"
)

const (
	kmeansSeed    = 42
	kmeansMaxIter = 300
)

// runKMeans partitions the rows of data into k clusters with Lloyd's
// algorithm, running inits random initializations from one seeded source and
// keeping the assignment with the lowest inertia. Identical inputs always
// yield identical labels.
func runKMeans(data [][]float64, k int, seed int64, inits int) []int {
	rng := rand.New(rand.NewSource(seed))

	bestLabels := make([]int, len(data))
	bestInertia := math.Inf(1)

	for run := 0; run < inits; run++ {
		labels, inertia := kmeansOnce(data, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}

	return bestLabels
}

func kmeansOnce(data [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	n := len(data)
	dims := len(data[0])

	// Initialize centroids on k distinct points.
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), data[perm[i]]...)
	}

	labels := make([]int, n)
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, point := range data {
			best := nearestCentroid(point, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, point := range data {
			c := labels[i]
			counts[c]++
			for d, v := range point {
				sums[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed a starved cluster on the point farthest
				// from its centroid so every label stays populated.
				centroids[c] = append([]float64(nil), data[farthestPoint(data, labels, centroids)]...)
				changed = true
				continue
			}
			for d := 0; d < dims; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	inertia := 0.0
	for i, point := range data {
		inertia += squaredDistance(point, centroids[labels[i]])
	}
	return labels, inertia
}

func nearestCentroid(point []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(point, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func farthestPoint(data [][]float64, labels []int, centroids [][]float64) int {
	farthest := 0
	maxDist := -1.0
	for i, point := range data {
		if d := squaredDistance(point, centroids[labels[i]]); d > maxDist {
			maxDist = d
			farthest = i
		}
	}
	return farthest
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
