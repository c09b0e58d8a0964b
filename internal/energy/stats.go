package energy

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistical helpers shared by the feature engineering and detector code.
// Conventions match the columns consumers already depend on: sample (n-1)
// variance, linearly interpolated quantiles, adjusted Fisher-Pearson
// skewness and excess kurtosis.

func isNaNOrInf(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// sampleVariance is the unbiased (n-1) variance. Zero for fewer than two samples.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.Variance(xs, nil)
}

func sampleStdDev(xs []float64) float64 {
	return math.Sqrt(sampleVariance(xs))
}

// popStdDev is the population (n) standard deviation, used by the z-score
// feature.
func popStdDev(xs []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / n)
}

// quantile returns the p-quantile (0..1) with linear interpolation between
// order statistics: the value at fractional rank p*(n-1).
func quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// centralMoment returns the k-th central moment (population normalization).
func centralMoment(xs []float64, k int) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += math.Pow(x-m, float64(k))
	}
	return sum / float64(len(xs))
}

// skewness is the adjusted Fisher-Pearson standardized moment coefficient
// (the G1 estimator). Returns 0 for degenerate inputs (n < 3 or zero
// variance) so downstream JSON encoding never sees NaN.
func skewness(xs []float64) float64 {
	n := float64(len(xs))
	if n < 3 {
		return 0
	}
	m2 := centralMoment(xs, 2)
	if m2 == 0 {
		return 0
	}
	g1 := centralMoment(xs, 3) / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis is the unbiased excess kurtosis (the G2 estimator). Returns 0 for
// degenerate inputs (n < 4 or zero variance).
func kurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n < 4 {
		return 0
	}
	m2 := centralMoment(xs, 2)
	if m2 == 0 {
		return 0
	}
	g2 := centralMoment(xs, 4)/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// totals extracts the total-energy column from a record set.
func totals(records []RoomRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Total
	}
	return out
}

// column extracts one feature column from a feature matrix.
func column(matrix [][]float64, j int) []float64 {
	out := make([]float64, len(matrix))
	for i := range matrix {
		out[i] = matrix[i][j]
	}
	return out
}
