package energy

import (
	"math"

	"github.com/hallsdata/energy.report/internal/monitoring"
)

// EngineerFeatures computes the per-room statistical features and the
// dataset-relative indicator columns (z-score, IQR score, smoothed trend).
// The returned slice carries one RoomAnalysis per input record with the
// Detection and Prediction sections still zero-valued; DetectAnomalies and
// PredictConsumption fill those in.
func EngineerFeatures(records []RoomRecord) []RoomAnalysis {
	out := make([]RoomAnalysis, len(records))

	// Dataset-level columns over the totals.
	tot := totals(records)
	totMean := mean(tot)
	totPopStd := popStdDev(tot)
	totSampleStd := sampleStdDev(tot)
	totMedian := quantile(tot, 0.5)
	smoothed := savgolSmooth(tot)

	for i, r := range records {
		ra := RoomAnalysis{RoomRecord: r}
		iv := r.Intervals[:]

		ra.PeakUsage = maxOf(iv)
		ra.OffPeakUsage = minOf(iv)
		ra.UsageVariance = sampleVariance(iv)
		ra.UsageStd = sampleStdDev(iv)
		ra.UsageRange = ra.PeakUsage - ra.OffPeakUsage
		ra.UsageSkewness = skewness(iv)
		ra.UsageKurtosis = kurtosis(iv)
		ra.UsageMedian = quantile(iv, 0.5)
		ra.UsageQ75 = quantile(iv, 0.75)
		ra.UsageQ25 = quantile(iv, 0.25)
		ra.UsageIQR = ra.UsageQ75 - ra.UsageQ25

		ra.PeakHoursUsage = sumAt(iv, peakHourIdx)
		ra.PeakHoursRatio = safeRatio(ra.PeakHoursUsage, r.Total)
		ra.MorningUsage = sumAt(iv, morningHourIdx)
		ra.MorningRatio = safeRatio(ra.MorningUsage, r.Total)
		ra.NightUsage = sumAt(iv, nightHourIdx)
		ra.NightRatio = safeRatio(ra.NightUsage, r.Total)

		if totPopStd > 0 {
			ra.ZScore = math.Abs((r.Total - totMean) / totPopStd)
		}
		if totSampleStd > 0 {
			ra.IQRScore = math.Abs((r.Total - totMedian) / totSampleStd)
		}
		ra.SmoothedUsage = smoothed[i]
		ra.UsageTrend = r.Total - smoothed[i]

		out[i] = ra
	}

	monitoring.Debugf("engineered %d features for %d rooms", len(FeatureNames()), len(out))
	return out
}

// FeatureMatrix assembles the model input matrix in FeatureNames order.
func FeatureMatrix(rooms []RoomAnalysis) [][]float64 {
	matrix := make([][]float64, len(rooms))
	for i, ra := range rooms {
		matrix[i] = ra.FeatureVector()
	}
	return matrix
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func sumAt(xs []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += xs[i]
	}
	return sum
}

// safeRatio guards the time-of-day ratios against zero totals. A room that
// drew no energy has no meaningful usage distribution.
func safeRatio(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}
