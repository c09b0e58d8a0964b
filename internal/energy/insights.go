package energy

import (
	"fmt"
	"sort"
)

// Insights is the human-facing summary layered over a completed analysis.
type Insights struct {
	Summary         Summary         `json:"summary"`
	Anomalies       AnomalyInsights `json:"anomalies"`
	Patterns        Patterns        `json:"patterns"`
	Recommendations []string        `json:"recommendations"`
}

// Summary aggregates the batch-level consumption statistics.
type Summary struct {
	TotalRooms        int     `json:"total_rooms"`
	TotalEnergy       float64 `json:"total_energy"`
	AvgEnergy         float64 `json:"avg_energy"`
	StdEnergy         float64 `json:"std_energy"`
	MinEnergy         float64 `json:"min_energy"`
	MaxEnergy         float64 `json:"max_energy"`
	AnomalyCount      int     `json:"anomaly_count"`
	AnomalyPercentage float64 `json:"anomaly_percentage"`
}

// AnomalyInsights breaks the consensus anomalies down by type and lists the
// highest-confidence offenders.
type AnomalyInsights struct {
	HighConsumption int          `json:"high_consumption"`
	LowConsumption  int          `json:"low_consumption"`
	UnusualPattern  int          `json:"unusual_pattern"`
	AvgConfidence   float64      `json:"avg_confidence"`
	TopRooms        []TopAnomaly `json:"top_rooms"`
}

// TopAnomaly identifies one of the strongest consensus anomalies.
type TopAnomaly struct {
	RoomNo      int     `json:"room_no"`
	TotalEnergy float64 `json:"total_energy"`
	AnomalyType string  `json:"anomaly_type"`
	Confidence  float64 `json:"confidence"`
}

// Patterns captures batch-wide usage shape statistics.
type Patterns struct {
	PeakHoursAvg       float64 `json:"peak_hours_avg"`
	MorningUsageAvg    float64 `json:"morning_usage_avg"`
	NightUsageAvg      float64 `json:"night_usage_avg"`
	UsageVarianceAvg   float64 `json:"usage_variance_avg"`
	MostEfficientRoom  int     `json:"most_efficient_room"`
	LeastEfficientRoom int     `json:"least_efficient_room"`
}

// Recommendation trigger points.
const (
	anomalyRatePct     = 15.0
	peakRatioThreshold = 0.4
	usagePercentile    = 0.8
)

// topAnomalyCount limits the top-rooms list in the anomaly insights.
const topAnomalyCount = 3

// GenerateInsights derives the summary, anomaly breakdown, usage patterns
// and recommendations from an analysed batch.
func GenerateInsights(rooms []RoomAnalysis) Insights {
	var ins Insights
	if len(rooms) == 0 {
		ins.Recommendations = []string{}
		ins.Anomalies.TopRooms = []TopAnomaly{}
		return ins
	}

	tot := make([]float64, len(rooms))
	for i := range rooms {
		tot[i] = rooms[i].Total
	}

	ins.Summary = summarize(rooms, tot)
	ins.Anomalies = summarizeAnomalies(rooms)
	ins.Patterns = summarizePatterns(rooms, tot)
	ins.Recommendations = recommend(rooms, ins.Summary, ins.Patterns)
	return ins
}

func summarize(rooms []RoomAnalysis, tot []float64) Summary {
	s := Summary{
		TotalRooms:  len(rooms),
		TotalEnergy: sum(tot),
		AvgEnergy:   mean(tot),
		StdEnergy:   sampleStdDev(tot),
		MinEnergy:   minOf(tot),
		MaxEnergy:   maxOf(tot),
	}
	for i := range rooms {
		if rooms[i].Final {
			s.AnomalyCount++
		}
	}
	s.AnomalyPercentage = float64(s.AnomalyCount) / float64(len(rooms)) * 100
	return s
}

func summarizeAnomalies(rooms []RoomAnalysis) AnomalyInsights {
	a := AnomalyInsights{TopRooms: []TopAnomaly{}}

	var flagged []*RoomAnalysis
	var confidenceSum float64
	for i := range rooms {
		r := &rooms[i]
		if !r.Final {
			continue
		}
		flagged = append(flagged, r)
		confidenceSum += r.Confidence
		switch r.AnomalyType {
		case TypeHighConsumption:
			a.HighConsumption++
		case TypeLowConsumption:
			a.LowConsumption++
		case TypeUnusualPattern:
			a.UnusualPattern++
		}
	}
	if len(flagged) == 0 {
		return a
	}
	a.AvgConfidence = confidenceSum / float64(len(flagged))

	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Confidence > flagged[j].Confidence
	})
	for _, r := range flagged {
		if len(a.TopRooms) == topAnomalyCount {
			break
		}
		a.TopRooms = append(a.TopRooms, TopAnomaly{
			RoomNo:      r.RoomNo,
			TotalEnergy: r.Total,
			AnomalyType: r.AnomalyType,
			Confidence:  r.Confidence,
		})
	}
	return a
}

func summarizePatterns(rooms []RoomAnalysis, tot []float64) Patterns {
	var p Patterns
	n := float64(len(rooms))
	for i := range rooms {
		p.PeakHoursAvg += rooms[i].PeakHoursUsage
		p.MorningUsageAvg += rooms[i].MorningUsage
		p.NightUsageAvg += rooms[i].NightUsage
		p.UsageVarianceAvg += rooms[i].UsageVariance
	}
	p.PeakHoursAvg /= n
	p.MorningUsageAvg /= n
	p.NightUsageAvg /= n
	p.UsageVarianceAvg /= n

	minIdx, maxIdx := 0, 0
	for i, t := range tot {
		if t < tot[minIdx] {
			minIdx = i
		}
		if t > tot[maxIdx] {
			maxIdx = i
		}
	}
	p.MostEfficientRoom = rooms[minIdx].RoomNo
	p.LeastEfficientRoom = rooms[maxIdx].RoomNo
	return p
}

func recommend(rooms []RoomAnalysis, s Summary, p Patterns) []string {
	recs := []string{}

	if s.AnomalyPercentage > anomalyRatePct {
		recs = append(recs, fmt.Sprintf(
			"%.1f%% of rooms show anomalous consumption; inspect metering and appliance usage in the flagged rooms",
			s.AnomalyPercentage))
	}

	peakRatio := make([]float64, len(rooms))
	night := make([]float64, len(rooms))
	variance := make([]float64, len(rooms))
	for i := range rooms {
		peakRatio[i] = rooms[i].PeakHoursRatio
		night[i] = rooms[i].NightUsage
		variance[i] = rooms[i].UsageVariance
	}

	if mean(peakRatio) > peakRatioThreshold {
		recs = append(recs,
			"peak-hour usage dominates daily consumption; consider shifting flexible loads to off-peak intervals")
	}

	// The usage rules fire when the batch mean sits above the batch's own
	// 80th percentile, i.e. a few extreme rooms drag the average up.
	if mean(night) > quantile(night, usagePercentile) {
		recs = append(recs,
			"night-time usage is skewed by a few heavy rooms; check for appliances left running overnight")
	}
	if mean(variance) > quantile(variance, usagePercentile) {
		recs = append(recs,
			"usage patterns are highly irregular in parts of the batch; steadier scheduling would reduce demand spikes")
	}

	return recs
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
