package energy

import (
	"strings"
	"testing"

	"github.com/hallsdata/energy.report/internal/testutil"
)

func analysedRoom(room int, total, confidence float64, anomalyType string) RoomAnalysis {
	ra := RoomAnalysis{}
	ra.RoomNo = room
	ra.Total = total
	ra.AnomalyType = anomalyType
	if anomalyType != TypeNormal {
		ra.Final = true
		ra.Confidence = confidence
	}
	return ra
}

func TestGenerateInsightsSummary(t *testing.T) {
	rooms := []RoomAnalysis{
		analysedRoom(101, 20, 0, TypeNormal),
		analysedRoom(102, 30, 0, TypeNormal),
		analysedRoom(103, 40, 0, TypeNormal),
		analysedRoom(104, 90, 0.8, TypeHighConsumption),
		analysedRoom(105, 5, 0.6, TypeLowConsumption),
	}

	ins := GenerateInsights(rooms)

	s := ins.Summary
	if s.TotalRooms != 5 {
		t.Errorf("total rooms %d", s.TotalRooms)
	}
	if s.TotalEnergy != 185 {
		t.Errorf("total energy %v", s.TotalEnergy)
	}
	if s.MinEnergy != 5 || s.MaxEnergy != 90 {
		t.Errorf("range [%v, %v]", s.MinEnergy, s.MaxEnergy)
	}
	if s.AnomalyCount != 2 {
		t.Errorf("anomaly count %d", s.AnomalyCount)
	}
	testutil.AssertInDelta(t, s.AnomalyPercentage, 40, 1e-9)
}

func TestGenerateInsightsAnomalyBreakdown(t *testing.T) {
	rooms := []RoomAnalysis{
		analysedRoom(101, 20, 0, TypeNormal),
		analysedRoom(102, 90, 0.8, TypeHighConsumption),
		analysedRoom(103, 95, 1.0, TypeHighConsumption),
		analysedRoom(104, 5, 0.4, TypeLowConsumption),
		analysedRoom(105, 50, 0.6, TypeUnusualPattern),
	}

	a := GenerateInsights(rooms).Anomalies
	if a.HighConsumption != 2 || a.LowConsumption != 1 || a.UnusualPattern != 1 {
		t.Errorf("breakdown %d/%d/%d", a.HighConsumption, a.LowConsumption, a.UnusualPattern)
	}
	testutil.AssertInDelta(t, a.AvgConfidence, 0.7, 1e-9)

	if len(a.TopRooms) != 3 {
		t.Fatalf("top rooms %d, want 3", len(a.TopRooms))
	}
	if a.TopRooms[0].RoomNo != 103 || a.TopRooms[1].RoomNo != 102 || a.TopRooms[2].RoomNo != 105 {
		t.Errorf("top rooms out of order: %+v", a.TopRooms)
	}
}

func TestGenerateInsightsPatterns(t *testing.T) {
	low := analysedRoom(201, 10, 0, TypeNormal)
	high := analysedRoom(202, 99, 0, TypeNormal)
	mid := analysedRoom(203, 50, 0, TypeNormal)

	p := GenerateInsights([]RoomAnalysis{low, high, mid}).Patterns
	if p.MostEfficientRoom != 201 {
		t.Errorf("most efficient %d", p.MostEfficientRoom)
	}
	if p.LeastEfficientRoom != 202 {
		t.Errorf("least efficient %d", p.LeastEfficientRoom)
	}
}

func TestGenerateInsightsRecommendsOnHighAnomalyRate(t *testing.T) {
	rooms := []RoomAnalysis{
		analysedRoom(101, 20, 0, TypeNormal),
		analysedRoom(102, 25, 0, TypeNormal),
		analysedRoom(103, 30, 0, TypeNormal),
		analysedRoom(104, 90, 0.8, TypeHighConsumption),
	}

	recs := GenerateInsights(rooms).Recommendations
	found := false
	for _, r := range recs {
		if strings.Contains(r, "anomalous consumption") {
			found = true
		}
	}
	if !found {
		t.Errorf("no anomaly-rate recommendation in %v", recs)
	}
}

func hasRecommendation(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func TestPeakRecommendationAveragesPerRoomRatios(t *testing.T) {
	// Small rooms with peaky profiles dominate the mean ratio even though
	// their absolute peak usage is tiny next to the big room.
	big := analysedRoom(101, 100, 0, TypeNormal)
	big.PeakHoursUsage = 10
	big.PeakHoursRatio = 0.1
	small1 := analysedRoom(102, 2, 0, TypeNormal)
	small1.PeakHoursUsage = 1.8
	small1.PeakHoursRatio = 0.9
	small2 := analysedRoom(103, 2, 0, TypeNormal)
	small2.PeakHoursUsage = 1.8
	small2.PeakHoursRatio = 0.9

	recs := GenerateInsights([]RoomAnalysis{big, small1, small2}).Recommendations
	if !hasRecommendation(recs, "peak-hour usage") {
		t.Errorf("mean ratio 0.63 should trigger the peak recommendation: %v", recs)
	}

	for _, ra := range []*RoomAnalysis{&big, &small1, &small2} {
		ra.PeakHoursRatio = 0.3
	}
	recs = GenerateInsights([]RoomAnalysis{big, small1, small2}).Recommendations
	if hasRecommendation(recs, "peak-hour usage") {
		t.Errorf("mean ratio 0.3 should not trigger the peak recommendation: %v", recs)
	}
}

func TestNightRecommendationComparesMeanToPercentile(t *testing.T) {
	// Near-uniform night usage: some rooms always sit above the 80th
	// percentile, but the mean does not, so no recommendation.
	night := []float64{0, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 11}
	rooms := make([]RoomAnalysis, len(night))
	for i := range rooms {
		rooms[i] = analysedRoom(101+i, 50, 0, TypeNormal)
		rooms[i].NightUsage = night[i]
	}
	recs := GenerateInsights(rooms).Recommendations
	if hasRecommendation(recs, "night-time usage") {
		t.Errorf("uniform night usage should not trigger a recommendation: %v", recs)
	}

	// One extreme room drags the mean above the percentile bound.
	skewed := []float64{1, 1, 1, 1, 1, 100}
	rooms = make([]RoomAnalysis, len(skewed))
	for i := range rooms {
		rooms[i] = analysedRoom(101+i, 50, 0, TypeNormal)
		rooms[i].NightUsage = skewed[i]
	}
	recs = GenerateInsights(rooms).Recommendations
	if !hasRecommendation(recs, "night-time usage") {
		t.Errorf("skewed night usage should trigger a recommendation: %v", recs)
	}
}

func TestVarianceRecommendationComparesMeanToPercentile(t *testing.T) {
	variances := []float64{1, 1, 1, 1, 1, 200}
	rooms := make([]RoomAnalysis, len(variances))
	for i := range rooms {
		rooms[i] = analysedRoom(101+i, 50, 0, TypeNormal)
		rooms[i].UsageVariance = variances[i]
	}
	recs := GenerateInsights(rooms).Recommendations
	if !hasRecommendation(recs, "irregular") {
		t.Errorf("skewed variance should trigger a recommendation: %v", recs)
	}

	for i := range rooms {
		rooms[i].UsageVariance = 5
	}
	recs = GenerateInsights(rooms).Recommendations
	if hasRecommendation(recs, "irregular") {
		t.Errorf("uniform variance should not trigger a recommendation: %v", recs)
	}
}

func TestGenerateInsightsEmpty(t *testing.T) {
	ins := GenerateInsights(nil)
	if ins.Summary.TotalRooms != 0 {
		t.Errorf("summary not empty: %+v", ins.Summary)
	}
	if ins.Recommendations == nil || ins.Anomalies.TopRooms == nil {
		t.Error("empty insights should have non-nil slices")
	}
}
