package energy

import (
	"math"
	"testing"

	"github.com/hallsdata/energy.report/internal/testutil"
)

// recordWithIntervals builds a room record whose total matches its readings.
func recordWithIntervals(day, room int, iv [NumIntervals]float64) RoomRecord {
	var total float64
	for _, x := range iv {
		total += x
	}
	return RoomRecord{Day: day, RoomNo: room, Intervals: iv, Total: total}
}

// flatProfile is a room drawing the same amount in every interval.
func flatProfile(day, room int, perInterval float64) RoomRecord {
	var iv [NumIntervals]float64
	for i := range iv {
		iv[i] = perInterval
	}
	return recordWithIntervals(day, room, iv)
}

func TestEngineerFeaturesBasics(t *testing.T) {
	iv := [NumIntervals]float64{1, 1, 1, 2, 2, 1, 1, 1, 1, 4, 4, 1}
	records := []RoomRecord{
		recordWithIntervals(1, 101, iv),
		flatProfile(1, 102, 1.5),
		flatProfile(1, 103, 2.0),
		flatProfile(1, 104, 2.5),
		flatProfile(1, 105, 3.0),
	}

	rooms := EngineerFeatures(records)
	if len(rooms) != len(records) {
		t.Fatalf("got %d rooms, want %d", len(rooms), len(records))
	}

	r := rooms[0]
	testutil.AssertInDelta(t, r.PeakUsage, 4, 1e-12)
	testutil.AssertInDelta(t, r.OffPeakUsage, 1, 1e-12)
	testutil.AssertInDelta(t, r.UsageRange, 3, 1e-12)
	testutil.AssertInDelta(t, r.PeakHoursUsage, 8, 1e-12) // 18-20 + 20-22
	testutil.AssertInDelta(t, r.MorningUsage, 4, 1e-12)   // 06-08 + 08-10
	testutil.AssertInDelta(t, r.NightUsage, 4, 1e-12)     // 22-24 through 04-06
	testutil.AssertInDelta(t, r.PeakHoursRatio, 8.0/r.Total, 1e-12)
	testutil.AssertInDelta(t, r.UsageIQR, r.UsageQ75-r.UsageQ25, 1e-12)
}

func TestEngineerFeaturesFlatRoomHasNoSpread(t *testing.T) {
	records := []RoomRecord{
		flatProfile(1, 101, 2),
		flatProfile(1, 102, 3),
		flatProfile(1, 103, 4),
		flatProfile(1, 104, 5),
		flatProfile(1, 105, 6),
	}
	rooms := EngineerFeatures(records)

	r := rooms[2]
	testutil.AssertInDelta(t, r.UsageVariance, 0, 1e-12)
	testutil.AssertInDelta(t, r.UsageStd, 0, 1e-12)
	testutil.AssertInDelta(t, r.UsageSkewness, 0, 0)
	testutil.AssertInDelta(t, r.UsageKurtosis, 0, 0)
	testutil.AssertInDelta(t, r.UsageMedian, 4, 1e-12)
}

func TestEngineerFeaturesZScore(t *testing.T) {
	// Totals 24, 36, 48, 60, 72: mean 48, population std sqrt(288).
	records := []RoomRecord{
		flatProfile(1, 101, 2),
		flatProfile(1, 102, 3),
		flatProfile(1, 103, 4),
		flatProfile(1, 104, 5),
		flatProfile(1, 105, 6),
	}
	rooms := EngineerFeatures(records)

	popStd := math.Sqrt(288)
	testutil.AssertInDelta(t, rooms[0].ZScore, 24/popStd, 1e-12)
	testutil.AssertInDelta(t, rooms[2].ZScore, 0, 1e-12)
	testutil.AssertInDelta(t, rooms[4].ZScore, 24/popStd, 1e-12)
}

func TestEngineerFeaturesZeroTotalRatios(t *testing.T) {
	records := []RoomRecord{
		flatProfile(1, 101, 0),
		flatProfile(1, 102, 2),
		flatProfile(1, 103, 3),
		flatProfile(1, 104, 4),
		flatProfile(1, 105, 5),
	}
	rooms := EngineerFeatures(records)

	r := rooms[0]
	if r.PeakHoursRatio != 0 || r.MorningRatio != 0 || r.NightRatio != 0 {
		t.Fatalf("zero-total room has nonzero ratios: %+v", r.Features)
	}
}

func TestFeatureVectorShape(t *testing.T) {
	names := FeatureNames()
	if len(names) != NumIntervals+21 {
		t.Fatalf("got %d feature names, want %d", len(names), NumIntervals+21)
	}

	rooms := EngineerFeatures([]RoomRecord{flatProfile(1, 101, 2), flatProfile(1, 102, 3)})
	vec := rooms[0].FeatureVector()
	if len(vec) != len(names) {
		t.Fatalf("vector length %d does not match %d names", len(vec), len(names))
	}
	for i, x := range vec {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("feature %s is not finite: %v", names[i], x)
		}
	}
}

func TestFeatureMatrixRowOrder(t *testing.T) {
	rooms := EngineerFeatures([]RoomRecord{flatProfile(1, 101, 2), flatProfile(2, 102, 5)})
	matrix := FeatureMatrix(rooms)
	if len(matrix) != 2 {
		t.Fatalf("got %d rows", len(matrix))
	}
	// Raw intervals lead the vector.
	if matrix[0][0] != 2 || matrix[1][0] != 5 {
		t.Fatalf("interval columns out of order: %v %v", matrix[0][0], matrix[1][0])
	}
}
