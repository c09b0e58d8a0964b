package energy

import (
	"math/rand"
	"testing"
)

// clusterWithOutlier returns points scattered near the origin plus one far
// away at the final index.
func clusterWithOutlier(n int) [][]float64 {
	rng := rand.New(rand.NewSource(1))
	rows := make([][]float64, 0, n+1)
	for i := 0; i < n; i++ {
		rows = append(rows, []float64{rng.NormFloat64() * 0.5, rng.NormFloat64() * 0.5})
	}
	rows = append(rows, []float64{10, 10})
	return rows
}

func TestIsolationForestFlagsOutlier(t *testing.T) {
	rows := clusterWithOutlier(29)
	ds := &Dataset{Scaled: rows}

	f := NewIsolationForest(DefaultIsoTrees, DefaultIsoSampleSize, DefaultContamination, DefaultRandomSeed)
	flags, err := f.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}

	outlier := len(rows) - 1
	if !flags[outlier] {
		t.Error("far point not flagged")
	}

	flagged := 0
	for _, fl := range flags {
		if fl {
			flagged++
		}
	}
	// Contamination 0.1 over 30 rows caps the flag count near three.
	if flagged == 0 || flagged > 6 {
		t.Errorf("flagged %d of %d rows", flagged, len(rows))
	}
}

func TestIsolationForestOutlierScoresHigher(t *testing.T) {
	rows := clusterWithOutlier(29)
	ds := &Dataset{Scaled: rows}

	f := NewIsolationForest(DefaultIsoTrees, DefaultIsoSampleSize, DefaultContamination, DefaultRandomSeed)
	if _, err := f.FitPredict(ds); err != nil {
		t.Fatal(err)
	}

	outlierScore := f.Score(rows[len(rows)-1])
	inlierScore := f.Score(rows[0])
	if outlierScore <= inlierScore {
		t.Errorf("outlier score %v not above inlier score %v", outlierScore, inlierScore)
	}
}

func TestIsolationForestDeterministic(t *testing.T) {
	rows := clusterWithOutlier(19)
	ds := &Dataset{Scaled: rows}

	a := NewIsolationForest(100, 64, 0.1, 7)
	b := NewIsolationForest(100, 64, 0.1, 7)
	flagsA, err := a.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}
	flagsB, err := b.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}

	for i := range flagsA {
		if flagsA[i] != flagsB[i] {
			t.Fatalf("flags diverge at row %d with identical seeds", i)
		}
	}
}

func TestIsolationForestEmptyDataset(t *testing.T) {
	f := NewIsolationForest(10, 16, 0.1, 1)
	if _, err := f.FitPredict(&Dataset{}); err == nil {
		t.Fatal("expected error on empty dataset")
	}
}
