package energy

import "testing"

func TestOneClassSVMFlagsLowDensityPoint(t *testing.T) {
	rows := clusterWithOutlier(29)
	ds := &Dataset{Scaled: rows}

	s := NewOneClassSVM(DefaultSVMNu)
	flags, err := s.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}

	if !flags[len(rows)-1] {
		t.Error("isolated point not flagged")
	}
	if s.FitGamma <= 0 {
		t.Errorf("gamma not derived: %v", s.FitGamma)
	}
}

func TestOneClassSVMOutlierScoresLower(t *testing.T) {
	rows := clusterWithOutlier(29)
	s := NewOneClassSVM(DefaultSVMNu)
	if _, err := s.FitPredict(&Dataset{Scaled: rows}); err != nil {
		t.Fatal(err)
	}

	if s.Score(rows[len(rows)-1]) >= s.Score(rows[0]) {
		t.Error("outlier density not below inlier density")
	}
}

func TestOneClassSVMZeroNuFlagsNothing(t *testing.T) {
	rows := clusterWithOutlier(9)
	s := NewOneClassSVM(0)
	flags, err := s.FitPredict(&Dataset{Scaled: rows})
	if err != nil {
		t.Fatal(err)
	}
	for i, fl := range flags {
		if fl {
			t.Fatalf("row %d flagged with nu=0", i)
		}
	}
}

func TestOneClassSVMEmptyDataset(t *testing.T) {
	s := NewOneClassSVM(0.1)
	if _, err := s.FitPredict(&Dataset{}); err == nil {
		t.Fatal("expected error on empty dataset")
	}
}
