package energy

import "testing"

func TestZScoreRule(t *testing.T) {
	ds := &Dataset{ZScores: []float64{0.2, 0.5, 2.4, 2.6, 3.1}}
	r := NewZScoreRule(DefaultZScoreThreshold)
	flags, err := r.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}

	want := []bool{false, false, false, true, true}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("row %d: got %v, want %v", i, flags[i], want[i])
		}
	}
}

func TestIQRRule(t *testing.T) {
	// Quartiles of {10..17, 100}: q1 = 12, q3 = 16, whiskers at 6 and 22.
	ds := &Dataset{Totals: []float64{10, 11, 12, 13, 14, 15, 16, 17, 100}}
	r := NewIQRRule(DefaultIQRMultiplier)
	flags, err := r.FitPredict(ds)
	if err != nil {
		t.Fatal(err)
	}

	if r.Lower != 6 || r.Upper != 22 {
		t.Fatalf("bounds [%v, %v], want [6, 22]", r.Lower, r.Upper)
	}
	for i := 0; i < 8; i++ {
		if flags[i] {
			t.Errorf("in-range total %v flagged", ds.Totals[i])
		}
	}
	if !flags[8] {
		t.Error("extreme total not flagged")
	}
}

func TestRulesEmptyDataset(t *testing.T) {
	if _, err := NewZScoreRule(2.5).FitPredict(&Dataset{}); err == nil {
		t.Fatal("z-score rule: expected error")
	}
	if _, err := NewIQRRule(1.5).FitPredict(&Dataset{}); err == nil {
		t.Fatal("iqr rule: expected error")
	}
}
