package energy

import (
	"testing"

	"github.com/hallsdata/energy.report/internal/testutil"
)

func TestRandomForestConstantTargets(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []float64{7, 7, 7, 7, 7}

	f := NewRandomForest(20, 1)
	if err := f.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	testutil.AssertInDelta(t, f.Predict([]float64{3}), 7, 1e-12)
}

func TestRandomForestLearnsStepFunction(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		x = append(x, []float64{float64(i)})
		if i < 5 {
			y = append(y, 0)
		} else {
			y = append(y, 100)
		}
	}

	f := NewRandomForest(DefaultForestTrees, DefaultRandomSeed)
	if err := f.Fit(x, y); err != nil {
		t.Fatal(err)
	}

	if low := f.Predict([]float64{1}); low > 50 {
		t.Errorf("low side predicted %v", low)
	}
	if high := f.Predict([]float64{8}); high < 50 {
		t.Errorf("high side predicted %v", high)
	}
}

func TestRandomForestPredictionsStayInRange(t *testing.T) {
	x := [][]float64{{1, 4}, {2, 3}, {3, 2}, {4, 1}, {5, 0}, {6, 2}}
	y := []float64{10, 20, 15, 30, 25, 18}

	f := NewRandomForest(50, 3)
	if err := f.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	for _, row := range x {
		p := f.Predict(row)
		if p < 10 || p > 30 {
			t.Errorf("prediction %v outside target range", p)
		}
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{3, 1, 4, 1, 5, 9}

	a := NewRandomForest(30, 42)
	b := NewRandomForest(30, 42)
	if err := a.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	for _, row := range x {
		if a.Predict(row) != b.Predict(row) {
			t.Fatal("same seed produced different forests")
		}
	}
}

func TestRandomForestUnfitted(t *testing.T) {
	f := NewRandomForest(10, 1)
	if f.Fitted() {
		t.Fatal("empty forest reports fitted")
	}
	if got := f.Predict([]float64{1}); got != 0 {
		t.Fatalf("unfitted predict returned %v", got)
	}
}
