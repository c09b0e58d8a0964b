package energy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRobustScalerFit(t *testing.T) {
	matrix := [][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
		{4, 10},
		{100, 10},
	}

	s := NewRobustScaler()
	s.Fit(matrix)

	if diff := cmp.Diff([]float64{3, 10}, s.Center); diff != "" {
		t.Errorf("center mismatch (-want +got):\n%s", diff)
	}
	// First column IQR is q75-q25 = 4-2 = 2; constant column falls back to 1.
	if diff := cmp.Diff([]float64{2, 1}, s.Scale); diff != "" {
		t.Errorf("scale mismatch (-want +got):\n%s", diff)
	}
}

func TestRobustScalerTransformCopies(t *testing.T) {
	matrix := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	s := NewRobustScaler()
	out := s.FitTransform(matrix)

	if matrix[0][0] != 1 || matrix[2][1] != 6 {
		t.Fatal("input matrix mutated")
	}
	// Median row scales to zero.
	if out[1][0] != 0 || out[1][1] != 0 {
		t.Fatalf("median row not centred: %v", out[1])
	}
}

func TestRobustScalerOutlierResistance(t *testing.T) {
	base := [][]float64{{1}, {2}, {3}, {4}, {5}}
	withOutlier := [][]float64{{1}, {2}, {3}, {4}, {1000}}

	a := NewRobustScaler()
	a.Fit(base)
	b := NewRobustScaler()
	b.Fit(withOutlier)

	// Swapping the max for an extreme value moves median and IQR only a
	// little, unlike a mean/std scaler.
	if b.Center[0] != 3 {
		t.Errorf("center moved to %v", b.Center[0])
	}
	if b.Scale[0] != a.Scale[0] {
		t.Errorf("scale moved from %v to %v", a.Scale[0], b.Scale[0])
	}
}

func TestRobustScalerFitted(t *testing.T) {
	s := NewRobustScaler()
	if s.Fitted() {
		t.Fatal("unfitted scaler reports fitted")
	}
	s.Fit([][]float64{{1}, {2}})
	if !s.Fitted() {
		t.Fatal("fitted scaler reports unfitted")
	}
}
