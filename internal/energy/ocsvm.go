package energy

import (
	"fmt"
	"math"
)

// Default one-class SVM hyperparameters.
const DefaultSVMNu = 0.1

// OneClassSVM separates the low-density tail of the dataset using an RBF
// kernel. Rather than solving the full quadratic program, it scores each room
// by its mean kernel similarity to the rest of the batch — the level sets of
// that density estimate are what the RBF one-class boundary traces — and
// flags the lowest-density nu fraction. Gamma follows the "scale" heuristic:
// 1 / (d * var(X)) over all scaled feature values.
type OneClassSVM struct {
	Nu    float64 `json:"nu"`
	Gamma float64 `json:"gamma,omitempty"` // 0 means derive from data

	// Fitted state.
	Support   [][]float64 `json:"support,omitempty"`
	Threshold float64     `json:"threshold,omitempty"`
	FitGamma  float64     `json:"fit_gamma,omitempty"`
}

// NewOneClassSVM returns a detector with the given rejection fraction.
func NewOneClassSVM(nu float64) *OneClassSVM {
	return &OneClassSVM{Nu: nu}
}

func (s *OneClassSVM) Name() string { return "svm" }

// FitPredict scores every room against the batch and flags the nu fraction
// with the lowest kernel density.
func (s *OneClassSVM) FitPredict(d *Dataset) ([]bool, error) {
	rows := d.Scaled
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("one-class svm: empty dataset")
	}

	gamma := s.Gamma
	if gamma == 0 {
		gamma = scaleGamma(rows)
	}
	s.FitGamma = gamma
	s.Support = rows

	scores := make([]float64, n)
	for i := range rows {
		scores[i] = s.density(rows[i], rows, gamma)
	}

	// Low density means anomalous; the cutoff sits at the nu quantile.
	s.Threshold = quantile(scores, s.Nu)
	flags := make([]bool, n)
	for i, sc := range scores {
		flags[i] = sc <= s.Threshold && s.Nu > 0
	}
	return flags, nil
}

// Score returns the kernel density of a single vector against the fitted
// support set. Lower is more anomalous.
func (s *OneClassSVM) Score(row []float64) float64 {
	return s.density(row, s.Support, s.FitGamma)
}

func (s *OneClassSVM) density(row []float64, support [][]float64, gamma float64) float64 {
	if len(support) == 0 {
		return 0
	}
	var sum float64
	for _, other := range support {
		sum += math.Exp(-gamma * squaredDistance(row, other))
	}
	return sum / float64(len(support))
}

// scaleGamma implements the "scale" heuristic: 1/(d * var) with the
// population variance over every value in the matrix.
func scaleGamma(rows [][]float64) float64 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 1
	}
	d := len(rows[0])
	var sum, sumSq, count float64
	for _, row := range rows {
		for _, x := range row {
			sum += x
			sumSq += x * x
			count++
		}
	}
	m := sum / count
	variance := sumSq/count - m*m
	if variance <= 0 {
		return 1
	}
	return 1 / (float64(d) * variance)
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

var _ Detector = (*OneClassSVM)(nil)
