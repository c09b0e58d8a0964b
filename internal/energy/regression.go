package energy

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/hallsdata/energy.report/internal/monitoring"
)

// LinearModel is an ordinary least squares fit with an intercept term.
type LinearModel struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// Fit solves the least squares problem over the given rows via the SVD
// pseudo-inverse, returning the minimum-norm solution. Feature matrices here
// are wide relative to the row count and frequently collinear, so the design
// matrix is almost always rank deficient.
func (m *LinearModel) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: %d rows, %d targets", n, len(y))
	}
	d := len(x[0])
	p := d + 1 // intercept column

	a := mat.NewDense(n, p, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return fmt.Errorf("linear fit: svd failed to converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// Singular values below the working-precision tolerance are treated as
	// zero rank directions.
	tol := float64(max(n, p)) * s[0] * 0x1p-52

	// beta = V * S+ * U^T * y
	k := len(s)
	uty := make([]float64, k)
	for j := 0; j < k; j++ {
		if s[j] <= tol {
			continue
		}
		var dot float64
		for i := 0; i < n; i++ {
			dot += u.At(i, j) * y[i]
		}
		uty[j] = dot / s[j]
	}
	beta := make([]float64, p)
	for i := 0; i < p; i++ {
		var sum float64
		for j := 0; j < k; j++ {
			sum += v.At(i, j) * uty[j]
		}
		beta[i] = sum
	}

	m.Intercept = beta[0]
	m.Coef = beta[1:]
	return nil
}

// Predict evaluates the fitted model on a single feature row.
func (m *LinearModel) Predict(row []float64) float64 {
	sum := m.Intercept
	for j, c := range m.Coef {
		if j < len(row) {
			sum += c * row[j]
		}
	}
	return sum
}

// Fitted reports whether Fit has been called (or coefficients loaded).
func (m *LinearModel) Fitted() bool { return len(m.Coef) > 0 }

// trainTestSplit shuffles row indices with the given seed and carves off
// testFraction of them for evaluation. Datasets too small to split train on
// everything.
func trainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	testCount := int(math.Round(float64(n) * testFraction))
	if testCount == 0 || testCount >= n {
		return perm, nil
	}
	return perm[testCount:], perm[:testCount]
}

// predictConsumption fits the two regressors on a seeded train split of the
// scaled features, then fills in per-room predictions over the whole batch:
// the two model outputs, their mean as the ensemble estimate, and the
// absolute error against the recorded total.
func (a *Analyzer) predictConsumption(rooms []RoomAnalysis) error {
	n := len(rooms)
	if n == 0 {
		return fmt.Errorf("predict consumption: no rooms")
	}

	scaled := a.scaler.Transform(FeatureMatrix(rooms))
	totals := make([]float64, n)
	for i := range rooms {
		totals[i] = rooms[i].Total
	}

	trainIdx, testIdx := trainTestSplit(n, a.params.TestFraction, a.params.Seed)
	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = scaled[idx]
		trainY[i] = totals[idx]
	}

	if err := a.linear.Fit(trainX, trainY); err != nil {
		return fmt.Errorf("linear regression: %w", err)
	}
	if err := a.forest.Fit(trainX, trainY); err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	monitoring.Debugf("regressors fitted on %d rooms, %d held out", len(trainIdx), len(testIdx))

	for i := range rooms {
		p := &rooms[i].Prediction
		p.RandomForest = a.forest.Predict(scaled[i])
		p.Linear = a.linear.Predict(scaled[i])
		p.Ensemble = (p.RandomForest + p.Linear) / 2
		p.AbsError = math.Abs(p.Ensemble - rooms[i].Total)
		if rooms[i].Total != 0 {
			p.AbsErrorRatio = p.AbsError / rooms[i].Total
		}
	}
	return nil
}
