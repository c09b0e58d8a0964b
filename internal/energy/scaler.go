package energy

// RobustScaler centres each feature on its median and scales by its
// interquartile range. Outliers barely move the fit, which matters here
// because the whole point of the downstream detectors is that outliers exist.
// Fields are exported so fitted scalers round-trip through the model store.
type RobustScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// NewRobustScaler returns an unfitted scaler.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{}
}

// Fit computes per-feature medians and IQRs from the matrix rows.
// Features with zero IQR get scale 1 so constant columns pass through.
func (s *RobustScaler) Fit(matrix [][]float64) {
	if len(matrix) == 0 {
		s.Center = nil
		s.Scale = nil
		return
	}
	d := len(matrix[0])
	s.Center = make([]float64, d)
	s.Scale = make([]float64, d)
	for j := 0; j < d; j++ {
		col := column(matrix, j)
		s.Center[j] = quantile(col, 0.5)
		iqr := quantile(col, 0.75) - quantile(col, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		s.Scale[j] = iqr
	}
}

// Transform scales the matrix with the fitted parameters. Rows are copied;
// the input is not mutated.
func (s *RobustScaler) Transform(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		scaled := make([]float64, len(row))
		for j, x := range row {
			if j < len(s.Center) {
				scaled[j] = (x - s.Center[j]) / s.Scale[j]
			} else {
				scaled[j] = x
			}
		}
		out[i] = scaled
	}
	return out
}

// FitTransform fits the scaler and transforms the matrix in one step.
func (s *RobustScaler) FitTransform(matrix [][]float64) [][]float64 {
	s.Fit(matrix)
	return s.Transform(matrix)
}

// Fitted reports whether Fit has been called.
func (s *RobustScaler) Fitted() bool {
	return len(s.Center) > 0
}
