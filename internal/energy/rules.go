package energy

import "fmt"

// Default thresholds for the statistical rule detectors.
const (
	DefaultZScoreThreshold = 2.5
	DefaultIQRMultiplier   = 1.5
)

// ZScoreRule flags rooms whose total energy sits more than Threshold
// population standard deviations from the dataset mean.
type ZScoreRule struct {
	Threshold float64 `json:"threshold"`
}

// NewZScoreRule returns a rule with the given |z| cutoff.
func NewZScoreRule(threshold float64) *ZScoreRule {
	return &ZScoreRule{Threshold: threshold}
}

func (r *ZScoreRule) Name() string { return "z_score" }

func (r *ZScoreRule) FitPredict(d *Dataset) ([]bool, error) {
	if len(d.ZScores) == 0 {
		return nil, fmt.Errorf("z-score rule: no scores")
	}
	flags := make([]bool, len(d.ZScores))
	for i, z := range d.ZScores {
		flags[i] = z > r.Threshold
	}
	return flags, nil
}

// IQRRule flags rooms whose total energy falls outside
// [q1 - k*IQR, q3 + k*IQR] over the dataset totals.
type IQRRule struct {
	Multiplier float64 `json:"multiplier"`

	// Fitted bounds, kept for the persisted thresholds.
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`
}

// NewIQRRule returns a rule with the given whisker multiplier.
func NewIQRRule(multiplier float64) *IQRRule {
	return &IQRRule{Multiplier: multiplier}
}

func (r *IQRRule) Name() string { return "iqr" }

func (r *IQRRule) FitPredict(d *Dataset) ([]bool, error) {
	if len(d.Totals) == 0 {
		return nil, fmt.Errorf("iqr rule: no totals")
	}
	q1 := quantile(d.Totals, 0.25)
	q3 := quantile(d.Totals, 0.75)
	iqr := q3 - q1
	r.Lower = q1 - r.Multiplier*iqr
	r.Upper = q3 + r.Multiplier*iqr

	flags := make([]bool, len(d.Totals))
	for i, t := range d.Totals {
		flags[i] = t < r.Lower || t > r.Upper
	}
	return flags, nil
}

var (
	_ Detector = (*ZScoreRule)(nil)
	_ Detector = (*IQRRule)(nil)
)
