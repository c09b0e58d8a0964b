package energy

// Dataset is the shared input handed to every detector in the ensemble:
// robust-scaled feature rows for the model-based detectors, plus the raw
// totals and their absolute z-scores for the statistical rules.
type Dataset struct {
	Scaled  [][]float64
	Totals  []float64
	ZScores []float64
}

// Detector is the common interface for the ensemble's anomaly detectors.
// Detection is batch-scoped: each detector fits on the dataset it scores,
// mirroring how the analysis has always been run per request.
type Detector interface {
	// Name identifies the detector in logs and persisted models.
	Name() string
	// FitPredict trains on the dataset and returns one flag per row,
	// true where the detector considers the room anomalous.
	FitPredict(d *Dataset) ([]bool, error)
}
