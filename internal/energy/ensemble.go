package energy

import (
	"fmt"

	"github.com/hallsdata/energy.report/internal/monitoring"
)

// NumDetectors is the size of the anomaly ensemble. Confidence is always
// reported as a fraction of this count.
const NumDetectors = 5

// Thresholds captures the data-dependent cutoffs fitted during detection,
// persisted alongside the models.
type Thresholds struct {
	ZThreshold float64 `json:"z_threshold"`
	IQRLower   float64 `json:"iqr_lower"`
	IQRUpper   float64 `json:"iqr_upper"`
}

// detectAnomalies runs the five detectors over the engineered rooms and
// fills in the Detection section of each: per-detector flags, the >=quorum
// consensus, confidence = votes/5, and the categorical anomaly type.
//
// The scaler and detectors are (re)fitted on this dataset; their state
// remains on the analyzer for persistence.
func (a *Analyzer) detectAnomalies(rooms []RoomAnalysis) error {
	if len(rooms) == 0 {
		return fmt.Errorf("detect anomalies: no rooms")
	}

	ds := &Dataset{
		Scaled:  a.scaler.FitTransform(FeatureMatrix(rooms)),
		Totals:  make([]float64, len(rooms)),
		ZScores: make([]float64, len(rooms)),
	}
	for i, r := range rooms {
		ds.Totals[i] = r.Total
		ds.ZScores[i] = r.ZScore
	}

	detectors := []Detector{a.isoForest, a.svm, a.dbscan, a.zRule, a.iqrRule}
	flags := make([][]bool, len(detectors))
	for i, det := range detectors {
		f, err := det.FitPredict(ds)
		if err != nil {
			return fmt.Errorf("detector %s: %w", det.Name(), err)
		}
		flags[i] = f
	}

	a.thresholds = Thresholds{
		ZThreshold: a.zRule.Threshold,
		IQRLower:   a.iqrRule.Lower,
		IQRUpper:   a.iqrRule.Upper,
	}

	for i := range rooms {
		d := &rooms[i].Detection
		d.IsoForest = flags[0][i]
		d.SVM = flags[1][i]
		d.DBSCAN = flags[2][i]
		d.ZScoreFlag = flags[3][i]
		d.IQR = flags[4][i]
		d.DBSCANCluster = a.dbscan.Labels[i]

		votes := d.Votes()
		d.Final = votes >= a.params.ConsensusQuorum
		d.Confidence = float64(votes) / NumDetectors
	}

	a.classifyAnomalies(rooms, ds.Totals)

	flagged := 0
	for i := range rooms {
		if rooms[i].Final {
			flagged++
		}
	}
	monitoring.Debugf("ensemble flagged %d of %d rooms", flagged, len(rooms))
	return nil
}

// classifyAnomalies assigns the categorical anomaly type to consensus
// anomalies by percentile band: totals above the high band are High
// Consumption, below the low band Low Consumption, and extreme usage
// variance overrides either as Unusual Pattern.
func (a *Analyzer) classifyAnomalies(rooms []RoomAnalysis, tot []float64) {
	highBound := quantile(tot, a.params.HighPercentile)
	lowBound := quantile(tot, a.params.LowPercentile)

	variances := make([]float64, len(rooms))
	for i := range rooms {
		variances[i] = rooms[i].UsageVariance
	}
	varianceBound := quantile(variances, a.params.VariancePercentile)

	for i := range rooms {
		r := &rooms[i]
		r.AnomalyType = TypeNormal
		if !r.Final {
			continue
		}
		if r.Total > highBound {
			r.AnomalyType = TypeHighConsumption
		}
		if r.Total < lowBound {
			r.AnomalyType = TypeLowConsumption
		}
		if r.UsageVariance > varianceBound {
			r.AnomalyType = TypeUnusualPattern
		}
	}
}
