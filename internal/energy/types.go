// Package energy implements the housing energy-consumption analysis pipeline:
// feature engineering over per-room interval readings, a five-detector
// anomaly ensemble, regression models for consumption prediction, and
// insight generation.
package energy

import "fmt"

// NumIntervals is the number of two-hour readings per room per day.
const NumIntervals = 12

// intervalLabels are the CSV column headers for the two-hour readings,
// in chronological order.
var intervalLabels = []string{
	"00-02", "02-04", "04-06", "06-08", "08-10", "10-12",
	"12-14", "14-16", "16-18", "18-20", "20-22", "22-24",
}

// IntervalLabels returns the two-hour interval column labels in order.
func IntervalLabels() []string {
	out := make([]string, NumIntervals)
	copy(out, intervalLabels)
	return out
}

// Interval index groups used by the time-of-day features.
// Peak evening hours are 18-20 and 20-22; mornings 06-08 and 08-10;
// nights wrap midnight: 22-24, 00-02, 02-04, 04-06.
var (
	peakHourIdx    = []int{9, 10}
	morningHourIdx = []int{3, 4}
	nightHourIdx   = []int{11, 0, 1, 2}
)

// RoomRecord is one room's readings for one day.
type RoomRecord struct {
	Day       int                   `json:"day"`
	RoomNo    int                   `json:"room_no"`
	Intervals [NumIntervals]float64 `json:"-"`
	Total     float64               `json:"total_energy_kwh"`
}

// Features holds the engineered per-room statistics. JSON tags follow the
// column names the analysis API has always exposed.
type Features struct {
	PeakUsage      float64 `json:"peak_usage"`
	OffPeakUsage   float64 `json:"off_peak_usage"`
	UsageVariance  float64 `json:"usage_variance"`
	UsageStd       float64 `json:"usage_std"`
	UsageRange     float64 `json:"usage_range"`
	UsageSkewness  float64 `json:"usage_skewness"`
	UsageKurtosis  float64 `json:"usage_kurtosis"`
	UsageMedian    float64 `json:"usage_median"`
	UsageQ75       float64 `json:"usage_q75"`
	UsageQ25       float64 `json:"usage_q25"`
	UsageIQR       float64 `json:"usage_iqr"`
	PeakHoursUsage float64 `json:"peak_hours_usage"`
	PeakHoursRatio float64 `json:"peak_hours_ratio"`
	MorningUsage   float64 `json:"morning_usage"`
	MorningRatio   float64 `json:"morning_ratio"`
	NightUsage     float64 `json:"night_usage"`
	NightRatio     float64 `json:"night_ratio"`
	ZScore         float64 `json:"z_score"`
	IQRScore       float64 `json:"iqr_score"`
	SmoothedUsage  float64 `json:"smoothed_usage"`
	UsageTrend     float64 `json:"usage_trend"`
}

// Anomaly type labels assigned by the ensemble classifier.
const (
	TypeNormal          = "Normal"
	TypeHighConsumption = "High Consumption"
	TypeLowConsumption  = "Low Consumption"
	TypeUnusualPattern  = "Unusual Pattern"
)

// Detection carries the per-detector flags and the ensemble decision for
// one room.
type Detection struct {
	IsoForest     bool    `json:"iso_forest_anomaly"`
	SVM           bool    `json:"svm_anomaly"`
	DBSCANCluster int     `json:"dbscan_cluster"`
	DBSCAN        bool    `json:"dbscan_anomaly"`
	ZScoreFlag    bool    `json:"z_score_anomaly"`
	IQR           bool    `json:"iqr_anomaly"`
	Final         bool    `json:"final_anomaly"`
	Confidence    float64 `json:"anomaly_confidence"`
	AnomalyType   string  `json:"anomaly_type"`
}

// Votes returns the number of detectors that flagged the room.
func (d Detection) Votes() int {
	n := 0
	for _, flagged := range []bool{d.IsoForest, d.SVM, d.DBSCAN, d.ZScoreFlag, d.IQR} {
		if flagged {
			n++
		}
	}
	return n
}

// Prediction holds the regression outputs for one room.
type Prediction struct {
	RandomForest  float64 `json:"rf_prediction"`
	Linear        float64 `json:"lr_prediction"`
	Ensemble      float64 `json:"ensemble_prediction"`
	AbsError      float64 `json:"prediction_error"`
	AbsErrorRatio float64 `json:"prediction_error_ratio"`
}

// RoomAnalysis is the full per-room pipeline output.
type RoomAnalysis struct {
	RoomRecord
	Features
	Detection
	Prediction
}

// MarshalFlat returns the room analysis as a flat map in the row format the
// /api/analyze endpoint returns: raw interval readings keyed by their labels
// alongside every engineered and derived column.
func (ra RoomAnalysis) MarshalFlat() map[string]interface{} {
	row := map[string]interface{}{
		"day":              ra.Day,
		"room_no":          ra.RoomNo,
		"total_energy_kwh": ra.Total,

		"peak_usage":       ra.PeakUsage,
		"off_peak_usage":   ra.OffPeakUsage,
		"usage_variance":   ra.UsageVariance,
		"usage_std":        ra.UsageStd,
		"usage_range":      ra.UsageRange,
		"usage_skewness":   ra.UsageSkewness,
		"usage_kurtosis":   ra.UsageKurtosis,
		"usage_median":     ra.UsageMedian,
		"usage_q75":        ra.UsageQ75,
		"usage_q25":        ra.UsageQ25,
		"usage_iqr":        ra.UsageIQR,
		"peak_hours_usage": ra.PeakHoursUsage,
		"peak_hours_ratio": ra.PeakHoursRatio,
		"morning_usage":    ra.MorningUsage,
		"morning_ratio":    ra.MorningRatio,
		"night_usage":      ra.NightUsage,
		"night_ratio":      ra.NightRatio,
		"z_score":          ra.ZScore,
		"iqr_score":        ra.IQRScore,
		"smoothed_usage":   ra.SmoothedUsage,
		"usage_trend":      ra.UsageTrend,

		// Historical encoding: isolation forest and SVM report -1/1,
		// the remaining detectors 0/1.
		"iso_forest_anomaly": plusMinus(ra.Detection.IsoForest),
		"svm_anomaly":        plusMinus(ra.Detection.SVM),
		"dbscan_cluster":     ra.DBSCANCluster,
		"dbscan_anomaly":     zeroOne(ra.Detection.DBSCAN),
		"z_score_anomaly":    zeroOne(ra.ZScoreFlag),
		"iqr_anomaly":        zeroOne(ra.Detection.IQR),
		"final_anomaly":      zeroOne(ra.Final),
		"anomaly_confidence": ra.Confidence,
		"anomaly_type":       ra.AnomalyType,

		"rf_prediction":          ra.RandomForest,
		"lr_prediction":          ra.Linear,
		"ensemble_prediction":    ra.Ensemble,
		"prediction_error":       ra.AbsError,
		"prediction_error_ratio": ra.AbsErrorRatio,
	}
	for i, label := range intervalLabels {
		row[label] = ra.Intervals[i]
	}
	return row
}

// FlatColumns returns the canonical column order for the flat row encoding,
// matching the keys MarshalFlat emits. CSV exports use this to keep column
// order stable across requests.
func FlatColumns() []string {
	cols := make([]string, 0, 48)
	cols = append(cols, "day", "room_no")
	cols = append(cols, intervalLabels...)
	cols = append(cols, "total_energy_kwh",
		"peak_usage", "off_peak_usage", "usage_variance", "usage_std", "usage_range",
		"usage_skewness", "usage_kurtosis", "usage_median", "usage_q75", "usage_q25",
		"usage_iqr", "peak_hours_usage", "peak_hours_ratio", "morning_usage",
		"morning_ratio", "night_usage", "night_ratio", "z_score", "iqr_score",
		"smoothed_usage", "usage_trend",
		"iso_forest_anomaly", "svm_anomaly", "dbscan_cluster", "dbscan_anomaly",
		"z_score_anomaly", "iqr_anomaly", "final_anomaly", "anomaly_confidence",
		"anomaly_type",
		"rf_prediction", "lr_prediction", "ensemble_prediction",
		"prediction_error", "prediction_error_ratio",
	)
	return cols
}

func plusMinus(flagged bool) int {
	if flagged {
		return -1
	}
	return 1
}

func zeroOne(flagged bool) int {
	if flagged {
		return 1
	}
	return 0
}

// FeatureNames returns the ordered names of the model feature vector: the 12
// raw interval readings followed by the 21 engineered statistics. Scaler,
// detectors and regressors all consume vectors in this order.
func FeatureNames() []string {
	names := make([]string, 0, NumIntervals+21)
	names = append(names, intervalLabels...)
	names = append(names,
		"peak_usage", "off_peak_usage", "usage_variance", "usage_std", "usage_range",
		"usage_skewness", "usage_kurtosis", "usage_median", "usage_q75", "usage_q25",
		"usage_iqr", "peak_hours_usage", "peak_hours_ratio", "morning_usage",
		"morning_ratio", "night_usage", "night_ratio", "z_score", "iqr_score",
		"smoothed_usage", "usage_trend",
	)
	return names
}

// FeatureVector flattens a room's intervals and engineered features in
// FeatureNames order. NaNs (from degenerate ratios) are zero-filled, matching
// the fillna(0) the pipeline has always applied before scaling.
func (ra RoomAnalysis) FeatureVector() []float64 {
	v := make([]float64, 0, NumIntervals+21)
	v = append(v, ra.Intervals[:]...)
	v = append(v,
		ra.PeakUsage, ra.OffPeakUsage, ra.UsageVariance, ra.UsageStd, ra.UsageRange,
		ra.UsageSkewness, ra.UsageKurtosis, ra.UsageMedian, ra.UsageQ75, ra.UsageQ25,
		ra.UsageIQR, ra.PeakHoursUsage, ra.PeakHoursRatio, ra.MorningUsage,
		ra.MorningRatio, ra.NightUsage, ra.NightRatio, ra.ZScore, ra.IQRScore,
		ra.SmoothedUsage, ra.UsageTrend,
	)
	for i, x := range v {
		if isNaNOrInf(x) {
			v[i] = 0
		}
	}
	return v
}

func (r RoomRecord) String() string {
	return fmt.Sprintf("Room %d (day %d): %.2f kWh", r.RoomNo, r.Day, r.Total)
}
