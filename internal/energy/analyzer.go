package energy

import (
	"fmt"
	"sync"
	"time"

	"github.com/hallsdata/energy.report/internal/monitoring"
)

// Analyzer runs the full pipeline over a batch of room records: feature
// engineering, the five-detector anomaly ensemble, consumption regression and
// insight generation. Models are refitted on every batch; the fitted state
// stays on the analyzer for persistence and health reporting.
//
// Safe for concurrent use. Analyze holds an exclusive lock for the duration
// of a batch, so concurrent API calls serialise rather than interleave fits.
type Analyzer struct {
	mu     sync.Mutex
	params Params

	scaler    *RobustScaler
	isoForest *IsolationForest
	svm       *OneClassSVM
	dbscan    *DBSCANDetector
	zRule     *ZScoreRule
	iqrRule   *IQRRule
	linear    *LinearModel
	forest    *RandomForest

	thresholds   Thresholds
	featureNames []string
	fittedAt     time.Time
}

// NewAnalyzer returns an analyzer with fresh, unfitted models.
func NewAnalyzer(params Params) *Analyzer {
	return &Analyzer{
		params:       params,
		scaler:       NewRobustScaler(),
		isoForest:    NewIsolationForest(params.IsoTrees, params.IsoSampleSize, params.Contamination, params.Seed),
		svm:          NewOneClassSVM(params.SVMNu),
		dbscan:       NewDBSCANDetector(params.DBSCANEps, params.DBSCANMinPts),
		zRule:        NewZScoreRule(params.ZScoreThreshold),
		iqrRule:      NewIQRRule(params.IQRMultiplier),
		linear:       &LinearModel{},
		forest:       NewRandomForest(params.ForestTrees, params.Seed),
		featureNames: FeatureNames(),
	}
}

// Result is the output of one analysis batch.
type Result struct {
	Rooms    []RoomAnalysis `json:"rooms"`
	Insights Insights       `json:"insights"`
	FittedAt time.Time      `json:"fitted_at"`
}

// FlatRows renders every room in the flat per-row encoding used by the
// CSV and JSON exports.
func (r *Result) FlatRows() []map[string]interface{} {
	rows := make([]map[string]interface{}, len(r.Rooms))
	for i := range r.Rooms {
		rows[i] = r.Rooms[i].MarshalFlat()
	}
	return rows
}

// Analyze runs the pipeline over one batch of records.
func (a *Analyzer) Analyze(records []RoomRecord) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(records) == 0 {
		return nil, fmt.Errorf("analyze: no records")
	}
	start := time.Now()

	rooms := EngineerFeatures(records)
	if err := a.detectAnomalies(rooms); err != nil {
		return nil, err
	}
	if err := a.predictConsumption(rooms); err != nil {
		return nil, err
	}

	a.fittedAt = time.Now()
	monitoring.Debugf("analyzed %d rooms in %s", len(rooms), time.Since(start).Round(time.Millisecond))

	return &Result{
		Rooms:    rooms,
		Insights: GenerateInsights(rooms),
		FittedAt: a.fittedAt,
	}, nil
}

// Params returns the pipeline parameters the analyzer was built with.
func (a *Analyzer) Params() Params {
	return a.params
}

// Thresholds returns the cutoffs fitted during the most recent detection.
func (a *Analyzer) Thresholds() Thresholds {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.thresholds
}

// ModelsFitted reports whether the analyzer holds a complete fitted (or
// loaded) model set.
func (a *Analyzer) ModelsFitted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scaler.Fitted() && a.isoForest.Fitted() && a.linear.Fitted() && a.forest.Fitted()
}

// FittedAt returns the time of the most recent fit, zero if never fitted.
func (a *Analyzer) FittedAt() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fittedAt
}
