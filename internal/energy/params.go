package energy

// Additional pipeline defaults not owned by an individual detector.
const (
	DefaultConsensusQuorum    = 2
	DefaultHighPercentile     = 0.9
	DefaultLowPercentile      = 0.1
	DefaultVariancePercentile = 0.9
	DefaultForestTrees        = 100
	DefaultTestFraction       = 0.2
)

// Params configures the analysis pipeline. Zero values are not meaningful;
// construct with DefaultParams and override.
type Params struct {
	// Ensemble
	Contamination   float64
	IsoTrees        int
	IsoSampleSize   int
	Seed            int64
	SVMNu           float64
	DBSCANEps       float64
	DBSCANMinPts    int
	ZScoreThreshold float64
	IQRMultiplier   float64
	ConsensusQuorum int

	// Anomaly classification percentile bands
	HighPercentile     float64
	LowPercentile      float64
	VariancePercentile float64

	// Regression
	ForestTrees  int
	TestFraction float64
}

// DefaultParams returns the canonical pipeline parameters.
func DefaultParams() Params {
	return Params{
		Contamination:      DefaultContamination,
		IsoTrees:           DefaultIsoTrees,
		IsoSampleSize:      DefaultIsoSampleSize,
		Seed:               DefaultRandomSeed,
		SVMNu:              DefaultSVMNu,
		DBSCANEps:          DefaultDBSCANEps,
		DBSCANMinPts:       DefaultDBSCANMinPts,
		ZScoreThreshold:    DefaultZScoreThreshold,
		IQRMultiplier:      DefaultIQRMultiplier,
		ConsensusQuorum:    DefaultConsensusQuorum,
		HighPercentile:     DefaultHighPercentile,
		LowPercentile:      DefaultLowPercentile,
		VariancePercentile: DefaultVariancePercentile,
		ForestTrees:        DefaultForestTrees,
		TestFraction:       DefaultTestFraction,
	}
}
