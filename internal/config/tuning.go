package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hallsdata/energy.report/internal/energy"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the analysis pipeline.
// The schema matches the optional "params" block of the /api/analyze request
// body, so the same JSON can be used for startup configuration and per-call
// overrides. All fields are optional; the Get* methods supply defaults for
// anything left nil.
type TuningConfig struct {
	// Ensemble params
	Contamination   *float64 `json:"contamination,omitempty"`
	IsoTrees        *int     `json:"iso_trees,omitempty"`
	IsoSampleSize   *int     `json:"iso_sample_size,omitempty"`
	RandomSeed      *int64   `json:"random_seed,omitempty"`
	SVMNu           *float64 `json:"svm_nu,omitempty"`
	DBSCANEps       *float64 `json:"dbscan_eps,omitempty"`
	DBSCANMinPts    *int     `json:"dbscan_min_pts,omitempty"`
	ZScoreThreshold *float64 `json:"z_score_threshold,omitempty"`
	IQRMultiplier   *float64 `json:"iqr_multiplier,omitempty"`
	ConsensusQuorum *int     `json:"consensus_quorum,omitempty"`

	// Anomaly classification bands
	HighPercentile     *float64 `json:"high_percentile,omitempty"`
	LowPercentile      *float64 `json:"low_percentile,omitempty"`
	VariancePercentile *float64 `json:"variance_percentile,omitempty"`

	// Regression params
	ForestTrees  *int     `json:"forest_trees,omitempty"`
	TestFraction *float64 `json:"test_fraction,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file fall back to defaults, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Contamination != nil {
		if *c.Contamination < 0 || *c.Contamination > 0.5 {
			return fmt.Errorf("contamination must be between 0 and 0.5, got %f", *c.Contamination)
		}
	}

	if c.SVMNu != nil {
		if *c.SVMNu < 0 || *c.SVMNu > 1 {
			return fmt.Errorf("svm_nu must be between 0 and 1, got %f", *c.SVMNu)
		}
	}

	if c.IsoTrees != nil && *c.IsoTrees < 1 {
		return fmt.Errorf("iso_trees must be positive, got %d", *c.IsoTrees)
	}

	if c.IsoSampleSize != nil && *c.IsoSampleSize < 2 {
		return fmt.Errorf("iso_sample_size must be at least 2, got %d", *c.IsoSampleSize)
	}

	if c.DBSCANEps != nil && *c.DBSCANEps <= 0 {
		return fmt.Errorf("dbscan_eps must be positive, got %f", *c.DBSCANEps)
	}

	if c.DBSCANMinPts != nil && *c.DBSCANMinPts < 1 {
		return fmt.Errorf("dbscan_min_pts must be positive, got %d", *c.DBSCANMinPts)
	}

	if c.ZScoreThreshold != nil && *c.ZScoreThreshold <= 0 {
		return fmt.Errorf("z_score_threshold must be positive, got %f", *c.ZScoreThreshold)
	}

	if c.IQRMultiplier != nil && *c.IQRMultiplier <= 0 {
		return fmt.Errorf("iqr_multiplier must be positive, got %f", *c.IQRMultiplier)
	}

	if c.ConsensusQuorum != nil {
		if *c.ConsensusQuorum < 1 || *c.ConsensusQuorum > energy.NumDetectors {
			return fmt.Errorf("consensus_quorum must be between 1 and %d, got %d",
				energy.NumDetectors, *c.ConsensusQuorum)
		}
	}

	for name, p := range map[string]*float64{
		"high_percentile":     c.HighPercentile,
		"low_percentile":      c.LowPercentile,
		"variance_percentile": c.VariancePercentile,
	} {
		if p != nil && (*p < 0 || *p > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *p)
		}
	}

	if c.ForestTrees != nil && *c.ForestTrees < 1 {
		return fmt.Errorf("forest_trees must be positive, got %d", *c.ForestTrees)
	}

	if c.TestFraction != nil && (*c.TestFraction < 0 || *c.TestFraction >= 1) {
		return fmt.Errorf("test_fraction must be in [0, 1), got %f", *c.TestFraction)
	}

	return nil
}

// GetContamination returns the contamination value or the default.
func (c *TuningConfig) GetContamination() float64 {
	if c.Contamination == nil {
		return energy.DefaultContamination
	}
	return *c.Contamination
}

// GetIsoTrees returns the iso_trees value or the default.
func (c *TuningConfig) GetIsoTrees() int {
	if c.IsoTrees == nil {
		return energy.DefaultIsoTrees
	}
	return *c.IsoTrees
}

// GetIsoSampleSize returns the iso_sample_size value or the default.
func (c *TuningConfig) GetIsoSampleSize() int {
	if c.IsoSampleSize == nil {
		return energy.DefaultIsoSampleSize
	}
	return *c.IsoSampleSize
}

// GetRandomSeed returns the random_seed value or the default.
func (c *TuningConfig) GetRandomSeed() int64 {
	if c.RandomSeed == nil {
		return energy.DefaultRandomSeed
	}
	return *c.RandomSeed
}

// GetSVMNu returns the svm_nu value or the default.
func (c *TuningConfig) GetSVMNu() float64 {
	if c.SVMNu == nil {
		return energy.DefaultSVMNu
	}
	return *c.SVMNu
}

// GetDBSCANEps returns the dbscan_eps value or the default.
func (c *TuningConfig) GetDBSCANEps() float64 {
	if c.DBSCANEps == nil {
		return energy.DefaultDBSCANEps
	}
	return *c.DBSCANEps
}

// GetDBSCANMinPts returns the dbscan_min_pts value or the default.
func (c *TuningConfig) GetDBSCANMinPts() int {
	if c.DBSCANMinPts == nil {
		return energy.DefaultDBSCANMinPts
	}
	return *c.DBSCANMinPts
}

// GetZScoreThreshold returns the z_score_threshold value or the default.
func (c *TuningConfig) GetZScoreThreshold() float64 {
	if c.ZScoreThreshold == nil {
		return energy.DefaultZScoreThreshold
	}
	return *c.ZScoreThreshold
}

// GetIQRMultiplier returns the iqr_multiplier value or the default.
func (c *TuningConfig) GetIQRMultiplier() float64 {
	if c.IQRMultiplier == nil {
		return energy.DefaultIQRMultiplier
	}
	return *c.IQRMultiplier
}

// GetConsensusQuorum returns the consensus_quorum value or the default.
func (c *TuningConfig) GetConsensusQuorum() int {
	if c.ConsensusQuorum == nil {
		return energy.DefaultConsensusQuorum
	}
	return *c.ConsensusQuorum
}

// GetHighPercentile returns the high_percentile value or the default.
func (c *TuningConfig) GetHighPercentile() float64 {
	if c.HighPercentile == nil {
		return energy.DefaultHighPercentile
	}
	return *c.HighPercentile
}

// GetLowPercentile returns the low_percentile value or the default.
func (c *TuningConfig) GetLowPercentile() float64 {
	if c.LowPercentile == nil {
		return energy.DefaultLowPercentile
	}
	return *c.LowPercentile
}

// GetVariancePercentile returns the variance_percentile value or the default.
func (c *TuningConfig) GetVariancePercentile() float64 {
	if c.VariancePercentile == nil {
		return energy.DefaultVariancePercentile
	}
	return *c.VariancePercentile
}

// GetForestTrees returns the forest_trees value or the default.
func (c *TuningConfig) GetForestTrees() int {
	if c.ForestTrees == nil {
		return energy.DefaultForestTrees
	}
	return *c.ForestTrees
}

// GetTestFraction returns the test_fraction value or the default.
func (c *TuningConfig) GetTestFraction() float64 {
	if c.TestFraction == nil {
		return energy.DefaultTestFraction
	}
	return *c.TestFraction
}

// Merge returns a copy of c with any non-nil fields of override applied on
// top. Neither receiver nor argument is modified. Used to layer per-request
// parameter overrides over the startup configuration.
func (c *TuningConfig) Merge(override *TuningConfig) *TuningConfig {
	merged := *c
	if override == nil {
		return &merged
	}

	if override.Contamination != nil {
		merged.Contamination = override.Contamination
	}
	if override.IsoTrees != nil {
		merged.IsoTrees = override.IsoTrees
	}
	if override.IsoSampleSize != nil {
		merged.IsoSampleSize = override.IsoSampleSize
	}
	if override.RandomSeed != nil {
		merged.RandomSeed = override.RandomSeed
	}
	if override.SVMNu != nil {
		merged.SVMNu = override.SVMNu
	}
	if override.DBSCANEps != nil {
		merged.DBSCANEps = override.DBSCANEps
	}
	if override.DBSCANMinPts != nil {
		merged.DBSCANMinPts = override.DBSCANMinPts
	}
	if override.ZScoreThreshold != nil {
		merged.ZScoreThreshold = override.ZScoreThreshold
	}
	if override.IQRMultiplier != nil {
		merged.IQRMultiplier = override.IQRMultiplier
	}
	if override.ConsensusQuorum != nil {
		merged.ConsensusQuorum = override.ConsensusQuorum
	}
	if override.HighPercentile != nil {
		merged.HighPercentile = override.HighPercentile
	}
	if override.LowPercentile != nil {
		merged.LowPercentile = override.LowPercentile
	}
	if override.VariancePercentile != nil {
		merged.VariancePercentile = override.VariancePercentile
	}
	if override.ForestTrees != nil {
		merged.ForestTrees = override.ForestTrees
	}
	if override.TestFraction != nil {
		merged.TestFraction = override.TestFraction
	}

	return &merged
}

// Params resolves the configuration into a concrete pipeline parameter set.
func (c *TuningConfig) Params() energy.Params {
	return energy.Params{
		Contamination:      c.GetContamination(),
		IsoTrees:           c.GetIsoTrees(),
		IsoSampleSize:      c.GetIsoSampleSize(),
		Seed:               c.GetRandomSeed(),
		SVMNu:              c.GetSVMNu(),
		DBSCANEps:          c.GetDBSCANEps(),
		DBSCANMinPts:       c.GetDBSCANMinPts(),
		ZScoreThreshold:    c.GetZScoreThreshold(),
		IQRMultiplier:      c.GetIQRMultiplier(),
		ConsensusQuorum:    c.GetConsensusQuorum(),
		HighPercentile:     c.GetHighPercentile(),
		LowPercentile:      c.GetLowPercentile(),
		VariancePercentile: c.GetVariancePercentile(),
		ForestTrees:        c.GetForestTrees(),
		TestFraction:       c.GetTestFraction(),
	}
}
