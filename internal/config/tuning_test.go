package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hallsdata/energy.report/internal/energy"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetContamination(); got != energy.DefaultContamination {
		t.Errorf("contamination %v", got)
	}
	if got := cfg.GetIsoTrees(); got != energy.DefaultIsoTrees {
		t.Errorf("iso trees %v", got)
	}
	if got := cfg.GetRandomSeed(); got != energy.DefaultRandomSeed {
		t.Errorf("seed %v", got)
	}
	if got := cfg.GetConsensusQuorum(); got != energy.DefaultConsensusQuorum {
		t.Errorf("quorum %v", got)
	}
	if got := cfg.GetTestFraction(); got != energy.DefaultTestFraction {
		t.Errorf("test fraction %v", got)
	}
}

func TestPartialConfigOverrides(t *testing.T) {
	cfg := EmptyTuningConfig()
	cfg.Contamination = ptrFloat64(0.2)
	cfg.DBSCANMinPts = ptrInt(5)
	cfg.RandomSeed = ptrInt64(7)

	if got := cfg.GetContamination(); got != 0.2 {
		t.Errorf("contamination %v", got)
	}
	if got := cfg.GetDBSCANMinPts(); got != 5 {
		t.Errorf("min pts %v", got)
	}
	if got := cfg.GetRandomSeed(); got != 7 {
		t.Errorf("seed %v", got)
	}
	// Untouched fields keep their defaults.
	if got := cfg.GetSVMNu(); got != energy.DefaultSVMNu {
		t.Errorf("nu %v", got)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfigFile(t, "tuning.json",
		`{"contamination": 0.15, "forest_trees": 50}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GetContamination(); got != 0.15 {
		t.Errorf("contamination %v", got)
	}
	if got := cfg.GetForestTrees(); got != 50 {
		t.Errorf("forest trees %v", got)
	}
	// Fields absent from the file fall back.
	if got := cfg.GetIsoTrees(); got != energy.DefaultIsoTrees {
		t.Errorf("iso trees %v", got)
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	path := writeConfigFile(t, "tuning.yaml", "contamination: 0.1")
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected extension error")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected stat error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TuningConfig)
		wantErr bool
	}{
		{"empty ok", func(c *TuningConfig) {}, false},
		{"contamination too high", func(c *TuningConfig) { c.Contamination = ptrFloat64(0.9) }, true},
		{"contamination negative", func(c *TuningConfig) { c.Contamination = ptrFloat64(-0.1) }, true},
		{"nu out of range", func(c *TuningConfig) { c.SVMNu = ptrFloat64(1.5) }, true},
		{"zero eps", func(c *TuningConfig) { c.DBSCANEps = ptrFloat64(0) }, true},
		{"quorum above ensemble size", func(c *TuningConfig) { c.ConsensusQuorum = ptrInt(6) }, true},
		{"quorum of one ok", func(c *TuningConfig) { c.ConsensusQuorum = ptrInt(1) }, false},
		{"bad percentile", func(c *TuningConfig) { c.HighPercentile = ptrFloat64(1.2) }, true},
		{"test fraction of one", func(c *TuningConfig) { c.TestFraction = ptrFloat64(1.0) }, true},
		{"valid overrides", func(c *TuningConfig) {
			c.Contamination = ptrFloat64(0.05)
			c.ForestTrees = ptrInt(10)
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := EmptyTuningConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := EmptyTuningConfig()
	base.Contamination = ptrFloat64(0.15)
	base.ForestTrees = ptrInt(50)

	override := EmptyTuningConfig()
	override.ForestTrees = ptrInt(25)
	override.SVMNu = ptrFloat64(0.2)

	merged := base.Merge(override)

	if got := merged.GetContamination(); got != 0.15 {
		t.Errorf("contamination %v", got)
	}
	if got := merged.GetForestTrees(); got != 25 {
		t.Errorf("forest trees %v", got)
	}
	if got := merged.GetSVMNu(); got != 0.2 {
		t.Errorf("nu %v", got)
	}
	// Base is untouched.
	if got := base.GetForestTrees(); got != 50 {
		t.Errorf("base forest trees %v", got)
	}
}

func TestMergeNilOverride(t *testing.T) {
	base := EmptyTuningConfig()
	base.IsoTrees = ptrInt(10)

	merged := base.Merge(nil)
	if got := merged.GetIsoTrees(); got != 10 {
		t.Errorf("iso trees %v", got)
	}
}

func TestParamsResolution(t *testing.T) {
	cfg := EmptyTuningConfig()
	cfg.ZScoreThreshold = ptrFloat64(3.0)

	p := cfg.Params()
	if p.ZScoreThreshold != 3.0 {
		t.Errorf("z threshold %v", p.ZScoreThreshold)
	}
	if p.IQRMultiplier != energy.DefaultIQRMultiplier {
		t.Errorf("iqr multiplier %v", p.IQRMultiplier)
	}
	if p.ConsensusQuorum != energy.DefaultConsensusQuorum {
		t.Errorf("quorum %v", p.ConsensusQuorum)
	}
}
