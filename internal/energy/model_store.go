package energy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hallsdata/energy.report/internal/monitoring"
	"github.com/hallsdata/energy.report/internal/version"
)

// Model file names within a store directory. One file per model keeps
// partial loads possible: a directory saved by an older run may lack some
// files and the rest still load.
const (
	scalerFile     = "scaler.json"
	isoForestFile  = "iso_forest.json"
	svmFile        = "svm.json"
	dbscanFile     = "dbscan.json"
	forestFile     = "random_forest.json"
	linearFile     = "linear_regression.json"
	thresholdsFile = "thresholds.json"
	manifestFile   = "manifest.json"
)

// storeManifest records provenance for a saved model set.
type storeManifest struct {
	Version      string    `json:"version"`
	SavedAt      time.Time `json:"saved_at"`
	FeatureNames []string  `json:"feature_names"`
}

// storedThresholds bundles the rule detectors with their fitted cutoffs.
type storedThresholds struct {
	Thresholds Thresholds  `json:"thresholds"`
	ZRule      *ZScoreRule `json:"z_rule"`
	IQRRule    *IQRRule    `json:"iqr_rule"`
}

// SaveModels writes the fitted model set as JSON files under dir, creating
// it if needed. Returns the names of the models written.
func (a *Analyzer) SaveModels(dir string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.scaler.Fitted() {
		return nil, fmt.Errorf("save models: nothing fitted yet")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("save models: %w", err)
	}

	manifest := storeManifest{
		Version:      version.Version,
		SavedAt:      time.Now().UTC(),
		FeatureNames: a.featureNames,
	}
	entries := []struct {
		file string
		v    interface{}
	}{
		{manifestFile, manifest},
		{scalerFile, a.scaler},
		{isoForestFile, a.isoForest},
		{svmFile, a.svm},
		{dbscanFile, a.dbscan},
		{forestFile, a.forest},
		{linearFile, a.linear},
		{thresholdsFile, storedThresholds{Thresholds: a.thresholds, ZRule: a.zRule, IQRRule: a.iqrRule}},
	}

	var saved []string
	for _, e := range entries {
		if err := writeModelFile(filepath.Join(dir, e.file), e.v); err != nil {
			return saved, err
		}
		saved = append(saved, e.file)
	}
	monitoring.Debugf("saved %d model files to %s", len(saved), dir)
	return saved, nil
}

// LoadModels reads previously saved model files from dir. Missing files are
// skipped so partial stores load what they have; the returned list names the
// files actually loaded.
func (a *Analyzer) LoadModels(dir string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}

	var stored storedThresholds
	entries := []struct {
		file string
		v    interface{}
	}{
		{scalerFile, a.scaler},
		{isoForestFile, a.isoForest},
		{svmFile, a.svm},
		{dbscanFile, a.dbscan},
		{forestFile, a.forest},
		{linearFile, a.linear},
		{thresholdsFile, &stored},
	}

	var loaded []string
	for _, e := range entries {
		path := filepath.Join(dir, e.file)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := readModelFile(path, e.v); err != nil {
			return loaded, err
		}
		loaded = append(loaded, e.file)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("load models: no model files in %s", dir)
	}

	if stored.ZRule != nil {
		a.zRule = stored.ZRule
		a.iqrRule = stored.IQRRule
		a.thresholds = stored.Thresholds
	}
	a.fittedAt = time.Now()
	monitoring.Debugf("loaded %d model files from %s", len(loaded), dir)
	return loaded, nil
}

func writeModelFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readModelFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
