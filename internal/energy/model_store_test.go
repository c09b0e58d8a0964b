package energy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadModelsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	a := NewAnalyzer(DefaultParams())
	res, err := a.Analyze(testBatch())
	require.NoError(t, err)

	saved, err := a.SaveModels(dir)
	require.NoError(t, err)
	require.Contains(t, saved, "scaler.json")
	require.Contains(t, saved, "manifest.json")

	b := NewAnalyzer(DefaultParams())
	loaded, err := b.LoadModels(dir)
	require.NoError(t, err)
	require.True(t, b.ModelsFitted())
	require.NotEmpty(t, loaded)

	if diff := cmp.Diff(a.scaler, b.scaler); diff != "" {
		t.Errorf("scaler mismatch (-saved +loaded):\n%s", diff)
	}
	require.Equal(t, a.Thresholds(), b.Thresholds())

	// The loaded forest scores rows identically to the one that was saved.
	row := res.Rooms[0].FeatureVector()
	scaledRow := a.scaler.Transform([][]float64{row})[0]
	require.InDelta(t, a.isoForest.Score(scaledRow), b.isoForest.Score(scaledRow), 1e-12)
	require.InDelta(t, a.forest.Predict(scaledRow), b.forest.Predict(scaledRow), 1e-12)
	require.InDelta(t, a.linear.Predict(scaledRow), b.linear.Predict(scaledRow), 1e-12)
}

func TestSaveModelsUnfitted(t *testing.T) {
	a := NewAnalyzer(DefaultParams())
	_, err := a.SaveModels(t.TempDir())
	require.Error(t, err)
}

func TestLoadModelsMissingDir(t *testing.T) {
	a := NewAnalyzer(DefaultParams())
	_, err := a.LoadModels(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadModelsEmptyDir(t *testing.T) {
	a := NewAnalyzer(DefaultParams())
	_, err := a.LoadModels(t.TempDir())
	require.Error(t, err)
}

func TestLoadModelsPartialStore(t *testing.T) {
	dir := t.TempDir()

	a := NewAnalyzer(DefaultParams())
	_, err := a.Analyze(testBatch())
	require.NoError(t, err)
	_, err = a.SaveModels(dir)
	require.NoError(t, err)

	// Drop the regression models; the rest should still load.
	require.NoError(t, os.Remove(filepath.Join(dir, "random_forest.json")))
	require.NoError(t, os.Remove(filepath.Join(dir, "linear_regression.json")))

	b := NewAnalyzer(DefaultParams())
	loaded, err := b.LoadModels(dir)
	require.NoError(t, err)
	require.NotContains(t, loaded, "random_forest.json")
	require.Contains(t, loaded, "scaler.json")
	require.False(t, b.ModelsFitted())
}
