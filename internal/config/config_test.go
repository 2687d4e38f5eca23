package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, OutlierPolicyRetain, cfg.Pipeline.OutlierPolicy)
	assert.Equal(t, OutlierMethodIQR, cfg.Pipeline.OutlierMethod)
	assert.Equal(t, 1.5, cfg.Pipeline.OutlierThreshold)
	assert.Equal(t, NormalizationZScore, cfg.Pipeline.Normalization)
	assert.False(t, cfg.Pipeline.Strict)
	assert.True(t, cfg.Pipeline.DerivedFeatures)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "curate.yaml")
	content := `
pipeline:
  outlier_policy: remove
  outlier_method: zscore
  outlier_threshold: 3.0
  normalization: minmax
  strict: true
paths:
  base_dir: ` + dir + `
  input_file: data/sensors.csv
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, OutlierPolicyRemove, cfg.Pipeline.OutlierPolicy)
	assert.Equal(t, OutlierMethodZScore, cfg.Pipeline.OutlierMethod)
	assert.Equal(t, 3.0, cfg.Pipeline.OutlierThreshold)
	assert.Equal(t, NormalizationMinMax, cfg.Pipeline.Normalization)
	assert.True(t, cfg.Pipeline.Strict)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(dir, "data", "sensors.csv"), cfg.Paths.InputFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "curate.yaml")
	content := `
pipeline:
  normalization: minmax
paths:
  base_dir: ` + dir + `
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	t.Setenv("CURATE_PIPELINE_NORMALIZATION", "zscore")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, NormalizationZScore, cfg.Pipeline.Normalization)
}

func TestLoad_EnvOverridesEveryFileSection(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "curate.yaml")
	content := `
pipeline:
  derived_features: true
paths:
  base_dir: ` + dir + `
  metadata_dir: meta-from-file
logging:
  output: file
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	t.Setenv("CURATE_PIPELINE_DERIVED_FEATURES", "false")
	t.Setenv("CURATE_PATHS_METADATA_DIR", "meta-from-env")
	t.Setenv("CURATE_LOGGING_OUTPUT", "stdout")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.False(t, cfg.Pipeline.DerivedFeatures)
	assert.Equal(t, filepath.Join(dir, "meta-from-env"), cfg.Paths.MetadataDir)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoad_InvalidOption(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "curate.yaml")
	content := `
pipeline:
  normalization: quantile
paths:
  base_dir: ` + dir + `
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	_, err := Load(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_InvalidEnvOption(t *testing.T) {
	t.Setenv("CURATE_PIPELINE_OUTLIER_POLICY", "discard")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_ResolvedPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Paths: PathsConfig{
			BaseDir:     dir,
			InputFile:   filepath.Join(dir, "data", "in.csv"),
			OutputDir:   filepath.Join(dir, "output"),
			MetadataDir: filepath.Join(dir, "metadata"),
			LogsDir:     filepath.Join(dir, "logs"),
		},
	}

	paths := cfg.ResolvedPaths()
	assert.Equal(t, filepath.Join(dir, "output"), paths.OutputDir)
	assert.Equal(t, filepath.Join(dir, "metadata"), paths.MetadataDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	paths := NewPaths(dir)

	require.NoError(t, paths.EnsureDirectories())

	for _, d := range []string{paths.OutputDir, paths.MetadataDir, paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_Getters(t *testing.T) {
	paths := NewPaths("/base")

	assert.Equal(t, filepath.Join("/base", "output", "curated.csv"), paths.GetOutputPath("curated.csv"))
	assert.Equal(t, filepath.Join("/base", "metadata", "provenance_record.json"), paths.GetMetadataPath("provenance_record.json"))
	assert.Equal(t, filepath.Join("/base", "logs", "curate.log"), paths.GetLogPath("curate.log"))
}

func TestPaths_LogPathResolution(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	paths := NewPaths("/base")
	paths.LogPathResolution(logger)

	assert.Contains(t, buf.String(), "resolved pipeline paths")
	assert.Contains(t, buf.String(), filepath.Join("/base", "output"))

	// A nil logger must not panic.
	paths.LogPathResolution(nil)
}
