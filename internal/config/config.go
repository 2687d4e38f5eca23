package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
}

// PipelineConfig contains the recognized curation options: validation
// strictness, outlier handling, and normalization method.
type PipelineConfig struct {
	Agent            string  `yaml:"agent" envconfig:"AGENT" default:"curate-pipeline" validate:"required"`
	Strict           bool    `yaml:"strict" envconfig:"STRICT" default:"false"`
	OutlierPolicy    string  `yaml:"outlier_policy" envconfig:"OUTLIER_POLICY" default:"retain" validate:"oneof=retain remove"`
	OutlierMethod    string  `yaml:"outlier_method" envconfig:"OUTLIER_METHOD" default:"iqr" validate:"oneof=iqr zscore"`
	OutlierThreshold float64 `yaml:"outlier_threshold" envconfig:"OUTLIER_THRESHOLD" default:"1.5" validate:"gt=0"`
	Normalization    string  `yaml:"normalization" envconfig:"NORMALIZATION" default:"zscore" validate:"oneof=none minmax zscore"`
	DerivedFeatures  bool    `yaml:"derived_features" envconfig:"DERIVED_FEATURES" default:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/curate.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputFile   string `yaml:"input_file" envconfig:"INPUT_FILE" default:"data/ai4i2020.csv"`
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	MetadataDir string `yaml:"metadata_dir" envconfig:"METADATA_DIR" default:"metadata"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Exporter string `yaml:"exporter" envconfig:"EXPORTER" default:"stdout" validate:"oneof=stdout none"`
}

// Load loads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Defaults and environment first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envOverrides maps every configuration field to its environment key so the
// env-wins merge covers the whole Config, not a hand-picked subset.
var envOverrides = []struct {
	key   string
	apply func(dst, src *Config)
}{
	{"PIPELINE_AGENT", func(d, s *Config) { d.Pipeline.Agent = s.Pipeline.Agent }},
	{"PIPELINE_STRICT", func(d, s *Config) { d.Pipeline.Strict = s.Pipeline.Strict }},
	{"PIPELINE_OUTLIER_POLICY", func(d, s *Config) { d.Pipeline.OutlierPolicy = s.Pipeline.OutlierPolicy }},
	{"PIPELINE_OUTLIER_METHOD", func(d, s *Config) { d.Pipeline.OutlierMethod = s.Pipeline.OutlierMethod }},
	{"PIPELINE_OUTLIER_THRESHOLD", func(d, s *Config) { d.Pipeline.OutlierThreshold = s.Pipeline.OutlierThreshold }},
	{"PIPELINE_NORMALIZATION", func(d, s *Config) { d.Pipeline.Normalization = s.Pipeline.Normalization }},
	{"PIPELINE_DERIVED_FEATURES", func(d, s *Config) { d.Pipeline.DerivedFeatures = s.Pipeline.DerivedFeatures }},
	{"LOGGING_LEVEL", func(d, s *Config) { d.Logging.Level = s.Logging.Level }},
	{"LOGGING_FORMAT", func(d, s *Config) { d.Logging.Format = s.Logging.Format }},
	{"LOGGING_OUTPUT", func(d, s *Config) { d.Logging.Output = s.Logging.Output }},
	{"LOGGING_FILE_PATH", func(d, s *Config) { d.Logging.FilePath = s.Logging.FilePath }},
	{"PATHS_BASE_DIR", func(d, s *Config) { d.Paths.BaseDir = s.Paths.BaseDir }},
	{"PATHS_INPUT_FILE", func(d, s *Config) { d.Paths.InputFile = s.Paths.InputFile }},
	{"PATHS_OUTPUT_DIR", func(d, s *Config) { d.Paths.OutputDir = s.Paths.OutputDir }},
	{"PATHS_METADATA_DIR", func(d, s *Config) { d.Paths.MetadataDir = s.Paths.MetadataDir }},
	{"PATHS_LOGS_DIR", func(d, s *Config) { d.Paths.LogsDir = s.Paths.LogsDir }},
	{"TRACING_ENABLED", func(d, s *Config) { d.Tracing.Enabled = s.Tracing.Enabled }},
	{"TRACING_EXPORTER", func(d, s *Config) { d.Tracing.Exporter = s.Tracing.Exporter }},
}

// mergeConfigs merges file config with env config (env takes precedence).
// envconfig fills defaults before the file is read, so a field is taken
// from the env side only when its variable is actually set.
func mergeConfigs(fileConfig, envConfig Config) Config {
	merged := fileConfig

	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(EnvPrefix + "_" + o.key); ok && v != "" {
			o.apply(&merged, &envConfig)
		}
	}

	// Fill any fields the file left empty from the env/default side.
	fillZero(&merged, envConfig)

	return merged
}

// fillZero copies env/default values into fields the file config left empty.
func fillZero(dst *Config, src Config) {
	if dst.Pipeline.Agent == "" {
		dst.Pipeline.Agent = src.Pipeline.Agent
	}
	if dst.Pipeline.OutlierPolicy == "" {
		dst.Pipeline.OutlierPolicy = src.Pipeline.OutlierPolicy
	}
	if dst.Pipeline.OutlierMethod == "" {
		dst.Pipeline.OutlierMethod = src.Pipeline.OutlierMethod
	}
	if dst.Pipeline.OutlierThreshold == 0 {
		dst.Pipeline.OutlierThreshold = src.Pipeline.OutlierThreshold
	}
	if dst.Pipeline.Normalization == "" {
		dst.Pipeline.Normalization = src.Pipeline.Normalization
	}
	if dst.Logging.Level == "" {
		dst.Logging.Level = src.Logging.Level
	}
	if dst.Logging.Format == "" {
		dst.Logging.Format = src.Logging.Format
	}
	if dst.Logging.Output == "" {
		dst.Logging.Output = src.Logging.Output
	}
	if dst.Logging.FilePath == "" {
		dst.Logging.FilePath = src.Logging.FilePath
	}
	if dst.Paths.InputFile == "" {
		dst.Paths.InputFile = src.Paths.InputFile
	}
	if dst.Paths.OutputDir == "" {
		dst.Paths.OutputDir = src.Paths.OutputDir
	}
	if dst.Paths.MetadataDir == "" {
		dst.Paths.MetadataDir = src.Paths.MetadataDir
	}
	if dst.Paths.LogsDir == "" {
		dst.Paths.LogsDir = src.Paths.LogsDir
	}
	if dst.Tracing.Exporter == "" {
		dst.Tracing.Exporter = src.Tracing.Exporter
	}
}

// resolvePaths anchors relative paths at the base directory
func (c *Config) resolvePaths() error {
	if c.Paths.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		c.Paths.BaseDir = wd
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Paths.BaseDir, p)
	}

	c.Paths.InputFile = resolve(c.Paths.InputFile)
	c.Paths.OutputDir = resolve(c.Paths.OutputDir)
	c.Paths.MetadataDir = resolve(c.Paths.MetadataDir)
	c.Paths.LogsDir = resolve(c.Paths.LogsDir)
	if !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(c.Paths.BaseDir, c.Logging.FilePath)
	}

	return nil
}

// Validate validates the configuration using struct tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid value for %s: failed %q rule", first.Namespace(), first.Tag())
		}
		return err
	}
	return nil
}

// ResolvedPaths returns the Paths view over the resolved configuration.
func (c *Config) ResolvedPaths() *Paths {
	return &Paths{
		BaseDir:     c.Paths.BaseDir,
		InputFile:   c.Paths.InputFile,
		OutputDir:   c.Paths.OutputDir,
		MetadataDir: c.Paths.MetadataDir,
		LogsDir:     c.Paths.LogsDir,
	}
}
