package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths centralizes all file system locations used by the pipeline.
// All paths are absolute after config loading.
type Paths struct {
	BaseDir     string
	InputFile   string
	OutputDir   string
	MetadataDir string
	LogsDir     string
}

// NewPaths creates a Paths instance anchored at the given base directory
// using the default directory layout.
func NewPaths(baseDir string) *Paths {
	return &Paths{
		BaseDir:     baseDir,
		InputFile:   filepath.Join(baseDir, "data", "ai4i2020.csv"),
		OutputDir:   filepath.Join(baseDir, "output"),
		MetadataDir: filepath.Join(baseDir, "metadata"),
		LogsDir:     filepath.Join(baseDir, "logs"),
	}
}

// EnsureDirectories creates all output directories if they do not exist.
// The input file's directory is not created; a missing input is an
// ingestion failure, not something to silently paper over.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.OutputDir, p.MetadataDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetOutputPath returns the path for a curated-data artifact.
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetMetadataPath returns the path for a metadata artifact.
func (p *Paths) GetMetadataPath(filename string) string {
	return filepath.Join(p.MetadataDir, filename)
}

// GetLogPath returns the path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("resolved pipeline paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_file", p.InputFile),
		slog.String("output_dir", p.OutputDir),
		slog.String("metadata_dir", p.MetadataDir),
		slog.String("logs_dir", p.LogsDir))
}
