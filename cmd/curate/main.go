package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"curatecli/internal/config"
	"curatecli/internal/infrastructure"
	"curatecli/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (defaults to curate.yaml if present)")
	inputFile := flag.String("in", "", "path to the raw AI4I CSV file (overrides config)")
	outputDir := flag.String("out", "", "directory for curated artifacts (overrides config)")
	strict := flag.Bool("strict", false, "fail the run on any schema violation")
	flag.Parse()

	if err := run(*configFile, *inputFile, *outputDir, *strict); err != nil {
		fmt.Fprintf(os.Stderr, "curate: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, inputFile, outputDir string, strict bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if inputFile != "" {
		if cfg.Paths.InputFile, err = filepath.Abs(inputFile); err != nil {
			return fmt.Errorf("failed to resolve input file: %w", err)
		}
	}
	if outputDir != "" {
		if cfg.Paths.OutputDir, err = filepath.Abs(outputDir); err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
	}
	if strict {
		cfg.Pipeline.Strict = true
	}

	paths := cfg.ResolvedPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	logger, closeLogger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLogger()
	slog.SetDefault(logger)

	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Tracing, os.Stdout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	manager := operations.NewManager(logger, operations.NewRegistry(),
		operations.NewRunTracer(providers.Tracer), cfg.Pipeline.Agent)
	if err := operations.RegisterPipelineSteps(manager, logger, cfg); err != nil {
		return fmt.Errorf("failed to register pipeline steps: %w", err)
	}

	state, err := manager.Run(context.Background())
	if err != nil {
		return err
	}

	if manifest, ok := operations.Manifest(state); ok {
		logger.Info("curation complete",
			slog.String("run_id", state.ID),
			slog.Int("artifacts", len(manifest.Entries)),
			slog.String("output_dir", paths.OutputDir),
			slog.Duration("duration", state.Duration()))
	}
	return nil
}
