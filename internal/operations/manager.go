package operations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"curatecli/internal/errors"
	"curatecli/internal/infrastructure"
	"curatecli/internal/provenance"
)

// Manager runs the registered steps in order. There are no retries: the
// first step failure halts the run and the returned error names the step.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	tracer   *RunTracer
	agent    string
}

// NewManager creates a pipeline manager.
func NewManager(logger *slog.Logger, registry *Registry, tracer *RunTracer, agent string) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer = NewRunTracer(nil)
	}
	if agent == "" {
		agent = "curate-pipeline"
	}
	return &Manager{
		registry: registry,
		logger:   logger,
		tracer:   tracer,
		agent:    agent,
	}
}

// RegisterStep registers a step for execution.
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the step registry.
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Run executes the full pipeline and returns the final run state. The run
// state is returned even on failure so callers can inspect which step
// failed.
func (m *Manager) Run(ctx context.Context) (*RunState, error) {
	runID := uuid.NewString()
	state := NewRunState(runID, m.agent)
	ctx = infrastructure.WithRunID(ctx, runID)

	steps := m.registry.List()
	if len(steps) == 0 {
		err := fmt.Errorf("no steps registered")
		state.Fail(err)
		return state, err
	}

	if err := state.Provenance.SetCurator(provenance.Curator{Name: m.agent}); err != nil {
		state.Fail(err)
		return state, err
	}
	if err := state.Provenance.CaptureEnvironment(); err != nil {
		state.Fail(err)
		return state, err
	}

	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	state.Start()
	m.logRunStart(ctx, state, len(steps))
	ctx, runSpan := m.tracer.StartRun(ctx, runID, len(steps))

	var runErr error
	for _, step := range steps {
		if err := m.runStep(ctx, state, step); err != nil {
			errType := errors.GetType(err)
			if errType == "" {
				errType = errors.ErrTypeInternal
			}
			runErr = errors.NewAppError(errType,
				fmt.Sprintf("pipeline halted at step %s", step.ID()), err).
				WithContext("step", step.ID()).
				WithContext("run_id", runID)
			break
		}
	}

	if runErr != nil {
		state.Fail(runErr)
	} else {
		state.Complete()
	}

	m.tracer.EndRun(runSpan, state.Status, state.Duration(), runErr)
	m.logRunComplete(ctx, state)

	return state, runErr
}

// runStep validates and executes a single step inside its own span.
func (m *Manager) runStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStep(step.ID())
	stepState.Start()
	m.logStepStart(ctx, state.ID, step.ID())

	ctx, span := m.tracer.StartStep(ctx, state.ID, step.ID())

	if err := step.Validate(state); err != nil {
		err = fmt.Errorf("step %s validation failed: %w", step.ID(), err)
		stepState.Fail(err)
		m.tracer.EndStep(span, stepState.Duration(), err)
		m.logStepError(ctx, state.ID, step.ID(), err)
		return err
	}

	if err := step.Execute(ctx, state); err != nil {
		stepState.Fail(err)
		m.tracer.EndStep(span, stepState.Duration(), err)
		m.logStepError(ctx, state.ID, step.ID(), err)
		return err
	}

	stepState.Complete()
	m.tracer.EndStep(span, stepState.Duration(), nil)
	m.logStepComplete(ctx, state.ID, step.ID(), stepState.Duration())
	return nil
}
