package operations

import (
	"context"
	"log/slog"
	"time"
)

// logRunStart logs the start of a pipeline run.
func (m *Manager) logRunStart(ctx context.Context, state *RunState, stepCount int) {
	m.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", state.ID),
		slog.String("agent", state.Agent),
		slog.Int("step_count", stepCount))
}

// logRunComplete logs the final outcome of a pipeline run.
func (m *Manager) logRunComplete(ctx context.Context, state *RunState) {
	if state.Status == RunStatusFailed {
		m.logger.ErrorContext(ctx, "run_failed",
			slog.String("run_id", state.ID),
			slog.Duration("duration", state.Duration()),
			slog.String("error", state.Err().Error()))
		return
	}
	m.logger.InfoContext(ctx, "run_complete",
		slog.String("run_id", state.ID),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))
}

// logStepStart logs the start of a step execution.
func (m *Manager) logStepStart(ctx context.Context, runID, stepID string) {
	m.logger.InfoContext(ctx, "step_start",
		slog.String("run_id", runID),
		slog.String("step", stepID))
}

// logStepComplete logs the completion of a step execution.
func (m *Manager) logStepComplete(ctx context.Context, runID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

// logStepError logs a step failure.
func (m *Manager) logStepError(ctx context.Context, runID, stepID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.String("error", errorMsg))
}
