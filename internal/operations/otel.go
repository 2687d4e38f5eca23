package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"curatecli/internal/infrastructure"
)

// RunTracer wraps the pipeline spans so the manager stays free of OTel
// plumbing.
type RunTracer struct {
	tracer trace.Tracer
}

// NewRunTracer creates a tracer scoped to the pipeline instrumentation name.
func NewRunTracer(tracer trace.Tracer) *RunTracer {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.TracerName)
	}
	return &RunTracer{tracer: tracer}
}

// StartRun opens the root span for a pipeline run.
func (rt *RunTracer) StartRun(ctx context.Context, runID string, stepCount int) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.step_count", stepCount),
		))
}

// StartStep opens a child span for one step.
func (rt *RunTracer) StartStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.step."+stepID,
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		))
}

// EndStep records the step outcome on its span.
func (rt *RunTracer) EndStep(span trace.Span, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.End()
}

// EndRun records the run outcome on the root span.
func (rt *RunTracer) EndRun(span trace.Span, status RunStatus, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()
}
