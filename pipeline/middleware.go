package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
)

// WithLogging wraps a work function with per-task execution logging:
// operation name, duration, and success/error status.
func WithLogging(fn WorkFunc, log *logger.Logger, operation string) WorkFunc {
	return func(ctx context.Context, task Task) (Task, error) {
		start := time.Now()
		result, err := fn(ctx, task)
		duration := time.Since(start)

		fields := logger.DurationFields(operation, duration)
		if err != nil {
			fields[logger.FieldError] = err.Error()
			log.Error("task failed", fields)
		} else {
			log.Debug("task completed", fields)
		}

		return result, err
	}
}

// WithMetrics wraps a work function with metric recording: task count,
// duration, busy-worker gauge, and errors.
func WithMetrics(fn WorkFunc, m *observability.Metrics, operation string) WorkFunc {
	return func(ctx context.Context, task Task) (Task, error) {
		m.TaskStarted(ctx)
		start := time.Now()
		result, err := fn(ctx, task)
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			m.RecordError(ctx, operation)
		}
		m.TaskFinished(ctx, operation, status, duration)

		return result, err
	}
}

// WithTracing wraps a work function with OpenTelemetry span creation.
// Each task creates a span named "stage.{operation}".
func WithTracing(fn WorkFunc, operation string) WorkFunc {
	spanName := "stage." + operation
	return func(ctx context.Context, task Task) (Task, error) {
		ctx, span := observability.StartSpan(ctx, spanName)
		defer span.End()

		observability.SetSpanAttribute(ctx, "operation", operation)

		result, err := fn(ctx, task)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}

		return result, err
	}
}
