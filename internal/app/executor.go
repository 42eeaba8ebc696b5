package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
	"github.com/cwilkins507/my-portfolio/internal/platform/telemetry"
)

// Operations that leave the process run as five ordered steps:
//
//	validate -> perform -> verify -> archive -> respond
//
// State is persisted in archive only, after the outcome of perform has been
// verified. A failing step stops the sequence.

// Step names one stage of an Operation.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
	StepRespond  Step = "respond"
)

// StepError records the step an operation failed in. It unwraps to the
// cause, so domain error checks see through it.
type StepError struct {
	Step  Step
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// FailedStep reports the step err came from.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}

	return "", false
}

// Operation is a use case split into steps. Nil steps are skipped and pass
// the zero value on.
type Operation[I, P, V, O any] struct {
	Name     string
	Validate func(ctx context.Context, in I) error
	Perform  func(ctx context.Context, in I) (P, error)
	Verify   func(ctx context.Context, in I, performed P) (V, error)
	Archive  func(ctx context.Context, in I, verified V) error
	Respond  func(ctx context.Context, in I, verified V) (O, error)
}

// Executor runs Operations with a span and step-level logging.
type Executor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor creates an executor. logger is used when the context carries
// none.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, tracer: telemetry.Tracer()}
}

// Execute runs op for in.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], in I) (out O, err error) {
	ctx, span := exec.tracer.Start(ctx, op.Name)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	run := func(step Step, fn func() error) error {
		span.AddEvent(string(step))
		logger.DebugContext(ctx, "step started", slog.String("step", string(step)))

		if err := fn(); err != nil {
			level := slog.LevelError
			if step == StepValidate {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "step failed", slog.String("step", string(step)), slog.Any("error", err))
			span.SetAttributes(attribute.String("operation.failed_step", string(step)))

			return &StepError{Step: step, Cause: err}
		}

		return nil
	}

	var (
		performed P
		verified  V
	)

	steps := []struct {
		step Step
		fn   func() error
	}{
		{StepValidate, func() error {
			if op.Validate == nil {
				return nil
			}

			return op.Validate(ctx, in)
		}},
		{StepPerform, func() (err error) {
			if op.Perform != nil {
				performed, err = op.Perform(ctx, in)
			}

			return err
		}},
		{StepVerify, func() (err error) {
			if op.Verify != nil {
				verified, err = op.Verify(ctx, in, performed)
			}

			return err
		}},
		{StepArchive, func() error {
			if op.Archive == nil {
				return nil
			}

			return op.Archive(ctx, in, verified)
		}},
		{StepRespond, func() (err error) {
			if op.Respond != nil {
				out, err = op.Respond(ctx, in, verified)
			}

			return err
		}},
	}

	for _, s := range steps {
		if err := run(s.step, s.fn); err != nil {
			var zero O
			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}
