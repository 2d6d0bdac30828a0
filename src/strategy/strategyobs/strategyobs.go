package strategyobs

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"signalbridge/src/model"
	"signalbridge/src/strategy"
	"signalbridge/src/trace"
)

// Executor is the execution collaborator contract.
type Executor interface {
	Execute(ctx context.Context, sig model.Signal) (strategy.Result, error)
}

// observableExecutor wraps an Executor with tracing and timing logs
type observableExecutor struct {
	executor Executor
}

// Compile-time interface check
var _ Executor = (*observableExecutor)(nil)

func Wrap(executor Executor) Executor {
	return &observableExecutor{
		executor: executor,
	}
}

func (oe *observableExecutor) Execute(ctx context.Context, sig model.Signal) (strategy.Result, error) {
	ctx, span := trace.StartSpan(ctx, "strategy.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("signal.id", sig.ID),
		attribute.String("signal.type", string(sig.Type)),
		attribute.String("signal.symbol", sig.Symbol),
		attribute.String("signal.source", sig.Source),
	)

	start := time.Now()
	fields := logger.Fields{"signal_id": sig.ID, "type": sig.Type, "symbol": sig.Symbol}
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		fields["trace_id"] = traceID
		fields["span_id"] = spanID
	}

	result, err := oe.executor.Execute(ctx, sig)
	fields["duration_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithFields(fields).WithError(err).Error("Signal execution failed")
		return result, err
	}

	span.SetAttributes(
		attribute.String("result.symbol", result.Symbol),
		attribute.Float64("result.volume", result.Volume),
		attribute.String("result.status", result.Status),
	)
	logger.WithFields(fields).Debug("Signal execution completed")
	return result, nil
}
