package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"dropwatch/internal/infrastructure"
	"dropwatch/pkg/contracts/domain"
)

const (
	TracerName = "dropwatch.operations"

	spanRun     = "dropwatch.run"
	spanAccount = "dropwatch.account"
	spanFolder  = "dropwatch.folder"
)

// RunTracer provides OpenTelemetry instrumentation for scan runs.
// A nil *RunTracer is valid and records nothing.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ScanMetrics
}

// NewRunTracer creates a tracer from initialised providers. Providers without
// a meter yield a tracer that only emits spans.
func NewRunTracer(providers *infrastructure.OTelProviders) (*RunTracer, error) {
	if providers == nil {
		return nil, nil
	}

	rt := &RunTracer{tracer: providers.Tracer}
	if rt.tracer == nil {
		rt.tracer = noop.NewTracerProvider().Tracer(TracerName)
	}

	if providers.Meter != nil {
		metrics, err := infrastructure.CreateScanMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create scan metrics: %w", err)
		}
		rt.metrics = metrics
	}
	return rt, nil
}

// StartRun opens the run span
func (rt *RunTracer) StartRun(ctx context.Context, runID string, accounts int) (context.Context, trace.Span) {
	if rt == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return rt.tracer.Start(ctx, spanRun,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.accounts", accounts),
		),
	)
}

// EndRun closes the run span and counts the run; ctx must be the one
// StartRun returned.
func (rt *RunTracer) EndRun(ctx context.Context, span trace.Span, result *domain.RunResult, err error) {
	if rt == nil {
		return
	}
	defer span.End()

	status := "completed"
	if err != nil {
		status = "cancelled"
		infrastructure.RecordError(ctx, err)
	} else if result != nil {
		summary := result.Summary()
		span.SetAttributes(
			attribute.Int("run.outcomes", summary.Total),
			attribute.Int("run.found", summary.Found),
			attribute.Int("run.empty", summary.Empty),
			attribute.Int("run.failed", summary.Failed),
		)
		span.SetStatus(codes.Ok, "run completed")
	}

	if rt.metrics != nil {
		rt.metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", status)))
	}
}

// StartAccount opens an account span and marks the scan active
func (rt *RunTracer) StartAccount(ctx context.Context, acct domain.Account) (context.Context, trace.Span) {
	if rt == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	if rt.metrics != nil {
		rt.metrics.ActiveScans.Add(ctx, 1)
	}
	return rt.tracer.Start(ctx, spanAccount,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("account.name", acct.Name),
			attribute.String("server.address", acct.Host),
			attribute.Int("server.port", acct.Port),
			attribute.Int("account.folders", len(acct.Folders)),
		),
	)
}

// EndAccount closes the account span; ctx must be the one StartAccount
// returned. result is "connected", "failed" or "cancelled"; err is the
// connection error if any.
func (rt *RunTracer) EndAccount(ctx context.Context, span trace.Span, result string, elapsed time.Duration, err error) {
	if rt == nil {
		return
	}
	defer span.End()

	span.SetAttributes(
		attribute.String("account.result", result),
		attribute.Float64("account.duration_seconds", elapsed.Seconds()),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}

	if rt.metrics != nil {
		rt.metrics.ActiveScans.Add(ctx, -1)
		rt.metrics.AccountsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
		rt.metrics.AccountScanDuration.Record(ctx, elapsed.Seconds())
	}
}

// StartFolder opens a folder span
func (rt *RunTracer) StartFolder(ctx context.Context, task domain.FolderTask) (context.Context, trace.Span) {
	if rt == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	attrs := []attribute.KeyValue{
		attribute.String("folder.label", task.Label),
		attribute.String("folder.path", task.Path),
	}
	if task.Prefix != "" {
		attrs = append(attrs, attribute.String("folder.prefix", task.Prefix))
	}
	return rt.tracer.Start(ctx, spanFolder, trace.WithAttributes(attrs...))
}

// RecordOutcome closes the folder span with its outcome and counts it.
// span is nil for outcomes produced without inspecting the folder.
func (rt *RunTracer) RecordOutcome(ctx context.Context, span trace.Span, outcome domain.Outcome) {
	if rt == nil {
		return
	}

	if span != nil {
		span.SetAttributes(attribute.String("folder.status", string(outcome.Status)))
		switch outcome.Status {
		case domain.OutcomeStatusFound:
			span.SetAttributes(
				attribute.String("file.name", outcome.FileName),
				attribute.String("file.modified_at", outcome.ModifiedAt.Format(time.RFC3339)),
			)
		case domain.OutcomeStatusError:
			span.SetStatus(codes.Error, outcome.Detail)
		}
		if outcome.Note != "" {
			span.AddEvent("note", trace.WithAttributes(attribute.String("note", outcome.Note)))
		}
		span.End()
	}

	if rt.metrics != nil {
		rt.metrics.FoldersTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(outcome.Status))))
	}
}
