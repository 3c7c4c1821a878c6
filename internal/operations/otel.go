package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/infrastructure"
)

const (
	TracerName = "mriopack.conversion"
)

// ConversionTracer provides OpenTelemetry instrumentation for conversions
type ConversionTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewConversionTracer creates a tracer recording on the given meter. A nil
// meter falls back to the global meter provider, which is a no-op until
// infrastructure.InitializeOTel installs one.
func NewConversionTracer(meter metric.Meter) (*ConversionTracer, error) {
	if meter == nil {
		meter = otel.Meter(TracerName)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return &ConversionTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}, nil
}

// TraceConversion creates a span for a whole conversion
func (ct *ConversionTracer) TraceConversion(ctx context.Context, id, version string) (context.Context, trace.Span) {
	ctx, span := ct.tracer.Start(ctx, "conversion.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversion.id", id),
			attribute.String("conversion.version", version),
		),
	)

	ct.metrics.ActiveConversions.Add(ctx, 1,
		metric.WithAttributes(attribute.String("version", version)),
	)
	return ctx, span
}

// TraceStep creates a span for one step
func (ct *ConversionTracer) TraceStep(ctx context.Context, id, stepID string) (context.Context, trace.Span) {
	return ct.tracer.Start(ctx, fmt.Sprintf("conversion.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversion.id", id),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion ends a step span and records its metrics
func (ct *ConversionTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", status),
	)
	ct.metrics.ConversionStepsTotal.Add(ctx, 1, attrs)
	ct.metrics.ConversionStepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordConversionCompletion ends the conversion span and records its metrics
func (ct *ConversionTracer) RecordConversionCompletion(ctx context.Context, span trace.Span, version string, duration time.Duration, status OperationStatus, err error, stagedBytes int64) {
	span.SetAttributes(
		attribute.String("conversion.status", string(status)),
		attribute.Float64("conversion.duration_seconds", duration.Seconds()),
		attribute.Int64("conversion.staged_bytes", stagedBytes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		errType := string(apperrors.GetErrorType(err))
		if errType == "" {
			errType = "unknown"
		}
		ct.metrics.ConversionErrors.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("version", version),
				attribute.String("error_type", errType),
			),
		)
	} else {
		span.SetStatus(codes.Ok, "conversion completed")
	}
	span.End()

	versionAttr := attribute.String("version", version)
	ct.metrics.ConversionsTotal.Add(ctx, 1,
		metric.WithAttributes(versionAttr, attribute.String("status", string(status))),
	)
	ct.metrics.ConversionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(versionAttr, attribute.String("status", string(status))),
	)
	ct.metrics.ActiveConversions.Add(ctx, -1, metric.WithAttributes(versionAttr))
	if stagedBytes > 0 {
		ct.metrics.StagedBytes.Add(ctx, stagedBytes, metric.WithAttributes(versionAttr))
	}
}
