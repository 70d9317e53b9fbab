package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jumping-park-kiosk"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TraceDatabaseOperation opens a client span around one store call. The
// returned func records the elapsed time and ends the span.
func TraceDatabaseOperation(ctx context.Context, operation, collection string) (context.Context, trace.Span, func()) {
	start := time.Now()
	ctx, span := tracer().Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.collection", collection),
		),
	)
	return ctx, span, func() {
		span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
		span.End()
	}
}

// TraceEndpointStep opens a span for one step of a kiosk operation
func TraceEndpointStep(ctx context.Context, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("kiosk.step", step))
	return tracer().Start(ctx, "kiosk.step."+step, trace.WithAttributes(attrs...))
}

// TraceInputValidation wraps validation of an incoming payload
func TraceInputValidation(ctx context.Context, payload string) (context.Context, trace.Span) {
	return TraceEndpointStep(ctx, "validate_input", attribute.String("validation.payload", payload))
}

// TraceBusinessLogic opens the span covering a whole kiosk operation such as
// issue_otp or create_consent
func TraceBusinessLogic(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "kiosk."+operation,
		trace.WithAttributes(attribute.String("kiosk.operation", operation)))
}

// TraceExternalService opens a client span for a call leaving the process
func TraceExternalService(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return tracer().Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", service),
			attribute.String("kiosk.external_operation", operation),
		),
	)
}

// RecordErrorInSpan marks span failed with err
func RecordErrorInSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}
