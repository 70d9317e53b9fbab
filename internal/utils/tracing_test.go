package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the duration of the test
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attributeMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestTraceDatabaseOperation(t *testing.T) {
	recorder := recordSpans(t)

	_, _, end := TraceDatabaseOperation(context.Background(), "next_consecutivo", "counters")
	end()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "db.next_consecutivo", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())

	attrs := attributeMap(ended[0].Attributes())
	assert.Equal(t, "counters", attrs["db.collection"].AsString())
	assert.Equal(t, "next_consecutivo", attrs["db.operation"].AsString())
	assert.Contains(t, attrs, "db.duration_ms")
}

func TestTraceEndpointStep_NestsUnderOperation(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := TraceBusinessLogic(context.Background(), "create_consent")
	_, child := TraceEndpointStep(ctx, "store_signature", attribute.Int("blob.size", 128))
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "kiosk.step.store_signature", ended[0].Name())
	assert.Equal(t, "kiosk.create_consent", ended[1].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())

	attrs := attributeMap(ended[0].Attributes())
	assert.Equal(t, "store_signature", attrs["kiosk.step"].AsString())
	assert.Equal(t, int64(128), attrs["blob.size"].AsInt64())
	assert.Equal(t, "create_consent", attributeMap(ended[1].Attributes())["kiosk.operation"].AsString())
}

func TestTraceHelpers(t *testing.T) {
	recorder := recordSpans(t)

	_, validation := TraceInputValidation(context.Background(), "consent_submission")
	validation.End()
	_, external := TraceExternalService(context.Background(), "smtp", "send_code")
	external.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "kiosk.step.validate_input", ended[0].Name())
	assert.Equal(t, "consent_submission", attributeMap(ended[0].Attributes())["validation.payload"].AsString())

	assert.Equal(t, "smtp.send_code", ended[1].Name())
	assert.Equal(t, trace.SpanKindClient, ended[1].SpanKind())
	assert.Equal(t, "smtp", attributeMap(ended[1].Attributes())["peer.service"].AsString())
}

func TestRecordErrorInSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := TraceBusinessLogic(context.Background(), "issue_otp")
	RecordErrorInSpan(span, errors.New("delivery failed"), attribute.String("outcome", "delivery_failed"))
	span.End()

	_, bare := TraceBusinessLogic(context.Background(), "validate_otp")
	RecordErrorInSpan(bare, errors.New("code expired"))
	bare.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "delivery failed", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "delivery_failed", attributeMap(ended[0].Attributes())["outcome"].AsString())

	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.NotContains(t, attributeMap(ended[1].Attributes()), "outcome")
}
