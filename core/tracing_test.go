package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/wessbas/reflectcall/core/telemetry"
)

func newRecordingHandler() (*telemetry.TracingHandler, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	handler := &telemetry.TracingHandler{
		Tracer: provider.Tracer("engine-test"),
		Propagators: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}

	return handler, recorder
}

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value.AsString(), true
		}
	}

	return "", false
}

func TestInvokeTracesSuccessfulCall(t *testing.T) {
	handler, recorder := newRecordingHandler()
	engine := newTestEngine(t, WithTracing(handler))

	_, err := engine.Invoke(context.Background(), Request{
		ThreadID:        "t",
		ClassName:       "text.Util",
		MethodSignature: "concat(Lstring;,Lstring;):Lstring;",
		Arguments:       map[string]string{"arg0": `"a"`, "arg1": `"b"`},
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, "engine.Invoke", span.Name())
	require.Equal(t, codes.Ok, span.Status().Code)

	method, ok := attributeValue(span.Attributes(), "invoke.signature")
	require.True(t, ok)
	require.Equal(t, "concat(Lstring;,Lstring;):Lstring;", method)

	target, ok := attributeValue(span.Attributes(), "invoke.target")
	require.True(t, ok)
	require.Equal(t, "text.Util", target)
}

func TestInvokeTracesFailedCall(t *testing.T) {
	handler, recorder := newRecordingHandler()
	engine := newTestEngine(t, WithTracing(handler))

	_, err := engine.Invoke(context.Background(), Request{
		ThreadID:        "t",
		ClassName:       "text.Util",
		MethodSignature: "fail()",
	})
	require.ErrorIs(t, err, ErrInvocationFailed)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, "engine.Invoke", span.Name())
	require.Equal(t, codes.Error, span.Status().Code)
	require.Contains(t, span.Status().Description, "boom")
}

func TestInvokeTracesObjectTarget(t *testing.T) {
	handler, recorder := newRecordingHandler()
	engine := newTestEngine(t, WithTracing(handler))

	encoded, err := engine.Converter().Encode(box{Value: "inside"})
	require.NoError(t, err)

	_, err = engine.Invoke(context.Background(), Request{
		ThreadID:        "t",
		ObjectString:    encoded,
		MethodSignature: "get():Lstring;",
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	target, ok := attributeValue(spans[0].Attributes(), "invoke.target")
	require.True(t, ok)
	require.Equal(t, "object", target)
}
