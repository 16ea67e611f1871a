// Package telemetry carries tracing for the invocation engine. Trace
// context travels through the host's string-only parameter channels as a
// flat map carrier.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingHandler bundles the tracer and propagators used around method
// invocations.
type TracingHandler struct {
	Tracer      trace.Tracer
	Propagators propagation.TextMapPropagator
}

// StartNewSpan starts a span on the given context.
func (th *TracingHandler) StartNewSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	return th.Tracer.Start(ctx, spanName, opts...)
}

// ExtractContext rebuilds a context from a carrier received over a
// string-only channel.
func (th *TracingHandler) ExtractContext(carrier propagation.MapCarrier) context.Context {
	return th.Propagators.Extract(context.Background(), carrier)
}

// InjectContext writes the trace context of ctx into a carrier suitable for
// a string-only channel.
func (th *TracingHandler) InjectContext(ctx context.Context) propagation.MapCarrier {
	carrier := propagation.MapCarrier{}
	th.Propagators.Inject(ctx, carrier)

	return carrier
}

// MethodAttribute tags a span with the invoked signature text.
func MethodAttribute(signature string) attribute.KeyValue {
	return attribute.String("invoke.signature", signature)
}

// TargetAttribute tags a span with the invocation target description.
func TargetAttribute(target string) attribute.KeyValue {
	return attribute.String("invoke.target", target)
}
