package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bmad-mcp/tools"

// Attribute keys.
const (
	AttrOperation = "bmad.operation"
	AttrCode      = "bmad.code"
	AttrSuccess   = "bmad.success"
	AttrAgent     = "bmad.agent"
)

// Instruments records tool-call spans and metrics. A nil *Instruments is
// valid and records nothing.
type Instruments struct {
	tracer           trace.Tracer
	calls            metric.Int64Counter
	duration         metric.Float64Histogram
	activationTokens metric.Int64Histogram
}

// NewInstruments builds instruments on the global providers.
func NewInstruments() (*Instruments, error) {
	return NewInstrumentsWith(otel.GetTracerProvider(), otel.GetMeterProvider())
}

// NewInstrumentsWith builds instruments on explicit providers.
func NewInstrumentsWith(tp trace.TracerProvider, mp metric.MeterProvider) (*Instruments, error) {
	meter := mp.Meter(instrumentationName)

	calls, err := meter.Int64Counter("bmad.tool.calls",
		metric.WithDescription("Tool calls by operation and result code"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("bmad.tool.duration",
		metric.WithDescription("Tool call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	activationTokens, err := meter.Int64Histogram("bmad.activation.tokens",
		metric.WithDescription("Estimated tokens per activation prompt"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		tracer:           tp.Tracer(instrumentationName),
		calls:            calls,
		duration:         duration,
		activationTokens: activationTokens,
	}, nil
}

// StartCall opens a span for operation. The returned func ends it and
// records the call with its result code ("" means success).
func (i *Instruments) StartCall(ctx context.Context, operation string) (context.Context, func(code string)) {
	if i == nil {
		return ctx, func(string) {}
	}
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, operation, trace.WithAttributes(attribute.String(AttrOperation, operation)))

	return ctx, func(code string) {
		success := code == ""
		if success {
			code = "OK"
		} else {
			span.SetStatus(codes.Error, code)
		}
		span.SetAttributes(attribute.Bool(AttrSuccess, success), attribute.String(AttrCode, code))
		span.End()

		attrs := metric.WithAttributes(attribute.String(AttrOperation, operation), attribute.String(AttrCode, code))
		i.calls.Add(ctx, 1, attrs)
		i.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	}
}

// RecordActivation records the token estimate of one activation.
func (i *Instruments) RecordActivation(ctx context.Context, agent string, tokens int) {
	if i == nil {
		return
	}
	i.activationTokens.Record(ctx, int64(tokens), metric.WithAttributes(attribute.String(AttrAgent, agent)))
}
