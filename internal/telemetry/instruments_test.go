package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestInstruments(t *testing.T) (*Instruments, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inst, err := NewInstrumentsWith(tp, mp)
	if err != nil {
		t.Fatalf("NewInstrumentsWith: %v", err)
	}
	return inst, spans, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestStartCall_RecordsSpanAndMetrics(t *testing.T) {
	inst, spans, reader := newTestInstruments(t)
	ctx := context.Background()

	_, end := inst.StartCall(ctx, "bmad_get_agent")
	end("")
	_, end = inst.StartCall(ctx, "bmad_get_agent")
	end("NOT_FOUND")

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[0].Name() != "bmad_get_agent" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	var sawFailure bool
	for _, kv := range ended[1].Attributes() {
		if kv.Key == attribute.Key(AttrSuccess) && !kv.Value.AsBool() {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("failed call should carry success=false")
	}

	metrics := collect(t, reader)
	calls, ok := metrics["bmad.tool.calls"]
	if !ok {
		t.Fatal("bmad.tool.calls not recorded")
	}
	sum := calls.Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 || len(sum.DataPoints) != 2 {
		t.Errorf("calls total=%d points=%d, want 2 and 2", total, len(sum.DataPoints))
	}
	if _, ok := metrics["bmad.tool.duration"]; !ok {
		t.Error("bmad.tool.duration not recorded")
	}
}

func TestRecordActivation(t *testing.T) {
	inst, _, reader := newTestInstruments(t)
	inst.RecordActivation(context.Background(), "dev", 420)

	m, ok := collect(t, reader)["bmad.activation.tokens"]
	if !ok {
		t.Fatal("bmad.activation.tokens not recorded")
	}
	h := m.Data.(metricdata.Histogram[int64])
	if len(h.DataPoints) != 1 || h.DataPoints[0].Sum != 420 {
		t.Errorf("histogram = %+v", h.DataPoints)
	}
}

func TestNilInstruments(t *testing.T) {
	var inst *Instruments
	ctx, end := inst.StartCall(context.Background(), "bmad_list_agents")
	end("UNKNOWN_ERROR")
	inst.RecordActivation(ctx, "dev", 1)
}

func TestInit(t *testing.T) {
	shutdown, err := Init("bmad-mcp", "test", "none")
	if err != nil {
		t.Fatalf("Init none: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	if _, err := Init("bmad-mcp", "test", "otlp"); err == nil {
		t.Error("expected error for unsupported exporter")
	}
}
