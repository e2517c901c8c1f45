package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("expected AlwaysSample for rate 1")
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("expected NeverSample for rate 0")
	}
	if sampler(0.5).Description() != sdktrace.TraceIDRatioBased(0.5).Description() {
		t.Error("expected ratio sampler for rate 0.5")
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "1.2.3", "staging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if string(kv.Key) == "service.name" && kv.Value.AsString() == "svc" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name=svc attribute")
	}
}

func TestTracer_UsesGivenProvider(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	_, span := Tracer(tp).Start(context.Background(), SpanHTTPRequest)
	span.End()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].InstrumentationScope().Name != InstrumentationName {
		t.Errorf("unexpected scope %q", spans[0].InstrumentationScope().Name)
	}
}

func TestTracer_FallsBackToGlobal(t *testing.T) {
	if Tracer(nil) == nil {
		t.Fatal("expected non-nil tracer from global provider")
	}
	if Meter(nil) == nil {
		t.Fatal("expected non-nil meter from global provider")
	}
}

func TestInitTracerAndMeter(t *testing.T) {
	origTP := otel.GetTracerProvider()
	origMP := otel.GetMeterProvider()
	defer otel.SetTracerProvider(origTP)
	defer otel.SetMeterProvider(origMP)

	ctx := context.Background()
	tp, err := InitTracer(ctx, DefaultTracerConfig("init-test"))
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	mp, err := InitMeter(ctx, DefaultMeterConfig("init-test"))
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
	_ = mp.Shutdown(shutdownCtx)
}

func TestNewClientMetrics_Noop(t *testing.T) {
	metrics, err := NewClientMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordStart(ctx)
	metrics.RecordEnd(ctx, "GET", "200", 10*time.Millisecond)
}

func TestNewClientMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewClientMetrics(Meter(mp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStart(ctx)
	metrics.RecordEnd(ctx, "GET", "200", 25*time.Millisecond)
	metrics.RecordStart(ctx)
	metrics.RecordEnd(ctx, "POST", "timeout", time.Second)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	var active int64 = -1
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case MetricClientRequests:
				sum := m.Data.(metricdata.Sum[int64])
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			case MetricClientActive:
				sum := m.Data.(metricdata.Sum[int64])
				active = 0
				for _, dp := range sum.DataPoints {
					active += dp.Value
				}
			}
		}
	}
	if total != 2 {
		t.Errorf("expected 2 requests recorded, got %d", total)
	}
	if active != 0 {
		t.Errorf("expected 0 active requests, got %d", active)
	}
}
