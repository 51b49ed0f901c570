package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"salesreport/internal/config"
)

const instrumentationName = "salesreport"

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

// Span is a thin wrapper over an OpenTelemetry span that also keeps the
// timing locally so callers can log it.
type Span struct {
	Operation string
	StartTime time.Time
	Duration  time.Duration
	Status    SpanStatus
	Error     string

	span trace.Span
}

// StartSpan starts a span on the globally registered tracer provider. With
// tracing disabled that provider is a no-op.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, otelSpan := otel.Tracer(instrumentationName).Start(ctx, operation)
	if runID := GetRunID(ctx); runID != "" {
		otelSpan.SetAttributes(attribute.String(string(RunIDKey), runID))
	}

	return ctx, &Span{
		Operation: operation,
		StartTime: time.Now(),
		Status:    SpanStatusOK,
		span:      otelSpan,
	}
}

func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
	if s.Status == SpanStatusOK {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func (s *Span) SetTag(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *Span) SetInt(key string, value int) {
	s.span.SetAttributes(attribute.Int(key, value))
}

func (s *Span) SetError(err error) {
	s.Status = SpanStatusError
	if err != nil {
		s.Error = err.Error()
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
}

func (s *Span) TraceID() string {
	sc := s.span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Tracing owns the tracer provider for one run.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// InitTracing installs a stdout exporter writing to w when tracing is
// enabled. Spans are exported synchronously since a run is short-lived.
func InitTracing(cfg config.TracingConfig, w io.Writer) (*Tracing, error) {
	if !cfg.Enabled {
		return &Tracing{}, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &Tracing{provider: tp}, nil
}

func (t *Tracing) Enabled() bool {
	return t.provider != nil
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
