package obs

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const tracerName = "zellascore"

// Tracing owns the tracer provider for one CLI run.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracing exports spans as JSON to w when enabled; otherwise spans are no-ops.
func NewTracing(w io.Writer, enabled bool, version string) (*Tracing, error) {
	if !enabled {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(tracerName)}, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", tracerName),
		attribute.String("service.version", version),
	)

	// Syncer rather than batcher: a CLI run is short and must not lose spans on exit.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return &Tracing{provider: tp, tracer: tp.Tracer(tracerName)}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Operation times one step of a run with a span and debug logs.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	log   *zap.Logger
	name  string
	start time.Time
}

// StartOperation opens a span named after the step.
func (t *Tracing) StartOperation(ctx context.Context, log *zap.Logger, name string, attrs ...attribute.KeyValue) *Operation {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	log.Debug("operation started", zap.String("operation", name))
	return &Operation{ctx: ctx, span: span, log: log, name: name, start: time.Now()}
}

// Context returns the context carrying the operation span.
func (o *Operation) Context() context.Context {
	return o.ctx
}

func (o *Operation) End(attrs ...attribute.KeyValue) {
	d := time.Since(o.start)
	o.span.SetAttributes(append(attrs, attribute.Int64("duration_ms", d.Milliseconds()))...)
	o.span.SetStatus(codes.Ok, "")
	o.span.End()
	o.log.Debug("operation completed", zap.String("operation", o.name), zap.Duration("duration", d))
}

func (o *Operation) EndWithError(err error) {
	d := time.Since(o.start)
	o.span.RecordError(err)
	o.span.SetStatus(codes.Error, err.Error())
	o.span.End()
	o.log.Debug("operation failed", zap.String("operation", o.name), zap.Duration("duration", d), zap.Error(err))
}
