package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/matzehuels/blockmondrian"

// TraceHooks implements every hook interface on top of an OpenTelemetry
// tracer. Completion events become spans back-dated by their duration;
// cache events become span events on the span already in ctx.
type TraceHooks struct {
	tracer trace.Tracer
}

// NewTraceHooks creates hooks recording to tp.
func NewTraceHooks(tp trace.TracerProvider) *TraceHooks {
	return &TraceHooks{tracer: tp.Tracer(tracerName)}
}

// span records a finished operation that ended now and took d.
func (h *TraceHooks) span(ctx context.Context, name string, d time.Duration, err error, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, s := h.tracer.Start(ctx, name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	}
	s.End(trace.WithTimestamp(end))
}

func (h *TraceHooks) OnFetchStart(context.Context, string, int64) {}

func (h *TraceHooks) OnFetchComplete(ctx context.Context, source string, height int64, txCount int, d time.Duration, err error) {
	h.span(ctx, "block.fetch", d, err,
		attribute.String("block.source", source),
		attribute.Int64("block.height", height),
		attribute.Int("block.tx_count", txCount),
	)
}

func (h *TraceHooks) OnLayoutStart(context.Context, int) {}

func (h *TraceHooks) OnLayoutComplete(ctx context.Context, placed, skipped int, d time.Duration, err error) {
	h.span(ctx, "mosaic.layout", d, err,
		attribute.Int("layout.placed", placed),
		attribute.Int("layout.skipped", skipped),
	)
}

func (h *TraceHooks) OnRenderStart(context.Context, []string) {}

func (h *TraceHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.span(ctx, "mosaic.render", d, err, attribute.StringSlice("render.formats", formats))
}

func (h *TraceHooks) OnCacheHit(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.hit", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (h *TraceHooks) OnCacheMiss(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.miss", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (h *TraceHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	trace.SpanFromContext(ctx).AddEvent("cache.set", trace.WithAttributes(
		attribute.String("cache.key_type", keyType),
		attribute.Int("cache.size", size),
	))
}

func (h *TraceHooks) OnRequest(context.Context, string, string, string) {}

func (h *TraceHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	var err error
	if status >= 400 {
		err = fmt.Errorf("status %d", status)
	}
	h.span(ctx, "http "+method, d, err,
		attribute.String("http.host", host),
		attribute.String("http.path", path),
		attribute.Int("http.status_code", status),
	)
}

func (h *TraceHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.span(ctx, "http "+method, 0, err,
		attribute.String("http.host", host),
		attribute.String("http.path", path),
	)
}

var (
	_ PipelineHooks = (*TraceHooks)(nil)
	_ CacheHooks    = (*TraceHooks)(nil)
	_ HTTPHooks     = (*TraceHooks)(nil)
)

// InstallTracing registers [TraceHooks] for all event kinds, exporting spans
// as JSON to w. The returned function flushes and stops the exporter.
func InstallTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("stdout exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	hooks := NewTraceHooks(tp)
	SetPipelineHooks(hooks)
	SetCacheHooks(hooks)
	SetHTTPHooks(hooks)
	return tp.Shutdown, nil
}
