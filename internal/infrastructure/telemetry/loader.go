package telemetry

import (
	"context"
	"time"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Ensure InstrumentedLoader implements ledger.Loader
var _ ledger.Loader = (*InstrumentedLoader)(nil)

// InstrumentedLoader wraps a loader with a span and load metrics per table
type InstrumentedLoader struct {
	next     ledger.Loader
	tracer   trace.Tracer
	loads    *Counter
	duration *Histogram
}

// NewInstrumentedLoader wraps next
func NewInstrumentedLoader(next ledger.Loader, tracer trace.Tracer, meter metric.Meter) (*InstrumentedLoader, error) {
	loads, err := NewCounter(meter,
		"source_table_load_total",
		"Source table loads by table and outcome",
		"{load}",
	)
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "source_table_load_duration_seconds",
		Description: "Time to fetch and parse a source table",
		Unit:        "s",
		Boundaries:  LoadDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &InstrumentedLoader{
		next:     next,
		tracer:   tracer,
		loads:    loads,
		duration: duration,
	}, nil
}

// Load delegates to the wrapped loader inside a "source.load" span
func (l *InstrumentedLoader) Load(ctx context.Context, name string) (*ledger.Table, error) {
	ctx, span := l.tracer.Start(ctx, "source.load", trace.WithAttributes(AttrTable.String(name)))
	defer span.End()

	start := time.Now()
	t, err := l.next.Load(ctx, name)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("rows", t.Len()))
	}

	l.loads.Inc(ctx, AttrTable.String(name), AttrOutcome.String(outcome))
	l.duration.RecordDuration(ctx, elapsed, AttrTable.String(name))
	return t, err
}
