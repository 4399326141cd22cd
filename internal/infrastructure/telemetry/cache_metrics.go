package telemetry

import (
	"context"
	"fmt"

	"github.com/tafa/dashboard/internal/infrastructure/cache"
	"go.opentelemetry.io/otel/metric"
)

// RegisterCacheMetrics exports the tiered table cache counters as
// observable counters read from stats at every collection.
func RegisterCacheMetrics(meter metric.Meter, stats func() cache.TieredStats) (metric.Registration, error) {
	hits, err := meter.Int64ObservableCounter("table_cache_hits_total",
		metric.WithDescription("Table cache lookups answered by a tier"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}
	misses, err := meter.Int64ObservableCounter("table_cache_misses_total",
		metric.WithDescription("Table cache lookups a tier could not answer"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	l1 := metric.WithAttributes(AttrCacheTier.String("l1"))
	l2 := metric.WithAttributes(AttrCacheTier.String("l2"))
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(hits, s.L1Hits, l1)
		o.ObserveInt64(hits, s.L2Hits, l2)
		o.ObserveInt64(misses, s.L1Misses, l1)
		o.ObserveInt64(misses, s.L2Misses, l2)
		return nil
	}, hits, misses)
}
