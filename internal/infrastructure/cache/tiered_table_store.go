package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"go.uber.org/zap"
)

// Ensure TieredTableStore implements ledger.TableStore
var _ ledger.TableStore = (*TieredTableStore)(nil)

// TieredTableStore implements a two-tier read-through cache.
// L1: a local store, fast but private to the instance.
// L2: a shared store, slower but visible to every instance.
// Writes go to both tiers; L1 is populated from L2 on an L1 miss.
type TieredTableStore struct {
	l1     ledger.TableStore
	l2     ledger.TableStore
	logger *zap.Logger

	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// TieredStats holds hit/miss counters
type TieredStats struct {
	L1Hits   int64 `json:"l1_hits"`
	L1Misses int64 `json:"l1_misses"`
	L2Hits   int64 `json:"l2_hits"`
	L2Misses int64 `json:"l2_misses"`
}

// TieredTableStoreOption is a functional option for configuring the store
type TieredTableStoreOption func(*TieredTableStore)

// WithTieredLogger sets the logger for the store
func WithTieredLogger(logger *zap.Logger) TieredTableStoreOption {
	return func(s *TieredTableStore) {
		s.logger = logger
	}
}

// NewTieredTableStore creates a tiered store over l1 and l2
func NewTieredTableStore(l1, l2 ledger.TableStore, opts ...TieredTableStoreOption) *TieredTableStore {
	s := &TieredTableStore{
		l1:     l1,
		l2:     l2,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get looks in L1 then L2
func (s *TieredTableStore) Get(ctx context.Context, name string) (*ledger.Table, bool, error) {
	t, ok, err := s.l1.Get(ctx, name)
	if err != nil {
		s.logger.Warn("L1 cache error", zap.String("table", name), zap.Error(err))
	}
	if ok {
		atomic.AddInt64(&s.l1Hits, 1)
		return t, true, nil
	}
	atomic.AddInt64(&s.l1Misses, 1)

	t, ok, err = s.l2.Get(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		atomic.AddInt64(&s.l2Misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&s.l2Hits, 1)

	if err := s.l1.Set(ctx, name, t); err != nil {
		s.logger.Warn("Failed to populate L1 cache", zap.String("table", name), zap.Error(err))
	}
	return t, true, nil
}

// Set stores t in L2 first, then in L1
func (s *TieredTableStore) Set(ctx context.Context, name string, t *ledger.Table) error {
	if err := s.l2.Set(ctx, name, t); err != nil {
		return err
	}
	if err := s.l1.Set(ctx, name, t); err != nil {
		s.logger.Warn("Failed to set L1 cache", zap.String("table", name), zap.Error(err))
	}
	return nil
}

// Delete removes name from both tiers
func (s *TieredTableStore) Delete(ctx context.Context, name string) error {
	if err := s.l2.Delete(ctx, name); err != nil {
		return err
	}
	if err := s.l1.Delete(ctx, name); err != nil {
		s.logger.Warn("Failed to delete from L1 cache", zap.String("table", name), zap.Error(err))
	}
	return nil
}

// Clear empties both tiers
func (s *TieredTableStore) Clear(ctx context.Context) error {
	if err := s.l2.Clear(ctx); err != nil {
		return err
	}
	if err := s.l1.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear L1 cache", zap.Error(err))
	}
	return nil
}

// Stats returns a snapshot of the hit/miss counters
func (s *TieredTableStore) Stats() TieredStats {
	return TieredStats{
		L1Hits:   atomic.LoadInt64(&s.l1Hits),
		L1Misses: atomic.LoadInt64(&s.l1Misses),
		L2Hits:   atomic.LoadInt64(&s.l2Hits),
		L2Misses: atomic.LoadInt64(&s.l2Misses),
	}
}

// Close releases both tiers
func (s *TieredTableStore) Close() error {
	return errors.Join(Close(s.l2), Close(s.l1))
}
