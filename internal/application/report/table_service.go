package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/tafa/dashboard/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TableService serves normalized tables through a read-through cache.
// A table is loaded and normalized on first request and stays cached until
// it is reloaded. Concurrent first requests for one table share a single load.
//
// A load that was in flight when its table was reloaded still answers the
// callers already waiting on it but is not cached.
type TableService struct {
	loader ledger.Loader
	store  ledger.TableStore
	group  singleflight.Group
	logger *zap.Logger

	mu    sync.Mutex
	epoch uint64
	gens  map[string]uint64
}

// NewTableService creates a new TableService
func NewTableService(loader ledger.Loader, store ledger.TableStore, logger *zap.Logger) *TableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableService{
		loader: loader,
		store:  store,
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

// generation changes whenever name, or every table, is reloaded
func (s *TableService) generation(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch + s.gens[name]
}

// invalidate bumps the generation of name, or of every table when name is
// empty, and detaches new callers from loads already in flight
func (s *TableService) invalidate(name string) {
	s.mu.Lock()
	if name == "" {
		s.epoch++
	} else {
		s.gens[name]++
	}
	s.mu.Unlock()

	if name == "" {
		for _, n := range s.Names() {
			s.group.Forget(n)
		}
		return
	}
	s.group.Forget(name)
}

// Names lists the table names the service knows
func (s *TableService) Names() []string {
	return ledger.TableNames()
}

// schemaFor resolves name or reports NOT_FOUND
func schemaFor(name string) (ledger.Schema, error) {
	schema, ok := ledger.SchemaFor(name)
	if !ok {
		return ledger.Schema{}, shared.ErrNotFound.Wrap(fmt.Sprintf("Unknown table %q", name), nil)
	}
	return schema, nil
}

// Table returns the normalized table for name
func (s *TableService) Table(ctx context.Context, name string) (*ledger.Table, error) {
	schema, err := schemaFor(name)
	if err != nil {
		return nil, err
	}

	if t, ok := s.cached(ctx, name); ok {
		return t, nil
	}

	// The load is shared, so one caller going away must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		gen := s.generation(name)
		if t, ok := s.cached(loadCtx, name); ok {
			return t, nil
		}

		raw, err := s.loader.Load(loadCtx, name)
		if err != nil {
			return nil, shared.ErrSourceUnavailable.Wrap(fmt.Sprintf("Table %q could not be loaded", name), err)
		}
		t := ledger.Normalize(raw, schema)

		switch stored, err := s.storeIfCurrent(loadCtx, name, gen, t); {
		case err != nil:
			s.logger.Warn("Failed to cache table", zap.String("table", name), zap.Error(err))
		case !stored:
			s.logger.Info("Table reloaded during load, result not cached", zap.String("table", name))
		default:
			s.logger.Info("Table cached",
				zap.String("table", name),
				zap.Int("rows", t.Len()),
				zap.Int("columns", len(t.Columns())),
			)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ledger.Table), nil
}

// storeIfCurrent caches t unless name was reloaded after gen was read.
// The check and the write happen under one lock so that a concurrent
// Reload either sees the entry and deletes it or makes the check fail.
func (s *TableService) storeIfCurrent(ctx context.Context, name string, gen uint64, t *ledger.Table) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch+s.gens[name] != gen {
		return false, nil
	}
	if err := s.store.Set(ctx, name, t); err != nil {
		return false, err
	}
	return true, nil
}

// cached reads the store. Store failures are logged and treated as misses.
func (s *TableService) cached(ctx context.Context, name string) (*ledger.Table, bool) {
	t, ok, err := s.store.Get(ctx, name)
	if err != nil {
		s.logger.Warn("Table cache read failed", zap.String("table", name), zap.Error(err))
		return nil, false
	}
	return t, ok
}

// Tables returns several normalized tables in the requested order
func (s *TableService) Tables(ctx context.Context, names ...string) ([]*ledger.Table, error) {
	out := make([]*ledger.Table, len(names))
	for i, name := range names {
		t, err := s.Table(ctx, name)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Reload invalidates the cached table for name, or every table when name is
// empty. The next request loads from the source again.
func (s *TableService) Reload(ctx context.Context, name string) error {
	if name == "" {
		s.invalidate("")
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear table cache: %w", err)
		}
		s.logger.Info("Table cache cleared")
		return nil
	}

	if _, err := schemaFor(name); err != nil {
		return err
	}
	s.invalidate(name)
	if err := s.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to invalidate table %q: %w", name, err)
	}
	s.logger.Info("Table invalidated", zap.String("table", name))
	return nil
}

// Warm loads every table into the cache. Failures are logged and returned
// together; tables that loaded stay cached.
func (s *TableService) Warm(ctx context.Context) error {
	var failed []string
	for _, name := range s.Names() {
		if _, err := s.Table(ctx, name); err != nil {
			s.logger.Warn("Table warm-up failed", zap.String("table", name), zap.Error(err))
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return shared.ErrSourceUnavailable.Wrap(fmt.Sprintf("Tables %v could not be loaded", failed), nil)
	}
	return nil
}
