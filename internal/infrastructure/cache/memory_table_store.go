package cache

import (
	"context"
	"sync"

	"github.com/tafa/dashboard/internal/domain/ledger"
)

// Ensure MemoryTableStore implements ledger.TableStore
var _ ledger.TableStore = (*MemoryTableStore)(nil)

// MemoryTableStore keeps normalized tables in a process-local map.
// Entries never expire; they live until Delete or Clear.
// Stored tables are shared with readers and must not be mutated.
type MemoryTableStore struct {
	mu     sync.RWMutex
	tables map[string]*ledger.Table
}

// NewMemoryTableStore creates an empty in-memory table store
func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{
		tables: make(map[string]*ledger.Table),
	}
}

// Get returns the cached table for name
func (s *MemoryTableStore) Get(ctx context.Context, name string) (*ledger.Table, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	return t, ok, nil
}

// Set stores t under name, replacing any previous entry
func (s *MemoryTableStore) Set(ctx context.Context, name string, t *ledger.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[name] = t
	return nil
}

// Delete removes the entry for name. Deleting an absent name is a no-op.
func (s *MemoryTableStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables, name)
	return nil
}

// Clear removes every entry
func (s *MemoryTableStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = make(map[string]*ledger.Table)
	return nil
}

// Len returns the number of cached tables
func (s *MemoryTableStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
