package ledger

import "context"

// TableStore holds normalized tables by logical name.
// Get reports found=false for an absent table; it is not an error.
type TableStore interface {
	Get(ctx context.Context, name string) (t *Table, found bool, err error)
	Set(ctx context.Context, name string, t *Table) error
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

// Loader reads one logical source table as raw text cells.
type Loader interface {
	Load(ctx context.Context, name string) (*Table, error)
}
