package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/tafa/dashboard/internal/domain/shared"
	"github.com/tafa/dashboard/internal/infrastructure/cache"
)

// MockLoader is a mock implementation of ledger.Loader
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, name string) (*ledger.Table, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Table), args.Error(1)
}

var _ ledger.Loader = (*MockLoader)(nil)

func raw(name string, header []string, records ...[]string) *ledger.Table {
	cols := make([]ledger.Column, len(header))
	for i, h := range header {
		cols[i] = ledger.Column{Name: h, Kind: ledger.KindText}
	}
	rows := make([]ledger.Row, len(records))
	for i, rec := range records {
		row := make(ledger.Row, len(rec))
		for j, cell := range rec {
			row[j] = ledger.Text(cell)
		}
		rows[i] = row
	}
	return ledger.NewTable(name, cols, rows)
}

func salesFixture() *ledger.Table {
	return raw(ledger.TableSales,
		[]string{"Date", "Category", "Product Name", "Customer Name", "Sold By", "Quantity", "Total Amount", "Payment Method", "Payment Status"},
		[]string{"2025-01-01", "Rice", "Miniket", "Karim", "Rahim", "2", "1,000", "bKash", "Paid"},
		[]string{"2025-01-02", "Oil", "Soybean", "Salma", "Rahim", "1", "500", "Cash", "Due"},
		[]string{"2025-01-03", "Rice", "Nazirshail", "Karim", "Jamal", "3", "1500", "Nagad", "Paid"},
	)
}

func cashbookFixture() *ledger.Table {
	return raw(ledger.TableCashbook,
		[]string{"date", "vouchar_no", "description", "name", "payment_cetagory", "reference", "cash_in", "cash_out"},
		[]string{"2025-01-01", "V1", "Counter sale", "Karim", "Sales", "R1", "2000", "0"},
		[]string{"2025-01-02", "V2", "Shop rent", "Landlord", "Expense", "R2", "", "700"},
		[]string{"2025-01-03", "V3", "Loan", "Bank", "Laibility", "R3", "500", ""},
		[]string{"2025-01-05", "V4", "Fuel", "Pump", "Expense", "R4", "0", "300"},
	)
}

func bankbookFixture() *ledger.Table {
	return raw(ledger.TableBankbook,
		[]string{"date", "fund_source", "payment_category", "deposit", "withdrawal", "balance"},
		[]string{"2025-01-02", "DBBL", "Sales", "1000", "0", "1000"},
		[]string{"2025-01-04", "DBBL", "Expense", "0", "400", "600"},
		[]string{"2025-01-04", "City", "Sales", "300", "0", "300"},
	)
}

func purchaseFixture() *ledger.Table {
	return raw(ledger.TablePurchase,
		[]string{"date", "vouchar_no", "supplier_name", "product_name", "product_category", "payment_cetagory", "purchase_rate", "discount", "amount", "payable", "receivedable"},
		[]string{"01-01-2025", "P1", "Acme", "Miniket", "Rice", "Payable", "50", "0", "1000", "1000", "1000"},
		[]string{"02-01-2025", "P2", "Acme", "Soybean", "Oil", "Payable", "100", "0", "800", "800", "300"},
		[]string{"03-01-2025", "P3", "Bengal", "Nazirshail", "Rice", "Payable", "60", "0", "600", "600", "700"},
	)
}

func fixtures() map[string]*ledger.Table {
	return map[string]*ledger.Table{
		ledger.TableSales:    salesFixture(),
		ledger.TableCashbook: cashbookFixture(),
		ledger.TableBankbook: bankbookFixture(),
		ledger.TablePurchase: purchaseFixture(),
	}
}

// newFixtureLoader serves every fixture table any number of times
func newFixtureLoader() *MockLoader {
	loader := new(MockLoader)
	for name, t := range fixtures() {
		loader.On("Load", mock.Anything, name).Return(t, nil)
	}
	return loader
}

func TestTableService_LoadsOnceAndCaches(t *testing.T) {
	ctx := context.Background()
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, ledger.TableSales).Return(salesFixture(), nil).Once()
	svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

	first, err := svc.Table(ctx, ledger.TableSales)
	require.NoError(t, err)
	second, err := svc.Table(ctx, ledger.TableSales)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, ledger.SalesSchema.ColumnNames(), first.ColumnNames())
	assert.Equal(t, 3, first.Len())
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestTableService_ConcurrentFirstRequestsShareOneLoad(t *testing.T) {
	ctx := context.Background()
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, ledger.TableCashbook).
		After(50*time.Millisecond).
		Return(cashbookFixture(), nil).
		Once()
	svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

	var wg sync.WaitGroup
	results := make([]*ledger.Table, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := svc.Table(ctx, ledger.TableCashbook)
			assert.NoError(t, err)
			results[i] = tbl
		}(i)
	}
	wg.Wait()

	for _, tbl := range results {
		require.NotNil(t, tbl)
		assert.Equal(t, 4, tbl.Len())
	}
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestTableService_ReloadInvalidates(t *testing.T) {
	ctx := context.Background()
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, ledger.TableSales).Return(salesFixture(), nil).Times(3)
	loader.On("Load", mock.Anything, ledger.TableBankbook).Return(bankbookFixture(), nil).Twice()
	svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

	_, err := svc.Tables(ctx, ledger.TableSales, ledger.TableBankbook)
	require.NoError(t, err)

	require.NoError(t, svc.Reload(ctx, ledger.TableSales))
	_, err = svc.Tables(ctx, ledger.TableSales, ledger.TableBankbook)
	require.NoError(t, err)
	loader.AssertNumberOfCalls(t, "Load", 3)

	require.NoError(t, svc.Reload(ctx, ""))
	_, err = svc.Tables(ctx, ledger.TableSales, ledger.TableBankbook)
	require.NoError(t, err)
	loader.AssertExpectations(t)
}

// gatedLoader holds its first load until release is closed and fails a
// load whose context is done, as a real fetch would
type gatedLoader struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	tables  []*ledger.Table
}

func newGatedLoader(tables ...*ledger.Table) *gatedLoader {
	return &gatedLoader{
		started: make(chan struct{}),
		release: make(chan struct{}),
		tables:  tables,
	}
}

func (l *gatedLoader) Load(ctx context.Context, name string) (*ledger.Table, error) {
	l.mu.Lock()
	n := l.calls
	l.calls++
	l.mu.Unlock()

	if n == 0 {
		close(l.started)
		<-l.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.tables[min(n, len(l.tables)-1)], nil
}

func (l *gatedLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestTableService_ReloadDuringLoad(t *testing.T) {
	ctx := context.Background()
	stale := salesFixture()
	fresh := raw(ledger.TableSales,
		[]string{"Date", "Total Amount"},
		[]string{"2025-02-01", "700"},
	)
	loader := newGatedLoader(stale, fresh)
	svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

	var first *ledger.Table
	done := make(chan struct{})
	go func() {
		defer close(done)
		tbl, err := svc.Table(ctx, ledger.TableSales)
		assert.NoError(t, err)
		first = tbl
	}()
	<-loader.started

	require.NoError(t, svc.Reload(ctx, ""))

	// New callers start a fresh load instead of joining the old one.
	tbl, err := svc.Table(ctx, ledger.TableSales)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	close(loader.release)
	<-done
	require.NotNil(t, first)
	assert.Equal(t, 3, first.Len(), "callers already waiting get the old load")

	tbl, err = svc.Table(ctx, ledger.TableSales)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len(), "the old load must not overwrite the reloaded table")
	assert.Equal(t, 2, loader.Calls())
}

func TestTableService_ReloadOneTableDuringLoad(t *testing.T) {
	ctx := context.Background()
	loader := newGatedLoader(salesFixture())
	store := cache.NewMemoryTableStore()
	svc := NewTableService(loader, store, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Table(ctx, ledger.TableSales)
		assert.NoError(t, err)
	}()
	<-loader.started

	require.NoError(t, svc.Reload(ctx, ledger.TableSales))
	close(loader.release)
	<-done

	_, ok, err := store.Get(ctx, ledger.TableSales)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTableService_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := newGatedLoader(cashbookFixture())
	svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Table(reqCtx, ledger.TableCashbook)
	}()
	<-loader.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Table(context.Background(), ledger.TableCashbook)
	}()

	cancel()
	close(loader.release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, loader.Calls())
}

func TestTableService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown table", func(t *testing.T) {
		svc := NewTableService(new(MockLoader), cache.NewMemoryTableStore(), nil)

		_, err := svc.Table(ctx, "inventory")
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		err = svc.Reload(ctx, "inventory")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("source failure", func(t *testing.T) {
		cause := errors.New("bucket unreachable")
		loader := new(MockLoader)
		loader.On("Load", mock.Anything, ledger.TablePurchase).Return(nil, cause)
		svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

		_, err := svc.Table(ctx, ledger.TablePurchase)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrSourceUnavailable))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("failed load is not cached", func(t *testing.T) {
		loader := new(MockLoader)
		loader.On("Load", mock.Anything, ledger.TableSales).Return(nil, errors.New("timeout")).Once()
		loader.On("Load", mock.Anything, ledger.TableSales).Return(salesFixture(), nil).Once()
		svc := NewTableService(loader, cache.NewMemoryTableStore(), nil)

		_, err := svc.Table(ctx, ledger.TableSales)
		require.Error(t, err)
		tbl, err := svc.Table(ctx, ledger.TableSales)
		require.NoError(t, err)
		assert.Equal(t, 3, tbl.Len())
	})
}

func TestTableService_Warm(t *testing.T) {
	ctx := context.Background()
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, ledger.TableSales).Return(salesFixture(), nil)
	loader.On("Load", mock.Anything, ledger.TableCashbook).Return(cashbookFixture(), nil)
	loader.On("Load", mock.Anything, ledger.TableBankbook).Return(bankbookFixture(), nil)
	loader.On("Load", mock.Anything, ledger.TablePurchase).Return(nil, errors.New("missing file"))
	store := cache.NewMemoryTableStore()
	svc := NewTableService(loader, store, nil)

	err := svc.Warm(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrSourceUnavailable))
	assert.Contains(t, err.Error(), ledger.TablePurchase)
	assert.Equal(t, 3, store.Len())
}
