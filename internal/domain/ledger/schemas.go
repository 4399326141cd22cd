package ledger

import "sort"

// Logical source table names.
const (
	TableSales    = "sales"
	TableCashbook = "cashbook"
	TableBankbook = "bankbook"
	TablePurchase = "purchase"
)

// Canonical column names shared by several schemas.
const (
	ColDate            = "date"
	ColCategory        = "category"
	ColProductName     = "product_name"
	ColCustomerName    = "customer_name"
	ColSoldBy          = "sold_by"
	ColQuantity        = "quantity"
	ColTotalAmount     = "total_amount"
	ColPaymentMethod   = "payment_method"
	ColPaymentStatus   = "payment_status"
	ColVoucherNo       = "voucher_no"
	ColDescription     = "description"
	ColName            = "name"
	ColPaymentCategory = "payment_category"
	ColReference       = "reference"
	ColCashIn          = "cash_in"
	ColCashOut         = "cash_out"
	ColBalance         = "balance"
	ColCategoryGroup   = "category_group"
	ColFundSource      = "fund_source"
	ColDeposit         = "deposit_amount"
	ColWithdrawal      = "withdrawal_amount"
	ColSupplierName    = "supplier_name"
	ColProductCategory = "product_category"
	ColPurchaseRate    = "purchase_rate"
	ColDiscount        = "discount"
	ColAmount          = "amount"
	ColPayable         = "payable"
	ColReceivable      = "receivable"
	ColOutstanding     = "outstanding"
)

// Uncategorized is the cashbook category default.
const Uncategorized = "Uncategorized"

func textCol(name string, aliases ...string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindText, Aliases: aliases}
}

func numericCol(name string, aliases ...string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindNumeric, Aliases: aliases}
}

func dateCol(name string, layouts []string, aliases ...string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindDate, Layouts: layouts, Aliases: aliases}
}

// SalesSchema is the sales register.
var SalesSchema = Schema{
	Name: TableSales,
	Columns: []ColumnSpec{
		dateCol(ColDate, nil),
		textCol(ColCategory),
		textCol(ColProductName),
		textCol(ColCustomerName),
		textCol(ColSoldBy, "seller", "sales_person"),
		numericCol(ColQuantity, "qty"),
		numericCol(ColTotalAmount, "total", "amount"),
		textCol(ColPaymentMethod),
		textCol(ColPaymentStatus),
	},
}

// CashbookSchema is the cashbook. balance and category_group are derived.
var CashbookSchema = Schema{
	Name: TableCashbook,
	Columns: []ColumnSpec{
		dateCol(ColDate, nil),
		textCol(ColVoucherNo, "vouchar_no"),
		textCol(ColDescription),
		textCol(ColName),
		{Name: ColPaymentCategory, Kind: KindText, Default: Text(Uncategorized), Aliases: []string{"payment_cetagory"}},
		textCol(ColReference),
		numericCol(ColCashIn),
		numericCol(ColCashOut),
	},
	Derived: []DerivedColumn{
		{
			Name: ColBalance,
			Kind: KindNumeric,
			Compute: func(get Getter) Value {
				return Number(get(ColCashIn).Decimal().Sub(get(ColCashOut).Decimal()))
			},
		},
		{
			Name: ColCategoryGroup,
			Kind: KindText,
			Compute: func(get Getter) Value {
				return Text(string(ClassifyCategory(get(ColPaymentCategory).String())))
			},
		},
	},
}

// BankbookSchema is the bank ledger. balance is the running balance as
// recorded and is never recomputed.
var BankbookSchema = Schema{
	Name: TableBankbook,
	Columns: []ColumnSpec{
		dateCol(ColDate, nil),
		textCol(ColFundSource),
		textCol(ColPaymentCategory, "payment_cetagory"),
		numericCol(ColDeposit, "cash_in", "deposit", "deposits"),
		numericCol(ColWithdrawal, "cash_out", "withdrawal", "withdrawals"),
		numericCol(ColBalance),
	},
}

// PurchaseSchema is the purchase and supplier liability ledger.
// outstanding and payment_status are derived.
var PurchaseSchema = Schema{
	Name: TablePurchase,
	Columns: []ColumnSpec{
		dateCol(ColDate, []string{"02-01-2006", "2-1-2006"}),
		textCol(ColVoucherNo, "vouchar_no"),
		textCol(ColSupplierName),
		textCol(ColProductName),
		textCol(ColProductCategory),
		textCol(ColPaymentCategory, "payment_cetagory"),
		numericCol(ColPurchaseRate),
		numericCol(ColDiscount),
		numericCol(ColAmount),
		numericCol(ColPayable),
		numericCol(ColReceivable, "receivedable", "received"),
	},
	Derived: []DerivedColumn{
		{
			Name: ColOutstanding,
			Kind: KindNumeric,
			Compute: func(get Getter) Value {
				return Number(get(ColPayable).Decimal().Sub(get(ColReceivable).Decimal()))
			},
		},
		{
			Name: ColPaymentStatus,
			Kind: KindText,
			Compute: func(get Getter) Value {
				return Text(string(ClassifyOutstanding(get(ColOutstanding).Decimal())))
			},
		},
	},
}

var schemas = map[string]Schema{
	TableSales:    SalesSchema,
	TableCashbook: CashbookSchema,
	TableBankbook: BankbookSchema,
	TablePurchase: PurchaseSchema,
}

// SchemaFor returns the schema of a logical table.
func SchemaFor(name string) (Schema, bool) {
	s, ok := schemas[name]
	return s, ok
}

// TableNames lists the logical tables in sorted order.
func TableNames() []string {
	names := make([]string, 0, len(schemas))
	for n := range schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
