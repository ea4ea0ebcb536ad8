package engine

import (
	"sort"

	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// bucket accumulates the sales or expenses side.
type bucket struct {
	total decimal.Decimal
	gst   decimal.Decimal
	items map[string]*domain.SummaryItem
}

func newBucket() *bucket {
	return &bucket{items: make(map[string]*domain.SummaryItem)}
}

func (b *bucket) add(t domain.Transaction) {
	b.total = b.total.Add(t.Amount)
	b.gst = b.gst.Add(t.GSTAmount())

	it, ok := b.items[t.Category()]
	if !ok {
		it = &domain.SummaryItem{Category: t.Category()}
		b.items[t.Category()] = it
	}
	it.Total = it.Total.Add(t.Amount)
	it.GST = it.GST.Add(t.GSTAmount())
	it.GSTRatio = t.GSTRatio()
	it.Count++
}

// sorted returns items ordered by category name.
func (b *bucket) sorted() []domain.SummaryItem {
	out := make([]domain.SummaryItem, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func (b *bucket) summary() domain.Summary {
	return domain.Summary{Total: b.total, GST: b.gst, Items: b.sorted()}
}

// Aggregate rolls a transaction set up into sales and expense summaries and a balanced journal.
//
// Transactions whose category is not in the catalog are left out of every total and listed in
// Report.Excluded. The returned error is non-nil only when the journal fails to balance, which
// means the aggregation itself is wrong.
func (e *Engine) Aggregate(txns []domain.Transaction) (domain.Report, error) {
	sales, expenses := newBucket(), newBucket()
	ratios := make(map[string][]decimal.Decimal)
	var excluded []string

	for _, t := range txns {
		cat, ok := e.catalog.Lookup(t.Category())
		if !ok {
			excluded = append(excluded, t.TransactionID)
			continue
		}

		target := expenses
		if t.Category() == domain.TransfersCategory {
			if t.Amount.IsPositive() {
				target = sales
			}
		} else if cat.Type == domain.Income {
			target = sales
		}
		target.add(t)
		ratios[t.Category()] = appendDistinct(ratios[t.Category()], t.GSTRatio())
	}

	report := domain.Report{
		Sales:    sales.summary(),
		Expenses: expenses.summary(),
		Excluded: excluded,
		Warnings: ratioWarnings(ratios),
	}
	e.buildJournal(&report)

	if err := accounting.ValidateBalance(report.TotalDebit, report.TotalCredit); err != nil {
		return report, err
	}
	return report, nil
}

type orderedEntry struct {
	domain.JournalEntry
	order int
}

func (e *Engine) buildJournal(r *domain.Report) {
	var (
		body        []orderedEntry
		salesGST    = decimal.Zero
		expensesGST = decimal.Zero
		cash        = decimal.Zero
	)
	add := func(account string, kind domain.JournalRowKind, debit, credit *decimal.Decimal) {
		body = append(body, orderedEntry{
			JournalEntry: domain.JournalEntry{Account: account, Kind: kind, Debit: debit, Credit: credit},
			order:        e.catalog.Order(account),
		})
	}

	for _, it := range r.Sales.Items {
		if it.Category == domain.TransfersCategory {
			continue
		}
		add(it.Category, domain.RowAccount, nil, ptr(it.Total.Sub(it.GST)))
		salesGST = salesGST.Add(it.GST)
		cash = cash.Add(it.Total)
	}
	for _, it := range r.Expenses.Items {
		if it.Category == domain.TransfersCategory {
			continue
		}
		add(it.Category, domain.RowAccount, ptr(it.Total.Sub(it.GST).Neg()), nil)
		expensesGST = expensesGST.Add(it.GST)
		cash = cash.Add(it.Total)
	}

	// Input GST (claimable on expenses) is a debit, output GST (owed on sales) a credit.
	// A negative leg, from refunds outweighing purchases or sales, moves to the other side.
	inputGST := expensesGST.Neg()
	switch {
	case inputGST.IsPositive():
		add(domain.GSTAccountName, domain.RowGST, ptr(inputGST), nil)
	case inputGST.IsNegative():
		add(domain.GSTAccountName, domain.RowGST, nil, ptr(inputGST.Neg()))
	}
	switch {
	case salesGST.IsPositive():
		add(domain.GSTAccountName, domain.RowGST, nil, ptr(salesGST))
	case salesGST.IsNegative():
		add(domain.GSTAccountName, domain.RowGST, ptr(salesGST.Neg()), nil)
	}

	sort.SliceStable(body, func(i, j int) bool {
		if body[i].order != body[j].order {
			return body[i].order < body[j].order
		}
		return body[i].Account < body[j].Account
	})

	var transferCredit, transferDebit decimal.Decimal
	if it, ok := r.Sales.Item(domain.TransfersCategory); ok {
		transferCredit = it.Total.Sub(it.GST)
	}
	if it, ok := r.Expenses.Item(domain.TransfersCategory); ok {
		transferDebit = it.Total.Sub(it.GST).Neg()
	}
	netTransfer := transferCredit.Sub(transferDebit)

	// The cash leg: every included amount moved through the bank, transfers at their exclusive value.
	cash = cash.Add(netTransfer)
	var bankRow *orderedEntry
	switch {
	case cash.IsPositive():
		bankRow = &orderedEntry{JournalEntry: domain.JournalEntry{Account: e.bankAccount, Kind: domain.RowBank, Debit: ptr(cash)}}
	case cash.IsNegative():
		bankRow = &orderedEntry{JournalEntry: domain.JournalEntry{Account: e.bankAccount, Kind: domain.RowBank, Credit: ptr(cash.Neg())}}
	}
	if bankRow != nil {
		body = append(body, *bankRow)
	}

	subtotalDebit, subtotalCredit := decimal.Zero, decimal.Zero
	entries := make([]domain.JournalEntry, 0, len(body)+5)
	for _, b := range body {
		if b.Debit != nil {
			subtotalDebit = subtotalDebit.Add(*b.Debit)
		}
		if b.Credit != nil {
			subtotalCredit = subtotalCredit.Add(*b.Credit)
		}
		entries = append(entries, b.JournalEntry)
	}

	finalTransferDebit, finalTransferCredit := decimal.Zero, decimal.Zero
	if netTransfer.IsNegative() {
		finalTransferDebit = netTransfer.Neg()
	} else {
		finalTransferCredit = netTransfer
	}
	totalDebit := subtotalDebit.Add(finalTransferDebit)
	totalCredit := subtotalCredit.Add(finalTransferCredit)

	entries = append(entries,
		domain.JournalEntry{Kind: domain.RowSpacer},
		domain.JournalEntry{Account: "Subtotal", Kind: domain.RowSubtotal, Debit: ptr(subtotalDebit), Credit: ptr(subtotalCredit)},
		domain.JournalEntry{Account: domain.TransfersCategory, Kind: domain.RowTransfer, Debit: ptr(finalTransferDebit), Credit: ptr(finalTransferCredit)},
		domain.JournalEntry{Account: "Total", Kind: domain.RowTotal, Debit: ptr(totalDebit), Credit: ptr(totalCredit)},
		domain.JournalEntry{Kind: domain.RowCheck, Debit: ptr(totalDebit.Sub(totalCredit)), Credit: ptr(totalCredit.Sub(totalDebit))},
	)

	r.Entries = entries
	r.Journal = Rows(entries)
	r.TotalDebit = totalDebit
	r.TotalCredit = totalCredit
	r.GSTToPay = salesGST.Add(expensesGST)
}

// Rows flattens journal entries into encoder-ready string cells, rounding to cents.
func Rows(entries []domain.JournalEntry) []domain.JournalRow {
	rows := make([]domain.JournalRow, 0, len(entries))
	for _, en := range entries {
		row := domain.JournalRow{Account: en.Account}
		switch en.Kind {
		case domain.RowSpacer:
		case domain.RowTransfer:
			row.Debit = dashIfZero(en.Debit)
			row.Credit = dashIfZero(en.Credit)
		case domain.RowCheck:
			row.Debit = checkCell(en.Debit)
			row.Credit = checkCell(en.Credit)
		default:
			row.Debit = cell(en.Debit)
			row.Credit = cell(en.Credit)
		}
		rows = append(rows, row)
	}
	return rows
}

func cell(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return accounting.FormatMoney(*v)
}

func dashIfZero(v *decimal.Decimal) string {
	if v == nil || accounting.RoundMoney(*v).IsZero() {
		return "-"
	}
	return accounting.FormatMoney(*v)
}

// checkCell shows how far one side exceeds the other; never negative.
func checkCell(v *decimal.Decimal) string {
	if v == nil || !accounting.RoundMoney(*v).IsPositive() {
		return accounting.FormatMoney(decimal.Zero)
	}
	return accounting.FormatMoney(*v)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func appendDistinct(list []decimal.Decimal, v decimal.Decimal) []decimal.Decimal {
	for _, x := range list {
		if x.Equal(v) {
			return list
		}
	}
	return append(list, v)
}

func ratioWarnings(ratios map[string][]decimal.Decimal) []domain.RatioWarning {
	var out []domain.RatioWarning
	for category, rs := range ratios {
		if len(rs) > 1 {
			out = append(out, domain.RatioWarning{Category: category, Ratios: rs})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
