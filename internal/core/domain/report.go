package domain

import "github.com/shopspring/decimal"

// SummaryItem is one category's totals within a bucket.
type SummaryItem struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	GST      decimal.Decimal `json:"gst"`
	GSTRatio decimal.Decimal `json:"gstRatio"` // ratio of the last transaction seen
	Count    int             `json:"count"`
}

// Summary holds the totals of the sales or the expenses bucket.
type Summary struct {
	Total decimal.Decimal `json:"total"`
	GST   decimal.Decimal `json:"gst"`
	Items []SummaryItem   `json:"items"` // sorted by category name
}

// Item returns the totals for a category, if present.
func (s Summary) Item(category string) (SummaryItem, bool) {
	for _, it := range s.Items {
		if it.Category == category {
			return it, true
		}
	}
	return SummaryItem{}, false
}

// JournalRowKind tags the role of a journal row.
type JournalRowKind string

const (
	RowAccount  JournalRowKind = "account"
	RowGST      JournalRowKind = "gst"
	RowBank     JournalRowKind = "bank"
	RowSpacer   JournalRowKind = "spacer"
	RowSubtotal JournalRowKind = "subtotal"
	RowTransfer JournalRowKind = "transfers"
	RowTotal    JournalRowKind = "total"
	RowCheck    JournalRowKind = "check"
)

// JournalEntry is a journal row with full-precision amounts.
// A nil side is a blank cell.
type JournalEntry struct {
	Account string
	Kind    JournalRowKind
	Debit   *decimal.Decimal
	Credit  *decimal.Decimal
}

// JournalRow is the flat, encoder-ready form of a journal row.
// Empty strings are blank cells.
type JournalRow struct {
	Account string `json:"account"`
	Debit   string `json:"debit"`
	Credit  string `json:"credit"`
}

// RatioWarning flags a category whose transactions carry different GST ratios.
type RatioWarning struct {
	Category string            `json:"category"`
	Ratios   []decimal.Decimal `json:"ratios"`
}

// Report is the derived result of aggregating a transaction set.
type Report struct {
	Sales       Summary         `json:"sales"`
	Expenses    Summary         `json:"expenses"`
	Entries     []JournalEntry  `json:"-"`
	Journal     []JournalRow    `json:"journal"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	GSTToPay    decimal.Decimal `json:"gstToPay"` // output GST less input GST; negative is a refund
	Excluded    []string        `json:"excluded,omitempty"`
	Warnings    []RatioWarning  `json:"warnings,omitempty"`
}
