package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Layout names the statement format a header was recognised as.
type Layout string

const (
	LayoutASB      Layout = "asb"
	LayoutBNZ      Layout = "bnz"
	LayoutANZ      Layout = "anz"
	LayoutWestpac  Layout = "westpac"
	LayoutKiwibank Layout = "kiwibank"
	LayoutGeneric  Layout = "generic"
)

// headerScanLimit bounds how many preamble lines are searched for the header.
const headerScanLimit = 30

// Column aliases, most specific first.
var (
	dateHeaders   = []string{"date", "transaction date", "posted date", "processed date", "trans date"}
	payeeHeaders  = []string{"payee", "other party", "op name", "details", "description", "memo/description", "narrative", "memo"}
	codeHeaders   = []string{"code", "particulars", "reference", "analysis code", "tp code", "tp ref"}
	amountHeaders = []string{"amount", "amount (nzd)", "value"}
	debitHeaders  = []string{"debit", "debits", "withdrawals", "withdrawal", "amount (debit)", "money out", "paid out"}
	creditHeaders = []string{"credit", "credits", "deposits", "deposit", "amount (credit)", "money in", "paid in"}
	categoryHdrs  = []string{"category", "account"}
	ratioHeaders  = []string{"gst ratio", "gstratio", "gst_ratio"}
)

type columns struct {
	layout   Layout
	date     int
	payee    []int
	code     []int
	amount   int
	debit    int
	credit   int
	category int
	ratio    int
}

func findHeader(records [][]string) (int, columns, bool) {
	limit := min(len(records), headerScanLimit)
	for i := 0; i < limit; i++ {
		if cols, ok := mapColumns(records[i]); ok {
			return i, cols, true
		}
	}
	return 0, columns{}, false
}

func mapColumns(header []string) (columns, bool) {
	names := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := names[h]; !seen && h != "" {
			names[h] = i
		}
	}
	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := names[a]; ok {
				return i
			}
		}
		return -1
	}
	findAll := func(aliases []string) []int {
		var out []int
		for _, a := range aliases {
			if i, ok := names[a]; ok {
				out = append(out, i)
			}
		}
		return out
	}

	c := columns{
		date:     find(dateHeaders),
		payee:    findAll(payeeHeaders),
		code:     findAll(codeHeaders),
		amount:   find(amountHeaders),
		debit:    find(debitHeaders),
		credit:   find(creditHeaders),
		category: find(categoryHdrs),
		ratio:    find(ratioHeaders),
	}
	if c.date < 0 || len(c.payee) == 0 {
		return columns{}, false
	}
	if c.amount < 0 && (c.debit < 0 || c.credit < 0) {
		return columns{}, false
	}
	c.layout = detectLayout(names)
	return c, true
}

func detectLayout(names map[string]int) Layout {
	has := func(h string) bool {
		_, ok := names[h]
		return ok
	}
	switch {
	case has("unique id"):
		return LayoutASB
	case has("op name") || has("tp ref"):
		return LayoutKiwibank
	case has("other party"):
		return LayoutWestpac
	case has("foreigncurrencyamount") || (has("type") && has("details")):
		return LayoutANZ
	case has("tran type") && has("particulars"):
		return LayoutBNZ
	default:
		return LayoutGeneric
	}
}

func cellAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// firstOf returns the first non-empty cell among the candidate columns.
func firstOf(rec []string, idx []int) string {
	for _, i := range idx {
		if v := cellAt(rec, i); v != "" {
			return v
		}
	}
	return ""
}

func (c columns) row(rec []string) (Row, error) {
	date, err := parseDate(cellAt(rec, c.date))
	if err != nil {
		return Row{}, err
	}

	amount, err := c.amountOf(rec)
	if err != nil {
		return Row{}, err
	}

	row := Row{
		Date:     date,
		Payee:    firstOf(rec, c.payee),
		Code:     firstOf(rec, c.code),
		Amount:   amount,
		Category: cellAt(rec, c.category),
	}
	if raw := cellAt(rec, c.ratio); raw != "" {
		r, err := decimal.NewFromString(raw)
		if err != nil {
			return Row{}, fmt.Errorf("invalid gst ratio %q", raw)
		}
		row.GSTRatio = &r
	}
	return row, nil
}

func (c columns) amountOf(rec []string) (decimal.Decimal, error) {
	if c.amount >= 0 {
		if raw := cellAt(rec, c.amount); raw != "" || c.debit < 0 {
			return parseAmount(raw)
		}
	}

	debitRaw, creditRaw := cellAt(rec, c.debit), cellAt(rec, c.credit)
	if debitRaw == "" && creditRaw == "" {
		return decimal.Zero, errors.New("no amount")
	}
	total := decimal.Zero
	if creditRaw != "" {
		credit, err := parseAmount(creditRaw)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(credit.Abs())
	}
	if debitRaw != "" {
		debit, err := parseAmount(debitRaw)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Sub(debit.Abs())
	}
	return total, nil
}
