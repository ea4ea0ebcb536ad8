package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Transaction is one bank-statement line.
//
// Amount is the immutable fact copied from the bank file: positive is money in, negative money out.
// Category, GST ratio and GST amount can only change together through Assign, so the GST amount
// always agrees with (Amount, GSTRatio).
type Transaction struct {
	TransactionID string
	SessionID     string
	Date          time.Time
	Payee         string
	Code          string // bank particulars / code column, informational
	Amount        decimal.Decimal

	category  string
	gstRatio  decimal.Decimal
	gstAmount decimal.Decimal
}

// NewTransaction creates an unclassified transaction.
func NewTransaction(id, sessionID string, date time.Time, payee, code string, amount decimal.Decimal) Transaction {
	return Transaction{
		TransactionID: id,
		SessionID:     sessionID,
		Date:          date,
		Payee:         payee,
		Code:          code,
		Amount:        amount,
	}
}

// RestoreTransaction rebuilds a stored transaction, recomputing its GST amount.
func RestoreTransaction(t Transaction, category string, ratio, rate decimal.Decimal) (Transaction, error) {
	return t.Assign(category, ratio, rate)
}

// Assign returns a copy of t with the category and ratio set and GST recomputed at rate.
func (t Transaction) Assign(category string, ratio, rate decimal.Decimal) (Transaction, error) {
	if err := accounting.ValidateRatio(ratio); err != nil {
		return t, fmt.Errorf("%w: transaction %s: %v", apperrors.ErrValidation, t.TransactionID, err)
	}
	t.category = category
	t.gstRatio = ratio
	t.gstAmount = accounting.GSTComponent(t.Amount, rate, ratio)
	return t, nil
}

// Category is the catalog key the transaction is classified into.
func (t Transaction) Category() string { return t.category }

// GSTRatio is the claim ratio in effect for this transaction.
func (t Transaction) GSTRatio() decimal.Decimal { return t.gstRatio }

// GSTAmount is the derived GST component, same sign as Amount.
func (t Transaction) GSTAmount() decimal.Decimal { return t.gstAmount }

// ExclusiveAmount is Amount less its GST component.
func (t Transaction) ExclusiveAmount() decimal.Decimal {
	return accounting.Exclusive(t.Amount, t.gstAmount)
}

// IsInflow reports whether money came into the account.
func (t Transaction) IsInflow() bool { return t.Amount.IsPositive() }

type transactionJSON struct {
	TransactionID   string          `json:"id"`
	SessionID       string          `json:"sessionID"`
	Date            string          `json:"date"`
	Payee           string          `json:"payee"`
	Code            string          `json:"code,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	GSTRatio        decimal.Decimal `json:"gstRatio"`
	GSTAmount       decimal.Decimal `json:"gstAmount"`
	ExclusiveAmount decimal.Decimal `json:"exclusiveAmount"`
}

// MarshalJSON exposes the derived fields alongside the source fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		TransactionID:   t.TransactionID,
		SessionID:       t.SessionID,
		Date:            t.Date.Format(time.DateOnly),
		Payee:           t.Payee,
		Code:            t.Code,
		Amount:          t.Amount,
		Category:        t.category,
		GSTRatio:        t.gstRatio,
		GSTAmount:       t.gstAmount,
		ExclusiveAmount: t.ExclusiveAmount(),
	})
}
