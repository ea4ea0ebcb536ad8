package dto

import (
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ImportTransactionRow is one already-parsed bank line. Category and ratio are optional;
// without a known category the classifier decides.
type ImportTransactionRow struct {
	Date     string           `json:"date" binding:"required,datetime=2006-01-02"`
	Payee    string           `json:"payee" binding:"max=500"`
	Code     string           `json:"code" binding:"max=100"`
	Amount   decimal.Decimal  `json:"amount"`
	Category string           `json:"category" binding:"max=100"`
	GSTRatio *decimal.Decimal `json:"gstRatio" binding:"omitempty,gte=0,lte=1"`
}

// ImportTransactionsRequest defines a JSON import of parsed rows.
type ImportTransactionsRequest struct {
	Rows []ImportTransactionRow `json:"rows" binding:"required,min=1,max=10000,dive"`
}

// ImportRowError reports a skipped input line.
type ImportRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResponse summarises an import.
type ImportResponse struct {
	Layout       string               `json:"layout,omitempty"`
	Imported     int                  `json:"imported"`
	Skipped      []ImportRowError     `json:"skipped"`
	Transactions []domain.Transaction `json:"transactions"`
}

// UpdateTransactionRequest defines the editable fields of a transaction.
// The amount is fixed by the bank statement and cannot be changed.
type UpdateTransactionRequest struct {
	Date     *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Payee    *string          `json:"payee" binding:"omitempty,max=500"`
	Code     *string          `json:"code" binding:"omitempty,max=100"`
	Category *string          `json:"category" binding:"omitempty,min=1,max=100"`
	GSTRatio *decimal.Decimal `json:"gstRatio" binding:"omitempty,gte=0,lte=1"`
}

// BulkCategoryRequest moves many transactions into one category.
type BulkCategoryRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,dive,required"`
	Category       string   `json:"category" binding:"required,max=100"`
}

// BulkRatioRequest overrides the GST claim ratio of many transactions.
type BulkRatioRequest struct {
	TransactionIDs []string        `json:"transactionIDs" binding:"required,dive,required"`
	GSTRatio       decimal.Decimal `json:"gstRatio" binding:"gte=0,lte=1"`
}

// ListTransactionsResponse wraps a session's working set.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// ToListTransactionsResponse wraps txns, never returning a null list.
func ToListTransactionsResponse(txns []domain.Transaction) ListTransactionsResponse {
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return ListTransactionsResponse{Transactions: txns, Count: len(txns)}
}
