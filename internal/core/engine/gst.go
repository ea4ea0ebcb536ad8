package engine

import (
	"fmt"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ComputeGST returns the GST component of a GST-inclusive amount for the given claim ratio.
func (e *Engine) ComputeGST(amount, ratio decimal.Decimal) decimal.Decimal {
	return accounting.GSTComponent(amount, e.rate, ratio)
}

// LookupDefaultRatio returns the default claim ratio of a category.
func (e *Engine) LookupDefaultRatio(category string) (decimal.Decimal, bool) {
	return e.catalog.DefaultRatio(category)
}

// Prepare classifies a freshly ingested transaction.
// A known category supplied with the row is kept, with its ratio or the category default;
// otherwise the classifier picks the category.
func (e *Engine) Prepare(t domain.Transaction, category string, ratio *decimal.Decimal) (domain.Transaction, error) {
	if category == "" || !e.catalog.Contains(category) {
		category = e.Classify(t.Payee, t.Amount)
		ratio = nil
	}
	r, _ := e.catalog.DefaultRatio(category)
	if ratio != nil {
		r = *ratio
	}
	return t.Assign(category, r, e.rate)
}

// assignDefault moves t into category at the category's default ratio.
func (e *Engine) assignDefault(t domain.Transaction, category string) (domain.Transaction, error) {
	r, ok := e.catalog.DefaultRatio(category)
	if !ok {
		return t, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, category)
	}
	return t.Assign(category, r, e.rate)
}
