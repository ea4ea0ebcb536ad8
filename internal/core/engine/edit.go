package engine

import (
	"fmt"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ApplyBulk moves the transactions with the given ids into category, resetting each one's ratio to
// the category default and recomputing its GST. It returns a new slice; txns is not modified.
//
// Unknown ids are ignored. A transaction already in category keeps its ratio, so a user override
// survives re-selecting the same category.
func (e *Engine) ApplyBulk(txns []domain.Transaction, ids []string, category string) ([]domain.Transaction, error) {
	if !e.catalog.Contains(category) {
		return nil, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, category)
	}
	selected := idSet(ids)

	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	for i, t := range out {
		if _, ok := selected[t.TransactionID]; !ok || t.Category() == category {
			continue
		}
		updated, err := e.assignDefault(t, category)
		if err != nil {
			return nil, err
		}
		out[i] = updated
	}
	return out, nil
}

// ApplyOne is ApplyBulk for a single transaction.
func (e *Engine) ApplyOne(txns []domain.Transaction, id, category string) ([]domain.Transaction, error) {
	return e.ApplyBulk(txns, []string{id}, category)
}

// ApplyRatio overrides the claim ratio of the selected transactions without changing their category.
func (e *Engine) ApplyRatio(txns []domain.Transaction, ids []string, ratio decimal.Decimal) ([]domain.Transaction, error) {
	if err := accounting.ValidateRatio(ratio); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	selected := idSet(ids)

	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	for i, t := range out {
		if _, ok := selected[t.TransactionID]; !ok {
			continue
		}
		updated, err := t.Assign(t.Category(), ratio, e.rate)
		if err != nil {
			return nil, err
		}
		out[i] = updated
	}
	return out, nil
}

// Reclassify runs the classifier over every transaction again, discarding manual categories
// and ratio overrides.
func (e *Engine) Reclassify(txns []domain.Transaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, len(txns))
	for i, t := range txns {
		updated, err := e.assignDefault(t, e.Classify(t.Payee, t.Amount))
		if err != nil {
			return nil, err
		}
		out[i] = updated
	}
	return out, nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
