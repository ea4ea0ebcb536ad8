// Package engine classifies bank transactions, computes their GST and rolls them up into a
// balanced GST journal.
//
// An Engine is immutable once built. Every method is a pure function of its arguments and the
// engine's catalog, rules and rate: no locking, no I/O. Callers serialise concurrent edits.
package engine

import (
	"fmt"
	"strings"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// DefaultBankAccount names the journal row holding the cash leg of the period.
const DefaultBankAccount = "Bank"

// Engine bundles the configuration one categorization pass runs against.
type Engine struct {
	catalog     *domain.Catalog
	rules       []compiledRule
	rate        decimal.Decimal
	bankAccount string
}

// Option configures an Engine.
type Option func(*Engine)

// WithBankAccountName overrides the name of the cash leg row.
func WithBankAccountName(name string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(name) != "" {
			e.bankAccount = name
		}
	}
}

// New validates rules against the catalog and builds an engine for the given statutory rate.
func New(catalog *domain.Catalog, rules []domain.ClassificationRule, rate decimal.Decimal, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", apperrors.ErrConfiguration)
	}
	if err := accounting.ValidateRate(rate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}

	compiled, err := compileRules(catalog, rules)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:     catalog,
		rules:       compiled,
		rate:        rate,
		bankAccount: DefaultBankAccount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *domain.Catalog { return e.catalog }

// Rate returns the statutory GST rate.
func (e *Engine) Rate() decimal.Decimal { return e.rate }

// Rules returns a copy of the ordered rule list.
func (e *Engine) Rules() []domain.ClassificationRule {
	out := make([]domain.ClassificationRule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.source
	}
	return out
}
