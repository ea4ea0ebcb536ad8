package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

type compiledRule struct {
	source   domain.ClassificationRule
	keywords []string
}

func compileRules(catalog *domain.Catalog, rules []domain.ClassificationRule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if !catalog.Contains(r.Category) {
			return nil, fmt.Errorf("%w: rule %s targets unknown category %q", apperrors.ErrConfiguration, label, r.Category)
		}
		switch r.Direction {
		case domain.AnyDirection, domain.Inflow, domain.Outflow:
		default:
			return nil, fmt.Errorf("%w: rule %s has unknown direction %q", apperrors.ErrConfiguration, label, r.Direction)
		}
		if r.MinAmount != nil && r.MaxAmount != nil && r.MinAmount.GreaterThan(*r.MaxAmount) {
			return nil, fmt.Errorf("%w: rule %s has min amount above max amount", apperrors.ErrConfiguration, label)
		}

		c := compiledRule{source: r}
		for _, kw := range r.Keywords {
			n := normalize(kw)
			if n == "" {
				continue
			}
			if r.WholeWords {
				n = " " + n + " "
			}
			c.keywords = append(c.keywords, n)
		}
		if len(r.Keywords) > 0 && len(c.keywords) == 0 {
			return nil, fmt.Errorf("%w: rule %s has only blank keywords", apperrors.ErrConfiguration, label)
		}
		out = append(out, c)
	}
	return out, nil
}

// Classify returns the category of the first rule matching payee and amount, in rule order.
// With no match it returns the catalog's default category.
func (e *Engine) Classify(payee string, amount decimal.Decimal) string {
	// padded so whole-word keywords also match at either end
	p := " " + normalize(payee) + " "
	for _, r := range e.rules {
		if r.matches(p, amount) {
			return r.source.Category
		}
	}
	return e.catalog.DefaultCategory()
}

func (r compiledRule) matches(payee string, amount decimal.Decimal) bool {
	switch r.source.Direction {
	case domain.Inflow:
		if !amount.IsPositive() {
			return false
		}
	case domain.Outflow:
		if !amount.IsNegative() {
			return false
		}
	}

	abs := amount.Abs()
	if r.source.MinAmount != nil && abs.LessThan(*r.source.MinAmount) {
		return false
	}
	if r.source.MaxAmount != nil && abs.GreaterThan(*r.source.MaxAmount) {
		return false
	}

	if len(r.keywords) == 0 {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(payee, kw) {
			return true
		}
	}
	return false
}

// normalize upper-cases s and collapses every run of non-alphanumerics into one space,
// so "Pak'n Save" and "PAK N SAVE" compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
