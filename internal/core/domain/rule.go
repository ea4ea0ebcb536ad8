package domain

import "github.com/shopspring/decimal"

// Direction restricts a rule to money coming in or going out.
type Direction string

const (
	AnyDirection Direction = ""
	Inflow       Direction = "inflow"
	Outflow      Direction = "outflow"
)

// ClassificationRule maps matching transactions to a category.
// Every condition that is set must hold; an empty keyword list matches any payee.
// Amount bounds compare against the absolute amount. WholeWords makes each keyword
// match only whole words of the payee instead of any substring.
type ClassificationRule struct {
	Name       string           `json:"name"`
	Keywords   []string         `json:"keywords"`
	WholeWords bool             `json:"wholeWords,omitempty"`
	Direction  Direction        `json:"direction,omitempty"`
	MinAmount  *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount  *decimal.Decimal `json:"maxAmount,omitempty"`
	Category   string           `json:"category"`
}
