package domain

import "github.com/shopspring/decimal"

// CategoryType decides which summary bucket a category's transactions land in.
type CategoryType string

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

// Well-known category names.
const (
	TransfersCategory     = "Transfers"
	UncategorizedCategory = "Uncategorized"
	GSTAccountName        = "GST Payment or Refund"
)

// AccountCategory is one row of the account catalog.
type AccountCategory struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Type     CategoryType    `json:"type" validate:"required,oneof=income expense"`
	GSTRatio decimal.Decimal `json:"gstRatio"` // default claim ratio, 0..1
	Order    int             `json:"order" validate:"gte=0"`
}
