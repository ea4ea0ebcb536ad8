// Package catalog provides the built-in NZ account catalog and loads custom catalogs from YAML.
package catalog

import (
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	full = decimal.NewFromInt(1)
	none = decimal.Zero
	half = decimal.NewFromFloat(0.5)
	// Private use share of a business vehicle; adjust per client in a custom catalog.
	motorVehicle = decimal.NewFromFloat(0.75)
)

// Default returns the built-in catalog for a small NZ GST-registered business.
func Default() domain.CatalogDefinition {
	return domain.CatalogDefinition{
		Categories:      defaultCategories(),
		Rules:           defaultRules(),
		DefaultCategory: domain.UncategorizedCategory,
	}
}

func defaultCategories() []domain.AccountCategory {
	rows := []struct {
		name  string
		typ   domain.CategoryType
		ratio decimal.Decimal
	}{
		{"Sales", domain.Income, full},
		{"Interest Income", domain.Income, none},
		{"Other Income", domain.Income, full},
		{"Cost of Goods Sold", domain.Expense, full},
		{"Advertising", domain.Expense, full},
		{"Bank Fees", domain.Expense, none},
		{"Entertainment", domain.Expense, half},
		{"Insurance", domain.Expense, full},
		{"Motor Vehicle Expenses", domain.Expense, motorVehicle},
		{"Office Supplies", domain.Expense, full},
		{"Rent", domain.Expense, full},
		{"Repairs & Maintenance", domain.Expense, full},
		{"Subscriptions", domain.Expense, full},
		{"Telephone & Internet", domain.Expense, full},
		{"Travel", domain.Expense, full},
		{"Utilities", domain.Expense, full},
		{"Wages", domain.Expense, none},
		{"Drawings", domain.Expense, none},
		{domain.GSTAccountName, domain.Expense, none},
		{domain.TransfersCategory, domain.Expense, none},
		{domain.UncategorizedCategory, domain.Expense, none},
	}

	out := make([]domain.AccountCategory, len(rows))
	for i, r := range rows {
		out[i] = domain.AccountCategory{Name: r.name, Type: r.typ, GSTRatio: r.ratio, Order: i}
	}
	return out
}

// defaultRules is evaluated top to bottom. More specific payees sit above broader ones
// ("Uber Eats" before "Uber", "Google Ads" before "Google").
func defaultRules() []domain.ClassificationRule {
	return []domain.ClassificationRule{
		{Name: "transfers", Keywords: []string{"transfer", "tfr", "internet banking own account"}, Category: domain.TransfersCategory},
		{Name: "ird", Keywords: []string{"inland revenue", "ird gst", "ird payment"}, Category: domain.GSTAccountName},
		{Name: "interest earned", Keywords: []string{"interest"}, Direction: domain.Inflow, Category: "Interest Income"},
		{Name: "bank fees", Keywords: []string{"account fee", "bank fee", "monthly fee", "service fee", "account charge", "overdrawn"}, Direction: domain.Outflow, Category: "Bank Fees"},
		{Name: "telco", Keywords: []string{"spark", "one nz", "vodafone", "2degrees", "skinny"}, WholeWords: true, Direction: domain.Outflow, Category: "Telephone & Internet"},
		{Name: "food and drink", Keywords: []string{"cafe", "restaurant", "uber eats", "eatery", "bakery"}, Direction: domain.Outflow, Category: "Entertainment"},
		{Name: "fuel", Keywords: []string{"z energy", "bp connect", "bp 2go"}, Direction: domain.Outflow, Category: "Motor Vehicle Expenses"},
		// short brand names collide with ordinary words ("mobile", "seagull")
		{Name: "fuel brands", Keywords: []string{"mobil", "caltex", "gull", "npd", "waitomo"}, WholeWords: true, Direction: domain.Outflow, Category: "Motor Vehicle Expenses"},
		{Name: "utilities", Keywords: []string{"mercury", "genesis", "contact energy", "meridian", "watercare", "trustpower"}, Direction: domain.Outflow, Category: "Utilities"},
		{Name: "travel", Keywords: []string{"air new zealand", "air nz", "jetstar", "uber", "interislander"}, Direction: domain.Outflow, Category: "Travel"},
		{Name: "insurance", Keywords: []string{"insurance", "ami ins", "tower ins"}, Direction: domain.Outflow, Category: "Insurance"},
		{Name: "rent", Keywords: []string{"rent payment", "office rent", "property management", "lease payment"}, Direction: domain.Outflow, Category: "Rent"},
		{Name: "advertising", Keywords: []string{"google ads", "facebook", "facebk", "meta platforms", "trade me ads"}, Direction: domain.Outflow, Category: "Advertising"},
		{Name: "software", Keywords: []string{"xero", "microsoft", "google", "adobe", "dropbox", "canva"}, Direction: domain.Outflow, Category: "Subscriptions"},
		{Name: "office", Keywords: []string{"warehouse stationery", "officemax", "noel leeming", "jb hi fi"}, Direction: domain.Outflow, Category: "Office Supplies"},
		{Name: "trade supplies", Keywords: []string{"bunnings", "mitre 10", "placemakers"}, Direction: domain.Outflow, Category: "Repairs & Maintenance"},
		{Name: "receipts", Direction: domain.Inflow, Category: "Sales"},
	}
}
