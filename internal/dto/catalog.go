package dto

import (
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CategoryDTO is one catalog row on the wire.
type CategoryDTO struct {
	Name     string              `json:"name" binding:"required,max=100"`
	Type     domain.CategoryType `json:"type" binding:"required,oneof=income expense"`
	GSTRatio decimal.Decimal     `json:"gstRatio" binding:"gte=0,lte=1"`
	Order    *int                `json:"order" binding:"omitempty,gte=0"` // Optional, defaults to list position
}

// RuleDTO is one classification rule on the wire.
type RuleDTO struct {
	Name       string           `json:"name" binding:"max=100"`
	Keywords   []string         `json:"keywords" binding:"dive,max=200"`
	WholeWords bool             `json:"wholeWords"`
	Direction  domain.Direction `json:"direction" binding:"omitempty,oneof=inflow outflow"`
	MinAmount  *decimal.Decimal `json:"minAmount" binding:"omitempty,gte=0"`
	MaxAmount  *decimal.Decimal `json:"maxAmount" binding:"omitempty,gte=0"`
	Category   string           `json:"category" binding:"required,max=100"`
}

// SaveCatalogRequest replaces a user's catalog and rules.
type SaveCatalogRequest struct {
	Categories      []CategoryDTO `json:"categories" binding:"required,min=1,max=500,dive"`
	Rules           []RuleDTO     `json:"rules" binding:"max=2000,dive"`
	DefaultCategory string        `json:"defaultCategory"` // Optional, defaults to "Uncategorized"
}

// CatalogResponse defines the data returned for a catalog.
type CatalogResponse struct {
	Categories      []CategoryDTO `json:"categories"`
	Rules           []RuleDTO     `json:"rules"`
	DefaultCategory string        `json:"defaultCategory"`
}

// ToDefinition converts the request into the domain form.
func (r SaveCatalogRequest) ToDefinition() domain.CatalogDefinition {
	def := domain.CatalogDefinition{
		Categories:      make([]domain.AccountCategory, len(r.Categories)),
		Rules:           make([]domain.ClassificationRule, len(r.Rules)),
		DefaultCategory: r.DefaultCategory,
	}
	if def.DefaultCategory == "" {
		def.DefaultCategory = domain.UncategorizedCategory
	}
	for i, c := range r.Categories {
		order := i
		if c.Order != nil {
			order = *c.Order
		}
		def.Categories[i] = domain.AccountCategory{Name: c.Name, Type: c.Type, GSTRatio: c.GSTRatio, Order: order}
	}
	for i, rule := range r.Rules {
		def.Rules[i] = domain.ClassificationRule{
			Name:       rule.Name,
			Keywords:   rule.Keywords,
			WholeWords: rule.WholeWords,
			Direction:  rule.Direction,
			MinAmount:  rule.MinAmount,
			MaxAmount:  rule.MaxAmount,
			Category:   rule.Category,
		}
	}
	return def
}

// ToCatalogResponse converts a catalog definition to DTO.
func ToCatalogResponse(def *domain.CatalogDefinition) CatalogResponse {
	res := CatalogResponse{
		Categories:      make([]CategoryDTO, len(def.Categories)),
		Rules:           make([]RuleDTO, len(def.Rules)),
		DefaultCategory: def.DefaultCategory,
	}
	for i, c := range def.Categories {
		order := c.Order
		res.Categories[i] = CategoryDTO{Name: c.Name, Type: c.Type, GSTRatio: c.GSTRatio, Order: &order}
	}
	for i, r := range def.Rules {
		keywords := r.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		res.Rules[i] = RuleDTO{
			Name:       r.Name,
			Keywords:   keywords,
			WholeWords: r.WholeWords,
			Direction:  r.Direction,
			MinAmount:  r.MinAmount,
			MaxAmount:  r.MaxAmount,
			Category:   r.Category,
		}
	}
	return res
}
