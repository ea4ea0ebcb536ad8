package catalog

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type fileCategory struct {
	Name     string `mapstructure:"name" validate:"required,max=100"`
	Type     string `mapstructure:"type" validate:"required,oneof=income expense"`
	GSTRatio string `mapstructure:"gst_ratio" validate:"required,numeric"`
	Order    *int   `mapstructure:"order" validate:"omitempty,gte=0"`
}

type fileRule struct {
	Name       string   `mapstructure:"name" validate:"max=100"`
	Keywords   []string `mapstructure:"keywords" validate:"dive,max=200"`
	WholeWords bool     `mapstructure:"whole_words"`
	Direction  string   `mapstructure:"direction" validate:"omitempty,oneof=any inflow outflow"`
	MinAmount  string   `mapstructure:"min_amount" validate:"omitempty,numeric"`
	MaxAmount  string   `mapstructure:"max_amount" validate:"omitempty,numeric"`
	Category   string   `mapstructure:"category" validate:"required"`
}

type file struct {
	Categories      []fileCategory `mapstructure:"categories" validate:"required,min=1,dive"`
	Rules           []fileRule     `mapstructure:"rules" validate:"dive"`
	DefaultCategory string         `mapstructure:"default_category"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a catalog definition from a YAML (or JSON/TOML, by extension) file.
func Load(path string) (domain.CatalogDefinition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return domain.CatalogDefinition{}, fmt.Errorf("%w: reading catalog file %s: %v", apperrors.ErrConfiguration, path, err)
	}
	return decode(v)
}

// Parse reads a YAML catalog definition from r.
func Parse(r io.Reader) (domain.CatalogDefinition, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return domain.CatalogDefinition{}, fmt.Errorf("%w: reading catalog: %v", apperrors.ErrConfiguration, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (domain.CatalogDefinition, error) {
	var f file
	if err := v.Unmarshal(&f); err != nil {
		return domain.CatalogDefinition{}, fmt.Errorf("%w: decoding catalog: %v", apperrors.ErrConfiguration, err)
	}
	if err := validate.Struct(f); err != nil {
		return domain.CatalogDefinition{}, fmt.Errorf("%w: %s", apperrors.ErrConfiguration, describe(err))
	}

	def := domain.CatalogDefinition{DefaultCategory: strings.TrimSpace(f.DefaultCategory)}
	if def.DefaultCategory == "" {
		def.DefaultCategory = domain.UncategorizedCategory
	}

	for i, fc := range f.Categories {
		ratio, err := decimal.NewFromString(fc.GSTRatio)
		if err != nil {
			return domain.CatalogDefinition{}, fmt.Errorf("%w: category %q: bad gst_ratio %q", apperrors.ErrConfiguration, fc.Name, fc.GSTRatio)
		}
		order := i
		if fc.Order != nil {
			order = *fc.Order
		}
		def.Categories = append(def.Categories, domain.AccountCategory{
			Name:     strings.TrimSpace(fc.Name),
			Type:     domain.CategoryType(fc.Type),
			GSTRatio: ratio,
			Order:    order,
		})
	}

	for _, fr := range f.Rules {
		rule := domain.ClassificationRule{
			Name:       fr.Name,
			Keywords:   fr.Keywords,
			WholeWords: fr.WholeWords,
			Direction:  domain.Direction(fr.Direction),
			Category:   strings.TrimSpace(fr.Category),
		}
		if rule.Direction == "any" {
			rule.Direction = domain.AnyDirection
		}
		var err error
		if rule.MinAmount, err = optionalAmount(fr.MinAmount); err != nil {
			return domain.CatalogDefinition{}, fmt.Errorf("%w: rule %q: min_amount: %v", apperrors.ErrConfiguration, fr.Name, err)
		}
		if rule.MaxAmount, err = optionalAmount(fr.MaxAmount); err != nil {
			return domain.CatalogDefinition{}, fmt.Errorf("%w: rule %q: max_amount: %v", apperrors.ErrConfiguration, fr.Name, err)
		}
		def.Rules = append(def.Rules, rule)
	}

	if _, err := def.Catalog(); err != nil {
		return domain.CatalogDefinition{}, err
	}
	return def, nil
}

func optionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// describe turns validator errors into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
