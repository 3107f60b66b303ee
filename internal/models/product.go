package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Condition is the physical state of a sellable product. Only "new" items
// carry VAT; every used grade sells under the margin scheme at 0%.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionPerfect Condition = "perfect"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

// Reference suffixes and customer-facing labels are part of the product id
// contract (references like "0711719346005-parfait" are printed on labels
// and receipts), so they stay French regardless of UI locale.
var conditionSuffixes = map[Condition]string{
	ConditionNew:     "neuf",
	ConditionPerfect: "parfait",
	ConditionGood:    "bon",
	ConditionFair:    "correct",
}

var conditionLabels = map[Condition]string{
	ConditionNew:     "Neuf",
	ConditionPerfect: "Occasion parfait état",
	ConditionGood:    "Occasion bon état",
	ConditionFair:    "Occasion état correct",
}

func (c Condition) Valid() bool {
	_, ok := conditionSuffixes[c]
	return ok
}

// Suffix panics on a condition outside the enum: that is a programming
// error, not user input, and must not reach the model layer.
func (c Condition) Suffix() string {
	s, ok := conditionSuffixes[c]
	if !ok {
		panic(fmt.Sprintf("invariant violation: unknown product condition %q", c))
	}
	return s
}

func (c Condition) Label() string {
	l, ok := conditionLabels[c]
	if !ok {
		panic(fmt.Sprintf("invariant violation: unknown product condition %q", c))
	}
	return l
}

var (
	vatRateNew  = decimal.NewFromInt(20)
	vatRateUsed = decimal.Zero
)

// VATRate is total over the condition enum: 20 for new, 0 for any used grade.
func VATRate(c Condition) decimal.Decimal {
	if c == ConditionNew {
		return vatRateNew
	}
	return vatRateUsed
}

// ProductReference derives the catalog identity for an EAN. A configurable
// product is identified by the bare EAN; a condition-specific variant appends
// the condition suffix, so the same (EAN, condition) pair always maps to the
// same catalog entry.
func ProductReference(ean string, condition ...Condition) string {
	if len(condition) == 0 {
		return ean
	}
	return ean + "-" + condition[0].Suffix()
}

// ProductKind discriminates the two product variants.
type ProductKind string

const (
	KindConfigurable ProductKind = "configurable"
	KindSimple       ProductKind = "simple"
)

// Product is the tagged sum over configurable and simple products. The two
// implementations below are the only ones; call sites dispatch with type
// switches.
type Product interface {
	Reference() string
	DisplayName() string
	Kind() ProductKind
}

// ConfigurableProduct is a catalog entry independent of physical condition.
// It owns its simple variants; each variant points back via ParentID.
type ConfigurableProduct struct {
	ID       string          `json:"id"`
	EAN      string          `json:"ean"`
	Name     string          `json:"name"`
	Variants []SimpleProduct `json:"variants"`
}

func (p ConfigurableProduct) Reference() string   { return p.ID }
func (p ConfigurableProduct) DisplayName() string { return p.Name }
func (p ConfigurableProduct) Kind() ProductKind   { return KindConfigurable }

// SimpleProduct is a condition-specific, priced, stockable variant.
type SimpleProduct struct {
	ID        string          `json:"id"`
	EAN       string          `json:"ean"`
	Name      string          `json:"name"`
	Condition Condition       `json:"condition"`
	Price     decimal.Decimal `json:"price"`
	VAT       decimal.Decimal `json:"vat"`
	Stock     int             `json:"stock"`
	ParentID  string          `json:"parent_id,omitempty"`
}

func (p SimpleProduct) Reference() string   { return p.ID }
func (p SimpleProduct) DisplayName() string { return p.Name }
func (p SimpleProduct) Kind() ProductKind   { return KindSimple }

// NewConfigurableProduct builds a configurable catalog entry identified by
// its EAN, with no variants yet.
func NewConfigurableProduct(ean, name string) (ConfigurableProduct, error) {
	if ean == "" {
		return ConfigurableProduct{}, fmt.Errorf("%w: configurable product requires an EAN", ErrValidation)
	}
	if name == "" {
		return ConfigurableProduct{}, fmt.Errorf("%w: configurable product requires a name", ErrValidation)
	}
	return ConfigurableProduct{
		ID:   ProductReference(ean),
		EAN:  ean,
		Name: name,
	}, nil
}

// InstantiateVariant builds the simple variant of a configurable product for
// a given condition and price. The id is derived from (EAN, condition), VAT
// from the condition, stock starts at zero: stock moves only through the
// catalog's stock operations.
func InstantiateVariant(parent ConfigurableProduct, condition Condition, price decimal.Decimal) (SimpleProduct, error) {
	if !condition.Valid() {
		return SimpleProduct{}, fmt.Errorf("%w: unknown condition %q", ErrValidation, condition)
	}
	if price.IsNegative() {
		return SimpleProduct{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return SimpleProduct{
		ID:        ProductReference(parent.EAN, condition),
		EAN:       parent.EAN,
		Name:      parent.Name,
		Condition: condition,
		Price:     price,
		VAT:       VATRate(condition),
		Stock:     0,
		ParentID:  parent.ID,
	}, nil
}
