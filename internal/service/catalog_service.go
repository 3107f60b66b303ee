package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/store"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantAlreadyExists = errors.New("variant already exists for this condition")
)

// CatalogService manages configurable products and their condition variants.
type CatalogService struct {
	logger            *log.Logger
	catalog           store.CatalogStore
	lowStockThreshold int
}

func NewCatalogService(logger *log.Logger, catalog store.CatalogStore, lowStockThreshold int) *CatalogService {
	return &CatalogService{
		logger:            logger,
		catalog:           catalog,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *CatalogService) CreateConfigurable(ctx context.Context, ean, name string) (models.ConfigurableProduct, error) {
	p, err := models.NewConfigurableProduct(ean, name)
	if err != nil {
		return models.ConfigurableProduct{}, err
	}
	existing, err := s.catalog.GetConfigurable(ctx, p.ID)
	if err != nil {
		return models.ConfigurableProduct{}, fmt.Errorf("failed to check for existing product: %w", err)
	}
	if existing != nil {
		return models.ConfigurableProduct{}, fmt.Errorf("%w: product %s already exists", models.ErrValidation, p.ID)
	}
	if err := s.catalog.SaveConfigurable(ctx, p); err != nil {
		return models.ConfigurableProduct{}, fmt.Errorf("failed to save configurable product: %w", err)
	}
	return p, nil
}

// AddVariant instantiates a condition variant of an existing configurable
// product. The variant starts with zero stock; stock moves through
// AdjustStock.
func (s *CatalogService) AddVariant(ctx context.Context, configurableID string, condition models.Condition, price decimal.Decimal) (models.SimpleProduct, error) {
	parent, err := s.catalog.GetConfigurable(ctx, configurableID)
	if err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to load configurable product: %w", err)
	}
	if parent == nil {
		return models.SimpleProduct{}, ErrProductNotFound
	}

	variant, err := models.InstantiateVariant(*parent, condition, price)
	if err != nil {
		return models.SimpleProduct{}, err
	}

	existing, err := s.catalog.GetVariant(ctx, variant.ID)
	if err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to check for existing variant: %w", err)
	}
	if existing != nil {
		return models.SimpleProduct{}, fmt.Errorf("%w: %s", ErrVariantAlreadyExists, variant.ID)
	}

	if err := s.catalog.SaveVariant(ctx, variant); err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to save variant: %w", err)
	}
	parent.Variants = append(parent.Variants, variant)
	if err := s.catalog.SaveConfigurable(ctx, *parent); err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to update parent product: %w", err)
	}
	return variant, nil
}

// AdjustStock moves a variant's stock count by delta. Stock can reach zero
// but never go below it.
func (s *CatalogService) AdjustStock(ctx context.Context, variantID string, delta int) (models.SimpleProduct, error) {
	variant, err := s.catalog.GetVariant(ctx, variantID)
	if err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to load variant: %w", err)
	}
	if variant == nil {
		return models.SimpleProduct{}, ErrProductNotFound
	}
	next := variant.Stock + delta
	if next < 0 {
		return models.SimpleProduct{}, fmt.Errorf("%w: stock for %s cannot go below zero (have %d, delta %d)",
			models.ErrValidation, variantID, variant.Stock, delta)
	}
	variant.Stock = next
	if err := s.catalog.SaveVariant(ctx, *variant); err != nil {
		return models.SimpleProduct{}, fmt.Errorf("failed to save variant: %w", err)
	}
	return *variant, nil
}

// ListConfigurables returns the catalog, optionally filtered by a
// case-insensitive name search.
func (s *CatalogService) ListConfigurables(ctx context.Context, search string) ([]models.ConfigurableProduct, error) {
	all, err := s.catalog.ListConfigurables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if search == "" {
		return all, nil
	}
	term := strings.ToLower(search)
	out := make([]models.ConfigurableProduct, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(p.EAN, search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) GetVariant(ctx context.Context, id string) (*models.SimpleProduct, error) {
	return s.catalog.GetVariant(ctx, id)
}

// LowStockVariants lists variants whose stock fell below the configured
// threshold, for the inventory alert view.
func (s *CatalogService) LowStockVariants(ctx context.Context) ([]models.SimpleProduct, error) {
	all, err := s.catalog.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	var out []models.SimpleProduct
	for _, v := range all {
		if v.Stock < s.lowStockThreshold {
			out = append(out, v)
		}
	}
	return out, nil
}
