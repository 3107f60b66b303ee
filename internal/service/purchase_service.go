package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/store"
)

// PurchaseService turns a captured seller plus entered line items into an
// auditable purchase record, and feeds the acquired goods back into the
// catalog.
type PurchaseService struct {
	logger    *log.Logger
	purchases store.PurchaseStore
	catalog   store.CatalogStore
}

func NewPurchaseService(logger *log.Logger, purchases store.PurchaseStore, catalog store.CatalogStore) *PurchaseService {
	return &PurchaseService{
		logger:    logger,
		purchases: purchases,
		catalog:   catalog,
	}
}

// CreatePurchase validates the intake and persists the immutable record.
// Catalog minting of the acquired goods is best-effort: the signed purchase
// record is the legally required artifact and is never rolled back because
// a catalog write failed.
func (s *PurchaseService) CreatePurchase(ctx context.Context, seller models.Seller, lines []models.PurchaseLineItem, method models.PaymentMethod) (models.Purchase, error) {
	if seller.ID == "" {
		seller.ID = uuid.NewString()
	}
	purchase, err := models.NewPurchase(uuid.NewString(), time.Now().UTC(), seller, lines, method)
	if err != nil {
		return models.Purchase{}, err
	}
	if err := s.purchases.SavePurchase(ctx, purchase); err != nil {
		return models.Purchase{}, fmt.Errorf("failed to save purchase: %w", err)
	}

	if err := s.mintVariants(ctx, purchase); err != nil {
		s.logger.Printf("Warning: purchase %s saved but catalog update failed: %v", purchase.ID, err)
	}

	return purchase, nil
}

// mintVariants creates or restocks the condition variants for every intake
// line that carries an EAN. Lines without an EAN stay off-catalog until they
// are labelled by hand.
func (s *PurchaseService) mintVariants(ctx context.Context, purchase models.Purchase) error {
	for _, line := range purchase.Lines {
		if line.EAN == "" {
			continue
		}

		parentID := models.ProductReference(line.EAN)
		parent, err := s.catalog.GetConfigurable(ctx, parentID)
		if err != nil {
			return fmt.Errorf("failed to load configurable %s: %w", parentID, err)
		}
		if parent == nil {
			created, err := models.NewConfigurableProduct(line.EAN, line.Name)
			if err != nil {
				return err
			}
			if err := s.catalog.SaveConfigurable(ctx, created); err != nil {
				return fmt.Errorf("failed to save configurable %s: %w", created.ID, err)
			}
			parent = &created
		}

		variantID := models.ProductReference(line.EAN, line.Condition)
		variant, err := s.catalog.GetVariant(ctx, variantID)
		if err != nil {
			return fmt.Errorf("failed to load variant %s: %w", variantID, err)
		}
		if variant == nil {
			minted, err := models.InstantiateVariant(*parent, line.Condition, line.EstimatedResalePrice)
			if err != nil {
				return err
			}
			variant = &minted
			parent.Variants = append(parent.Variants, minted)
			if err := s.catalog.SaveConfigurable(ctx, *parent); err != nil {
				return fmt.Errorf("failed to update parent %s: %w", parent.ID, err)
			}
		}

		variant.Stock += line.Quantity
		if err := s.catalog.SaveVariant(ctx, *variant); err != nil {
			return fmt.Errorf("failed to save variant %s: %w", variant.ID, err)
		}
	}
	return nil
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	purchases, err := s.purchases.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	return s.purchases.GetPurchase(ctx, id)
}
