package repository

import (
	"context"

	"storefront-admin/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantRepository replaces a product's variant set as a unit.
type VariantRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
	ReplaceAll(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error
	DeleteAll(ctx context.Context, productID uuid.UUID) error
}

// GormVariantRepository implements VariantRepository using GORM.
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository.
func NewGormVariantRepository(db *gorm.DB) VariantRepository {
	return &GormVariantRepository{db: db}
}

func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// ReplaceAll deletes the product's variants and inserts variants in their
// place. A reader never sees a partial set.
func (r *GormVariantRepository) ReplaceAll(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	return r.replace(ctx, productID, variants, len(variants) > 0)
}

// DeleteAll removes every variant and clears has_variants.
func (r *GormVariantRepository) DeleteAll(ctx context.Context, productID uuid.UUID) error {
	return r.replace(ctx, productID, nil, false)
}

func (r *GormVariantRepository) replace(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant, hasVariants bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", productID).Update("has_variants", hasVariants)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if len(variants) == 0 {
			return nil
		}
		for i := range variants {
			variants[i].ProductID = productID
		}
		return tx.Create(&variants).Error
	})
}
