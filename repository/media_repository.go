package repository

import (
	"context"

	"storefront-admin/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaRepository defines data-access operations for product images.
type MediaRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductMedia, error)
	FindByID(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, error)
	Create(ctx context.Context, media *models.ProductMedia) error
	Update(ctx context.Context, productID, mediaID uuid.UUID, updates map[string]interface{}) error
	SetPrimary(ctx context.Context, productID, mediaID uuid.UUID) error
	Delete(ctx context.Context, productID, mediaID uuid.UUID) error
}

// GormMediaRepository implements MediaRepository using GORM.
type GormMediaRepository struct {
	db *gorm.DB
}

// NewGormMediaRepository creates a new GormMediaRepository.
func NewGormMediaRepository(db *gorm.DB) MediaRepository {
	return &GormMediaRepository{db: db}
}

func (r *GormMediaRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductMedia, error) {
	var media []models.ProductMedia
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC").
		Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *GormMediaRepository) FindByID(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, error) {
	var m models.ProductMedia
	if err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", mediaID, productID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Create appends media to the end of the product's gallery. The first image
// of a product becomes primary; a new primary demotes the previous one.
func (r *GormMediaRepository) Create(ctx context.Context, media *models.ProductMedia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ProductMedia{}).
			Where("product_id = ?", media.ProductID).
			Count(&existing).Error; err != nil {
			return err
		}

		media.SortOrder = int(existing)
		if existing == 0 {
			media.IsPrimary = true
		} else if media.IsPrimary {
			if err := clearPrimary(tx, media.ProductID); err != nil {
				return err
			}
		}
		if media.Type == "" {
			media.Type = models.MediaTypeImage
		}
		return tx.Create(media).Error
	})
}

func (r *GormMediaRepository) Update(ctx context.Context, productID, mediaID uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.ProductMedia{}).
		Where("id = ? AND product_id = ?", mediaID, productID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPrimary makes mediaID the only primary image of the product.
func (r *GormMediaRepository) SetPrimary(ctx context.Context, productID, mediaID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearPrimary(tx, productID); err != nil {
			return err
		}
		res := tx.Model(&models.ProductMedia{}).
			Where("id = ? AND product_id = ?", mediaID, productID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete removes the media row. If it was primary, the next image in gallery
// order is promoted.
func (r *GormMediaRepository) Delete(ctx context.Context, productID, mediaID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.ProductMedia
		if err := tx.Where("id = ? AND product_id = ?", mediaID, productID).First(&m).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProductMedia{}, "id = ?", mediaID).Error; err != nil {
			return err
		}
		if !m.IsPrimary {
			return nil
		}

		var next models.ProductMedia
		err := tx.Where("product_id = ?", productID).Order("sort_order ASC").First(&next).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&models.ProductMedia{}).Where("id = ?", next.ID).Update("is_primary", true).Error
	})
}

func clearPrimary(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Model(&models.ProductMedia{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
}
