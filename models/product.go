package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"storefront-admin/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus controls storefront visibility.
type ProductStatus string

const (
	ProductActive ProductStatus = "active"
	ProductPaused ProductStatus = "paused"
)

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int              `gorm:"not null;default:0" json:"stock"`
	Status      ProductStatus    `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	IsFeatured  bool             `gorm:"not null;default:false;index" json:"is_featured"`
	FeaturedAt  *time.Time       `json:"featured_at"`
	HasVariants bool             `gorm:"not null;default:false" json:"has_variants"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	Media       []ProductMedia   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"media"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// ProductVariant is a persisted variant row.
type ProductVariant struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Label        string          `gorm:"type:varchar(120);not null" json:"label"`
	MeasureValue *string         `gorm:"type:varchar(120)" json:"measure_value"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	IsDefault    bool            `gorm:"not null;default:false" json:"is_default"`
	SortOrder    int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// Rule converts the row into the editor representation.
func (v ProductVariant) Rule() rules.Variant {
	return rules.Variant{
		Label:        v.Label,
		MeasureValue: v.MeasureValue,
		Price:        v.Price,
		Stock:        v.Stock,
		IsDefault:    v.IsDefault,
		SortOrder:    v.SortOrder,
	}
}

// NewProductVariant builds a row for productID from an editor variant.
func NewProductVariant(productID uuid.UUID, v rules.Variant) ProductVariant {
	return ProductVariant{
		ProductID:    productID,
		Label:        v.Label,
		MeasureValue: v.MeasureValue,
		Price:        v.Price,
		Stock:        v.Stock,
		IsDefault:    v.IsDefault,
		SortOrder:    v.SortOrder,
	}
}

// VariantEditor returns the editor state for the product.
func (p *Product) VariantEditor() rules.VariantEditor {
	out := rules.VariantEditor{HasVariants: p.HasVariants, Variants: make([]rules.Variant, len(p.Variants))}
	for i, v := range p.Variants {
		out.Variants[i] = v.Rule()
	}
	return out
}

// MediaTypeImage is the only media type the panel manages.
const MediaTypeImage = "image"

// ProductMedia is an image attached to a product.
type ProductMedia struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Type      string    `gorm:"type:varchar(16);not null;default:'image'" json:"type"`
	URL       string    `gorm:"type:varchar(1024);not null" json:"url"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	SortOrder int       `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ProductMedia) TableName() string { return "product_media" }

// CreateProductRequest is the payload for POST /admin/products.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Status      ProductStatus   `json:"status" binding:"omitempty,oneof=active paused"`
	IsFeatured  bool            `json:"is_featured"`
}

// UpdateProductRequest is the payload for PATCH /admin/products/:id.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Status      *ProductStatus   `json:"status" binding:"omitempty,oneof=active paused"`
}

// SetFeaturedRequest is the payload for PATCH /admin/products/:id/featured.
type SetFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// VariantInput is one variant as submitted by the panel.
type VariantInput struct {
	Label        string          `json:"label" validate:"max=120"`
	MeasureValue *string         `json:"measure_value" validate:"omitempty,max=120"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock" validate:"gte=0"`
	IsDefault    bool            `json:"is_default"`
	SortOrder    int             `json:"sort_order" validate:"gte=0"`
}

// UnmarshalJSON accepts price and stock either as JSON numbers or as the raw
// form strings the editor holds. Strings follow the editor rules: cleared
// input is zero and anything else must parse.
func (in *VariantInput) UnmarshalJSON(data []byte) error {
	type plain VariantInput
	var raw struct {
		plain
		Price json.RawMessage `json:"price"`
		Stock json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price, err := formAmount(raw.Price)
	if err != nil {
		return fmt.Errorf("variant price: %w", err)
	}
	stock, err := formStock(raw.Stock)
	if err != nil {
		return fmt.Errorf("variant stock: %w", err)
	}
	*in = VariantInput(raw.plain)
	in.Price = price
	in.Stock = stock
	return nil
}

func formAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if isJSONNull(raw) {
		return decimal.Zero, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		return rules.ParseAmount(s)
	}
	return decimal.NewFromString(string(raw))
}

func formStock(raw json.RawMessage) (int, error) {
	if isJSONNull(raw) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return rules.ParseStock(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func isJSONNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Rule converts the input into the editor representation.
func (in VariantInput) Rule() rules.Variant {
	return rules.Variant{
		Label:        in.Label,
		MeasureValue: in.MeasureValue,
		Price:        in.Price,
		Stock:        in.Stock,
		IsDefault:    in.IsDefault,
		SortOrder:    in.SortOrder,
	}
}

// SaveVariantsRequest is the payload for PUT /admin/products/:id/variants.
type SaveVariantsRequest struct {
	HasVariants bool           `json:"has_variants"`
	Variants    []VariantInput `json:"variants" validate:"dive"`
}

// EditorActionRequest is the payload for POST /admin/variants/editor.
type EditorActionRequest struct {
	Editor rules.VariantEditor `json:"editor"`
	Action rules.Action        `json:"action"`
}

// EditorActionResponse is the editor after the action plus its duplicates.
type EditorActionResponse struct {
	Editor     rules.VariantEditor `json:"editor"`
	Duplicates []string            `json:"duplicates"`
}

// LinkMediaRequest is the payload for POST /admin/products/:id/media/link.
type LinkMediaRequest struct {
	ImageURL  string `json:"image_url" binding:"required,url"`
	IsPrimary bool   `json:"is_primary"`
}

// UpdateMediaRequest is the payload for PATCH /admin/products/:id/media/:mediaId.
type UpdateMediaRequest struct {
	IsPrimary *bool `json:"is_primary"`
	Order     *int  `json:"order" binding:"omitempty,gte=0"`
}

// PresignMediaRequest asks for a direct upload URL.
type PresignMediaRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignedUpload is returned for direct browser uploads.
type PresignedUpload struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn int64             `json:"expires_in"`
}

// CatalogChangedEvent is published to SNS when the catalog changes.
type CatalogChangedEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}
