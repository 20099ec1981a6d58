package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"
	"storefront-admin/rules"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService defines catalog management, including the variant set.
type ProductService interface {
	ListProducts(ctx context.Context, page, limit int) ([]models.Product, int64, *ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Product, *ServiceError)
	GetVariants(ctx context.Context, id uuid.UUID) (*rules.VariantEditor, *ServiceError)
	SaveVariants(ctx context.Context, id uuid.UUID, req *models.SaveVariantsRequest) (*rules.VariantEditor, *ServiceError)
	ApplyEditorAction(editor rules.VariantEditor, action rules.Action) (*models.EditorActionResponse, *ServiceError)
}

type productServiceImpl struct {
	notifier
	products repository.ProductRepository
	variants repository.VariantRepository
	cache    Cache
	validate *validator.Validate
	now      Clock
}

// NewProductService creates a new ProductService.
func NewProductService(
	products repository.ProductRepository,
	variants repository.VariantRepository,
	cache Cache,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics Metrics,
	now Clock,
	logger *zap.Logger,
) ProductService {
	if now == nil {
		now = time.Now
	}
	return &productServiceImpl{
		notifier: notifier{snsClient: snsClient, snsTopicArn: snsTopicArn, metrics: metrics, logger: logger},
		products: products,
		variants: variants,
		cache:    cache,
		validate: validator.New(),
		now:      now,
	}
}

type productPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func (s *productServiceImpl) ListProducts(ctx context.Context, page, limit int) ([]models.Product, int64, *ServiceError) {
	key := fmt.Sprintf("products:p:%d:l:%d", page, limit)
	var cached productPage
	var version int64
	if s.cache != nil {
		var hit bool
		if hit, version = s.cache.Get(ctx, key, &cached); hit {
			s.count(aws_pkg.MetricCacheHits)
			return cached.Products, cached.Total, nil
		}
	}
	s.count(aws_pkg.MetricCacheMisses)

	products, total, err := s.products.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, newServiceError(http.StatusInternalServerError, "Failed to list products")
	}
	if s.cache != nil {
		s.cache.SetAsync(version, key, productPage{Products: products, Total: total})
	}
	return products, total, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, s.loadError(id, err)
	}
	return p, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	if req.Price.IsNegative() {
		return nil, newServiceError(http.StatusUnprocessableEntity, "Price must not be negative")
	}
	status := req.Status
	if status == "" {
		status = models.ProductActive
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      status,
		IsFeatured:  req.IsFeatured,
		Variants:    []models.ProductVariant{},
		Media:       []models.ProductMedia{},
	}
	if req.IsFeatured {
		at := s.now()
		p.FeaturedAt = &at
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to create product")
	}

	s.catalogChanged(ctx, "product_created", p.ID)
	return p, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, newServiceError(http.StatusUnprocessableEntity, "Price must not be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "No fields to update")
	}

	if err := s.products.Update(ctx, id, updates); err != nil {
		return nil, s.loadError(id, err)
	}

	s.catalogChanged(ctx, "product_updated", id)
	return s.GetProduct(ctx, id)
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.products.Delete(ctx, id); err != nil {
		return s.loadError(id, err)
	}
	s.catalogChanged(ctx, "product_deleted", id)
	return nil
}

func (s *productServiceImpl) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Product, *ServiceError) {
	if err := s.products.SetFeatured(ctx, id, featured, s.now()); err != nil {
		return nil, s.loadError(id, err)
	}
	s.catalogChanged(ctx, "product_updated", id)
	return s.GetProduct(ctx, id)
}

func (s *productServiceImpl) GetVariants(ctx context.Context, id uuid.UUID) (*rules.VariantEditor, *ServiceError) {
	p, svcErr := s.GetProduct(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	editor := p.VariantEditor()
	return &editor, nil
}

// SaveVariants replaces the stored variant set. With has_variants off every
// variant is removed; otherwise the set is cleaned and rejected when labels
// collide, in which case nothing is written.
func (s *productServiceImpl) SaveVariants(ctx context.Context, id uuid.UUID, req *models.SaveVariantsRequest) (*rules.VariantEditor, *ServiceError) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if !req.HasVariants {
		if err := s.variants.DeleteAll(ctx, id); err != nil {
			return nil, s.loadError(id, err)
		}
		s.catalogChanged(ctx, "variants_updated", id)
		return &rules.VariantEditor{HasVariants: false, Variants: []rules.Variant{}}, nil
	}

	input := make([]rules.Variant, len(req.Variants))
	for i, v := range req.Variants {
		if v.Price.IsNegative() {
			return nil, newServiceError(http.StatusUnprocessableEntity, "Variant price must not be negative")
		}
		input[i] = v.Rule()
	}

	prepared, err := rules.PrepareForPersistence(input)
	if err != nil {
		var dupErr *rules.DuplicateLabelError
		if errors.As(err, &dupErr) {
			s.count(aws_pkg.MetricDuplicateLabels)
			svcErr := newServiceError(http.StatusUnprocessableEntity, "Variant labels must be unique")
			svcErr.Details = dupErr.Labels
			return nil, svcErr
		}
		return nil, newServiceError(http.StatusUnprocessableEntity, err.Error())
	}

	rows := make([]models.ProductVariant, len(prepared))
	for i, v := range prepared {
		rows[i] = models.NewProductVariant(id, v)
	}
	if err := s.variants.ReplaceAll(ctx, id, rows); err != nil {
		return nil, s.loadError(id, err)
	}

	s.count(aws_pkg.MetricVariantSetsSaved)
	s.logger.Info("Variant set saved", zap.String("product_id", id.String()), zap.Int("count", len(prepared)))
	s.catalogChanged(ctx, "variants_updated", id)
	return &rules.VariantEditor{HasVariants: len(prepared) > 0, Variants: prepared}, nil
}

// ApplyEditorAction runs one reducer step for the product form.
func (s *productServiceImpl) ApplyEditorAction(editor rules.VariantEditor, action rules.Action) (*models.EditorActionResponse, *ServiceError) {
	next, err := rules.Reduce(editor, action)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrUnknownAction):
			return nil, newServiceError(http.StatusBadRequest, err.Error())
		case errors.Is(err, rules.ErrInvalidNumber), errors.Is(err, rules.ErrNegativeNumber), errors.Is(err, rules.ErrUnknownField):
			return nil, newServiceError(http.StatusUnprocessableEntity, err.Error())
		default:
			return nil, newServiceError(http.StatusInternalServerError, "Failed to apply editor action")
		}
	}
	if next.Variants == nil {
		next.Variants = []rules.Variant{}
	}
	dups := next.Duplicates()
	if dups == nil {
		dups = []string{}
	}
	return &models.EditorActionResponse{Editor: next, Duplicates: dups}, nil
}

func (s *productServiceImpl) catalogChanged(ctx context.Context, eventType string, id uuid.UUID) {
	s.invalidate(ctx, s.cache)
	s.publishEvent(ctx, models.CatalogChangedEvent{
		EventType: eventType,
		ProductID: id.String(),
		Timestamp: s.now(),
	})
}

func (s *productServiceImpl) loadError(id uuid.UUID, err error) *ServiceError {
	svcErr := notFoundOr(err, "Product not found", "Failed to save product")
	if svcErr.StatusCode == http.StatusInternalServerError {
		s.logger.Error("Product repository error", zap.String("product_id", id.String()), zap.Error(err))
	}
	return svcErr
}

// validationError lists the failing fields of a validator error.
func validationError(err error) *ServiceError {
	svcErr := newServiceError(http.StatusUnprocessableEntity, "Validation failed")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			svcErr.Details = append(svcErr.Details, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
	}
	return svcErr
}
