package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxImageSize         = 10 << 20
	DefaultPresignExpiry = 15 * time.Minute
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AllowedImageTypes lists the accepted upload content types.
func AllowedImageTypes() []string {
	types := make([]string, 0, len(allowedImageTypes))
	for t := range allowedImageTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ObjectStore is the part of aws_pkg.ObjectStore the media service uses.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, map[string]string, error)
	Delete(ctx context.Context, key string) error
	URLFor(key string) string
	KeyFor(url string) (string, bool)
}

// UploadInput is an image received from the panel.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	IsPrimary   bool
}

// MediaService manages product images.
type MediaService interface {
	List(ctx context.Context, productID uuid.UUID) ([]models.ProductMedia, *ServiceError)
	Link(ctx context.Context, productID uuid.UUID, req *models.LinkMediaRequest) (*models.ProductMedia, *ServiceError)
	Upload(ctx context.Context, productID uuid.UUID, in UploadInput) (*models.ProductMedia, *ServiceError)
	PresignUpload(ctx context.Context, productID uuid.UUID, req *models.PresignMediaRequest) (*models.PresignedUpload, *ServiceError)
	Update(ctx context.Context, productID, mediaID uuid.UUID, req *models.UpdateMediaRequest) (*models.ProductMedia, *ServiceError)
	SetPrimary(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, *ServiceError)
	Delete(ctx context.Context, productID, mediaID uuid.UUID) *ServiceError
}

type mediaServiceImpl struct {
	notifier
	media    repository.MediaRepository
	products repository.ProductRepository
	store    ObjectStore
	cache    Cache
}

// NewMediaService creates a new MediaService. store may be nil when S3 is
// not configured; uploads and presigning are then unavailable.
func NewMediaService(
	media repository.MediaRepository,
	products repository.ProductRepository,
	store ObjectStore,
	cache Cache,
	metrics Metrics,
	logger *zap.Logger,
) MediaService {
	return &mediaServiceImpl{
		notifier: notifier{metrics: metrics, logger: logger},
		media:    media,
		products: products,
		store:    store,
		cache:    cache,
	}
}

func (s *mediaServiceImpl) List(ctx context.Context, productID uuid.UUID) ([]models.ProductMedia, *ServiceError) {
	if svcErr := s.ensureProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}
	media, err := s.media.FindByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to list media", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to list media")
	}
	return media, nil
}

func (s *mediaServiceImpl) Link(ctx context.Context, productID uuid.UUID, req *models.LinkMediaRequest) (*models.ProductMedia, *ServiceError) {
	if svcErr := s.ensureProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}
	return s.create(ctx, productID, strings.TrimSpace(req.ImageURL), req.IsPrimary)
}

func (s *mediaServiceImpl) Upload(ctx context.Context, productID uuid.UUID, in UploadInput) (*models.ProductMedia, *ServiceError) {
	if s.store == nil {
		return nil, newServiceError(http.StatusServiceUnavailable, "Image storage is not configured")
	}
	ext, ok := imageExtension(in.ContentType, in.Filename)
	if !ok {
		return nil, newServiceError(http.StatusBadRequest, fmt.Sprintf("Invalid content type. Allowed: %v", AllowedImageTypes()))
	}
	if in.Size > MaxImageSize {
		return nil, newServiceError(http.StatusRequestEntityTooLarge, "Image exceeds the 10MB limit")
	}
	if svcErr := s.ensureProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}

	key := mediaKey(productID, ext)
	url, err := s.store.Upload(ctx, key, in.ContentType, in.Body)
	if err != nil {
		s.logger.Error("Failed to upload image", zap.String("key", key), zap.Error(err))
		return nil, newServiceError(http.StatusBadGateway, "Failed to upload image")
	}
	s.count(aws_pkg.MetricMediaUploaded)

	m, svcErr := s.create(ctx, productID, url, in.IsPrimary)
	if svcErr != nil {
		s.removeObject(ctx, url)
		return nil, svcErr
	}
	return m, nil
}

func (s *mediaServiceImpl) PresignUpload(ctx context.Context, productID uuid.UUID, req *models.PresignMediaRequest) (*models.PresignedUpload, *ServiceError) {
	if s.store == nil {
		return nil, newServiceError(http.StatusServiceUnavailable, "Image storage is not configured")
	}
	ext, ok := imageExtension(req.ContentType, req.Filename)
	if !ok {
		return nil, newServiceError(http.StatusBadRequest, fmt.Sprintf("Invalid content type. Allowed: %v", AllowedImageTypes()))
	}
	if svcErr := s.ensureProduct(ctx, productID); svcErr != nil {
		return nil, svcErr
	}

	key := mediaKey(productID, ext)
	uploadURL, headers, err := s.store.PresignPut(ctx, key, req.ContentType, DefaultPresignExpiry)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, newServiceError(http.StatusBadGateway, "Failed to generate presigned upload")
	}
	return &models.PresignedUpload{
		UploadURL: uploadURL,
		Method:    http.MethodPut,
		Key:       key,
		PublicURL: s.store.URLFor(key),
		Headers:   headers,
		ExpiresIn: int64(DefaultPresignExpiry.Seconds()),
	}, nil
}

func (s *mediaServiceImpl) Update(ctx context.Context, productID, mediaID uuid.UUID, req *models.UpdateMediaRequest) (*models.ProductMedia, *ServiceError) {
	if req.IsPrimary != nil && *req.IsPrimary {
		if req.Order != nil {
			if err := s.media.Update(ctx, productID, mediaID, map[string]interface{}{"sort_order": *req.Order}); err != nil {
				return nil, s.mediaError(mediaID, err)
			}
		}
		return s.SetPrimary(ctx, productID, mediaID)
	}

	updates := map[string]interface{}{}
	if req.IsPrimary != nil {
		updates["is_primary"] = false
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if len(updates) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "No fields to update")
	}
	if err := s.media.Update(ctx, productID, mediaID, updates); err != nil {
		return nil, s.mediaError(mediaID, err)
	}
	s.invalidate(ctx, s.cache)
	return s.find(ctx, productID, mediaID)
}

func (s *mediaServiceImpl) SetPrimary(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, *ServiceError) {
	if err := s.media.SetPrimary(ctx, productID, mediaID); err != nil {
		return nil, s.mediaError(mediaID, err)
	}
	s.invalidate(ctx, s.cache)
	return s.find(ctx, productID, mediaID)
}

// Delete removes the media row and, when the image lives in our bucket, the
// object itself. Object removal failures are logged only.
func (s *mediaServiceImpl) Delete(ctx context.Context, productID, mediaID uuid.UUID) *ServiceError {
	m, err := s.media.FindByID(ctx, productID, mediaID)
	if err != nil {
		return s.mediaError(mediaID, err)
	}
	if err := s.media.Delete(ctx, productID, mediaID); err != nil {
		return s.mediaError(mediaID, err)
	}
	s.invalidate(ctx, s.cache)
	s.removeObject(ctx, m.URL)
	return nil
}

func (s *mediaServiceImpl) create(ctx context.Context, productID uuid.UUID, url string, isPrimary bool) (*models.ProductMedia, *ServiceError) {
	m := &models.ProductMedia{
		ProductID: productID,
		Type:      models.MediaTypeImage,
		URL:       url,
		IsPrimary: isPrimary,
	}
	if err := s.media.Create(ctx, m); err != nil {
		s.logger.Error("Failed to save media", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to save media")
	}
	s.invalidate(ctx, s.cache)
	return m, nil
}

func (s *mediaServiceImpl) find(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, *ServiceError) {
	m, err := s.media.FindByID(ctx, productID, mediaID)
	if err != nil {
		return nil, s.mediaError(mediaID, err)
	}
	return m, nil
}

func (s *mediaServiceImpl) ensureProduct(ctx context.Context, productID uuid.UUID) *ServiceError {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		svcErr := notFoundOr(err, "Product not found", "Failed to load product")
		if svcErr.StatusCode == http.StatusInternalServerError {
			s.logger.Error("Failed to load product", zap.String("product_id", productID.String()), zap.Error(err))
		}
		return svcErr
	}
	return nil
}

func (s *mediaServiceImpl) removeObject(ctx context.Context, url string) {
	if s.store == nil {
		return
	}
	key, ok := s.store.KeyFor(url)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete image object", zap.String("key", key), zap.Error(err))
	}
}

func (s *mediaServiceImpl) mediaError(mediaID uuid.UUID, err error) *ServiceError {
	svcErr := notFoundOr(err, "Media not found", "Failed to update media")
	if svcErr.StatusCode == http.StatusInternalServerError {
		s.logger.Error("Media repository error", zap.String("media_id", mediaID.String()), zap.Error(err))
	}
	return svcErr
}

// imageExtension validates the content type and picks the object extension.
// The filename extension is kept when it agrees with an allowed type.
func imageExtension(contentType, filename string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", false
	}
	switch fileExt := strings.ToLower(filepath.Ext(filename)); fileExt {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return fileExt, true
	}
	return ext, true
}

func mediaKey(productID uuid.UUID, ext string) string {
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
}
