package controllers_test

import (
	"context"
	"io"

	"storefront-admin/models"
	"storefront-admin/rules"
	"storefront-admin/services"

	"github.com/google/uuid"
)

// ---- concrete mock implementing services.OrderService ----

type mockOrderSvc struct {
	orders     []models.OrderView
	total      int64
	order      *models.OrderView
	stats      *models.DashboardStats
	err        *services.ServiceError
	lastFilter models.OrderFilter
	lastPage   int
	lastLimit  int
	lastActor  string
}

func (m *mockOrderSvc) ListOrders(_ context.Context, filter models.OrderFilter, page, limit int) ([]models.OrderView, int64, *services.ServiceError) {
	m.lastFilter, m.lastPage, m.lastLimit = filter, page, limit
	return m.orders, m.total, m.err
}
func (m *mockOrderSvc) GetOrder(context.Context, uuid.UUID) (*models.OrderView, *services.ServiceError) {
	return m.order, m.err
}
func (m *mockOrderSvc) MarkPaid(_ context.Context, _ uuid.UUID, actor string) (*models.OrderView, *services.ServiceError) {
	m.lastActor = actor
	return m.order, m.err
}
func (m *mockOrderSvc) MarkShipped(_ context.Context, _ uuid.UUID, actor string) (*models.OrderView, *services.ServiceError) {
	m.lastActor = actor
	return m.order, m.err
}
func (m *mockOrderSvc) Stats(context.Context) (*models.DashboardStats, *services.ServiceError) {
	return m.stats, m.err
}

// ---- concrete mock implementing services.ContactService ----

type mockContactSvc struct {
	link        *models.WhatsAppLink
	order       *models.OrderView
	err         *services.ServiceError
	lastMessage string
}

func (m *mockContactSvc) WhatsAppLink(_ context.Context, _ uuid.UUID, message string) (*models.WhatsAppLink, *services.ServiceError) {
	m.lastMessage = message
	return m.link, m.err
}
func (m *mockContactSvc) SendWhatsApp(_ context.Context, _ uuid.UUID, message, _ string) (*models.OrderView, *services.ServiceError) {
	m.lastMessage = message
	return m.order, m.err
}

// ---- concrete mock implementing services.ProductService ----

type mockProductSvc struct {
	product      *models.Product
	editor       *rules.VariantEditor
	editorResult *models.EditorActionResponse
	err          *services.ServiceError
	saved        *models.SaveVariantsRequest
	action       rules.Action
	featured     *bool
}

func (m *mockProductSvc) ListProducts(context.Context, int, int) ([]models.Product, int64, *services.ServiceError) {
	if m.product == nil {
		return []models.Product{}, 0, m.err
	}
	return []models.Product{*m.product}, 1, m.err
}
func (m *mockProductSvc) GetProduct(context.Context, uuid.UUID) (*models.Product, *services.ServiceError) {
	return m.product, m.err
}
func (m *mockProductSvc) CreateProduct(context.Context, *models.CreateProductRequest) (*models.Product, *services.ServiceError) {
	return m.product, m.err
}
func (m *mockProductSvc) UpdateProduct(context.Context, uuid.UUID, *models.UpdateProductRequest) (*models.Product, *services.ServiceError) {
	return m.product, m.err
}
func (m *mockProductSvc) DeleteProduct(context.Context, uuid.UUID) *services.ServiceError {
	return m.err
}
func (m *mockProductSvc) SetFeatured(_ context.Context, _ uuid.UUID, featured bool) (*models.Product, *services.ServiceError) {
	m.featured = &featured
	return m.product, m.err
}
func (m *mockProductSvc) GetVariants(context.Context, uuid.UUID) (*rules.VariantEditor, *services.ServiceError) {
	return m.editor, m.err
}
func (m *mockProductSvc) SaveVariants(_ context.Context, _ uuid.UUID, req *models.SaveVariantsRequest) (*rules.VariantEditor, *services.ServiceError) {
	m.saved = req
	return m.editor, m.err
}
func (m *mockProductSvc) ApplyEditorAction(_ rules.VariantEditor, action rules.Action) (*models.EditorActionResponse, *services.ServiceError) {
	m.action = action
	return m.editorResult, m.err
}

// ---- concrete mock implementing services.MediaService ----

type mockMediaSvc struct {
	media      *models.ProductMedia
	upload     *models.PresignedUpload
	err        *services.ServiceError
	lastUpload services.UploadInput
	uploadBody string
}

func (m *mockMediaSvc) List(context.Context, uuid.UUID) ([]models.ProductMedia, *services.ServiceError) {
	if m.media == nil {
		return []models.ProductMedia{}, m.err
	}
	return []models.ProductMedia{*m.media}, m.err
}
func (m *mockMediaSvc) Link(context.Context, uuid.UUID, *models.LinkMediaRequest) (*models.ProductMedia, *services.ServiceError) {
	return m.media, m.err
}
func (m *mockMediaSvc) Upload(_ context.Context, _ uuid.UUID, in services.UploadInput) (*models.ProductMedia, *services.ServiceError) {
	m.lastUpload = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		m.uploadBody = string(b)
	}
	return m.media, m.err
}
func (m *mockMediaSvc) PresignUpload(context.Context, uuid.UUID, *models.PresignMediaRequest) (*models.PresignedUpload, *services.ServiceError) {
	return m.upload, m.err
}
func (m *mockMediaSvc) Update(context.Context, uuid.UUID, uuid.UUID, *models.UpdateMediaRequest) (*models.ProductMedia, *services.ServiceError) {
	return m.media, m.err
}
func (m *mockMediaSvc) SetPrimary(context.Context, uuid.UUID, uuid.UUID) (*models.ProductMedia, *services.ServiceError) {
	return m.media, m.err
}
func (m *mockMediaSvc) Delete(context.Context, uuid.UUID, uuid.UUID) *services.ServiceError {
	return m.err
}

// ---- mock authenticator ----

type mockAuth struct {
	res       *models.LoginResponse
	err       *services.ServiceError
	lastEmail string
}

func (m *mockAuth) Login(_ context.Context, email, _ string) (*models.LoginResponse, *services.ServiceError) {
	m.lastEmail = email
	return m.res, m.err
}
