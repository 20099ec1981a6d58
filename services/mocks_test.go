package services_test

import (
	"context"
	"io"
	"sync"
	"time"

	"storefront-admin/models"
	"storefront-admin/rules"
	"storefront-admin/sender"

	"github.com/google/uuid"
)

// ---- mock order repository ----

type mockOrderRepo struct {
	order      *models.Order
	findErr    error
	updateErr  error
	appendErr  error
	updated    bool
	appended   []*models.OrderEvent
	lastFrom   rules.OrderState
	lastTo     rules.OrderState
	onRecent   func()
	lastEvent  *models.OrderEvent
	lastFilter models.OrderFilter
	list       []models.Order
	counts     [3]int64
	countErr   error
	recent     []models.Order
}

func (m *mockOrderRepo) FindAll(_ context.Context, filter models.OrderFilter, _, _ int) ([]models.Order, int64, error) {
	m.lastFilter = filter
	return m.list, int64(len(m.list)), m.findErr
}
func (m *mockOrderRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	cp := *m.order
	return &cp, nil
}
func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, from, to rules.OrderState, event *models.OrderEvent) error {
	m.lastFrom, m.lastTo, m.lastEvent = from, to, event
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = true
	return nil
}
func (m *mockOrderRepo) AppendEvent(_ context.Context, event *models.OrderEvent) error {
	m.appended = append(m.appended, event)
	return m.appendErr
}
func (m *mockOrderRepo) CountNew(context.Context) (int64, error) { return m.counts[0], m.countErr }
func (m *mockOrderRepo) CountPendingPayment(context.Context) (int64, error) {
	return m.counts[1], nil
}
func (m *mockOrderRepo) CountPendingShipment(context.Context) (int64, error) {
	return m.counts[2], nil
}
func (m *mockOrderRepo) Recent(context.Context, int) ([]models.Order, error) {
	if m.onRecent != nil {
		m.onRecent()
	}
	return m.recent, nil
}

// ---- mock product / variant / media repositories ----

type mockProductRepo struct {
	product     *models.Product
	findErr     error
	createErr   error
	updateErr   error
	deleteErr   error
	lastUpdates map[string]interface{}
	featured    *bool
	featuredAt  time.Time
	listCalls   int
}

func (m *mockProductRepo) FindAll(context.Context, int, int) ([]models.Product, int64, error) {
	m.listCalls++
	if m.product == nil {
		return []models.Product{}, 0, m.findErr
	}
	return []models.Product{*m.product}, 1, m.findErr
}
func (m *mockProductRepo) FindByID(context.Context, uuid.UUID) (*models.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.product, nil
}
func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	if m.createErr == nil {
		p.ID = uuid.New()
	}
	return m.createErr
}
func (m *mockProductRepo) Update(_ context.Context, _ uuid.UUID, updates map[string]interface{}) error {
	m.lastUpdates = updates
	return m.updateErr
}
func (m *mockProductRepo) Delete(context.Context, uuid.UUID) error { return m.deleteErr }
func (m *mockProductRepo) SetFeatured(_ context.Context, _ uuid.UUID, featured bool, at time.Time) error {
	m.featured, m.featuredAt = &featured, at
	return m.updateErr
}

type mockVariantRepo struct {
	replaced     []models.ProductVariant
	replaceCalls int
	deleteCalls  int
	err          error
}

func (m *mockVariantRepo) FindByProduct(context.Context, uuid.UUID) ([]models.ProductVariant, error) {
	return m.replaced, m.err
}
func (m *mockVariantRepo) ReplaceAll(_ context.Context, _ uuid.UUID, variants []models.ProductVariant) error {
	m.replaceCalls++
	m.replaced = variants
	return m.err
}
func (m *mockVariantRepo) DeleteAll(context.Context, uuid.UUID) error {
	m.deleteCalls++
	return m.err
}

type mockMediaRepo struct {
	media      *models.ProductMedia
	findErr    error
	created    *models.ProductMedia
	createErr  error
	updates    map[string]interface{}
	primaryErr error
	deleted    bool
}

func (m *mockMediaRepo) FindByProduct(context.Context, uuid.UUID) ([]models.ProductMedia, error) {
	if m.media == nil {
		return []models.ProductMedia{}, nil
	}
	return []models.ProductMedia{*m.media}, nil
}
func (m *mockMediaRepo) FindByID(context.Context, uuid.UUID, uuid.UUID) (*models.ProductMedia, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.media, nil
}
func (m *mockMediaRepo) Create(_ context.Context, media *models.ProductMedia) error {
	m.created = media
	return m.createErr
}
func (m *mockMediaRepo) Update(_ context.Context, _, _ uuid.UUID, updates map[string]interface{}) error {
	m.updates = updates
	return nil
}
func (m *mockMediaRepo) SetPrimary(context.Context, uuid.UUID, uuid.UUID) error { return m.primaryErr }
func (m *mockMediaRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	m.deleted = true
	return nil
}

type mockUserRepo struct {
	user *models.AdminUser
	err  error
}

func (m *mockUserRepo) FindByEmail(context.Context, string) (*models.AdminUser, error) {
	return m.user, m.err
}
func (m *mockUserRepo) Create(context.Context, *models.AdminUser) error { return m.err }

// ---- mock side channels ----

type mockSNS struct {
	mu         sync.Mutex
	publishErr error
	messages   [][]byte
}

func (m *mockSNS) Publish(_ context.Context, _ string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.publishErr
}

type mockCache struct {
	mu            sync.Mutex
	hit           interface{}
	version       int64
	stored        map[string]interface{}
	storedVersion map[string]int64
	invalidations int
	invalidateErr error
}

func newMockCache() *mockCache {
	return &mockCache{version: 1, stored: map[string]interface{}{}, storedVersion: map[string]int64{}}
}

func (m *mockCache) Get(_ context.Context, _ string, dest interface{}) (bool, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hit == nil {
		return false, m.version
	}
	switch d := dest.(type) {
	case *models.DashboardStats:
		*d = m.hit.(models.DashboardStats)
		return true, m.version
	}
	return false, m.version
}
func (m *mockCache) SetAsync(version int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[key] = value
	m.storedVersion[key] = version
}
func (m *mockCache) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
	m.version++
	return m.invalidateErr
}

type mockStore struct {
	uploadedKey string
	uploadErr   error
	deletedKeys []string
	presignErr  error
}

func (m *mockStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	m.uploadedKey = key
	return "https://cdn.shop.test/" + key, m.uploadErr
}
func (m *mockStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, map[string]string, error) {
	return "https://bucket.s3.test/" + key + "?X-Amz-Signature=abc", map[string]string{"Content-Type": "image/png"}, m.presignErr
}
func (m *mockStore) Delete(_ context.Context, key string) error {
	m.deletedKeys = append(m.deletedKeys, key)
	return nil
}
func (m *mockStore) URLFor(key string) string { return "https://cdn.shop.test/" + key }
func (m *mockStore) KeyFor(url string) (string, bool) {
	const prefix = "https://cdn.shop.test/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):], true
	}
	return "", false
}

type mockSender struct {
	to, msg string
	err     error
}

func (m *mockSender) SendWhatsApp(_ context.Context, to, msg string) (sender.SendResult, error) {
	m.to, m.msg = to, msg
	return sender.SendResult{MessageID: "SM1", SentAt: time.Now()}, m.err
}
