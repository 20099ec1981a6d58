package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-admin/models"
	"storefront-admin/rules"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStaleOrder means the order changed between load and update.
var ErrStaleOrder = errors.New("order status changed concurrently")

// OrderRepository defines data-access operations for orders.
type OrderRepository interface {
	FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to rules.OrderState, event *models.OrderEvent) error
	AppendEvent(ctx context.Context, event *models.OrderEvent) error
	CountNew(ctx context.Context) (int64, error)
	CountPendingPayment(ctx context.Context) (int64, error)
	CountPendingShipment(ctx context.Context) (int64, error)
	Recent(ctx context.Context, n int) ([]models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Search != "" {
		like := likePattern(filter.Search)
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves the order from one status pair to another and records
// the event. Nothing is written if the row no longer holds from.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to rules.OrderState, event *models.OrderEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ? AND order_status = ?", id, from.PaymentStatus, from.OrderStatus).
			Updates(map[string]interface{}{
				"payment_status": to.PaymentStatus,
				"order_status":   to.OrderStatus,
				"updated_at":     time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleOrder
		}
		if event == nil {
			return nil
		}
		event.OrderID = id
		return tx.Create(event).Error
	})
}

func (r *GormOrderRepository) AppendEvent(ctx context.Context, event *models.OrderEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormOrderRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where(query, args...).Count(&n).Error
	return n, err
}

func (r *GormOrderRepository) CountNew(ctx context.Context) (int64, error) {
	return r.count(ctx, "order_status = ?", rules.StatusNew)
}

func (r *GormOrderRepository) CountPendingPayment(ctx context.Context) (int64, error) {
	return r.count(ctx, "payment_status = ? AND order_status <> ?", rules.PaymentPending, rules.StatusCanceled)
}

// CountPendingShipment counts the orders rules.CanMarkShipped accepts.
func (r *GormOrderRepository) CountPendingShipment(ctx context.Context) (int64, error) {
	return r.count(ctx, "payment_status = ? AND order_status NOT IN ?",
		rules.PaymentPaid,
		[]rules.OrderStatus{rules.StatusShipped, rules.StatusDelivered, rules.StatusCanceled},
	)
}

func (r *GormOrderRepository) Recent(ctx context.Context, n int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
