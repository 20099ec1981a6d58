package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"
	"storefront-admin/rules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrdersLimit = 5
	dashboardCacheKey = "dashboard:stats"
)

// OrderService defines the admin operations on orders.
type OrderService interface {
	ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.OrderView, int64, *ServiceError)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderView, *ServiceError)
	MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*models.OrderView, *ServiceError)
	MarkShipped(ctx context.Context, id uuid.UUID, actor string) (*models.OrderView, *ServiceError)
	Stats(ctx context.Context) (*models.DashboardStats, *ServiceError)
}

type orderServiceImpl struct {
	notifier
	repo  repository.OrderRepository
	cache Cache
	now   Clock
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	repo repository.OrderRepository,
	cache Cache,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics Metrics,
	now Clock,
	logger *zap.Logger,
) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderServiceImpl{
		notifier: notifier{snsClient: snsClient, snsTopicArn: snsTopicArn, metrics: metrics, logger: logger},
		repo:     repo,
		cache:    cache,
		now:      now,
	}
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.OrderView, int64, *ServiceError) {
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, 0, newServiceError(http.StatusBadRequest, "Invalid status filter")
	}

	orders, total, err := s.repo.FindAll(ctx, normalized, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, newServiceError(http.StatusInternalServerError, "Failed to list orders")
	}

	views := make([]models.OrderView, len(orders))
	for i, o := range orders {
		views[i] = models.NewOrderView(o)
	}
	return views, total, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderView, *ServiceError) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.loadError(id, err)
	}
	if len(order.Items) > 0 && !rules.TotalConsistent(order.TotalAmount, order.LineItems()) {
		s.logger.Warn("Order total does not match its items",
			zap.String("order_id", id.String()),
			zap.String("total", order.TotalAmount.StringFixed(2)),
			zap.String("items_total", rules.ItemsTotal(order.LineItems()).StringFixed(2)),
		)
	}
	view := models.NewOrderView(*order)
	return &view, nil
}

func (s *orderServiceImpl) MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*models.OrderView, *ServiceError) {
	return s.transition(ctx, id, actor, transition{
		guard:       rules.CanMarkPaid,
		apply:       rules.MarkPaid,
		rejected:    "Order is already paid",
		description: "Pago confirmado",
		metric:      aws_pkg.MetricOrdersMarkedPaid,
	})
}

func (s *orderServiceImpl) MarkShipped(ctx context.Context, id uuid.UUID, actor string) (*models.OrderView, *ServiceError) {
	return s.transition(ctx, id, actor, transition{
		guard:       rules.CanMarkShipped,
		apply:       rules.MarkShipped,
		rejected:    "Order must be paid and not yet shipped, delivered or canceled",
		description: "Pedido enviado",
		metric:      aws_pkg.MetricOrdersMarkedShipped,
	})
}

type transition struct {
	guard       func(rules.OrderState) bool
	apply       func(rules.OrderState) rules.OrderState
	rejected    string
	description string
	metric      string
}

// transition re-checks the guard against the stored order, then persists the
// new state with an audit event. The order is only changed in memory after
// the write succeeds.
func (s *orderServiceImpl) transition(ctx context.Context, id uuid.UUID, actor string, t transition) (*models.OrderView, *ServiceError) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.loadError(id, err)
	}

	current := order.State()
	if !t.guard(current) {
		s.count(aws_pkg.MetricGuardViolations)
		s.logger.Info("Order action rejected by guard",
			zap.String("order_id", id.String()),
			zap.String("payment_status", string(current.PaymentStatus)),
			zap.String("order_status", string(current.OrderStatus)),
		)
		return nil, guardViolation(t.rejected)
	}

	actor = actorOrSystem(actor)
	next := t.apply(current)
	event := &models.OrderEvent{Description: t.description, CreatedBy: actor}
	if err := s.repo.UpdateStatus(ctx, id, current, next, event); err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			s.count(aws_pkg.MetricGuardViolations)
			return nil, guardViolation("Order was modified by someone else, reload and try again")
		}
		s.logger.Error("Failed to update order status", zap.String("order_id", id.String()), zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to update order")
	}

	order.SetState(next)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	order.Events = append(order.Events, *event)

	s.invalidate(ctx, s.cache)
	s.count(t.metric)
	s.logger.Info("Order status changed",
		zap.String("order_id", id.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", string(next.PaymentStatus)),
		zap.String("order_status", string(next.OrderStatus)),
		zap.String("actor", actor),
	)
	s.publishEvent(ctx, models.OrderStatusChangedEvent{
		EventType:     "order_status_changed",
		OrderID:       id.String(),
		OrderNumber:   order.OrderNumber,
		PaymentStatus: next.PaymentStatus,
		OrderStatus:   next.OrderStatus,
		Actor:         actor,
		Timestamp:     s.now(),
	})

	view := models.NewOrderView(*order)
	return &view, nil
}

// Stats returns the dashboard KPIs. The three counts run concurrently.
func (s *orderServiceImpl) Stats(ctx context.Context) (*models.DashboardStats, *ServiceError) {
	var cached models.DashboardStats
	var version int64
	if s.cache != nil {
		var hit bool
		if hit, version = s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
			return &cached, nil
		}
	}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.NewOrders, err = s.repo.CountNew(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingPayment, err = s.repo.CountPendingPayment(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingShipment, err = s.repo.CountPendingShipment(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentOrders, err = s.repo.Recent(gctx, recentOrdersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		return nil, newServiceError(http.StatusInternalServerError, "Failed to load dashboard")
	}
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.Order{}
	}

	if s.cache != nil {
		s.cache.SetAsync(version, dashboardCacheKey, stats)
	}
	return &stats, nil
}

func (s *orderServiceImpl) loadError(id uuid.UUID, err error) *ServiceError {
	svcErr := notFoundOr(err, "Order not found", "Failed to load order")
	if svcErr.StatusCode == http.StatusInternalServerError {
		s.logger.Error("Failed to load order", zap.String("order_id", id.String()), zap.Error(err))
	}
	return svcErr
}

// actorOrSystem names the actor recorded on audit events.
func actorOrSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
