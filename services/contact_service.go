package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront-admin/models"
	aws_pkg "storefront-admin/pkg/aws"
	"storefront-admin/repository"
	"storefront-admin/rules"
	"storefront-admin/sender"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const whatsAppBaseURL = "https://wa.me/"

// NormalizePhone keeps only the digits of phone.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCurrency renders an amount the way the storefront shows prices:
// "$12.345,50".
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, frac := fixed, "00"
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "," + frac
}

// DefaultWhatsAppMessage is the greeting sent for a new order.
func DefaultWhatsAppMessage(o *models.Order) string {
	return fmt.Sprintf("Hola %s, recibimos tu pedido #%s por %s. Coordinamos el pago por acá.",
		o.CustomerName, o.OrderNumber, FormatCurrency(o.TotalAmount))
}

// BuildWhatsAppLink returns the wa.me deep link for phone and text.
func BuildWhatsAppLink(phone, text string) models.WhatsAppLink {
	digits := NormalizePhone(phone)
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return models.WhatsAppLink{
		Phone:   digits,
		Message: text,
		URL:     whatsAppBaseURL + digits + "?text=" + escaped,
	}
}

// ContactService builds WhatsApp links for orders and optionally sends the
// message through Twilio.
type ContactService interface {
	WhatsAppLink(ctx context.Context, orderID uuid.UUID, message string) (*models.WhatsAppLink, *ServiceError)
	SendWhatsApp(ctx context.Context, orderID uuid.UUID, message, actor string) (*models.OrderView, *ServiceError)
}

type contactServiceImpl struct {
	notifier
	orders repository.OrderRepository
	sender sender.WhatsAppSender
	cache  Cache
}

// NewContactService creates a new ContactService. A nil sender leaves only
// link generation available.
func NewContactService(
	orders repository.OrderRepository,
	whatsApp sender.WhatsAppSender,
	cache Cache,
	metrics Metrics,
	logger *zap.Logger,
) ContactService {
	return &contactServiceImpl{
		notifier: notifier{metrics: metrics, logger: logger},
		orders:   orders,
		sender:   whatsApp,
		cache:    cache,
	}
}

func (s *contactServiceImpl) load(ctx context.Context, orderID uuid.UUID) (*models.Order, string, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		svcErr := notFoundOr(err, "Order not found", "Failed to load order")
		if svcErr.StatusCode == http.StatusInternalServerError {
			s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		}
		return nil, "", svcErr
	}
	phone := NormalizePhone(order.CustomerPhone)
	if phone == "" {
		return nil, "", newServiceError(http.StatusUnprocessableEntity, "Order has no customer phone")
	}
	return order, phone, nil
}

func (s *contactServiceImpl) WhatsAppLink(ctx context.Context, orderID uuid.UUID, message string) (*models.WhatsAppLink, *ServiceError) {
	order, phone, svcErr := s.load(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	text := strings.TrimSpace(message)
	if text == "" {
		text = DefaultWhatsAppMessage(order)
	}
	link := BuildWhatsAppLink(phone, text)
	return &link, nil
}

// SendWhatsApp delivers the message and records it on the order. A new
// order moves to contacted; other orders only get the audit event.
func (s *contactServiceImpl) SendWhatsApp(ctx context.Context, orderID uuid.UUID, message, actor string) (*models.OrderView, *ServiceError) {
	if s.sender == nil {
		return nil, newServiceError(http.StatusServiceUnavailable, "WhatsApp sending is not configured")
	}
	order, phone, svcErr := s.load(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	text := strings.TrimSpace(message)
	if text == "" {
		text = DefaultWhatsAppMessage(order)
	}

	res, err := s.sender.SendWhatsApp(ctx, phone, text)
	if err != nil {
		s.logger.Error("Failed to send WhatsApp message", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, newServiceError(http.StatusBadGateway, "Failed to send WhatsApp message")
	}
	s.count(aws_pkg.MetricWhatsAppSent)

	actor = actorOrSystem(actor)
	event := &models.OrderEvent{OrderID: orderID, Description: "Contactado por WhatsApp", CreatedBy: actor}
	current := order.State()
	if current.OrderStatus == rules.StatusNew {
		next := rules.OrderState{PaymentStatus: current.PaymentStatus, OrderStatus: rules.StatusContacted}
		err = s.orders.UpdateStatus(ctx, orderID, current, next, event)
		if err == nil {
			order.SetState(next)
		} else if errors.Is(err, repository.ErrStaleOrder) {
			err = s.orders.AppendEvent(ctx, event)
		}
	} else {
		err = s.orders.AppendEvent(ctx, event)
	}
	if err != nil {
		// The message is already out; the missing audit entry is only logged.
		s.logger.Error("Failed to record WhatsApp contact", zap.String("order_id", orderID.String()), zap.Error(err))
	} else {
		order.Events = append(order.Events, *event)
	}

	s.invalidate(ctx, s.cache)
	s.logger.Info("WhatsApp message sent",
		zap.String("order_id", orderID.String()),
		zap.String("message_id", res.MessageID),
	)
	view := models.NewOrderView(*order)
	return &view, nil
}
