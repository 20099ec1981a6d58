package models

import (
	"errors"
	"strings"
	"time"

	"storefront-admin/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a storefront order as seen by the admin panel.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string              `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	CustomerName    string              `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string              `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	CustomerPhone   string              `gorm:"type:varchar(32)" json:"customer_phone"`
	ShippingAddress string              `gorm:"type:text" json:"shipping_address,omitempty"`
	Notes           string              `gorm:"type:text" json:"notes,omitempty"`
	PaymentMethod   string              `gorm:"type:varchar(32)" json:"payment_method,omitempty"`
	PaymentStatus   rules.PaymentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"payment_status"`
	OrderStatus     rules.OrderStatus   `gorm:"type:varchar(16);not null;default:'new';index" json:"order_status"`
	TotalAmount     decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Events          []OrderEvent        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}

// OrderEvent is an append-only audit entry.
type OrderEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedBy   string    `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// State returns the status pair the admin actions operate on.
func (o *Order) State() rules.OrderState {
	return rules.OrderState{PaymentStatus: o.PaymentStatus, OrderStatus: o.OrderStatus}
}

// SetState copies s onto the order.
func (o *Order) SetState(s rules.OrderState) {
	o.PaymentStatus = s.PaymentStatus
	o.OrderStatus = s.OrderStatus
}

// LineItems converts the order lines for total checks.
func (o *Order) LineItems() []rules.LineItem {
	out := make([]rules.LineItem, len(o.Items))
	for i, it := range o.Items {
		out[i] = rules.LineItem{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out
}

// OrderView is an order plus the actions currently available on it.
type OrderView struct {
	Order
	Actions rules.OrderActions `json:"actions"`
}

// NewOrderView evaluates the guards for o.
func NewOrderView(o Order) OrderView {
	return OrderView{Order: o, Actions: rules.Actions(o.State())}
}

// "all" is what the panel sends when a filter is not applied.
const filterAll = "all"

var ErrInvalidFilter = errors.New("invalid order filter")

// OrderFilter narrows the order list.
type OrderFilter struct {
	Search        string `form:"search"`
	PaymentStatus string `form:"payment_status"`
	OrderStatus   string `form:"order_status"`
}

// Normalize trims the filter and maps "all" to no constraint. Unknown
// statuses are rejected.
func (f OrderFilter) Normalize() (OrderFilter, error) {
	out := OrderFilter{
		Search:        strings.TrimSpace(f.Search),
		PaymentStatus: strings.ToLower(strings.TrimSpace(f.PaymentStatus)),
		OrderStatus:   strings.ToLower(strings.TrimSpace(f.OrderStatus)),
	}
	if out.PaymentStatus == filterAll {
		out.PaymentStatus = ""
	}
	if out.OrderStatus == filterAll {
		out.OrderStatus = ""
	}
	if out.PaymentStatus != "" && !rules.PaymentStatus(out.PaymentStatus).Valid() {
		return OrderFilter{}, ErrInvalidFilter
	}
	if out.OrderStatus != "" && !rules.OrderStatus(out.OrderStatus).Valid() {
		return OrderFilter{}, ErrInvalidFilter
	}
	return out, nil
}

// DashboardStats are the KPIs shown on the admin home page.
type DashboardStats struct {
	NewOrders       int64   `json:"new_orders"`
	PendingPayment  int64   `json:"pending_payment"`
	PendingShipment int64   `json:"pending_shipment"`
	RecentOrders    []Order `json:"recent_orders"`
}

// WhatsAppMessageRequest carries an optional custom message.
type WhatsAppMessageRequest struct {
	Message string `json:"message" binding:"max=1000"`
}

// WhatsAppLink is the deep link returned to the panel.
type WhatsAppLink struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// OrderStatusChangedEvent is published to SNS after an admin action.
type OrderStatusChangedEvent struct {
	EventType     string              `json:"event_type"`
	OrderID       string              `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentStatus rules.PaymentStatus `json:"payment_status"`
	OrderStatus   rules.OrderStatus   `json:"order_status"`
	Actor         string              `json:"actor"`
	Timestamp     time.Time           `json:"timestamp"`
}

// StorefrontOrderEvent is what the storefront pushes to the order events queue.
type StorefrontOrderEvent struct {
	EventType   string `json:"event_type"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}
