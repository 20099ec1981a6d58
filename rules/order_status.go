// Package rules holds the order status guards and the variant consistency
// rules used by the admin panel. Everything here is pure: functions take
// values and return new values, nothing touches storage or the network.
package rules

import "github.com/shopspring/decimal"

// PaymentStatus tracks whether payment for an order was confirmed.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// OrderStatus is the fulfillment stage of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusContacted OrderStatus = "contacted"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// OrderState is the (payment, fulfillment) pair the admin actions act on.
type OrderState struct {
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderStatus   OrderStatus   `json:"order_status"`
}

// OrderActions tells the panel which admin actions are currently available.
type OrderActions struct {
	CanMarkPaid    bool `json:"can_mark_paid"`
	CanMarkShipped bool `json:"can_mark_shipped"`
}

// CanMarkPaid is true unless the payment is already confirmed.
func CanMarkPaid(s OrderState) bool {
	return s.PaymentStatus != PaymentPaid
}

// MarkPaid returns the state after confirming payment. Orders that were new
// or contacted advance to paid; later stages keep their status. When the
// guard does not hold the state is returned unchanged.
func MarkPaid(s OrderState) OrderState {
	if !CanMarkPaid(s) {
		return s
	}
	next := s
	next.PaymentStatus = PaymentPaid
	if s.OrderStatus == StatusNew || s.OrderStatus == StatusContacted {
		next.OrderStatus = StatusPaid
	}
	return next
}

// CanMarkShipped requires a confirmed payment and an order that is not
// already shipped, delivered or canceled.
func CanMarkShipped(s OrderState) bool {
	if s.PaymentStatus != PaymentPaid {
		return false
	}
	switch s.OrderStatus {
	case StatusShipped, StatusDelivered, StatusCanceled:
		return false
	}
	return true
}

// MarkShipped returns the state after shipping. When the guard does not hold
// the state is returned unchanged.
func MarkShipped(s OrderState) OrderState {
	if !CanMarkShipped(s) {
		return s
	}
	next := s
	next.OrderStatus = StatusShipped
	return next
}

// Actions evaluates both guards for s.
func Actions(s OrderState) OrderActions {
	return OrderActions{
		CanMarkPaid:    CanMarkPaid(s),
		CanMarkShipped: CanMarkShipped(s),
	}
}

// LineItem is the part of an order line that contributes to the total.
type LineItem struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// ItemsTotal sums quantity × unit price over items.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// TotalConsistent reports whether total matches the sum of the line items.
func TotalConsistent(total decimal.Decimal, items []LineItem) bool {
	return total.Equal(ItemsTotal(items))
}
