package rules_test

import (
	"storefront-admin/rules"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var allOrderStatuses = []rules.OrderStatus{
	rules.StatusNew, rules.StatusContacted, rules.StatusPaid,
	rules.StatusShipped, rules.StatusDelivered, rules.StatusCanceled,
}

func TestCanMarkPaid_FalseOnlyWhenPaid(t *testing.T) {
	for _, st := range allOrderStatuses {
		assert.True(t, rules.CanMarkPaid(rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: st}), st)
		assert.False(t, rules.CanMarkPaid(rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: st}), st)
	}
}

func TestCanMarkShipped_RequiresPayment(t *testing.T) {
	for _, st := range allOrderStatuses {
		assert.False(t, rules.CanMarkShipped(rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: st}), st)
	}
}

func TestCanMarkShipped_PaidOrders(t *testing.T) {
	cases := map[rules.OrderStatus]bool{
		rules.StatusNew:       true,
		rules.StatusContacted: true,
		rules.StatusPaid:      true,
		rules.StatusShipped:   false,
		rules.StatusDelivered: false,
		rules.StatusCanceled:  false,
	}
	for st, want := range cases {
		got := rules.CanMarkShipped(rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: st})
		assert.Equal(t, want, got, st)
	}
}

func TestNewPendingOrder(t *testing.T) {
	s := rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: rules.StatusNew}
	assert.True(t, rules.CanMarkPaid(s))
	assert.False(t, rules.CanMarkShipped(s))
	assert.Equal(t, rules.OrderActions{CanMarkPaid: true, CanMarkShipped: false}, rules.Actions(s))
}

func TestShippedPaidOrder_NoActions(t *testing.T) {
	s := rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: rules.StatusShipped}
	assert.False(t, rules.CanMarkShipped(s))
	assert.False(t, rules.CanMarkPaid(s))
}

func TestMarkPaid_AdvancesEarlyStatuses(t *testing.T) {
	for _, st := range []rules.OrderStatus{rules.StatusNew, rules.StatusContacted} {
		got := rules.MarkPaid(rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: st})
		assert.Equal(t, rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: rules.StatusPaid}, got)
	}
}

func TestMarkPaid_KeepsLaterStatuses(t *testing.T) {
	for _, st := range []rules.OrderStatus{rules.StatusShipped, rules.StatusDelivered, rules.StatusCanceled} {
		got := rules.MarkPaid(rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: st})
		assert.Equal(t, rules.PaymentPaid, got.PaymentStatus)
		assert.Equal(t, st, got.OrderStatus)
	}
}

func TestMarkPaid_NoopWhenAlreadyPaid(t *testing.T) {
	s := rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: rules.StatusContacted}
	assert.Equal(t, s, rules.MarkPaid(s))
}

func TestMarkShipped(t *testing.T) {
	s := rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: rules.StatusPaid}
	assert.Equal(t, rules.StatusShipped, rules.MarkShipped(s).OrderStatus)

	pending := rules.OrderState{PaymentStatus: rules.PaymentPending, OrderStatus: rules.StatusNew}
	assert.Equal(t, pending, rules.MarkShipped(pending))

	canceled := rules.OrderState{PaymentStatus: rules.PaymentPaid, OrderStatus: rules.StatusCanceled}
	assert.Equal(t, canceled, rules.MarkShipped(canceled))
}

func TestStatusValidity(t *testing.T) {
	for _, st := range allOrderStatuses {
		assert.True(t, st.Valid())
	}
	assert.False(t, rules.OrderStatus("lost").Valid())
	assert.True(t, rules.PaymentPaid.Valid())
	assert.False(t, rules.PaymentStatus("refunded").Valid())
}

func TestItemsTotal(t *testing.T) {
	items := []rules.LineItem{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("1500.50")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("3200")},
	}
	assert.True(t, decimal.RequireFromString("6201").Equal(rules.ItemsTotal(items)))
	assert.True(t, rules.TotalConsistent(decimal.RequireFromString("6201.00"), items))
	assert.False(t, rules.TotalConsistent(decimal.RequireFromString("6200"), items))
	assert.True(t, rules.ItemsTotal(nil).IsZero())
}
