package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront-admin/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOrderEventsConsumer_InvalidatesOnOrderEvents(t *testing.T) {
	orders, catalog := newMockCache(), newMockCache()
	c := services.NewOrderEventsConsumer(zap.NewNop(), orders, catalog, nil)

	require.NoError(t, c.Handle(context.Background(), `{"event_type":"order.created","order_id":"o-1","order_number":"1001"}`))
	assert.Equal(t, 1, orders.invalidations)
	assert.Equal(t, 1, catalog.invalidations)
}

func TestOrderEventsConsumer_UnwrapsSNSEnvelope(t *testing.T) {
	orders := newMockCache()
	c := services.NewOrderEventsConsumer(zap.NewNop(), orders)

	inner := `{"event_type":"order.canceled","order_id":"o-2"}`
	body, err := json.Marshal(map[string]string{"Type": "Notification", "Message": inner})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), string(body)))
	assert.Equal(t, 1, orders.invalidations)
}

func TestOrderEventsConsumer_DropsMalformedAndIgnoresOthers(t *testing.T) {
	orders := newMockCache()
	c := services.NewOrderEventsConsumer(zap.NewNop(), orders)

	assert.NoError(t, c.Handle(context.Background(), ""))
	assert.NoError(t, c.Handle(context.Background(), "{not json"))
	assert.NoError(t, c.Handle(context.Background(), `{"event_type":"payment.refunded"}`))
	assert.Equal(t, 0, orders.invalidations)
}

func TestOrderEventsConsumer_RetriesOnCacheFailure(t *testing.T) {
	orders := newMockCache()
	orders.invalidateErr = errors.New("redis down")
	c := services.NewOrderEventsConsumer(zap.NewNop(), orders)

	err := c.Handle(context.Background(), `{"event_type":"order.updated"}`)
	assert.Error(t, err)
}
