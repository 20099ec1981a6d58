package services

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-admin/models"

	"go.uber.org/zap"
)

// snsEnvelope unwraps the SNS → SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// OrderEventsConsumer reacts to orders created or changed by the storefront.
type OrderEventsConsumer struct {
	caches []Cache
	logger *zap.Logger
}

func NewOrderEventsConsumer(logger *zap.Logger, caches ...Cache) *OrderEventsConsumer {
	return &OrderEventsConsumer{caches: caches, logger: logger}
}

// Handle processes one queue message. Returning nil deletes the message;
// malformed messages are dropped, cache failures are retried.
func (c *OrderEventsConsumer) Handle(ctx context.Context, body string) error {
	if body == "" {
		c.logger.Error("received empty SQS message body")
		return nil
	}

	payload := body
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Type == "Notification" && envelope.Message != "" {
		payload = envelope.Message
	}

	var event models.StorefrontOrderEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logger.Error("failed to unmarshal order event", zap.Error(err))
		return nil
	}

	switch event.EventType {
	case "order.created", "order.updated", "order.canceled":
	default:
		c.logger.Debug("ignoring order event", zap.String("event_type", event.EventType))
		return nil
	}

	for _, cache := range c.caches {
		if cache == nil {
			continue
		}
		if err := cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate after %s: %w", event.EventType, err)
		}
	}
	c.logger.Info("Order event processed",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID),
		zap.String("order_number", event.OrderNumber),
	)
	return nil
}
