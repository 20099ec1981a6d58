package sender

import (
	"context"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// WhatsAppSender delivers a text message to a customer's WhatsApp number.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, msg string) (SendResult, error)
}
