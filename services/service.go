package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	apperrors "storefront-admin/common/errors"
	aws_pkg "storefront-admin/pkg/aws"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Kind       apperrors.Kind
	Message    string
	Details    []string
}

func (e *ServiceError) Error() string { return e.Message }

// AppError converts e for apperrors.Respond.
func (e *ServiceError) AppError() *apperrors.Error {
	return &apperrors.Error{Code: e.StatusCode, Kind: e.Kind, Message: e.Message, Details: e.Details}
}

func newServiceError(code int, message string) *ServiceError {
	return &ServiceError{StatusCode: code, Kind: apperrors.KindForStatus(code), Message: message}
}

func guardViolation(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Kind: apperrors.KindGuardViolation, Message: message}
}

// notFoundOr maps gorm.ErrRecordNotFound to 404 and anything else to 500.
func notFoundOr(err error, notFound, internal string) *ServiceError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newServiceError(http.StatusNotFound, notFound)
	}
	return newServiceError(http.StatusInternalServerError, internal)
}

// Cache is the versioned cache the services read through.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, int64)
	SetAsync(version int64, key string, value interface{})
	Invalidate(ctx context.Context) error
}

// Metrics records business counters.
type Metrics interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// Clock returns the current time.
type Clock func() time.Time

// notifier bundles the best-effort side channels shared by the services.
type notifier struct {
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	metrics     Metrics
	logger      *zap.Logger
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (n *notifier) publishEvent(ctx context.Context, event interface{}) {
	if n.snsClient == nil || n.snsTopicArn == "" {
		n.logger.Debug("SNS not configured, skipping event publish")
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := n.snsClient.Publish(ctx, n.snsTopicArn, b); err != nil {
		n.logger.Error("Failed to publish SNS event", zap.Error(err))
		return
	}
	n.logger.Info("Published SNS event", zap.String("topic", n.snsTopicArn))
}

// count records a metric in the background.
func (n *notifier) count(metricName string) {
	if n.metrics == nil || !n.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.metrics.RecordCount(ctx, metricName, map[string]string{"Service": "storefront-admin"}); err != nil {
			n.logger.Debug("Failed to record metric", zap.String("metric", metricName), zap.Error(err))
		}
	}()
}

func (n *notifier) invalidate(ctx context.Context, c Cache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		n.logger.Warn("Failed to invalidate cache", zap.Error(err))
	}
}
