package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront-admin/models"
	"storefront-admin/repository"
	"storefront-admin/rules"
	"storefront-admin/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatCurrency(t *testing.T) {
	tests := map[string]string{
		"12345.5":  "$12.345,50",
		"0":        "$0,00",
		"999":      "$999,00",
		"1000":     "$1.000,00",
		"1234567":  "$1.234.567,00",
		"-1500.25": "-$1.500,25",
	}
	for in, want := range tests {
		assert.Equal(t, want, services.FormatCurrency(decimal.RequireFromString(in)), in)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5491122334455", services.NormalizePhone("+54 9 11 2233-4455"))
	assert.Equal(t, "", services.NormalizePhone("n/a"))
}

func TestBuildWhatsAppLink_EncodesSpacesAsPercent20(t *testing.T) {
	link := services.BuildWhatsAppLink("+54 11 5555-0000", "Hola Ana & co")
	assert.Equal(t, "541155550000", link.Phone)
	assert.Equal(t, "https://wa.me/541155550000?text=Hola%20Ana%20%26%20co", link.URL)
}

func TestDefaultWhatsAppMessage(t *testing.T) {
	msg := services.DefaultWhatsAppMessage(sampleOrder(rules.PaymentPending, rules.StatusNew))
	assert.Contains(t, msg, "Hola Ana")
	assert.Contains(t, msg, "#1001")
	assert.Contains(t, msg, "$12.345,50")
}

func TestWhatsAppLink_DefaultAndCustom(t *testing.T) {
	repo := &mockOrderRepo{order: sampleOrder(rules.PaymentPending, rules.StatusNew)}
	svc := services.NewContactService(repo, nil, nil, nil, zap.NewNop())

	link, svcErr := svc.WhatsAppLink(context.Background(), repo.order.ID, "")
	require.Nil(t, svcErr)
	assert.Contains(t, link.Message, "$12.345,50")

	link, svcErr = svc.WhatsAppLink(context.Background(), repo.order.ID, " Ya salió ")
	require.Nil(t, svcErr)
	assert.Equal(t, "Ya salió", link.Message)
}

func TestWhatsAppLink_MissingPhone(t *testing.T) {
	order := sampleOrder(rules.PaymentPending, rules.StatusNew)
	order.CustomerPhone = ""
	svc := services.NewContactService(&mockOrderRepo{order: order}, nil, nil, nil, zap.NewNop())

	_, svcErr := svc.WhatsAppLink(context.Background(), order.ID, "")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.StatusCode)
}

func TestSendWhatsApp_MovesNewOrderToContacted(t *testing.T) {
	repo := &mockOrderRepo{order: sampleOrder(rules.PaymentPending, rules.StatusNew)}
	wa := &mockSender{}
	cache := newMockCache()
	svc := services.NewContactService(repo, wa, cache, nil, zap.NewNop())

	view, svcErr := svc.SendWhatsApp(context.Background(), repo.order.ID, "", "admin@shop.test")
	require.Nil(t, svcErr)
	assert.Equal(t, "5491122334455", wa.to)
	assert.Equal(t, rules.StatusContacted, view.OrderStatus)
	assert.Equal(t, rules.StatusContacted, repo.lastTo.OrderStatus)
	assert.Equal(t, "Contactado por WhatsApp", repo.lastEvent.Description)
	assert.True(t, view.Actions.CanMarkPaid)
	assert.Equal(t, 1, cache.invalidations)
}

func TestSendWhatsApp_OtherStatusesOnlyAppendEvent(t *testing.T) {
	repo := &mockOrderRepo{order: sampleOrder(rules.PaymentPaid, rules.StatusPaid)}
	svc := services.NewContactService(repo, &mockSender{}, nil, nil, zap.NewNop())

	view, svcErr := svc.SendWhatsApp(context.Background(), repo.order.ID, "Gracias", "")
	require.Nil(t, svcErr)
	assert.False(t, repo.updated)
	require.Len(t, repo.appended, 1)
	assert.Equal(t, "system", repo.appended[0].CreatedBy)
	assert.Equal(t, rules.StatusPaid, view.OrderStatus)
}

func TestSendWhatsApp_StaleFallsBackToEvent(t *testing.T) {
	repo := &mockOrderRepo{order: sampleOrder(rules.PaymentPending, rules.StatusNew), updateErr: repository.ErrStaleOrder}
	svc := services.NewContactService(repo, &mockSender{}, nil, nil, zap.NewNop())

	view, svcErr := svc.SendWhatsApp(context.Background(), repo.order.ID, "", "admin")
	require.Nil(t, svcErr)
	assert.Len(t, repo.appended, 1)
	assert.Equal(t, rules.StatusNew, view.OrderStatus)
}

func TestSendWhatsApp_Failures(t *testing.T) {
	order := sampleOrder(rules.PaymentPending, rules.StatusNew)

	svc := services.NewContactService(&mockOrderRepo{order: order}, nil, nil, nil, zap.NewNop())
	_, svcErr := svc.SendWhatsApp(context.Background(), order.ID, "", "admin")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.StatusCode)

	repo := &mockOrderRepo{order: order}
	svc = services.NewContactService(repo, &mockSender{err: errors.New("twilio 500")}, nil, nil, zap.NewNop())
	_, svcErr = svc.SendWhatsApp(context.Background(), order.ID, "", "admin")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.False(t, repo.updated)

	svc = services.NewContactService(&mockOrderRepo{order: &models.Order{ID: uuid.New()}}, &mockSender{}, nil, nil, zap.NewNop())
	_, svcErr = svc.SendWhatsApp(context.Background(), uuid.New(), "", "admin")
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.StatusCode)
}
