package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	phone   string
	message string
}

// fakeSender captures outbound texts instead of hitting the gateway.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
	lastCtx context.Context
}

func (s *fakeSender) SendText(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCtx = ctx
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentMessage{phone: phone, message: message})
	return nil
}

func newNotificationFixture() (*fakeSender, NotificationService) {
	sender := &fakeSender{}
	svc := NewNotificationService(sender, "+5511999990000", 5*time.Second, zerolog.Nop())
	return sender, svc
}

func sampleOrder() *models.Order {
	return &models.Order{
		OrderNumber:   "ORD-20260831-ABC123",
		Status:        models.OrderPending,
		Type:          models.TypeDelivery,
		CustomerName:  "Ana",
		CustomerPhone: "+5511911112222",
		PaymentMethod: models.PaymentPix,
		Total:         42.5,
		Items: []models.OrderItem{
			{Name: "Coxinha", Quantity: 3},
			{Name: "Refrigerante", Quantity: 1},
		},
	}
}

func TestNotifyNewOrderGoesToRestaurant(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()

	require.NoError(t, svc.NotifyNewOrder(context.Background(), order))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "+5511999990000", msg.phone)
	assert.Contains(t, msg.message, "ORD-20260831-ABC123")
	assert.Contains(t, msg.message, "Ana")
	assert.Contains(t, msg.message, "3x Coxinha")
	assert.Contains(t, msg.message, "1x Refrigerante")
	assert.Contains(t, msg.message, "R$ 42.50")
	assert.Contains(t, msg.message, "PIX")
}

func TestNotifyStatusGoesToCustomer(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()
	order.Status = models.OrderOutForDelivery

	require.NoError(t, svc.NotifyStatus(context.Background(), order))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, order.CustomerPhone, sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].message, "out for delivery")
}

func TestNotifyStatusSkipsUnmappedStatuses(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()
	order.Status = models.OrderDispatchFailed

	require.NoError(t, svc.NotifyStatus(context.Background(), order))
	assert.Empty(t, sender.sent)
}

func TestNotifySkipsOrdersWithoutPhone(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()
	order.Status = models.OrderConfirmed
	order.CustomerPhone = ""

	require.NoError(t, svc.NotifyStatus(context.Background(), order))
	assert.Empty(t, sender.sent)
}

func TestNotifyDispatchFailedNamesTheReason(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()

	require.NoError(t, svc.NotifyDispatchFailed(context.Background(), order, "no drivers available"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+5511999990000", sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].message, "no drivers available")
	assert.Contains(t, sender.sent[0].message, "dispatch manually")
}

func TestNotifyDriverAssignedIncludesTracking(t *testing.T) {
	sender, svc := newNotificationFixture()
	order := sampleOrder()
	order.TrackingURL = "https://track.example/xyz"

	require.NoError(t, svc.NotifyDriverAssigned(context.Background(), order, &delivery.DriverInfo{
		Name:        "Paulo",
		VehicleType: "MOTORCYCLE",
		PlateNumber: "XYZ-1234",
	}))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, order.CustomerPhone, sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].message, "Paulo")
	assert.Contains(t, sender.sent[0].message, "XYZ-1234")
	assert.Contains(t, sender.sent[0].message, "https://track.example/xyz")
}

func TestNotifyPropagatesSendErrors(t *testing.T) {
	sender, svc := newNotificationFixture()
	sender.sendErr = errors.New("gateway down")

	err := svc.NotifyNewOrder(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
}

func TestNotifyAppliesSendTimeout(t *testing.T) {
	sender, svc := newNotificationFixture()

	require.NoError(t, svc.NotifyNewOrder(context.Background(), sampleOrder()))
	deadline, ok := sender.lastCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}
