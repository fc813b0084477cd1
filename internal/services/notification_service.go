package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/models"

	"github.com/rs/zerolog"
)

// MessageSender is the outbound text-message gateway; pkg/whatsapp
// satisfies it.
type MessageSender interface {
	SendText(ctx context.Context, phone, message string) error
}

type NotificationService interface {
	NotifyNewOrder(ctx context.Context, order *models.Order) error
	NotifyStatus(ctx context.Context, order *models.Order) error
	NotifyDispatchFailed(ctx context.Context, order *models.Order, reason string) error
	NotifyDriverAssigned(ctx context.Context, order *models.Order, driver *delivery.DriverInfo) error
}

type notificationService struct {
	sender          MessageSender
	restaurantPhone string
	timeout         time.Duration
	logger          zerolog.Logger
}

func NewNotificationService(sender MessageSender, restaurantPhone string, timeout time.Duration, logger zerolog.Logger) NotificationService {
	return &notificationService{
		sender:          sender,
		restaurantPhone: restaurantPhone,
		timeout:         timeout,
		logger:          logger.With().Str("component", "notifications").Logger(),
	}
}

func (s *notificationService) send(ctx context.Context, phone, message string, order *models.Order) error {
	if phone == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sender.SendText(ctx, phone, message); err != nil {
		s.logger.Error().Err(err).
			Str("order_number", order.OrderNumber).
			Str("phone", phone).
			Msg("failed to send notification")
		return err
	}
	return nil
}

func (s *notificationService) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🍴 New order %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Customer: %s", order.CustomerName)
	if order.CustomerPhone != "" {
		fmt.Fprintf(&b, " (%s)", order.CustomerPhone)
	}
	b.WriteString("\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s\n", item.Quantity, item.Name)
	}
	fmt.Fprintf(&b, "Total: R$ %.2f\n", order.Total)
	fmt.Fprintf(&b, "Payment: %s / Type: %s", order.PaymentMethod, order.Type)

	return s.send(ctx, s.restaurantPhone, b.String(), order)
}

// statusMessages are the customer-facing texts per reachable status.
// Statuses with no entry send nothing.
var statusMessages = map[models.OrderStatus]string{
	models.OrderPending:          "We received your order %s. We'll confirm it shortly!",
	models.OrderConfirmed:        "Your order %s is confirmed and heading to the kitchen.",
	models.OrderPreparing:        "Your order %s is being prepared. 👨‍🍳",
	models.OrderReady:            "Your order %s is ready!",
	models.OrderDriverDispatched: "A driver is on the way to pick up your order %s.",
	models.OrderOutForDelivery:   "Your order %s is out for delivery! 🛵",
	models.OrderDelivered:        "Your order %s was delivered. Bom apetite!",
	models.OrderCancelled:        "Your order %s was cancelled. Contact us for details.",
	models.OrderRefunded:         "Your order %s was refunded.",
}

func (s *notificationService) NotifyStatus(ctx context.Context, order *models.Order) error {
	template, ok := statusMessages[order.Status]
	if !ok {
		return nil
	}
	return s.send(ctx, order.CustomerPhone, fmt.Sprintf(template, order.OrderNumber), order)
}

func (s *notificationService) NotifyDispatchFailed(ctx context.Context, order *models.Order, reason string) error {
	message := fmt.Sprintf("⚠️ Driver dispatch failed for order %s: %s. Please dispatch manually.",
		order.OrderNumber, reason)
	return s.send(ctx, s.restaurantPhone, message, order)
}

func (s *notificationService) NotifyDriverAssigned(ctx context.Context, order *models.Order, driver *delivery.DriverInfo) error {
	message := fmt.Sprintf("Driver %s (%s, plate %s) is assigned to your order %s.",
		driver.Name, driver.VehicleType, driver.PlateNumber, order.OrderNumber)
	if order.TrackingURL != "" {
		message += " Track it here: " + order.TrackingURL
	}
	return s.send(ctx, order.CustomerPhone, message, order)
}
