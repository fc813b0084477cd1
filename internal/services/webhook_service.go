package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/models"
	"restaurant_manager/internal/repository"

	"github.com/rs/zerolog"
)

// EventDeduper claims webhook event ids; the Redis client satisfies it.
type EventDeduper interface {
	ClaimEvent(ctx context.Context, eventID string) (bool, error)
}

// WebhookEvent is the courier's push payload.
type WebhookEvent struct {
	Event   string      `json:"event"`
	EventID string      `json:"event_id"`
	Data    WebhookData `json:"data"`
}

type WebhookData struct {
	OrderID     string               `json:"order_id"` // the provider's delivery id
	Status      string               `json:"status"`
	Driver      *delivery.DriverInfo `json:"driver,omitempty"`
	TrackingURL string               `json:"tracking_url,omitempty"`
}

// providerStatusMap translates courier statuses to internal order
// statuses. Unlisted provider statuses are logged and ignored.
var providerStatusMap = map[string]models.OrderStatus{
	"PENDING":          models.OrderDriverDispatched,
	"ASSIGNING_DRIVER": models.OrderDriverDispatched,
	"ON_GOING":         models.OrderOutForDelivery,
	"PICKED_UP":        models.OrderOutForDelivery,
	"COMPLETED":        models.OrderDelivered,
	"CANCELLED":        models.OrderDeliveryFailed,
}

type WebhookService interface {
	// HandleEvent folds one courier push event into order state. It is
	// safe to call repeatedly with the same event: replays and unknown
	// delivery ids are acknowledged no-ops. The returned error signals an
	// internal failure only; the HTTP receiver still acknowledges.
	HandleEvent(ctx context.Context, event *WebhookEvent) error
}

type webhookService struct {
	orderRepo repository.OrderRepository
	orders    OrderService
	deduper   EventDeduper
	logger    zerolog.Logger
}

func NewWebhookService(orderRepo repository.OrderRepository, orders OrderService, deduper EventDeduper, logger zerolog.Logger) WebhookService {
	return &webhookService{
		orderRepo: orderRepo,
		orders:    orders,
		deduper:   deduper,
		logger:    logger.With().Str("component", "webhook_service").Logger(),
	}
}

// dedupKey prefers the provider's event id; without one, delivery id plus
// event plus status still suppresses replays of the same update.
func (e *WebhookEvent) dedupKey() string {
	if e.EventID != "" {
		return e.EventID
	}
	return fmt.Sprintf("%s:%s:%s", e.Data.OrderID, e.Event, e.Data.Status)
}

func (s *webhookService) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	if event.Data.OrderID == "" {
		s.logger.Warn().Str("event", event.Event).Msg("webhook without delivery id ignored")
		return nil
	}

	// The claim is taken before the event is applied, so an event whose
	// processing fails internally stays suppressed. That only holds
	// because the receiver acknowledges every event with 200 and the
	// provider never retries; release the claim on failure if the ack
	// policy ever changes.
	fresh, err := s.deduper.ClaimEvent(ctx, event.dedupKey())
	if err != nil {
		// A broken dedup store must not drop provider updates; proceed,
		// at the cost of possible duplicate notifications.
		s.logger.Warn().Err(err).Str("event", event.Event).Msg("webhook dedup unavailable")
	} else if !fresh {
		s.logger.Info().
			Str("event", event.Event).
			Str("delivery_id", event.Data.OrderID).
			Msg("duplicate webhook event ignored")
		return nil
	}

	order, err := s.orderRepo.GetByLalamoveID(event.Data.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Webhooks can arrive for orders this instance never created
			// (multi-environment provider accounts); acknowledge and move on.
			s.logger.Info().
				Str("delivery_id", event.Data.OrderID).
				Str("event", event.Event).
				Msg("webhook for unknown delivery id ignored")
			return nil
		}
		return fmt.Errorf("failed to locate order for delivery %s: %w", event.Data.OrderID, err)
	}

	if event.Data.TrackingURL != "" && order.TrackingURL == "" {
		order.TrackingURL = event.Data.TrackingURL
	}

	switch event.Event {
	case "order.status_changed":
		status, ok := providerStatusMap[event.Data.Status]
		if !ok {
			s.logger.Warn().
				Str("provider_status", event.Data.Status).
				Str("order_number", order.OrderNumber).
				Msg("unrecognized provider status ignored")
			return nil
		}
		return s.orders.ApplyProviderUpdate(ctx, order, status, event.Data.Driver, "provider status "+event.Data.Status)
	case "driver.assigned":
		return s.orders.ApplyProviderUpdate(ctx, order, models.OrderDriverDispatched, event.Data.Driver, "driver assigned")
	case "order.picked_up":
		return s.orders.ApplyProviderUpdate(ctx, order, models.OrderOutForDelivery, event.Data.Driver, "order picked up")
	case "order.completed":
		return s.orders.ApplyProviderUpdate(ctx, order, models.OrderDelivered, event.Data.Driver, "order completed")
	case "order.cancelled":
		return s.orders.ApplyProviderUpdate(ctx, order, models.OrderDeliveryFailed, nil, "delivery cancelled by provider")
	default:
		s.logger.Warn().
			Str("event", event.Event).
			Str("order_number", order.OrderNumber).
			Msg("unrecognized webhook event ignored")
		return nil
	}
}
