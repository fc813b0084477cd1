package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/models"
	"restaurant_manager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// totalsTolerance absorbs float rounding when reconciling monetary fields.
const totalsTolerance = 0.01

// CreateOrderItemInput names exactly one of {ProductID, ComboID}.
type CreateOrderItemInput struct {
	ProductID *uint  `json:"product_id"`
	ComboID   *uint  `json:"combo_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

type CreateOrderInput struct {
	RestaurantID    string                 `json:"-"`
	Type            models.OrderType       `json:"type"`
	CustomerName    string                 `json:"customer_name"`
	CustomerPhone   string                 `json:"customer_phone"`
	CustomerEmail   string                 `json:"customer_email"`
	DeliveryAddress string                 `json:"delivery_address"`
	Items           []CreateOrderItemInput `json:"items"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method"`
	DeliveryFee     float64                `json:"delivery_fee"`
	Discount        float64                `json:"discount"`
	Tax             float64                `json:"tax"`
	// Client-declared total; when non-zero it must reconcile with the
	// server-side computation.
	Total float64 `json:"total"`

	// Test-shape extras: explicit status and order number.
	Status      models.OrderStatus `json:"status"`
	OrderNumber string             `json:"order_number"`
}

// SideEffectResult records the outcome of one best-effort side effect so
// callers and tests can assert on it instead of relying on swallowed
// errors.
type SideEffectResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*models.Order, error)
	// RunPostCreationEffects fires the best-effort side effects of a fresh
	// order: restaurant notification and, for instant-settlement delivery
	// orders, driver dispatch. Failures never touch the created order.
	RunPostCreationEffects(ctx context.Context, order *models.Order) []SideEffectResult
	TransitionStatus(ctx context.Context, orderID uint, status models.OrderStatus, notes, changedBy string) (*models.Order, []SideEffectResult, error)
	DispatchDriver(ctx context.Context, orderID uint, providerName string) (*delivery.DeliveryResponse, error)
	GetDispatchStatus(ctx context.Context, orderID uint) (*delivery.TrackingInfo, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, restaurantID string) ([]models.Order, error)
	GetHistory(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error)
	ApplyProviderUpdate(ctx context.Context, order *models.Order, status models.OrderStatus, driver *delivery.DriverInfo, note string) error
}

type orderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	comboRepo      repository.ComboRepository
	restaurantRepo repository.RestaurantRepository
	dispatch       *delivery.Registry
	notifier       NotificationService
	logger         zerolog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	comboRepo repository.ComboRepository,
	restaurantRepo repository.RestaurantRepository,
	dispatch *delivery.Registry,
	notifier NotificationService,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		comboRepo:      comboRepo,
		restaurantRepo: restaurantRepo,
		dispatch:       dispatch,
		notifier:       notifier,
		logger:         logger.With().Str("component", "order_service").Logger(),
	}
}

// generateOrderNumber builds a practically collision-free human-readable
// number: timestamp plus random suffix, deduplicated by the DB unique
// constraint as the final guard.
func generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102150405"), suffix)
}

func (s *orderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, validationErrorf("order must contain at least one item")
	}
	if input.CustomerName == "" {
		return nil, validationErrorf("customer name is required")
	}
	if input.Type == "" {
		input.Type = models.TypeDelivery
	}
	if input.Type == models.TypeDelivery && input.DeliveryAddress == "" {
		return nil, validationErrorf("delivery orders require a delivery address")
	}
	if input.PaymentMethod == "" {
		return nil, validationErrorf("payment method is required")
	}

	// Resolve every line item before any mutation: price snapshots, stock
	// pre-checks, and the decrement list. The pre-check gives a descriptive
	// error up front; the conditional decrement inside the transaction is
	// what actually guarantees stock never goes negative under concurrency.
	var (
		items      []models.OrderItem
		decrements []repository.StockDecrement
		subtotal   float64
	)
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, validationErrorf("item %d: quantity must be positive", i+1)
		}
		switch {
		case item.ProductID != nil && item.ComboID != nil:
			return nil, validationErrorf("item %d: must reference a product or a combo, not both", i+1)
		case item.ProductID != nil:
			product, err := s.productRepo.GetByID(*item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, validationErrorf("item %d: product %d not found", i+1, *item.ProductID)
				}
				return nil, err
			}
			if !product.Active || !product.Available {
				return nil, validationErrorf("product %q is not available", product.Name)
			}
			if product.StockQuantity < item.Quantity {
				return nil, &ValidationError{Message: (&repository.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.StockQuantity,
				}).Error()}
			}
			items = append(items, models.OrderItem{
				ProductID:  item.ProductID,
				Name:       product.Name,
				Quantity:   item.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: product.Price * float64(item.Quantity),
				Notes:      item.Notes,
			})
			decrements = append(decrements, repository.StockDecrement{ProductID: product.ID, Quantity: item.Quantity})
			subtotal += product.Price * float64(item.Quantity)
		case item.ComboID != nil:
			combo, err := s.comboRepo.GetByID(*item.ComboID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, validationErrorf("item %d: combo %d not found", i+1, *item.ComboID)
				}
				return nil, err
			}
			if !combo.Active {
				return nil, validationErrorf("combo %q is not available", combo.Name)
			}
			// Combo stock is tracked per constituent product.
			for _, ci := range combo.Items {
				if ci.Optional {
					continue
				}
				needed := ci.Quantity * item.Quantity
				if ci.Product != nil && ci.Product.StockQuantity < needed {
					return nil, &ValidationError{Message: (&repository.InsufficientStockError{
						ProductID:   ci.ProductID,
						ProductName: ci.Product.Name,
						Requested:   needed,
						Available:   ci.Product.StockQuantity,
					}).Error()}
				}
				decrements = append(decrements, repository.StockDecrement{ProductID: ci.ProductID, Quantity: needed})
			}
			items = append(items, models.OrderItem{
				ComboID:    item.ComboID,
				Name:       combo.Name,
				Quantity:   item.Quantity,
				UnitPrice:  combo.Price,
				TotalPrice: combo.Price * float64(item.Quantity),
				Notes:      item.Notes,
			})
			subtotal += combo.Price * float64(item.Quantity)
		default:
			return nil, validationErrorf("item %d: must reference a product or a combo", i+1)
		}
	}

	total := subtotal + input.DeliveryFee - input.Discount + input.Tax
	if input.Total != 0 && math.Abs(input.Total-total) > totalsTolerance {
		return nil, validationErrorf("order totals do not reconcile: declared %.2f, computed %.2f", input.Total, total)
	}

	status := models.OrderPending
	if input.Status != "" {
		if !models.ValidStatus(input.Status) {
			return nil, validationErrorf("unknown order status %q", input.Status)
		}
		status = input.Status
	}
	orderNumber := input.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber()
	}

	order := &models.Order{
		OrderNumber:     orderNumber,
		RestaurantID:    input.RestaurantID,
		Status:          status,
		Type:            input.Type,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerEmail:   input.CustomerEmail,
		DeliveryAddress: input.DeliveryAddress,
		Subtotal:        subtotal,
		DeliveryFee:     input.DeliveryFee,
		Discount:        input.Discount,
		Tax:             input.Tax,
		Total:           total,
		PaymentMethod:   input.PaymentMethod,
		Items:           items,
	}

	if err := s.orderRepo.Create(order, decrements); err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			// Lost the race between pre-check and commit; the whole
			// transaction rolled back, nothing was persisted.
			return nil, &ValidationError{Message: stockErr.Error()}
		}
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("restaurant_id", order.RestaurantID).
		Float64("total", order.Total).
		Int("items", len(order.Items)).
		Msg("order created")
	return order, nil
}

func (s *orderService) RunPostCreationEffects(ctx context.Context, order *models.Order) []SideEffectResult {
	var results []SideEffectResult

	notify := SideEffectResult{Name: "restaurant_notification", OK: true}
	if err := s.notifier.NotifyNewOrder(ctx, order); err != nil {
		notify.OK = false
		notify.Error = err.Error()
	}
	results = append(results, notify)

	if order.Type == models.TypeDelivery && order.PaymentMethod.InstantSettlement() {
		dispatchResult := SideEffectResult{Name: "driver_dispatch", OK: true}
		if _, err := s.DispatchDriver(ctx, order.ID, ""); err != nil {
			dispatchResult.OK = false
			dispatchResult.Error = err.Error()
		}
		results = append(results, dispatchResult)
	}

	for _, r := range results {
		if !r.OK {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("effect", r.Name).
				Str("error", r.Error).
				Msg("post-creation side effect failed")
		}
	}
	return results
}

func (s *orderService) TransitionStatus(ctx context.Context, orderID uint, status models.OrderStatus, notes, changedBy string) (*models.Order, []SideEffectResult, error) {
	if !models.ValidStatus(status) {
		return nil, nil, validationErrorf("unknown order status %q", status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, validationErrorf("order %d not found", orderID)
		}
		return nil, nil, err
	}

	previous := order.Status
	historyNotes := notes
	if previous != status && !models.AllowedTransition(previous, status) {
		// The dashboard sets statuses free-form, so the transition is
		// applied anyway; the history row records that it left the graph.
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("from", string(previous)).
			Str("to", string(status)).
			Msg("out-of-graph status transition")
		if historyNotes != "" {
			historyNotes += " "
		}
		historyNotes += fmt.Sprintf("(out-of-graph transition from %s)", previous)
	}

	order.Status = status
	switch status {
	case models.OrderDelivered:
		now := time.Now()
		order.DeliveredAt = &now
	case models.OrderCancelled:
		if notes != "" {
			order.CancelReason = notes
		} else if order.CancelReason == "" {
			order.CancelReason = "cancelled by staff"
		}
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := s.orderRepo.AppendHistory(&models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    status,
		Notes:     historyNotes,
		ChangedBy: changedBy,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to append status history: %w", err)
	}

	effect := SideEffectResult{Name: "status_notification", OK: true}
	if err := s.notifier.NotifyStatus(ctx, order); err != nil {
		effect.OK = false
		effect.Error = err.Error()
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status changed")
	return order, []SideEffectResult{effect}, nil
}

func (s *orderService) DispatchDriver(ctx context.Context, orderID uint, providerName string) (*delivery.DeliveryResponse, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("order %d not found", orderID)
		}
		return nil, err
	}
	if order.Type != models.TypeDelivery {
		return nil, validationErrorf("order %s is %s; only delivery orders are dispatched", order.OrderNumber, order.Type)
	}

	restaurant, err := s.restaurantRepo.GetByID(order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant %s: %w", order.RestaurantID, err)
	}

	provider, err := s.dispatch.Get(providerName)
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	resp, err := provider.RequestDelivery(ctx, &delivery.DeliveryRequest{
		QuoteRequest: delivery.QuoteRequest{
			PickupAddress:   restaurant.Address,
			DeliveryAddress: order.DeliveryAddress,
			OrderValue:      order.Total,
			ItemCount:       len(order.Items),
		},
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		RestaurantName:  restaurant.Name,
		RestaurantPhone: restaurant.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch failed for order %s: %w", order.OrderNumber, err)
	}

	if !resp.OK {
		if _, _, terr := s.TransitionStatus(ctx, order.ID, models.OrderDispatchFailed, resp.FailureReason, ""); terr != nil {
			s.logger.Error().Err(terr).Str("order_number", order.OrderNumber).Msg("failed to record dispatch failure")
		}
		if nerr := s.notifier.NotifyDispatchFailed(ctx, order, resp.FailureReason); nerr != nil {
			s.logger.Warn().Err(nerr).Str("order_number", order.OrderNumber).Msg("dispatch-failure alert not sent")
		}
		return resp, nil
	}

	order.LalamoveOrderID = &resp.DeliveryID
	order.TrackingURL = resp.TrackingURL
	if resp.Driver != nil {
		if blob, merr := json.Marshal(resp.Driver); merr == nil {
			order.DriverInfo = string(blob)
		}
	}
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to store dispatch references: %w", err)
	}
	if _, _, err := s.TransitionStatus(ctx, order.ID, models.OrderDriverDispatched, "driver requested via "+resp.Provider, ""); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to record dispatch status")
	}
	return resp, nil
}

func (s *orderService) GetDispatchStatus(ctx context.Context, orderID uint) (*delivery.TrackingInfo, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("order %d not found", orderID)
		}
		return nil, err
	}
	if order.LalamoveOrderID == nil {
		return nil, validationErrorf("order %s has no delivery dispatched", order.OrderNumber)
	}

	// The default provider handled the dispatch unless tracking ids say
	// otherwise; local pool ids are prefixed.
	providerName := ""
	if strings.HasPrefix(*order.LalamoveOrderID, "local-") {
		providerName = "local"
	} else {
		providerName = "lalamove"
	}
	provider, err := s.dispatch.Get(providerName)
	if err != nil {
		return nil, err
	}
	return provider.TrackDelivery(ctx, *order.LalamoveOrderID)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("order %d not found", id)
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return s.orderRepo.GetByRestaurant(restaurantID)
}

func (s *orderService) GetHistory(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	return s.orderRepo.GetHistory(orderID)
}

// ApplyProviderUpdate folds a courier webhook update onto the order:
// mapped status, optional driver payload, history row, and the matching
// customer notification, all best-effort beyond the persistence itself.
func (s *orderService) ApplyProviderUpdate(ctx context.Context, order *models.Order, status models.OrderStatus, driver *delivery.DriverInfo, note string) error {
	if driver != nil {
		if blob, err := json.Marshal(driver); err == nil {
			order.DriverInfo = string(blob)
		}
	}
	// TransitionStatus re-reads the order, so the driver blob and any
	// backfilled tracking URL must hit the store first.
	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to store provider update: %w", err)
	}

	if order.Status != status {
		if _, _, err := s.TransitionStatus(ctx, order.ID, status, note, ""); err != nil {
			return err
		}
	}

	if driver != nil {
		if err := s.notifier.NotifyDriverAssigned(ctx, order, driver); err != nil {
			s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("driver-assigned notification not sent")
		}
	}
	return nil
}
