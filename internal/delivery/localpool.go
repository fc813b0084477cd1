package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalPool is the fallback provider: an in-process pool of the
// restaurant's own drivers. Useful where the courier integration is not
// configured, and as a deterministic backend for tests.
type LocalPool struct {
	mu        sync.Mutex
	available []DriverInfo
	active    map[string]localDelivery // delivery id → assignment

	baseFee float64
	perKm   float64
	logger  zerolog.Logger
}

type localDelivery struct {
	driver      DriverInfo
	orderNumber string
	status      string
}

// assumedDistanceKm stands in for real routing; the local pool serves a
// fixed delivery radius.
const assumedDistanceKm = 5.0

func NewLocalPool(baseFee, perKm float64, drivers []DriverInfo, logger zerolog.Logger) *LocalPool {
	pool := &LocalPool{
		available: append([]DriverInfo(nil), drivers...),
		active:    make(map[string]localDelivery),
		baseFee:   baseFee,
		perKm:     perKm,
		logger:    logger.With().Str("provider", "local").Logger(),
	}
	return pool
}

func (p *LocalPool) Name() string { return "local" }

func (p *LocalPool) fee() float64 {
	return p.baseFee + p.perKm*assumedDistanceKm
}

func (p *LocalPool) GetQuote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	return &Quote{
		Provider:         p.Name(),
		Price:            p.fee(),
		Currency:         "BRL",
		DistanceKm:       assumedDistanceKm,
		EstimatedMinutes: estimateMinutes(assumedDistanceKm),
	}, nil
}

func (p *LocalPool) RequestDelivery(ctx context.Context, req *DeliveryRequest) (*DeliveryResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.available) == 0 {
		return &DeliveryResponse{
			OK:            false,
			Provider:      p.Name(),
			FailureReason: "no drivers available in the local pool",
		}, nil
	}

	driver := p.available[0]
	p.available = p.available[1:]

	deliveryID := "local-" + uuid.NewString()
	p.active[deliveryID] = localDelivery{
		driver:      driver,
		orderNumber: req.OrderNumber,
		status:      "ASSIGNED",
	}

	p.logger.Info().
		Str("delivery_id", deliveryID).
		Str("driver", driver.Name).
		Str("order_number", req.OrderNumber).
		Msg("driver assigned from local pool")

	eta := estimateMinutes(assumedDistanceKm)
	return &DeliveryResponse{
		OK:                  true,
		Provider:            p.Name(),
		DeliveryID:          deliveryID,
		Driver:              &driver,
		Fee:                 p.fee(),
		EstimatedPickupAt:   time.Now().Add(time.Duration(eta/2) * time.Minute),
		EstimatedDeliveryAt: time.Now().Add(time.Duration(eta) * time.Minute),
	}, nil
}

func (p *LocalPool) TrackDelivery(ctx context.Context, deliveryID string) (*TrackingInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.active[deliveryID]
	if !ok {
		return nil, &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("unknown delivery %s", deliveryID)}
	}
	driver := d.driver
	return &TrackingInfo{
		Provider:   p.Name(),
		DeliveryID: deliveryID,
		Status:     d.status,
		Driver:     &driver,
	}, nil
}

// CancelDelivery returns the assigned driver to the available pool.
func (p *LocalPool) CancelDelivery(ctx context.Context, deliveryID, reason string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.active[deliveryID]
	if !ok {
		return false, &ProviderError{Provider: p.Name(), Message: fmt.Sprintf("unknown delivery %s", deliveryID)}
	}
	delete(p.active, deliveryID)
	p.available = append(p.available, d.driver)

	p.logger.Info().
		Str("delivery_id", deliveryID).
		Str("driver", d.driver.Name).
		Str("reason", reason).
		Msg("delivery cancelled, driver returned to pool")
	return true, nil
}

// AvailableDrivers reports the current pool size for the dashboard.
func (p *LocalPool) AvailableDrivers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}
