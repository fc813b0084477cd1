package delivery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"restaurant_manager/pkg/geocoder"
	"restaurant_manager/pkg/lalamove"

	"github.com/rs/zerolog"
)

// Lalamove service types, picked by order value.
const (
	ServiceMotorcycle = "MOTORCYCLE"
	ServiceCar        = "CAR"
	ServiceVan        = "VAN"
)

// courierAPI is the slice of the Lalamove client the adapter uses; tests
// substitute a fake.
type courierAPI interface {
	GetQuotation(ctx context.Context, req *lalamove.QuotationRequest) (*lalamove.Quotation, error)
	PlaceOrder(ctx context.Context, req *lalamove.OrderRequest) (*lalamove.Order, error)
	GetOrder(ctx context.Context, orderID string) (*lalamove.Order, error)
	GetDriver(ctx context.Context, orderID, driverID string) (*lalamove.Driver, error)
	CancelOrder(ctx context.Context, orderID string) error
}

type addressResolver interface {
	Geocode(ctx context.Context, address string) (*geocoder.Coordinates, error)
}

// VehiclePolicy selects a courier vehicle from the order's monetary value.
// Business policy, not a technical constraint; thresholds come from config.
type VehiclePolicy struct {
	MotorcycleMax float64
	CarMax        float64
}

func (p VehiclePolicy) ServiceTypeFor(orderValue float64) string {
	switch {
	case orderValue < p.MotorcycleMax:
		return ServiceMotorcycle
	case orderValue < p.CarMax:
		return ServiceCar
	default:
		return ServiceVan
	}
}

// LalamoveProvider adapts the courier API to the Provider interface.
type LalamoveProvider struct {
	api      courierAPI
	geocoder addressResolver
	policy   VehiclePolicy
	// Substituted when geocoding fails so quotes stay available at the
	// cost of potentially inaccurate distance pricing.
	fallback geocoder.Coordinates
	logger   zerolog.Logger
}

func NewLalamoveProvider(api courierAPI, geo addressResolver, policy VehiclePolicy, fallback geocoder.Coordinates, logger zerolog.Logger) *LalamoveProvider {
	return &LalamoveProvider{
		api:      api,
		geocoder: geo,
		policy:   policy,
		fallback: fallback,
		logger:   logger.With().Str("provider", "lalamove").Logger(),
	}
}

func (p *LalamoveProvider) Name() string { return "lalamove" }

func (p *LalamoveProvider) resolve(ctx context.Context, address string) geocoder.Coordinates {
	coords, err := p.geocoder.Geocode(ctx, address)
	if err != nil {
		p.logger.Warn().Err(err).Str("address", address).Msg("geocoding failed, using fallback coordinates")
		return p.fallback
	}
	return *coords
}

func (p *LalamoveProvider) buildStops(ctx context.Context, pickup, dropoff string) []lalamove.Stop {
	pickupCoords := p.resolve(ctx, pickup)
	dropoffCoords := p.resolve(ctx, dropoff)
	return []lalamove.Stop{
		{
			Address: pickup,
			Coordinates: lalamove.Coordinates{
				Lat: strconv.FormatFloat(pickupCoords.Latitude, 'f', 6, 64),
				Lng: strconv.FormatFloat(pickupCoords.Longitude, 'f', 6, 64),
			},
		},
		{
			Address: dropoff,
			Coordinates: lalamove.Coordinates{
				Lat: strconv.FormatFloat(dropoffCoords.Latitude, 'f', 6, 64),
				Lng: strconv.FormatFloat(dropoffCoords.Longitude, 'f', 6, 64),
			},
		},
	}
}

func (p *LalamoveProvider) GetQuote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	quotation, err := p.api.GetQuotation(ctx, &lalamove.QuotationRequest{
		ServiceType: p.policy.ServiceTypeFor(req.OrderValue),
		Language:    "pt_BR",
		Stops:       p.buildStops(ctx, req.PickupAddress, req.DeliveryAddress),
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "quotation failed", Err: err}
	}

	price, err := strconv.ParseFloat(quotation.PriceBreakdown.Total, 64)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "unparseable quote price " + quotation.PriceBreakdown.Total, Err: err}
	}

	distanceKm := 0.0
	if meters, err := strconv.ParseFloat(quotation.Distance.Value, 64); err == nil {
		distanceKm = meters / 1000.0
	}

	return &Quote{
		Provider:         p.Name(),
		Price:            price,
		Currency:         quotation.PriceBreakdown.Currency,
		DistanceKm:       distanceKm,
		EstimatedMinutes: estimateMinutes(distanceKm),
		QuotationID:      quotation.QuotationID,
	}, nil
}

func (p *LalamoveProvider) RequestDelivery(ctx context.Context, req *DeliveryRequest) (*DeliveryResponse, error) {
	quote, err := p.GetQuote(ctx, &req.QuoteRequest)
	if err != nil {
		return nil, err
	}

	order, err := p.api.PlaceOrder(ctx, &lalamove.OrderRequest{
		QuotationID: quote.QuotationID,
		Sender:      lalamove.Contact{StopID: "0", Name: req.RestaurantName, Phone: req.RestaurantPhone},
		Recipients:  []lalamove.Contact{{StopID: "1", Name: req.CustomerName, Phone: req.CustomerPhone}},
		Metadata:    map[string]string{"orderNumber": req.OrderNumber},
	})
	if err != nil {
		// Declined dispatch is a structured failure, not an error: the
		// caller marks the order's dispatch as failed and moves on.
		p.logger.Error().Err(err).Str("order_number", req.OrderNumber).Msg("driver request failed")
		return &DeliveryResponse{
			OK:            false,
			Provider:      p.Name(),
			FailureReason: fmt.Sprintf("driver request failed: %v", err),
		}, nil
	}

	resp := &DeliveryResponse{
		OK:                  true,
		Provider:            p.Name(),
		DeliveryID:          order.OrderID,
		TrackingURL:         order.ShareLink,
		Fee:                 quote.Price,
		EstimatedPickupAt:   time.Now().Add(time.Duration(estimateMinutes(quote.DistanceKm)/2) * time.Minute),
		EstimatedDeliveryAt: time.Now().Add(time.Duration(estimateMinutes(quote.DistanceKm)) * time.Minute),
	}

	// Driver assignment is usually asynchronous; attach details when the
	// provider already has one.
	if order.DriverID != "" {
		if driver, err := p.api.GetDriver(ctx, order.OrderID, order.DriverID); err == nil {
			resp.Driver = &DriverInfo{
				Name:        driver.Name,
				Phone:       driver.Phone,
				VehicleType: driver.VehicleType,
				PlateNumber: driver.PlateNumber,
			}
		}
	}
	return resp, nil
}

func (p *LalamoveProvider) TrackDelivery(ctx context.Context, deliveryID string) (*TrackingInfo, error) {
	order, err := p.api.GetOrder(ctx, deliveryID)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Message: "tracking failed for " + deliveryID, Err: err}
	}

	info := &TrackingInfo{
		Provider:    p.Name(),
		DeliveryID:  order.OrderID,
		Status:      order.Status,
		TrackingURL: order.ShareLink,
	}
	if order.DriverID != "" {
		if driver, err := p.api.GetDriver(ctx, order.OrderID, order.DriverID); err == nil {
			info.Driver = &DriverInfo{
				Name:        driver.Name,
				Phone:       driver.Phone,
				VehicleType: driver.VehicleType,
				PlateNumber: driver.PlateNumber,
			}
		}
	}
	return info, nil
}

func (p *LalamoveProvider) CancelDelivery(ctx context.Context, deliveryID, reason string) (bool, error) {
	if err := p.api.CancelOrder(ctx, deliveryID); err != nil {
		return false, &ProviderError{Provider: p.Name(), Message: "cancellation failed for " + deliveryID, Err: err}
	}
	p.logger.Info().Str("delivery_id", deliveryID).Str("reason", reason).Msg("delivery cancelled")
	return true, nil
}

// estimateMinutes is a coarse door-to-door estimate: handoff overhead plus
// urban riding time.
func estimateMinutes(distanceKm float64) int {
	return 10 + int(distanceKm*3)
}
