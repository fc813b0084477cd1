package delivery

import (
	"context"
	"fmt"
	"time"
)

// Provider is the normalized interface over interchangeable delivery
// backends. Implementations never panic across this boundary: network or
// provider-level failures come back as *ProviderError, and a declined
// dispatch is a DeliveryResponse with OK=false rather than an error.
type Provider interface {
	Name() string
	GetQuote(ctx context.Context, req *QuoteRequest) (*Quote, error)
	RequestDelivery(ctx context.Context, req *DeliveryRequest) (*DeliveryResponse, error)
	TrackDelivery(ctx context.Context, deliveryID string) (*TrackingInfo, error)
	CancelDelivery(ctx context.Context, deliveryID, reason string) (bool, error)
}

type QuoteRequest struct {
	PickupAddress   string  `json:"pickup_address"`
	DeliveryAddress string  `json:"delivery_address"`
	OrderValue      float64 `json:"order_value"`
	ItemCount       int     `json:"item_count"`
}

type Quote struct {
	Provider         string  `json:"provider"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	QuotationID      string  `json:"quotation_id,omitempty"`
}

type DeliveryRequest struct {
	QuoteRequest
	OrderNumber     string `json:"order_number"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	RestaurantName  string `json:"restaurant_name"`
	RestaurantPhone string `json:"restaurant_phone"`
}

type DriverInfo struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
	PlateNumber string `json:"plate_number"`
}

// DeliveryResponse reports the outcome of a dispatch attempt. OK=false is
// a structured failure the caller reacts to (mark dispatch failed, alert
// the restaurant) without the request pipeline erroring out.
type DeliveryResponse struct {
	OK                  bool        `json:"ok"`
	FailureReason       string      `json:"failure_reason,omitempty"`
	Provider            string      `json:"provider"`
	DeliveryID          string      `json:"delivery_id,omitempty"`
	TrackingURL         string      `json:"tracking_url,omitempty"`
	Driver              *DriverInfo `json:"driver,omitempty"`
	Fee                 float64     `json:"fee"`
	EstimatedPickupAt   time.Time   `json:"estimated_pickup_at"`
	EstimatedDeliveryAt time.Time   `json:"estimated_delivery_at"`
}

type TrackingInfo struct {
	Provider    string      `json:"provider"`
	DeliveryID  string      `json:"delivery_id"`
	Status      string      `json:"status"`
	Driver      *DriverInfo `json:"driver,omitempty"`
	TrackingURL string      `json:"tracking_url,omitempty"`
}

// ProviderError wraps any failure crossing a provider network boundary
// with the provider name and a human-readable message.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery provider %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("delivery provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
