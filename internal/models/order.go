package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending          OrderStatus = "PENDING"
	OrderConfirmed        OrderStatus = "CONFIRMED"
	OrderPreparing        OrderStatus = "PREPARING"
	OrderReady            OrderStatus = "READY"
	OrderDriverDispatched OrderStatus = "DRIVER_DISPATCHED"
	OrderDispatchFailed   OrderStatus = "DISPATCH_FAILED"
	OrderOutForDelivery   OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered        OrderStatus = "DELIVERED"
	OrderDeliveryFailed   OrderStatus = "DELIVERY_FAILED"
	OrderCancelled        OrderStatus = "CANCELLED"
	OrderRefunded         OrderStatus = "REFUNDED"
)

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
		OrderDriverDispatched, OrderDispatchFailed, OrderOutForDelivery,
		OrderDelivered, OrderDeliveryFailed, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// allowedTransitions is the expected lifecycle graph. The admin dashboard
// sets statuses free-form, so out-of-graph transitions are applied anyway;
// they are logged and annotated in the status history instead of rejected.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	// Instant-settlement delivery orders dispatch straight from PENDING.
	OrderPending:          {OrderConfirmed, OrderDriverDispatched, OrderDispatchFailed, OrderCancelled},
	OrderConfirmed:        {OrderPreparing, OrderCancelled},
	OrderPreparing:        {OrderReady, OrderCancelled},
	OrderReady:            {OrderDriverDispatched, OrderDispatchFailed, OrderOutForDelivery, OrderDelivered, OrderCancelled},
	OrderDriverDispatched: {OrderOutForDelivery, OrderDeliveryFailed, OrderCancelled},
	OrderDispatchFailed:   {OrderDriverDispatched, OrderOutForDelivery, OrderCancelled},
	OrderOutForDelivery:   {OrderDelivered, OrderDeliveryFailed},
	OrderDelivered:        {OrderRefunded},
	OrderDeliveryFailed:   {OrderDriverDispatched, OrderCancelled, OrderRefunded},
	OrderCancelled:        {OrderRefunded},
	OrderRefunded:         {},
}

// AllowedTransition reports whether from→to is part of the expected
// lifecycle graph.
func AllowedTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderType string

const (
	TypeDelivery OrderType = "DELIVERY"
	TypeTakeaway OrderType = "TAKEAWAY"
	TypeDineIn   OrderType = "DINE_IN"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentPix    PaymentMethod = "PIX"
	PaymentCard   PaymentMethod = "CARD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// InstantSettlement reports whether the method settles at checkout, which
// is the trigger for immediate driver dispatch on delivery orders.
func (m PaymentMethod) InstantSettlement() bool {
	return m == PaymentCash || m == PaymentPix
}

type Order struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	OrderNumber   string      `json:"order_number" gorm:"unique;not null"`
	RestaurantID  string      `json:"restaurant_id" gorm:"not null;index"`
	Status        OrderStatus `json:"status" gorm:"not null;default:'PENDING'"`
	Type          OrderType   `json:"type" gorm:"not null;default:'DELIVERY'"`

	// Customer snapshot, denormalized so the order stays reconstructable
	// even if the customer record changes later.
	CustomerName  string `json:"customer_name" gorm:"not null"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	// Serialized structured address (JSON), empty for takeaway/dine-in.
	DeliveryAddress string `json:"delivery_address" gorm:"type:text"`

	Subtotal    float64 `json:"subtotal" gorm:"not null"`
	DeliveryFee float64 `json:"delivery_fee"`
	Discount    float64 `json:"discount"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total" gorm:"not null"`

	PaymentMethod PaymentMethod `json:"payment_method" gorm:"not null"`
	PaymentStatus string        `json:"payment_status" gorm:"default:'PENDING'"`

	// Third-party delivery references, set once a courier accepts the order.
	LalamoveOrderID *string `json:"lalamove_order_id" gorm:"index"`
	TrackingURL     string  `json:"tracking_url"`
	DriverInfo      string  `json:"driver_info" gorm:"type:text"` // JSON blob from the provider

	CancelReason string     `json:"cancel_reason"`
	DeliveredAt  *time.Time `json:"delivered_at"`

	Items         []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
