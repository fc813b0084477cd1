package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"restaurant_manager/internal/models"
	"restaurant_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService        services.OrderService
	defaultRestaurantID string
}

func NewOrderHandler(orderService services.OrderService, defaultRestaurantID string) *OrderHandler {
	return &OrderHandler{
		orderService:        orderService,
		defaultRestaurantID: defaultRestaurantID,
	}
}

// checkoutRequest is the regular storefront body shape; the flat test
// shape (explicit status/order number) binds straight into
// services.CreateOrderInput.
type checkoutRequest struct {
	Customer struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer"`
	Delivery struct {
		Type    models.OrderType `json:"type"`
		Address json.RawMessage  `json:"address"`
	} `json:"delivery"`
	Items   []services.CreateOrderItemInput `json:"items"`
	Payment struct {
		Method models.PaymentMethod `json:"method"`
	} `json:"payment"`
	Totals struct {
		DeliveryFee float64 `json:"delivery_fee"`
		Discount    float64 `json:"discount"`
		Tax         float64 `json:"tax"`
		Total       float64 `json:"total"`
	} `json:"totals"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	// Two accepted body shapes. The storefront sends sub-objects; internal
	// tooling sends a flat shape with an explicit status and order number.
	var input services.CreateOrderInput
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	if _, isCheckout := probe["customer"]; isCheckout {
		var req checkoutRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
		input = services.CreateOrderInput{
			Type:            req.Delivery.Type,
			CustomerName:    req.Customer.Name,
			CustomerPhone:   req.Customer.Phone,
			CustomerEmail:   req.Customer.Email,
			DeliveryAddress: string(req.Delivery.Address),
			Items:           req.Items,
			PaymentMethod:   req.Payment.Method,
			DeliveryFee:     req.Totals.DeliveryFee,
			Discount:        req.Totals.Discount,
			Tax:             req.Totals.Tax,
			Total:           req.Totals.Total,
		}
		if string(req.Delivery.Address) == "null" {
			input.DeliveryAddress = ""
		}
	} else {
		if err := json.Unmarshal(raw, &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
	}
	input.RestaurantID = h.defaultRestaurantID

	order, err := h.orderService.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	// Side effects are best-effort and must not delay or fail the
	// response; outcomes are logged by the service.
	go h.orderService.RunPostCreationEffects(context.Background(), order)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	history, err := h.orderService.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status    models.OrderStatus `json:"status"`
		Notes     string             `json:"notes"`
		ChangedBy string             `json:"changed_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	order, effects, err := h.orderService.TransitionStatus(c.Request.Context(), id, req.Status, req.Notes, req.ChangedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "side_effects": effects})
}

func (h *OrderHandler) DispatchDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Provider string `json:"provider"`
	}
	// Body is optional; an empty provider selects the default.
	_ = c.ShouldBindJSON(&req)

	resp, err := h.orderService.DispatchDriver(c.Request.Context(), id, req.Provider)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetDispatchStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	info, err := h.orderService.GetDispatchStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
