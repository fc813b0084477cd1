package handlers

import (
	"net/http"

	"restaurant_manager/internal/delivery"

	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	registry *delivery.Registry
}

func NewDeliveryHandler(registry *delivery.Registry) *DeliveryHandler {
	return &DeliveryHandler{registry: registry}
}

type quoteRequest struct {
	delivery.QuoteRequest
	Provider string `json:"provider"`
}

// GetQuote returns one provider's quote. With provider "all" it returns
// every reachable provider's quote sorted ascending by price.
func (h *DeliveryHandler) GetQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.Provider == "all" {
		quotes := h.registry.CompareQuotes(c.Request.Context(), &req.QuoteRequest)
		c.JSON(http.StatusOK, gin.H{"quotes": quotes})
		return
	}

	provider, err := h.registry.Get(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quote, err := provider.GetQuote(c.Request.Context(), &req.QuoteRequest)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quote)
}

type deliveryRequest struct {
	delivery.DeliveryRequest
	Provider string `json:"provider"`
}

func (h *DeliveryHandler) RequestDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	provider, err := h.registry.Get(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := provider.RequestDelivery(c.Request.Context(), &req.DeliveryRequest)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DeliveryHandler) TrackDelivery(c *gin.Context) {
	provider, err := h.registry.Get(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := provider.TrackDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *DeliveryHandler) CancelDelivery(c *gin.Context) {
	var req struct {
		Provider string `json:"provider"`
		Reason   string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	provider, err := h.registry.Get(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok, err := provider.CancelDelivery(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": ok})
}
