package handlers

import (
	"net/http"
	"strconv"

	"restaurant_manager/internal/models"
	"restaurant_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	stockService services.StockService
}

func NewStockHandler(stockService services.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) ReceiveBatch(c *gin.Context) {
	var req struct {
		ProductID uint   `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	product, err := h.stockService.ReceiveBatch(c.Request.Context(), req.ProductID, req.Quantity, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *StockHandler) CreateMovement(c *gin.Context) {
	var req struct {
		ProductID uint                `json:"product_id"`
		Quantity  int                 `json:"quantity"`
		Type      models.MovementType `json:"type"`
		Reason    string              `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	product, err := h.stockService.Adjust(c.Request.Context(), req.ProductID, req.Quantity, req.Type, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *StockHandler) Produce(c *gin.Context) {
	var input services.ProductionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	product, err := h.stockService.Produce(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	if productParam := c.Query("product_id"); productParam != "" {
		productID, err := strconv.ParseUint(productParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
			return
		}
		movements, err := h.stockService.ListMovementsByProduct(c.Request.Context(), uint(productID))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movements": movements})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	movements, err := h.stockService.ListMovements(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}
