package handlers

import (
	"net/http"

	"restaurant_manager/internal/models"
	"restaurant_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService         services.MenuService
	defaultRestaurantID string
}

func NewMenuHandler(menuService services.MenuService, defaultRestaurantID string) *MenuHandler {
	return &MenuHandler{
		menuService:         menuService,
		defaultRestaurantID: defaultRestaurantID,
	}
}

func (h *MenuHandler) GetMenu(c *gin.Context) {
	menu, err := h.menuService.GetPublicMenu(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// Categories

func (h *MenuHandler) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	category.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *MenuHandler) ListCategories(c *gin.Context) {
	categories, err := h.menuService.ListCategories(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	category.ID = id
	category.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.UpdateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.DeleteCategory(c.Request.Context(), h.defaultRestaurantID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Products

func (h *MenuHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	product.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *MenuHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.menuService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *MenuHandler) ListProducts(c *gin.Context) {
	products, err := h.menuService.ListProducts(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *MenuHandler) ListLowStock(c *gin.Context) {
	products, err := h.menuService.ListLowStock(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *MenuHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	product.ID = id
	product.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.UpdateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *MenuHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.DeleteProduct(c.Request.Context(), h.defaultRestaurantID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Combos

func (h *MenuHandler) CreateCombo(c *gin.Context) {
	var combo models.Combo
	if err := c.ShouldBindJSON(&combo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	combo.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.CreateCombo(c.Request.Context(), &combo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, combo)
}

func (h *MenuHandler) GetCombo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	combo, err := h.menuService.GetCombo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, combo)
}

func (h *MenuHandler) ListCombos(c *gin.Context) {
	combos, err := h.menuService.ListCombos(c.Request.Context(), h.defaultRestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"combos": combos})
}

func (h *MenuHandler) UpdateCombo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var combo models.Combo
	if err := c.ShouldBindJSON(&combo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	combo.ID = id
	combo.RestaurantID = h.defaultRestaurantID
	if err := h.menuService.UpdateCombo(c.Request.Context(), &combo); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, combo)
}

func (h *MenuHandler) DeleteCombo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.DeleteCombo(c.Request.Context(), h.defaultRestaurantID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
