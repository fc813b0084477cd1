package repository

import (
	"restaurant_manager/internal/models"

	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(movement *models.StockMovement) error
	GetByProduct(productID uint) ([]models.StockMovement, error)
	GetRecent(limit int) ([]models.StockMovement, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(movement *models.StockMovement) error {
	return r.db.Create(movement).Error
}

func (r *stockMovementRepository) GetByProduct(productID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) GetRecent(limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []models.StockMovement
	err := r.db.Preload("Product").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
