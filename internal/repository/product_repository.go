package repository

import (
	"errors"
	"restaurant_manager/internal/models"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByRestaurant(restaurantID string) ([]models.Product, error)
	GetLowStock(restaurantID string) ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error

	// DecrementStock performs a conditional atomic decrement: the UPDATE
	// only matches while enough stock remains, so two concurrent checkouts
	// for the last unit are serialized by the database and exactly one
	// wins. Returns InsufficientStockError when the condition fails.
	DecrementStock(tx *gorm.DB, productID uint, quantity int) error
	IncrementStock(tx *gorm.DB, productID uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByRestaurant(restaurantID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").
		Where("restaurant_id = ?", restaurantID).
		Order("category_id, name").
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetLowStock(restaurantID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("restaurant_id = ? AND stock_quantity <= minimum_stock", restaurantID).
		Order("stock_quantity").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

func (r *productRepository) DecrementStock(tx *gorm.DB, productID uint, quantity int) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.StockQuantity,
		}
	}
	return nil
}

func (r *productRepository) IncrementStock(tx *gorm.DB, productID uint, quantity int) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
