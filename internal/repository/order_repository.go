package repository

import (
	"errors"

	"restaurant_manager/internal/models"

	"gorm.io/gorm"
)

// StockDecrement is one product decrement to apply atomically with an
// order creation.
type StockDecrement struct {
	ProductID uint
	Quantity  int
}

type OrderRepository interface {
	// Create persists the order, its items, the initial status history row,
	// the per-product stock decrements and their SALE movements in one
	// transaction. Any failed decrement aborts the whole creation.
	Create(order *models.Order, decrements []StockDecrement) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	GetByLalamoveID(lalamoveOrderID string) (*models.Order, error)
	GetByRestaurant(restaurantID string) ([]models.Order, error)
	Update(order *models.Order) error
	AppendHistory(history *models.OrderStatusHistory) error
	GetHistory(orderID uint) ([]models.OrderStatusHistory, error)
}

type orderRepository struct {
	db          *gorm.DB
	productRepo ProductRepository
}

func NewOrderRepository(db *gorm.DB, productRepo ProductRepository) OrderRepository {
	return &orderRepository{db: db, productRepo: productRepo}
}

func (r *orderRepository) Create(order *models.Order, decrements []StockDecrement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, dec := range decrements {
			if err := r.productRepo.DecrementStock(tx, dec.ProductID, dec.Quantity); err != nil {
				return err
			}
			movement := models.StockMovement{
				ProductID: dec.ProductID,
				Type:      models.MovementSale,
				Quantity:  dec.Quantity,
				Reason:    "order " + order.OrderNumber,
				OrderID:   &order.ID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		history := models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  order.Status,
			Notes:   "order created",
		}
		return tx.Create(&history).Error
	})
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByLalamoveID(lalamoveOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("lalamove_order_id = ?", lalamoveOrderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByRestaurant(restaurantID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) AppendHistory(history *models.OrderStatusHistory) error {
	return r.db.Create(history).Error
}

func (r *orderRepository) GetHistory(orderID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.Where("order_id = ?", orderID).
		Order("created_at, id").
		Find(&history).Error
	return history, err
}
