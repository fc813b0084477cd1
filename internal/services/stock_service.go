package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_manager/internal/models"
	"restaurant_manager/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// StockService covers the back-office stock endpoints. Every write funnels
// through the same conditional increment/decrement as order creation, so
// all stock writers are serialized by the database.
type StockService interface {
	ReceiveBatch(ctx context.Context, productID uint, quantity int, reason string) (*models.Product, error)
	Adjust(ctx context.Context, productID uint, quantity int, movementType models.MovementType, reason string) (*models.Product, error)
	Produce(ctx context.Context, input *ProductionInput) (*models.Product, error)
	ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error)
	ListMovementsByProduct(ctx context.Context, productID uint) ([]models.StockMovement, error)
}

// ProductionInput converts component products into a produced product:
// components are decremented, the product is incremented, all atomically.
type ProductionInput struct {
	ProductID  uint                  `json:"product_id"`
	Quantity   int                   `json:"quantity"`
	Components []ProductionComponent `json:"components"`
}

type ProductionComponent struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type stockService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	logger       zerolog.Logger
}

func NewStockService(db *gorm.DB, productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository, logger zerolog.Logger) StockService {
	return &stockService{
		db:           db,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		logger:       logger.With().Str("component", "stock_service").Logger(),
	}
}

func (s *stockService) ReceiveBatch(ctx context.Context, productID uint, quantity int, reason string) (*models.Product, error) {
	if quantity <= 0 {
		return nil, validationErrorf("batch quantity must be positive")
	}
	if reason == "" {
		reason = "batch received"
	}
	return s.apply(productID, quantity, models.MovementIn, reason)
}

func (s *stockService) Adjust(ctx context.Context, productID uint, quantity int, movementType models.MovementType, reason string) (*models.Product, error) {
	if quantity <= 0 {
		return nil, validationErrorf("adjustment quantity must be positive")
	}
	if movementType != models.MovementIn && movementType != models.MovementOut {
		return nil, validationErrorf("movement type must be IN or OUT")
	}
	if reason == "" {
		return nil, validationErrorf("manual adjustments require a reason")
	}
	return s.apply(productID, quantity, movementType, reason)
}

func (s *stockService) apply(productID uint, quantity int, movementType models.MovementType, reason string) (*models.Product, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if movementType == models.MovementIn {
			err = s.productRepo.IncrementStock(tx, productID, quantity)
		} else {
			err = s.productRepo.DecrementStock(tx, productID, quantity)
		}
		if err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{
			ProductID: productID,
			Type:      movementType,
			Quantity:  quantity,
			Reason:    reason,
		}).Error
	})
	if err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, &ValidationError{Message: stockErr.Error()}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("product %d not found", productID)
		}
		return nil, fmt.Errorf("stock %s failed for product %d: %w", movementType, productID, err)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product.LowOnStock() {
		s.logger.Warn().
			Str("product", product.Name).
			Int("stock", product.StockQuantity).
			Int("minimum", product.MinimumStock).
			Msg("product at or below minimum stock")
	}
	return product, nil
}

func (s *stockService) Produce(ctx context.Context, input *ProductionInput) (*models.Product, error) {
	if input.Quantity <= 0 {
		return nil, validationErrorf("production quantity must be positive")
	}
	if len(input.Components) == 0 {
		return nil, validationErrorf("production requires at least one component")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range input.Components {
			needed := c.Quantity * input.Quantity
			if err := s.productRepo.DecrementStock(tx, c.ProductID, needed); err != nil {
				return err
			}
			if err := tx.Create(&models.StockMovement{
				ProductID: c.ProductID,
				Type:      models.MovementProduction,
				Quantity:  needed,
				Reason:    fmt.Sprintf("consumed producing product %d", input.ProductID),
			}).Error; err != nil {
				return err
			}
		}
		if err := s.productRepo.IncrementStock(tx, input.ProductID, input.Quantity); err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{
			ProductID: input.ProductID,
			Type:      models.MovementProduction,
			Quantity:  input.Quantity,
			Reason:    "produced",
		}).Error
	})
	if err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, &ValidationError{Message: stockErr.Error()}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("unknown product in production request")
		}
		return nil, fmt.Errorf("production failed: %w", err)
	}

	return s.productRepo.GetByID(input.ProductID)
}

func (s *stockService) ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	return s.movementRepo.GetRecent(limit)
}

func (s *stockService) ListMovementsByProduct(ctx context.Context, productID uint) ([]models.StockMovement, error) {
	return s.movementRepo.GetByProduct(productID)
}
