package services

import (
	"context"
	"errors"
	"time"

	"restaurant_manager/internal/models"
	"restaurant_manager/internal/redis"
	"restaurant_manager/internal/repository"

	"github.com/rs/zerolog"
)

// MenuCache is satisfied by the Redis client; tests plug in an in-memory
// fake.
type MenuCache interface {
	GetMenu(ctx context.Context, restaurantID string, dest interface{}) error
	SetMenu(ctx context.Context, restaurantID string, menu interface{}, ttl time.Duration) error
	InvalidateMenu(ctx context.Context, restaurantID string) error
}

// PublicMenu is the customer-facing menu: active products grouped by
// category, plus active combos.
type PublicMenu struct {
	Categories []MenuCategory `json:"categories"`
	Combos     []models.Combo `json:"combos"`
}

type MenuCategory struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

type MenuService interface {
	GetPublicMenu(ctx context.Context, restaurantID string) (*PublicMenu, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, restaurantID string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, restaurantID string, id uint) error

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, restaurantID string) ([]models.Product, error)
	ListLowStock(ctx context.Context, restaurantID string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, restaurantID string, id uint) error

	CreateCombo(ctx context.Context, combo *models.Combo) error
	GetCombo(ctx context.Context, id uint) (*models.Combo, error)
	ListCombos(ctx context.Context, restaurantID string) ([]models.Combo, error)
	UpdateCombo(ctx context.Context, combo *models.Combo) error
	DeleteCombo(ctx context.Context, restaurantID string, id uint) error
}

type menuService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	comboRepo    repository.ComboRepository
	cache        MenuCache
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

func NewMenuService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	comboRepo repository.ComboRepository,
	cache MenuCache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) MenuService {
	return &menuService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		comboRepo:    comboRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "menu_service").Logger(),
	}
}

func (s *menuService) GetPublicMenu(ctx context.Context, restaurantID string) (*PublicMenu, error) {
	var cached PublicMenu
	err := s.cache.GetMenu(ctx, restaurantID, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		// A broken cache degrades to a DB read, it doesn't break the menu.
		s.logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("menu cache read failed")
	}

	menu, err := s.buildMenu(restaurantID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetMenu(ctx, restaurantID, menu, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("menu cache write failed")
	}
	return menu, nil
}

func (s *menuService) buildMenu(restaurantID string) (*PublicMenu, error) {
	categories, err := s.categoryRepo.GetByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.GetByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}
	combos, err := s.comboRepo.GetByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uint][]models.Product)
	for _, p := range products {
		if p.Active && p.Available {
			byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
		}
	}

	menu := &PublicMenu{}
	for _, c := range categories {
		if !c.Active {
			continue
		}
		if items := byCategory[c.ID]; len(items) > 0 {
			menu.Categories = append(menu.Categories, MenuCategory{Category: c, Products: items})
		}
	}
	for _, combo := range combos {
		if combo.Active {
			menu.Combos = append(menu.Combos, combo)
		}
	}
	return menu, nil
}

func (s *menuService) invalidate(ctx context.Context, restaurantID string) {
	if err := s.cache.InvalidateMenu(ctx, restaurantID); err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("menu cache invalidation failed")
	}
}

// Categories

func (s *menuService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return validationErrorf("category name is required")
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return err
	}
	s.invalidate(ctx, category.RestaurantID)
	return nil
}

func (s *menuService) ListCategories(ctx context.Context, restaurantID string) ([]models.Category, error) {
	return s.categoryRepo.GetByRestaurant(restaurantID)
}

func (s *menuService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := s.categoryRepo.Update(category); err != nil {
		return err
	}
	s.invalidate(ctx, category.RestaurantID)
	return nil
}

func (s *menuService) DeleteCategory(ctx context.Context, restaurantID string, id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

// Products

func (s *menuService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return validationErrorf("product name is required")
	}
	if product.Price < 0 {
		return validationErrorf("product price cannot be negative")
	}
	if product.StockQuantity < 0 {
		return validationErrorf("product stock cannot be negative")
	}
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	s.invalidate(ctx, product.RestaurantID)
	return nil
}

func (s *menuService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("product %d not found", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *menuService) ListProducts(ctx context.Context, restaurantID string) ([]models.Product, error) {
	return s.productRepo.GetByRestaurant(restaurantID)
}

func (s *menuService) ListLowStock(ctx context.Context, restaurantID string) ([]models.Product, error) {
	return s.productRepo.GetLowStock(restaurantID)
}

func (s *menuService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if product.Price < 0 {
		return validationErrorf("product price cannot be negative")
	}
	if err := s.productRepo.Update(product); err != nil {
		return err
	}
	s.invalidate(ctx, product.RestaurantID)
	return nil
}

func (s *menuService) DeleteProduct(ctx context.Context, restaurantID string, id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

// Combos

func (s *menuService) CreateCombo(ctx context.Context, combo *models.Combo) error {
	if combo.Name == "" {
		return validationErrorf("combo name is required")
	}
	if len(combo.Items) == 0 {
		return validationErrorf("combo must contain at least one item")
	}
	if err := s.comboRepo.Create(combo); err != nil {
		return err
	}
	s.invalidate(ctx, combo.RestaurantID)
	return nil
}

func (s *menuService) GetCombo(ctx context.Context, id uint) (*models.Combo, error) {
	combo, err := s.comboRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErrorf("combo %d not found", id)
		}
		return nil, err
	}
	return combo, nil
}

func (s *menuService) ListCombos(ctx context.Context, restaurantID string) ([]models.Combo, error) {
	return s.comboRepo.GetByRestaurant(restaurantID)
}

func (s *menuService) UpdateCombo(ctx context.Context, combo *models.Combo) error {
	if err := s.comboRepo.Update(combo); err != nil {
		return err
	}
	s.invalidate(ctx, combo.RestaurantID)
	return nil
}

func (s *menuService) DeleteCombo(ctx context.Context, restaurantID string, id uint) error {
	if err := s.comboRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, restaurantID)
	return nil
}
