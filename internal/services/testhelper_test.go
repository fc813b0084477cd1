package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"restaurant_manager/internal/database"
	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/models"
	"restaurant_manager/internal/redis"
	"restaurant_manager/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// fakeNotifier records every notification instead of sending it.
type fakeNotifier struct {
	mu              sync.Mutex
	newOrders       []string
	statusChanges   []models.OrderStatus
	dispatchFails   []string
	driversAssigned []string
	failAll         bool
}

func (f *fakeNotifier) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("gateway unreachable")
	}
	f.newOrders = append(f.newOrders, order.OrderNumber)
	return nil
}

func (f *fakeNotifier) NotifyStatus(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("gateway unreachable")
	}
	f.statusChanges = append(f.statusChanges, order.Status)
	return nil
}

func (f *fakeNotifier) NotifyDispatchFailed(ctx context.Context, order *models.Order, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatchFails = append(f.dispatchFails, reason)
	return nil
}

func (f *fakeNotifier) NotifyDriverAssigned(ctx context.Context, order *models.Order, driver *delivery.DriverInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.driversAssigned = append(f.driversAssigned, driver.Name)
	return nil
}

// orderFixture bundles the real repositories, a local-pool-backed
// registry, and the fake notifier behind an OrderService.
type orderFixture struct {
	db          *gorm.DB
	orders      OrderService
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	comboRepo   repository.ComboRepository
	notifier    *fakeNotifier
	pool        *delivery.LocalPool
}

func newOrderFixture(t *testing.T, drivers int) *orderFixture {
	t.Helper()
	db := newTestDB(t)

	productRepo := repository.NewProductRepository(db)
	comboRepo := repository.NewComboRepository(db)
	orderRepo := repository.NewOrderRepository(db, productRepo)
	restaurantRepo := repository.NewRestaurantRepository(db)

	require.NoError(t, restaurantRepo.Upsert(&models.Restaurant{
		ID:      "default",
		Name:    "Casa da Coxinha",
		Phone:   "+5511999990000",
		Address: "Av. Paulista 1000, São Paulo",
	}))

	var pool *delivery.LocalPool
	roster := make([]delivery.DriverInfo, 0, drivers)
	for i := 0; i < drivers; i++ {
		roster = append(roster, delivery.DriverInfo{
			Name:        fmt.Sprintf("Driver %d", i+1),
			Phone:       fmt.Sprintf("+551188888%04d", i),
			VehicleType: "MOTORCYCLE",
			PlateNumber: fmt.Sprintf("ABC-%04d", i),
		})
	}
	pool = delivery.NewLocalPool(5.0, 1.5, roster, zerolog.Nop())

	registry := delivery.NewRegistry("local", zerolog.Nop())
	registry.Register(pool)

	notifier := &fakeNotifier{}
	orders := NewOrderService(orderRepo, productRepo, comboRepo, restaurantRepo, registry, notifier, zerolog.Nop())

	return &orderFixture{
		db:          db,
		orders:      orders,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		comboRepo:   comboRepo,
		notifier:    notifier,
		pool:        pool,
	}
}

func (f *orderFixture) seedProduct(t *testing.T, name string, stock, minimum int, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		RestaurantID:  "default",
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		MinimumStock:  minimum,
		Active:        true,
		Available:     true,
	}
	require.NoError(t, f.productRepo.Create(product))
	return product
}

// fakeCache is an in-memory MenuCache.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	sets          int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetMenu(ctx context.Context, restaurantID string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[restaurantID]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetMenu(ctx context.Context, restaurantID string, menu interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(menu)
	if err != nil {
		return err
	}
	c.entries[restaurantID] = raw
	c.sets++
	return nil
}

func (c *fakeCache) InvalidateMenu(ctx context.Context, restaurantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, restaurantID)
	c.invalidations++
	return nil
}

// fakeDeduper remembers claimed event ids in memory.
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (d *fakeDeduper) ClaimEvent(ctx context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}
