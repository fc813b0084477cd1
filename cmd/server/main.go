package main

import (
	"errors"
	"os"
	"time"

	"restaurant_manager/internal/config"
	"restaurant_manager/internal/database"
	"restaurant_manager/internal/delivery"
	"restaurant_manager/internal/handlers"
	"restaurant_manager/internal/models"
	"restaurant_manager/internal/redis"
	"restaurant_manager/internal/repository"
	"restaurant_manager/internal/services"
	"restaurant_manager/pkg/geocoder"
	"restaurant_manager/pkg/lalamove"
	"restaurant_manager/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize repositories
	restaurantRepo := repository.NewRestaurantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	comboRepo := repository.NewComboRepository(db)
	orderRepo := repository.NewOrderRepository(db, productRepo)
	movementRepo := repository.NewStockMovementRepository(db)

	// Ensure the default restaurant exists so single-tenant installs work
	// out of the box.
	if _, err := restaurantRepo.GetByID(cfg.DefaultRestaurantID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Fatal().Err(err).Msg("failed to load default restaurant")
		}
		seed := &models.Restaurant{
			ID:        cfg.DefaultRestaurantID,
			Name:      "Restaurant",
			Phone:     cfg.RestaurantPhone,
			Latitude:  cfg.FallbackLatitude,
			Longitude: cfg.FallbackLongitude,
		}
		if err := restaurantRepo.Upsert(seed); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed default restaurant")
		}
	}

	// Delivery providers
	registry := delivery.NewRegistry(cfg.DefaultProvider, logger)
	registry.Register(delivery.NewLocalPool(cfg.DeliveryBaseFee, cfg.DeliveryPerKm, []delivery.DriverInfo{
		{Name: "House driver 1", VehicleType: "MOTORCYCLE"},
		{Name: "House driver 2", VehicleType: "MOTORCYCLE"},
	}, logger))
	if cfg.LalamoveAPIKey != "" {
		lalamoveClient := lalamove.NewClient(cfg.LalamoveAPIURL, cfg.LalamoveAPIKey, cfg.LalamoveAPISecret, cfg.LalamoveMarket)
		geocoderClient := geocoder.NewClient(cfg.GeocoderURL)
		registry.Register(delivery.NewLalamoveProvider(
			lalamoveClient,
			geocoderClient,
			delivery.VehiclePolicy{MotorcycleMax: cfg.VehicleMotorcycleMax, CarMax: cfg.VehicleCarMax},
			geocoder.Coordinates{Latitude: cfg.FallbackLatitude, Longitude: cfg.FallbackLongitude},
			logger,
		))
	}

	// Initialize services
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	providerTimeout := time.Duration(cfg.ProviderTimeout) * time.Second
	notificationService := services.NewNotificationService(whatsappClient, cfg.RestaurantPhone, providerTimeout, logger)
	menuService := services.NewMenuService(categoryRepo, productRepo, comboRepo, redisClient, time.Duration(cfg.CacheTTL)*time.Second, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, comboRepo, restaurantRepo, registry, notificationService, logger)
	stockService := services.NewStockService(db, productRepo, movementRepo, logger)
	webhookService := services.NewWebhookService(orderRepo, orderService, redisClient, logger)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, cfg.DefaultRestaurantID)
	menuHandler := handlers.NewMenuHandler(menuService, cfg.DefaultRestaurantID)
	deliveryHandler := handlers.NewDeliveryHandler(registry)
	webhookHandler := handlers.NewWebhookHandler(webhookService, logger)
	stockHandler := handlers.NewStockHandler(stockService)

	// Setup routes
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/menu", menuHandler.GetMenu)

	router.POST("/orders", orderHandler.CreateOrder)
	router.GET("/orders", orderHandler.ListOrders)
	router.GET("/orders/:id", orderHandler.GetOrder)
	router.GET("/orders/:id/history", orderHandler.GetOrderHistory)
	router.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
	router.POST("/orders/:id/dispatch-driver", orderHandler.DispatchDriver)
	router.GET("/orders/:id/dispatch-driver", orderHandler.GetDispatchStatus)

	router.POST("/delivery/quote", deliveryHandler.GetQuote)
	router.POST("/delivery/request", deliveryHandler.RequestDelivery)
	router.GET("/delivery/track/:id", deliveryHandler.TrackDelivery)
	router.POST("/delivery/cancel/:id", deliveryHandler.CancelDelivery)

	router.POST("/webhooks/delivery", webhookHandler.HandleDelivery)

	router.POST("/categories", menuHandler.CreateCategory)
	router.GET("/categories", menuHandler.ListCategories)
	router.PUT("/categories/:id", menuHandler.UpdateCategory)
	router.DELETE("/categories/:id", menuHandler.DeleteCategory)

	router.POST("/products", menuHandler.CreateProduct)
	router.GET("/products", menuHandler.ListProducts)
	router.GET("/products/low-stock", menuHandler.ListLowStock)
	router.GET("/products/:id", menuHandler.GetProduct)
	router.PUT("/products/:id", menuHandler.UpdateProduct)
	router.DELETE("/products/:id", menuHandler.DeleteProduct)

	router.POST("/combos", menuHandler.CreateCombo)
	router.GET("/combos", menuHandler.ListCombos)
	router.GET("/combos/:id", menuHandler.GetCombo)
	router.PUT("/combos/:id", menuHandler.UpdateCombo)
	router.DELETE("/combos/:id", menuHandler.DeleteCombo)

	router.POST("/stock/batches", stockHandler.ReceiveBatch)
	router.POST("/stock/movements", stockHandler.CreateMovement)
	router.POST("/stock/production", stockHandler.Produce)
	router.GET("/stock/movements", stockHandler.ListMovements)

	// Start server
	logger.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
