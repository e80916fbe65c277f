package main

import (
	"os"
	"time"

	"buysmart/config"
	"buysmart/internal/delivery"
	"buysmart/internal/repository"
	"buysmart/internal/usecase"
	"buysmart/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting BuySmart backend...")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("FATAL: Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	// --- Dependency Injection ---
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	customerRepo := repository.NewPostgresCustomerRepository(database, logger)
	sessionRepo := repository.NewPostgresSessionRepository(database, logger)
	wishlistRepo := repository.NewPostgresWishlistRepository(database, logger)
	paymentRepo := repository.NewPostgresPaymentRepository(database, logger)
	logger.Info("Repositories initialized.")

	sessionTTL := time.Duration(cfg.SessionTTL) * time.Minute
	orderUseCase := usecase.NewOrderUseCase(orderRepo, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	customerUseCase := usecase.NewCustomerUseCase(customerRepo, sessionRepo, sessionTTL, logger)
	wishlistUseCase := usecase.NewWishlistUseCase(wishlistRepo, productRepo, logger)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, orderRepo, logger)
	logger.Info("Use cases initialized.")

	orderHandler := delivery.NewOrderHandler(orderUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	authHandler := delivery.NewAuthHandler(customerUseCase, logger)
	wishlistHandler := delivery.NewWishlistHandler(wishlistUseCase, logger)
	paymentHandler := delivery.NewPaymentHandler(paymentUseCase, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))
	router.RedirectTrailingSlash = false

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler.RegisterPublicRoutes(router)
	productHandler.RegisterRoutes(router)

	protected := router.Group("")
	protected.Use(delivery.AuthMiddleware(customerUseCase, logger))
	authHandler.RegisterProtectedRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	wishlistHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on port %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}
