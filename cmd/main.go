package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-admin-service/internal/cache"
	"catalog-admin-service/internal/config"
	"catalog-admin-service/internal/events"
	"catalog-admin-service/internal/handlers"
	"catalog-admin-service/internal/jobs"
	"catalog-admin-service/internal/middleware"
	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/services"
)

// @title Catalog Admin API
// @version 1.0.0
// @description Admin backend for categories, attributes, products, users and orders, including all-or-nothing bulk uploads.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient := config.InitRedis(cfg, logger)
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()
	catalogCache := cache.NewCatalogCache(redisClient, cfg.CacheTTL, logger)

	// Keep the interface nil when NATS is not configured
	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		eventsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher, continuing without event publishing")
		} else {
			logger.Info("Events publisher initialized")
			publisher = eventsPublisher
			defer eventsPublisher.Close()
		}
	} else {
		logger.Info("NATS_URL not set, event publishing disabled")
	}

	store := repository.NewStore(db, catalogCache)

	categoryService := services.NewCategoryService(store, logger)
	attributeService := services.NewAttributeService(store, logger)
	tagService := services.NewTagService(store, logger)
	productService := services.NewProductService(store, publisher, logger)
	userService := services.NewUserService(store, logger)
	orderService := services.NewOrderService(store, publisher, logger)
	bulkService := services.NewBulkUploadService(store, publisher, logger, cfg.BulkMaxItems)

	cleaner := jobs.NewUploadJobCleaner(store.UploadJobs, cfg.UploadJobRetentionDays, cfg.UploadJobCleanupSchedule, logger)
	if err := cleaner.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start upload job cleaner")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck(store))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	} else {
		api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}
	api.Use(middleware.RequireAnyRole(string(models.UserRoleAdmin), string(models.UserRoleCatalogManager)))

	registerRoutes(api, routeHandlers{
		categories: handlers.NewCategoryHandler(categoryService, logger),
		attributes: handlers.NewAttributeHandler(attributeService, logger),
		tags:       handlers.NewTagHandler(tagService, logger),
		products:   handlers.NewProductHandler(productService, logger),
		users:      handlers.NewUserHandler(userService, logger),
		orders:     handlers.NewOrderHandler(orderService, logger),
		bulk:       handlers.NewBulkUploadHandler(bulkService, logger),
	}, middleware.RateLimit(cfg.BulkRateLimitPerMinute, cfg.BulkRateLimitBurst))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting catalog-admin-service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down catalog-admin-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cleaner.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Catalog admin service stopped")
}

type routeHandlers struct {
	categories *handlers.CategoryHandler
	attributes *handlers.AttributeHandler
	tags       *handlers.TagHandler
	products   *handlers.ProductHandler
	users      *handlers.UserHandler
	orders     *handlers.OrderHandler
	bulk       *handlers.BulkUploadHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, bulkLimit gin.HandlerFunc) {
	categories := api.Group("/categories")
	{
		categories.GET("", h.categories.GetCategories)
		categories.POST("", h.categories.CreateCategory)
		categories.GET("/:id", h.categories.GetCategory)
		categories.PUT("/:id", h.categories.UpdateCategory)
		categories.DELETE("/:id", h.categories.DeleteCategory)
		categories.GET("/:id/attribute-sets", h.categories.GetCategoryAttributeSets)
	}

	attributes := api.Group("/attributes")
	{
		attributes.GET("", h.attributes.GetAttributes)
		attributes.POST("", h.attributes.CreateAttribute)
		attributes.GET("/:id", h.attributes.GetAttribute)
		attributes.PUT("/:id", h.attributes.UpdateAttribute)
		attributes.DELETE("/:id", h.attributes.DeleteAttribute)
		attributes.GET("/:id/values", h.attributes.GetValues)
		attributes.POST("/:id/values", h.attributes.AddValue)
	}
	api.DELETE("/attribute-values/:id", h.attributes.DeleteValue)

	sets := api.Group("/attribute-sets")
	{
		sets.GET("", h.attributes.GetAttributeSets)
		sets.POST("", h.attributes.CreateAttributeSet)
		sets.GET("/:id", h.attributes.GetAttributeSet)
		sets.PUT("/:id", h.attributes.UpdateAttributeSet)
		sets.DELETE("/:id", h.attributes.DeleteAttributeSet)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", h.tags.GetTags)
		tags.POST("", h.tags.CreateTag)
		tags.DELETE("/:id", h.tags.DeleteTag)
	}

	products := api.Group("/products")
	{
		products.GET("", h.products.GetProducts)
		products.POST("", h.products.CreateProduct)
		products.GET("/:id", h.products.GetProduct)
		products.PUT("/:id", h.products.UpdateProduct)
		products.PATCH("/:id/status", h.products.UpdateProductStatus)
		products.DELETE("/:id", h.products.DeleteProduct)
	}

	users := api.Group("/users")
	{
		users.GET("", h.users.GetUsers)
		users.POST("", h.users.CreateUser)
		users.GET("/:id", h.users.GetUser)
		users.PUT("/:id", h.users.UpdateUser)
		users.DELETE("/:id", h.users.DeleteUser)
		users.GET("/:id/addresses", h.users.GetAddresses)
		users.POST("/:id/addresses", h.users.AddAddress)
		users.PUT("/:id/addresses/:addressId", h.users.UpdateAddress)
		users.DELETE("/:id/addresses/:addressId", h.users.DeleteAddress)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.orders.GetOrders)
		orders.POST("", h.orders.CreateOrder)
		orders.GET("/:id", h.orders.GetOrder)
		orders.PATCH("/:id/status", h.orders.UpdateOrderStatus)
	}

	bulk := api.Group("/bulk-upload")
	{
		bulk.POST("/products", bulkLimit, h.bulk.UploadProducts)
		bulk.POST("/products/import", bulkLimit, h.bulk.ImportProducts)
		bulk.GET("/products/template", h.bulk.GetProductTemplate)
		bulk.POST("/users", bulkLimit, h.bulk.UploadUsers)
		bulk.POST("/users/import", bulkLimit, h.bulk.ImportUsers)
		bulk.GET("/users/template", h.bulk.GetUserTemplate)
		bulk.GET("/jobs", h.bulk.ListJobs)
		bulk.GET("/jobs/:id", h.bulk.GetJob)
	}
}
