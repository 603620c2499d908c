package main

import (
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"retailops/internal/caching"
	"retailops/internal/config"
	"retailops/internal/handlers"
	"retailops/internal/jobs"
	"retailops/internal/jobs/background"
	"retailops/internal/repositories"
	"retailops/internal/services"
	"retailops/pkg/database"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load("config.toml")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Ordering.Timezone)
	if err != nil {
		logger.Fatal("invalid ordering timezone", zap.String("timezone", cfg.Ordering.Timezone), zap.Error(err))
	}

	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	storageSvc, err := services.NewMinioStorage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	productRepo := repositories.NewProductRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	mfrRepo := repositories.NewManufacturerRepo(pool)
	ruleRepo := repositories.NewOrderRuleRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	itemRepo := repositories.NewOrderLineItemRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	// Task queue
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	enqueuer := jobs.NewAsynqEnqueuer(asynqClient)

	// Services
	catalogSvc := services.NewCatalogService(productRepo, categoryRepo, mfrRepo, storageSvc, cacheSvc, logger)
	ruleSvc := services.NewRuleService(ruleRepo, catalogSvc)
	resolver := services.NewRuleResolver(ruleRepo)
	validator := services.NewOrderValidator(resolver, logger)
	allocator := services.NewNumberAllocator(orderRepo)
	orderSvc := services.NewOrderService(catalogSvc, validator, allocator, orderRepo, itemRepo, enqueuer, logger, loc)

	// Background worker for order sheet exports
	exporter := jobs.NewOrderSheetExporter(orderRepo, itemRepo, catalogSvc, storageSvc, logger)
	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queuing.Concurrency,
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TypeOrderSheetExport, exporter.HandleOrderSheetExport)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			logger.Fatal("task worker failed", zap.Error(err))
		}
	}()
	defer asynqServer.Shutdown()

	// Recurring jobs
	scheduler, err := background.NewJobScheduler(ruleSvc, logger, cfg.Ordering.ConflictAuditHour)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	productHandlers := handlers.NewProductHandlers(catalogSvc)
	categoryHandlers := handlers.NewCategoryHandlers(catalogSvc)
	mfrHandlers := handlers.NewManufacturerHandlers(catalogSvc)
	ruleHandlers := handlers.NewRuleHandlers(ruleSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	v1 := e.Group("/v1")

	v1.POST("/orders", orderHandlers.SubmitOrder)
	v1.GET("/orders", orderHandlers.ListOrders)
	v1.GET("/orders/:no", orderHandlers.GetOrder)
	v1.PUT("/orders/:no", orderHandlers.UpdateOrder)

	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct)
	v1.GET("/products/search", productHandlers.SearchProducts)
	v1.PATCH("/products/quantities", productHandlers.PatchQuantities)
	v1.GET("/products/:no", productHandlers.GetProduct)
	v1.PUT("/products/:no", productHandlers.UpdateProduct)
	v1.DELETE("/products/:no", productHandlers.DeleteProduct)
	v1.POST("/products/:no/image", productHandlers.UploadProductImage)
	v1.GET("/products/:no/image-url", productHandlers.GetProductImageURL)

	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.POST("/categories", categoryHandlers.CreateCategory)
	v1.GET("/categories/:no", categoryHandlers.GetCategory)
	v1.GET("/categories/:no/children", categoryHandlers.ListChildCategories)
	v1.PUT("/categories/:no", categoryHandlers.UpdateCategory)
	v1.DELETE("/categories/:no", categoryHandlers.DeleteCategory)

	v1.GET("/manufacturers", mfrHandlers.ListManufacturers)
	v1.POST("/manufacturers", mfrHandlers.CreateManufacturer)
	v1.GET("/manufacturers/:id", mfrHandlers.GetManufacturer)
	v1.PUT("/manufacturers/:id", mfrHandlers.UpdateManufacturer)
	v1.DELETE("/manufacturers/:id", mfrHandlers.DeleteManufacturer)

	v1.GET("/rules", ruleHandlers.ListRules)
	v1.POST("/rules", ruleHandlers.CreateRule)
	v1.GET("/rules/conflicts", ruleHandlers.ListRuleConflicts)
	v1.GET("/rules/:id", ruleHandlers.GetRule)
	v1.PUT("/rules/:id", ruleHandlers.UpdateRule)
	v1.DELETE("/rules/:id", ruleHandlers.DeleteRule)

	logger.Info("server starting", zap.Int("port", cfg.Server.Port))
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
