package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sardorbek/atmos-paylink/internal/di"
	"github.com/sardorbek/atmos-paylink/internal/gateway"
	"github.com/sardorbek/atmos-paylink/internal/metrics"
	"github.com/sardorbek/atmos-paylink/internal/notifier"
	"github.com/sardorbek/atmos-paylink/internal/repository"
	"github.com/sardorbek/atmos-paylink/internal/service"
	"github.com/sardorbek/atmos-paylink/pkg/config"
	"github.com/sardorbek/atmos-paylink/pkg/database"
	"github.com/sardorbek/atmos-paylink/pkg/kafka"
	"github.com/sardorbek/atmos-paylink/pkg/logger"
	"github.com/sardorbek/atmos-paylink/pkg/middleware"
	pkgredis "github.com/sardorbek/atmos-paylink/pkg/redis"
	"github.com/sardorbek/atmos-paylink/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Atmos Paylink Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed: %v", err))
	} else if cfg.OTel.Enabled {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telemetry.Shutdown(shutdownCtx)
		}()
	}

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	var db *database.PostgresDB
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err = database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Database connection failed: %v", err))
	} else {
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))
	}

	// Initialize Redis connection
	var redisClient *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed: %v", err))
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))
	}

	// Initialize Kafka producer
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(&kafka.Config{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka producer init failed: %v", err))
		} else {
			defer producer.Close()
			appLog.Info(fmt.Sprintf("Kafka producer connected (brokers: %v)", cfg.Kafka.Brokers))
		}
	}

	// Initialize payment gateway: real Atmos client when credentials are
	// present, mock otherwise
	var gatewayClient gateway.Client
	if err := cfg.ValidateAtmos(); err == nil {
		gatewayClient, err = gateway.NewAtmosClient(&gateway.AtmosConfig{
			BaseURL:        cfg.Atmos.BaseURL,
			ConsumerKey:    cfg.Atmos.ConsumerKey,
			ConsumerSecret: cfg.Atmos.ConsumerSecret,
			StoreID:        cfg.Atmos.StoreID,
			TerminalID:     cfg.Atmos.TerminalID,
			IsTestMode:     cfg.Atmos.IsTestMode,
			Timeout:        cfg.Atmos.Timeout,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to create Atmos gateway: %v", err))
		}
		appLog.Info(fmt.Sprintf("Using Atmos payment gateway (store: %s, test_mode: %v)", cfg.Atmos.StoreID, cfg.Atmos.IsTestMode))
	} else {
		gatewayClient = gateway.NewMockClient(nil)
		appLog.Warn(fmt.Sprintf("Atmos credentials missing (%v), using mock gateway", err))
	}

	// Initialize transaction repository
	var transactionRepo repository.TransactionRepository
	if db != nil {
		pgRepo := repository.NewPostgresTransactionRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			appLog.Warn(fmt.Sprintf("Schema init failed: %v", err))
		}
		transactionRepo = pgRepo
		appLog.Info("Using PostgreSQL transaction repository")
	} else {
		transactionRepo = repository.NewMemoryTransactionRepository()
		appLog.Warn("Using in-memory transaction repository (data will not persist)")
	}

	// Initialize order notifier
	var orderNotifier notifier.OrderNotifier
	if cfg.OrderService.BaseURL != "" {
		orderNotifier = notifier.NewHTTPOrderNotifier(cfg.OrderService.BaseURL, cfg.OrderService.Timeout)
		appLog.Info(fmt.Sprintf("Order notifications enabled (url: %s)", cfg.OrderService.BaseURL))
	} else {
		orderNotifier = notifier.NewNoopOrderNotifier()
		appLog.Warn("ORDER_SERVICE_BASE_URL not set, order notifications disabled")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:              db,
		Redis:           redisClient,
		TransactionRepo: transactionRepo,
		Gateway:         gatewayClient,
		OrderNotifier:   orderNotifier,
		KafkaProducer:   producer,
		ServiceConfig: &service.PaylinkServiceConfig{
			StoreID: cfg.Atmos.StoreID,
			APIKey:  cfg.Atmos.APIKey,
		},
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Gateway callback: path and response contract are fixed by Atmos
	router.POST("/payments/atmos/webhook/", container.WebhookHandler.HandleAtmosWebhook)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		if container.PaylinkHandler != nil {
			paylinks := v1.Group("/paylinks")

			var idempotencyConfig *middleware.IdempotencyConfig
			if redisClient != nil {
				idempotencyConfig = middleware.DefaultIdempotencyConfig(redisClient.Client())
				idempotencyConfig.SkipPaths = []string{"/health", "/ready"}
			}

			if idempotencyConfig != nil {
				paylinks.POST("", middleware.IdempotencyMiddleware(idempotencyConfig), container.PaylinkHandler.CreatePaylink)
			} else {
				paylinks.POST("", container.PaylinkHandler.CreatePaylink)
			}
			paylinks.GET("/:account", container.PaylinkHandler.GetPaylink)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Atmos Paylink Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
