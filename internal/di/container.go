package di

import (
	"github.com/sardorbek/atmos-paylink/internal/gateway"
	"github.com/sardorbek/atmos-paylink/internal/handler"
	"github.com/sardorbek/atmos-paylink/internal/notifier"
	"github.com/sardorbek/atmos-paylink/internal/repository"
	"github.com/sardorbek/atmos-paylink/internal/service"
	"github.com/sardorbek/atmos-paylink/pkg/database"
	"github.com/sardorbek/atmos-paylink/pkg/kafka"
	"github.com/sardorbek/atmos-paylink/pkg/redis"
)

// Container holds all dependencies for the paylink service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Gateways
	Gateway gateway.Client

	// Repositories
	TransactionRepo repository.TransactionRepository

	// Services
	PaylinkService service.PaylinkService

	// Handlers
	HealthHandler  *handler.HealthHandler
	PaylinkHandler *handler.PaylinkHandler
	WebhookHandler *handler.WebhookHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Redis           *redis.Client
	TransactionRepo repository.TransactionRepository
	Gateway         gateway.Client
	OrderNotifier   notifier.OrderNotifier
	KafkaProducer   *kafka.Producer
	ServiceConfig   *service.PaylinkServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:              cfg.DB,
		Redis:           cfg.Redis,
		TransactionRepo: cfg.TransactionRepo,
		Gateway:         cfg.Gateway,
	}

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)

	if c.TransactionRepo != nil && c.Gateway != nil {
		c.PaylinkService = service.NewPaylinkService(c.TransactionRepo, c.Gateway, cfg.OrderNotifier, cfg.KafkaProducer, cfg.ServiceConfig)
		c.PaylinkHandler = handler.NewPaylinkHandler(c.PaylinkService)
		c.WebhookHandler = handler.NewWebhookHandler(c.PaylinkService)
	}

	return c
}
