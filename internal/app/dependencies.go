package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Orders       domain.OrderRepository
	Carts        domain.CartRepository
	Products     domain.ProductRepository
	Ledger       *stock.Ledger
	Gateway      *payment.Gateway
	OutboxRepo   domain.OutboxRepository
	TimelineRepo domain.TimelineRepository
	Store        *postgres.Store
	Logger       *log.Entry
}

// NewDependencies создаёт in-memory зависимости (локальная разработка, демо).
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	return &Dependencies{
		Orders:       memory.NewOrderRepository(),
		Carts:        memory.NewCartRepository(),
		Products:     memory.NewProductRepository(),
		Ledger:       stock.NewLedger(logger.WithField("component", "stock-ledger")),
		Gateway:      payment.NewDefaultGateway(logger.WithField("component", "payment-gateway")),
		OutboxRepo:   memory.NewOutboxRepository(),
		TimelineRepo: memory.NewTimelineRepository(),
		Logger:       logger,
	}
}

// NewPostgresDependencies создаёт зависимости поверх PostgreSQL. Корзины
// остаются in-memory: это staging-область с коротким временем жизни, терять
// её при рестарте допустимо. Сток тоже живёт в памяти: авторитетный счётчик
// держит один процесс, который его и резервирует.
func NewPostgresDependencies(ctx context.Context, dsn string, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Dependencies{
		Orders:       postgres.NewOrderRepository(store),
		Carts:        memory.NewCartRepository(),
		Products:     postgres.NewProductRepository(store),
		Ledger:       stock.NewLedger(logger.WithField("component", "stock-ledger")),
		Gateway:      payment.NewDefaultGateway(logger.WithField("component", "payment-gateway")),
		OutboxRepo:   postgres.NewOutboxRepository(store),
		TimelineRepo: postgres.NewTimelineRepository(store),
		Store:        store,
		Logger:       logger,
	}, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
