package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	MetricsAddr  string
	DatabaseURL  string
	KafkaBrokers string
	RunDemo      bool
}

// Пороги деградации outbox backlog для readiness-отчёта.
const (
	outboxBacklogThreshold = 1000
	outboxBacklogMaxAge    = 5 * time.Minute
)

// DefaultConfig возвращает базовый адрес для HTTP-метрик и health checks.
func DefaultConfig() Config {
	return Config{
		MetricsAddr: ":9090",
	}
}

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	var (
		deps *Dependencies
		err  error
	)
	if cfg.DatabaseURL != "" {
		deps, err = NewPostgresDependencies(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		logger.Info("postgres storage initialized")
	} else {
		deps = NewDependencies(logger)
		logger.Info("in-memory storage initialized")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close dependencies")
		}
	}()

	// Kafka опциональна: без брокера заказы обслуживаются, события копятся в outbox.
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	orderWorkflow := createWorkflow(deps, kafkaProducer)
	cartService := cart.NewService(deps.Carts, deps.Products, deps.Ledger, logger.WithField("component", "cart"))

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		go worker.Run(ctx)
		logger.Info("outbox worker started")

		consumer, err := startNotificationConsumer(ctx, cfg.KafkaBrokers, kafkaProducer, logger)
		if err != nil {
			logger.WithError(err).Warn("notification consumer not started")
		} else {
			defer stopConsumer(consumer, logger)
			logger.Info("notification consumer started")
		}
	} else {
		logger.Info("outbox worker is idle: no kafka brokers configured")
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxChecker(deps.OutboxRepo, outboxBacklogThreshold, outboxBacklogMaxAge))
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	if cfg.RunDemo {
		if err := runDemoScenario(cartService, orderWorkflow, deps, logger); err != nil {
			logger.WithError(err).Error("demo scenario failed")
		}
	}

	<-ctx.Done()
	logger.Info("получен сигнал остановки, завершаем работу")
	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
