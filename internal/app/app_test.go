package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MetricsAddr == "" {
		t.Fatal("metrics addr must not be empty")
	}
	if cfg.DatabaseURL != "" {
		t.Fatal("database url must be empty by default")
	}
	if cfg.KafkaBrokers != "" {
		t.Fatal("kafka brokers must be empty by default")
	}
}

func TestNewDependencies(t *testing.T) {
	deps := NewDependencies(log.WithField("component", "test"))

	if deps.Orders == nil || deps.Carts == nil || deps.Products == nil {
		t.Fatal("repositories must be initialized")
	}
	if deps.Ledger == nil {
		t.Fatal("stock ledger must be initialized")
	}
	if deps.Gateway == nil {
		t.Fatal("payment gateway must be initialized")
	}
	if deps.OutboxRepo == nil || deps.TimelineRepo == nil {
		t.Fatal("outbox and timeline repositories must be initialized")
	}
	if deps.Store != nil {
		t.Fatal("in-memory dependencies must not hold a postgres store")
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestCreateWorkflow(t *testing.T) {
	deps := NewDependencies(nil)

	if createWorkflow(deps, nil) == nil {
		t.Fatal("expected workflow without kafka")
	}
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer("", log.WithField("component", "test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if producer != nil {
		t.Fatal("expected nil producer for empty brokers")
	}
}
