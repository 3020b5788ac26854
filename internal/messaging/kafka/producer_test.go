package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderEvent(
		EventTypeOrderCreated,
		"order-123",
		"cust-1",
		"pending",
		map[string]interface{}{"total_minor": 209898},
	)

	if err := producer.PublishEvent(TopicOrderEvents, "order-123", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderCanceled, "order-123", "cust-1", "canceled", nil)

	if err := producer.PublishEvent(TopicOrderEvents, "order-123", event); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(
		EventTypeOrderShipped,
		"order-123",
		"cust-1",
		"shipped",
		map[string]interface{}{"tracking_number": "TRK-42"},
	)

	if event.EventType != EventTypeOrderShipped {
		t.Errorf("expected event type %s, got %s", EventTypeOrderShipped, event.EventType)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.CustomerID != "cust-1" {
		t.Errorf("expected customer id cust-1, got %s", event.CustomerID)
	}

	if event.Metadata["tracking_number"] != "TRK-42" {
		t.Error("metadata not set correctly")
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
