package app

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/notification"
)

const notificationConsumerGroup = "storefront-notifications"

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой или если произошла ошибка.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// startNotificationConsumer подписывает сервис уведомлений на события заказов.
// Сообщения, не обработанные после retry, уходят в DLQ через producer.
func startNotificationConsumer(ctx context.Context, brokers string, producer *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	notifier := notification.NewService(nil, logger.WithField("component", "notification"))

	consumer, err := kafka.NewConsumerWithDLQ(
		strings.Split(brokers, ","),
		notificationConsumerGroup,
		[]string{kafka.TopicOrderEvents},
		notifier.HandleMessage,
		producer,
		3,
	)
	if err != nil {
		return nil, err
	}

	if err := consumer.Start(ctx); err != nil {
		_ = consumer.Stop()
		return nil, err
	}
	return consumer, nil
}

func stopConsumer(consumer *kafka.Consumer, logger *log.Entry) {
	if consumer == nil {
		return
	}
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
