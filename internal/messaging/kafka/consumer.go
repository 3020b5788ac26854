package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// MessageHandler обрабатывает сообщение из Kafka.
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// Consumer читает события заказов из топиков storefront. Сообщения,
// которые обработчик не осилил за maxRetries попыток, уходят в DLQ,
// чтобы не блокировать партицию.
type Consumer struct {
	consumer    sarama.ConsumerGroup
	topics      []string
	handler     MessageHandler
	logger      *log.Entry
	wg          sync.WaitGroup
	dlqProducer *Producer
	maxRetries  int
}

// NewConsumer создаёт Kafka consumer без DLQ.
func NewConsumer(brokers []string, groupID string, topics []string, handler MessageHandler) (*Consumer, error) {
	return NewConsumerWithDLQ(brokers, groupID, topics, handler, nil, 3)
}

// NewConsumerWithDLQ создаёт consumer с поддержкой Dead Letter Queue.
func NewConsumerWithDLQ(brokers []string, groupID string, topics []string, handler MessageHandler, dlqProducer *Producer, maxRetries int) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer:    group,
		topics:      topics,
		handler:     handler,
		logger:      log.WithField("component", "kafka-consumer"),
		dlqProducer: dlqProducer,
		maxRetries:  maxRetries,
	}, nil
}

// Start запускает циклы чтения и дренажа ошибок в фоне.
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(2)
	go c.consumeLoop(ctx)
	go c.drainErrors()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		// Consume возвращается при rebalance, поэтому вызываем его в цикле.
		if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
			c.logger.WithError(err).Error("error from consumer")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) drainErrors() {
	defer c.wg.Done()
	for err := range c.consumer.Errors() {
		c.logger.WithError(err).Error("consumer error")
	}
}

// Stop останавливает consumer и дожидается фоновых горутин.
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup вызывается при старте consumer session.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup вызывается при завершении consumer session.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim обрабатывает сообщения одной партиции.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg := <-claim.Messages():
			if msg == nil {
				return nil
			}

			if err := c.processWithRetry(session.Context(), msg); err != nil {
				c.logger.WithError(err).WithFields(log.Fields{
					"topic":     msg.Topic,
					"partition": msg.Partition,
					"offset":    msg.Offset,
				}).Error("message processing failed after all retries")
				// Offset не двигаем: сообщение либо ушло в DLQ, либо будет вычитано снова.
				continue
			}

			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) processWithRetry(ctx context.Context, msg *sarama.ConsumerMessage) error {
	err := c.handler(ctx, msg)
	if err == nil {
		return nil
	}

	attempts := retryCountFromHeaders(msg)
	if attempts < c.maxRetries {
		c.logger.WithFields(log.Fields{
			"topic":       msg.Topic,
			"retry_count": attempts,
			"max_retries": c.maxRetries,
		}).Warn("message processing failed, will retry")
		return err
	}

	if c.dlqProducer == nil {
		return err
	}

	if dlqErr := c.forwardToDLQ(msg, err); dlqErr != nil {
		c.logger.WithError(dlqErr).Error("failed to send message to DLQ")
		return fmt.Errorf("failed to send to DLQ: %w", dlqErr)
	}
	c.logger.WithFields(log.Fields{
		"topic":       msg.Topic,
		"retry_count": attempts,
	}).Info("message sent to DLQ after max retries")
	return nil
}

func retryCountFromHeaders(msg *sarama.ConsumerMessage) int {
	for _, header := range msg.Headers {
		if string(header.Key) != HeaderRetryCount {
			continue
		}
		if count, err := strconv.Atoi(string(header.Value)); err == nil {
			return count
		}
	}
	return 0
}

// dlqRecord сохраняет необработанное сообщение вместе с контекстом отказа,
// чтобы его можно было разобрать и переиграть вручную.
type dlqRecord struct {
	OriginalTopic     string `json:"original_topic"`
	OriginalPartition int32  `json:"original_partition"`
	OriginalOffset    int64  `json:"original_offset"`
	OriginalKey       string `json:"original_key"`
	OriginalValue     string `json:"original_value"`
	ErrorMessage      string `json:"error_message"`
	FailedAt          string `json:"failed_at"`
	RetryCount        int    `json:"retry_count"`
}

func (c *Consumer) forwardToDLQ(msg *sarama.ConsumerMessage, processingErr error) error {
	record := dlqRecord{
		OriginalTopic:     msg.Topic,
		OriginalPartition: msg.Partition,
		OriginalOffset:    msg.Offset,
		OriginalKey:       string(msg.Key),
		OriginalValue:     string(msg.Value),
		ErrorMessage:      processingErr.Error(),
		FailedAt:          time.Now().UTC().Format(time.RFC3339),
		RetryCount:        retryCountFromHeaders(msg),
	}

	return c.dlqProducer.PublishEvent(TopicDeadLetterQueue, string(msg.Key), record)
}

// ParseOrderEvent парсит OrderEvent из сообщения.
func ParseOrderEvent(message *sarama.ConsumerMessage) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order event: %w", err)
	}
	return &event, nil
}
