package notification

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// Sender доставляет уведомление покупателю. Реализация может отправлять
// email, push или SMS; storefront по умолчанию пишет уведомления в лог.
type Sender interface {
	Send(customerID, subject, body string) error
}

// Service превращает события жизненного цикла заказа в уведомления
// покупателю. Подписывается на топик событий заказов через Kafka consumer.
type Service struct {
	sender Sender
	logger *log.Entry
}

// NewService создаёт сервис уведомлений.
func NewService(sender Sender, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "notification")
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	return &Service{
		sender: sender,
		logger: logger,
	}
}

// HandleMessage обрабатывает событие заказа из Kafka. Сигнатура совместима
// с kafka.MessageHandler. Незнакомые типы событий пропускаются без ошибки,
// чтобы не гонять их по retry и DLQ.
func (s *Service) HandleMessage(_ context.Context, message *sarama.ConsumerMessage) error {
	event, err := kafka.ParseOrderEvent(message)
	if err != nil {
		return fmt.Errorf("parse order event: %w", err)
	}
	if event.CustomerID == "" {
		s.logger.WithField("event_type", event.EventType).Warn("событие без customer_id, уведомление пропущено")
		return nil
	}

	subject, body, ok := composeNotification(event)
	if !ok {
		s.logger.WithField("event_type", event.EventType).Debug("для события уведомление не предусмотрено")
		return nil
	}

	if err := s.sender.Send(event.CustomerID, subject, body); err != nil {
		return fmt.Errorf("send notification for order %s: %w", event.OrderID, err)
	}

	s.logger.WithFields(log.Fields{
		"order_id":    event.OrderID,
		"customer_id": event.CustomerID,
		"event_type":  event.EventType,
	}).Info("уведомление отправлено")
	return nil
}

// composeNotification подбирает текст уведомления под тип события.
func composeNotification(event *kafka.OrderEvent) (subject, body string, ok bool) {
	switch event.EventType {
	case kafka.EventTypeOrderCreated:
		return "Заказ оформлен",
			fmt.Sprintf("Ваш заказ %s принят и ожидает оплаты.", event.OrderID), true
	case kafka.EventTypeOrderConfirmed:
		return "Оплата получена",
			fmt.Sprintf("Оплата заказа %s подтверждена, мы начали сборку.", event.OrderID), true
	case kafka.EventTypeOrderPaymentFailed:
		return "Оплата не прошла",
			fmt.Sprintf("Оплата заказа %s отклонена. Попробуйте другой способ оплаты.", event.OrderID), true
	case kafka.EventTypeOrderShipped:
		tracking := metadataString(event, "tracking_number")
		if tracking != "" {
			return "Заказ отправлен",
				fmt.Sprintf("Заказ %s передан в доставку, трек-номер %s.", event.OrderID, tracking), true
		}
		return "Заказ отправлен",
			fmt.Sprintf("Заказ %s передан в доставку.", event.OrderID), true
	case kafka.EventTypeOrderDelivered:
		return "Заказ доставлен",
			fmt.Sprintf("Заказ %s доставлен. Спасибо за покупку!", event.OrderID), true
	case kafka.EventTypeOrderCanceled:
		return "Заказ отменён",
			fmt.Sprintf("Заказ %s отменён, резерв товаров снят.", event.OrderID), true
	case kafka.EventTypeOrderRefunded:
		return "Возврат оформлен",
			fmt.Sprintf("Средства по заказу %s возвращены на ваш счёт.", event.OrderID), true
	default:
		return "", "", false
	}
}

func metadataString(event *kafka.OrderEvent, key string) string {
	if event.Metadata == nil {
		return ""
	}
	value, _ := event.Metadata[key].(string)
	return value
}

// LogSender пишет уведомления в лог вместо реальной доставки.
type LogSender struct {
	logger *log.Entry
}

var _ Sender = (*LogSender)(nil)

// NewLogSender создаёт sender, пишущий уведомления в structured log.
func NewLogSender(logger *log.Entry) *LogSender {
	if logger == nil {
		logger = log.New().WithField("component", "notification-sender")
	}
	return &LogSender{logger: logger}
}

// Send логирует уведомление.
func (s *LogSender) Send(customerID, subject, body string) error {
	s.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"subject":     subject,
	}).Info(body)
	return nil
}
