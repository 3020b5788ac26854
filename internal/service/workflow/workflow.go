package workflow

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const defaultCurrency = "USD"

// ProcessorRegistry выдаёт платёжный процессор по методу оплаты.
type ProcessorRegistry interface {
	Processor(method domain.PaymentMethod) (domain.PaymentProcessor, error)
}

// Workflow — единственный компонент, которому разрешено двигать заказ по
// машине состояний и дёргать StockLedger в ходе жизненного цикла заказа.
// Платёжный процессор вызывается строго вне стоковых блокировок: сток
// резервируется пессимистично до оплаты, поэтому время удержания блокировок
// ограничено чистой арифметикой в памяти.
type Workflow struct {
	orders   domain.OrderRepository
	carts    domain.CartRepository
	products domain.ProductRepository
	ledger   domain.StockLedger
	gateway  ProcessorRegistry
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository

	logger        *log.Entry
	metrics       *metrics.WorkflowMetrics
	kafkaProducer *kafka.Producer // опциональный producer для event-driven интеграций
	currency      string
}

// NewWorkflow создаёт рабочий экземпляр workflow.
func NewWorkflow(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	products domain.ProductRepository,
	ledger domain.StockLedger,
	gateway ProcessorRegistry,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Workflow {
	if logger == nil {
		logger = log.New().WithField("component", "workflow")
	}
	return &Workflow{
		orders:   orders,
		carts:    carts,
		products: products,
		ledger:   ledger,
		gateway:  gateway,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
		metrics:  metrics.NewWorkflowMetrics(),
		currency: defaultCurrency,
	}
}

// NewWorkflowWithKafka создаёт workflow с Kafka producer для публикации
// событий жизненного цикла заказа.
func NewWorkflowWithKafka(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	products domain.ProductRepository,
	ledger domain.StockLedger,
	gateway ProcessorRegistry,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	kafkaProducer *kafka.Producer,
	logger *log.Entry,
) *Workflow {
	w := NewWorkflow(orders, carts, products, ledger, gateway, outbox, timeline, logger)
	w.kafkaProducer = kafkaProducer
	return w
}

// NewWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewWorkflowWithoutMetrics(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	products domain.ProductRepository,
	ledger domain.StockLedger,
	gateway ProcessorRegistry,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Workflow {
	w := NewWorkflow(orders, carts, products, ledger, gateway, outbox, timeline, logger)
	w.metrics = nil
	return w
}

// CreateOrder атомарно конвертирует корзину покупателя в заказ: позиции
// замораживаются с текущей ценой каталога, сток резервируется пессимистично,
// корзина очищается. Заказ всё-или-ничего: первая неудачная резервация
// откатывает все уже выданные в этом вызове.
func (w *Workflow) CreateOrder(customerID, shippingAddress string) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	cart, err := w.carts.Get(customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Order{}, domain.ErrEmptyCart
	}
	if err != nil {
		return domain.Order{}, err
	}
	if cart.IsEmpty() {
		return domain.Order{}, domain.ErrEmptyCart
	}

	// Позиции отсортированы по product_id: фиксированный глобальный порядок
	// резервирования исключает deadlock между конкурентными checkout'ами
	// с пересекающимися наборами товаров.
	now := time.Now().UTC()
	frozen := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.SortedLines() {
		product, err := w.products.Get(line.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		frozen = append(frozen, domain.OrderLine{
			ID:             uuid.NewString(),
			ProductID:      product.ID,
			SKU:            product.SKU,
			Qty:            line.Qty,
			UnitPriceMinor: product.PriceMinor,
			CreatedAt:      now,
		})
	}

	reserved := make([]domain.OrderLine, 0, len(frozen))
	for _, line := range frozen {
		if err := w.ledger.Reserve(line.ProductID, line.Qty); err != nil {
			// Компенсирующий откат: возвращаем всё, что успели занять.
			w.releaseLines(reserved)
			if domain.IsInsufficientStock(err) && w.metrics != nil {
				w.metrics.RecordInsufficientStock()
			}
			w.logger.WithError(err).WithFields(log.Fields{
				"customer_id": customerID,
				"product_id":  line.ProductID,
			}).Warn("checkout reservation failed")
			return domain.Order{}, err
		}
		reserved = append(reserved, line)
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		CustomerID:      customerID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Currency:        w.currency,
		ShippingAddress: shippingAddress,
		Lines:           frozen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := w.orders.Create(order); err != nil {
		w.releaseLines(reserved)
		return domain.Order{}, err
	}

	// Корзина очищается в рамках той же операции.
	cart.Clear()
	if err := w.carts.Save(cart); err != nil {
		w.logger.WithError(err).WithField("customer_id", customerID).Warn("failed to clear cart after checkout")
	}

	if w.metrics != nil {
		w.metrics.RecordOrderCreated()
		w.metrics.AddReservedUnits(orderUnits(&order))
	}
	w.emitEvent(&order, "OrderCreated", map[string]interface{}{
		"customer_id":  order.CustomerID,
		"amount_minor": order.TotalMinor(),
		"lines_count":  len(order.Lines),
		"ts":           now.Format(time.RFC3339Nano),
	})
	w.publishOrderEvent(kafka.EventTypeOrderCreated, &order, map[string]interface{}{
		"amount": order.TotalMinor(),
	})

	return order, nil
}

// Pay пытается оплатить pending-заказ. Decline оставляет заказ в pending с
// payment_status=failed и НЕ освобождает сток: ожидается повторная попытка
// оплаты. Успех переводит заказ в confirmed.
func (w *Workflow) Pay(orderID string, method domain.PaymentMethod, info domain.PaymentInfo) (domain.Order, error) {
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if o.Status != domain.OrderStatusPending {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventPay}
		}
		return nil
	}
	if err := guard(&order); err != nil {
		w.recordInvalidTransition()
		return order, err
	}

	processor, err := w.gateway.Processor(method)
	if err != nil {
		// Ошибка конфигурации: состояние заказа не трогаем.
		w.logger.WithError(err).WithField("order_id", order.ID).Error("payment method not configured")
		return order, err
	}

	// Обращение к провайдеру потенциально медленное: выполняем его без
	// каких-либо стоковых блокировок.
	chargeStart := time.Now()
	_, chargeErr := processor.Charge(order.TotalMinor(), info)
	if w.metrics != nil {
		w.metrics.RecordChargeDuration(time.Since(chargeStart))
	}

	if chargeErr != nil {
		if saveErr := w.saveTransition(&order, guard, func(o *domain.Order) {
			o.PaymentStatus = domain.PaymentStatusFailed
			o.PaymentMethod = method
		}); saveErr != nil {
			return order, saveErr
		}
		if w.metrics != nil {
			w.metrics.RecordPaymentFailed()
		}
		w.emitEvent(&order, "OrderPaymentFailed", map[string]interface{}{
			"method": string(method),
			"reason": chargeErr.Error(),
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
		w.publishOrderEvent(kafka.EventTypeOrderPaymentFailed, &order, map[string]interface{}{
			"method": string(method),
			"reason": chargeErr.Error(),
		})
		w.logger.WithError(chargeErr).WithField("order_id", order.ID).Warn("payment declined")
		return order, chargeErr
	}

	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.Status = domain.OrderStatusConfirmed
		o.PaymentStatus = domain.PaymentStatusCompleted
		o.PaymentMethod = method
	}); err != nil {
		w.logger.WithError(err).WithField("order_id", order.ID).Error("failed to confirm paid order")
		return order, err
	}

	if w.metrics != nil {
		w.metrics.RecordOrderConfirmed()
	}
	w.emitEvent(&order, "OrderConfirmed", map[string]interface{}{
		"method":       string(method),
		"amount_minor": order.TotalMinor(),
		"ts":           time.Now().UTC().Format(time.RFC3339Nano),
	})
	w.publishOrderEvent(kafka.EventTypeOrderConfirmed, &order, map[string]interface{}{
		"method": string(method),
		"amount": order.TotalMinor(),
	})
	return order, nil
}

// Cancel отменяет pending- или confirmed-заказ и возвращает сток по
// замороженным позициям заказа (не по корзине: она могла быть переиспользована).
// Повторный Cancel отклоняется guard'ом, поэтому сток возвращается ровно один раз.
func (w *Workflow) Cancel(orderID, reason string) (domain.Order, error) {
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if !o.CanCancel() {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventCancel}
		}
		return nil
	}
	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.Status = domain.OrderStatusCanceled
	}); err != nil {
		return order, err
	}

	// Резерв возвращаем после выигранного перехода: optimistic locking
	// гарантирует, что сюда доходит ровно один из конкурентных Cancel.
	// После возврата средств сток уже освобождён — второй раз не трогаем.
	if order.PaymentStatus != domain.PaymentStatusRefunded {
		w.releaseLines(order.Lines)
		if w.metrics != nil {
			w.metrics.AddReservedUnits(-orderUnits(&order))
		}
	}

	if w.metrics != nil {
		w.metrics.RecordOrderCanceled()
	}
	payload := map[string]interface{}{
		"reason": reason,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if reason == "" {
		delete(payload, "reason")
	}
	w.emitEvent(&order, "OrderCanceled", payload)
	w.publishOrderEvent(kafka.EventTypeOrderCanceled, &order, map[string]interface{}{
		"reason": reason,
	})
	return order, nil
}

// Ship переводит подтверждённый заказ в shipped и сохраняет трек-номер.
func (w *Workflow) Ship(orderID, trackingNumber string) (domain.Order, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return domain.Order{}, domain.ErrTrackingRequired
	}

	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if o.Status != domain.OrderStatusConfirmed {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventShip}
		}
		return nil
	}
	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.Status = domain.OrderStatusShipped
		o.TrackingNumber = trackingNumber
	}); err != nil {
		return order, err
	}

	if w.metrics != nil {
		w.metrics.RecordOrderShipped()
	}
	w.emitEvent(&order, "OrderShipped", map[string]interface{}{
		"tracking_number": trackingNumber,
		"ts":              time.Now().UTC().Format(time.RFC3339Nano),
	})
	w.publishOrderEvent(kafka.EventTypeOrderShipped, &order, map[string]interface{}{
		"tracking_number": trackingNumber,
	})
	return order, nil
}

// Deliver завершает доставку заказа. Delivered — терминальный статус.
func (w *Workflow) Deliver(orderID string) (domain.Order, error) {
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if o.Status != domain.OrderStatusShipped {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventDeliver}
		}
		return nil
	}
	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.Status = domain.OrderStatusDelivered
	}); err != nil {
		return order, err
	}

	if w.metrics != nil {
		w.metrics.RecordOrderDelivered()
	}
	w.emitEvent(&order, "OrderDelivered", map[string]interface{}{
		"ts": time.Now().UTC().Format(time.RFC3339Nano),
	})
	w.publishOrderEvent(kafka.EventTypeOrderDelivered, &order, nil)
	return order, nil
}

// Refund возвращает средства по оплаченному заказу. Статус заказа при этом
// не меняется: меняется только payment_status. Сток освобождается, если его
// ещё не вернул Cancel.
func (w *Workflow) Refund(orderID string, info domain.PaymentInfo) (domain.Order, error) {
	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if o.PaymentStatus != domain.PaymentStatusCompleted {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventRefund}
		}
		if o.Status != domain.OrderStatusConfirmed && o.Status != domain.OrderStatusCanceled {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventRefund}
		}
		return nil
	}
	if err := guard(&order); err != nil {
		w.recordInvalidTransition()
		return order, err
	}

	processor, err := w.gateway.Processor(order.PaymentMethod)
	if err != nil {
		return order, err
	}

	// Сначала выигрываем переход payment_status: optimistic locking оставляет
	// одного победителя, и только он обращается к провайдеру за возвратом.
	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.PaymentStatus = domain.PaymentStatusRefunded
	}); err != nil {
		return order, err
	}

	if refundErr := processor.Refund(order.TotalMinor(), info); refundErr != nil {
		// Провайдер отказал: откатываем payment_status, чтобы возврат можно
		// было повторить.
		if revertErr := w.saveTransition(&order, nil, func(o *domain.Order) {
			o.PaymentStatus = domain.PaymentStatusCompleted
		}); revertErr != nil {
			w.logger.WithError(revertErr).WithField("order_id", order.ID).Error("failed to revert refund status")
		}
		w.logger.WithError(refundErr).WithField("order_id", order.ID).Warn("refund declined")
		return order, refundErr
	}

	if order.Status != domain.OrderStatusCanceled {
		w.releaseLines(order.Lines)
		if w.metrics != nil {
			w.metrics.AddReservedUnits(-orderUnits(&order))
		}
	}

	if w.metrics != nil {
		w.metrics.RecordOrderRefunded()
	}
	w.emitEvent(&order, "OrderRefunded", map[string]interface{}{
		"amount_minor": order.TotalMinor(),
		"ts":           time.Now().UTC().Format(time.RFC3339Nano),
	})
	w.publishOrderEvent(kafka.EventTypeOrderRefunded, &order, map[string]interface{}{
		"amount": order.TotalMinor(),
	})
	return order, nil
}

// SetShippingCost выставляет стоимость доставки до подтверждения заказа.
// По умолчанию она равна нулю.
func (w *Workflow) SetShippingCost(orderID string, amountMinor int64) (domain.Order, error) {
	if amountMinor < 0 {
		return domain.Order{}, domain.ErrAmountNegative
	}

	order, err := w.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	guard := func(o *domain.Order) error {
		if o.Status != domain.OrderStatusPending {
			return &domain.InvalidTransitionError{From: o.Status, Event: domain.EventSetShippingCost}
		}
		return nil
	}
	if err := w.saveTransition(&order, guard, func(o *domain.Order) {
		o.ShippingCostMinor = amountMinor
	}); err != nil {
		return order, err
	}
	return order, nil
}

// Get возвращает заказ по идентификатору.
func (w *Workflow) Get(orderID string) (domain.Order, error) {
	return w.orders.Get(orderID)
}

// ListByCustomer возвращает заказы покупателя.
func (w *Workflow) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return w.orders.ListByCustomer(customerID, limit)
}

// Timeline возвращает аудит-историю заказа.
func (w *Workflow) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if w.timeline == nil {
		return nil, nil
	}
	return w.timeline.List(orderID)
}

// saveTransition применяет переход к заказу и сохраняет его с retry при
// version conflict. После перезагрузки свежей версии guard проверяется
// заново: проигравший конкурентный вызов получает InvalidTransition, а не
// повторяет побочные эффекты.
func (w *Workflow) saveTransition(
	order *domain.Order,
	guard func(*domain.Order) error,
	apply func(*domain.Order),
) error {
	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		if guard != nil {
			if err := guard(order); err != nil {
				w.recordInvalidTransition()
				return err
			}
		}

		prevVersion := order.Version
		apply(order)
		order.UpdatedAt = time.Now().UTC()

		if err := w.orders.Save(*order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxRetries-1 {
				w.logger.WithFields(log.Fields{
					"order_id": order.ID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("version conflict detected, retrying")

				fresh, loadErr := w.orders.Get(order.ID)
				if loadErr != nil {
					w.logger.WithError(loadErr).WithField("order_id", order.ID).Error("failed to reload order after conflict")
					return loadErr
				}
				*order = fresh

				delay := baseDelay * time.Duration(1<<uint(attempt))
				time.Sleep(delay)
				continue
			}

			w.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return err
		}

		order.Version = prevVersion + 1
		return nil
	}

	return domain.ErrOrderVersionConflict
}

func (w *Workflow) releaseLines(lines []domain.OrderLine) {
	for _, line := range lines {
		if err := w.ledger.Release(line.ProductID, line.Qty); err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"product_id": line.ProductID,
				"qty":        line.Qty,
			}).Warn("release failed")
		}
	}
}

func (w *Workflow) recordInvalidTransition() {
	if w.metrics != nil {
		w.metrics.RecordInvalidTransition()
	}
}

func (w *Workflow) emitEvent(order *domain.Order, eventType string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.ID
	data, err := json.Marshal(payload)
	if err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	if w.outbox != nil {
		msg := domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   order.ID,
			EventType:     eventType,
			Payload:       data,
		}
		if _, err := w.outbox.Enqueue(msg); err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Error("enqueue event failed")
		} else if w.metrics != nil {
			w.metrics.RecordOutboxEvent()
		}
	}

	if w.timeline != nil {
		var reason string
		if r, ok := payload["reason"].(string); ok {
			reason = r
		}
		occurred := time.Now().UTC()
		if ts, ok := payload["ts"].(string); ok {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
				occurred = parsed
			}
		}
		event := domain.TimelineEvent{
			OrderID:  order.ID,
			Type:     eventType,
			Reason:   reason,
			Occurred: occurred,
		}
		if err := w.timeline.Append(event); err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Warn("append timeline event failed")
		} else if w.metrics != nil {
			w.metrics.RecordTimelineEvent()
		}
	}
}

// publishOrderEvent публикует событие заказа в Kafka (если producer настроен).
func (w *Workflow) publishOrderEvent(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if w.kafkaProducer == nil {
		return
	}

	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	if err := w.kafkaProducer.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		// Kafka опциональна: ошибку логируем, жизненный цикл заказа не прерываем.
		w.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish order event to kafka")
	}
}

func orderUnits(order *domain.Order) int64 {
	var units int64
	for _, line := range order.Lines {
		units += int64(line.Qty)
	}
	return units
}
