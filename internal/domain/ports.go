package domain

import "time"

// StockLedger — единственный владелец остатков товара. Все мутации стока
// идут через него; читатели не должны доверять снапшоту AvailableQuantity
// перед Reserve.
type StockLedger interface {
	// AddStock увеличивает общий остаток товара (приёмка на склад).
	AddStock(productID string, qty int32) error
	// Reserve атомарно проверяет остаток и списывает qty; при нехватке
	// возвращает InsufficientStockError без побочных эффектов.
	Reserve(productID string, qty int32) error
	// Release атомарно возвращает qty в доступный остаток. За идемпотентность
	// отвечает вызывающий: workflow не должен вызывать Release дважды за одно событие.
	Release(productID string, qty int32) error
	// AvailableQuantity возвращает снапшот остатка; он не связан транзакционно
	// с последующим Reserve.
	AvailableQuantity(productID string) (int32, error)
}

// PaymentProcessor — абстракция над конкретным способом оплаты.
// Валидация реквизитов живёт в реализации; workflow относится ко всем
// методам одинаково.
type PaymentProcessor interface {
	// Charge пытается списать сумму. Отказ провайдера — *PaymentError.
	Charge(amountMinor int64, info PaymentInfo) (Receipt, error)
	// Refund возвращает средства по ранее успешному списанию.
	Refund(amountMinor int64, info PaymentInfo) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// TimelineRepository хранит события жизненного цикла заказа. Отменённые
// заказы не удаляются, поэтому timeline служит аудитом всей истории.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
