package domain

import "time"

// TimelineEvent — одна запись в истории заказа: переход статуса или
// заметное действие (оплата, отгрузка, отмена с указанием причины).
// История append-only и служит аудитом для поддержки и нотификаций.
type TimelineEvent struct {
	// OrderID — заказ, к которому относится запись.
	OrderID string
	// Type — имя события, например "OrderCreated" или "OrderCanceled".
	Type string
	// Reason заполняется для отмен и отказов оплаты, иначе пустой.
	Reason string
	// Occurred — момент события; записи читаются в хронологическом порядке.
	Occurred time.Time
}
