package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в storefront.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, сток зарезервирован, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — оплата прошла, заказ готов к исполнению.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped — заказ передан в доставку, трек-номер сохранён.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю. Терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled — заказ отменён, резерв возвращён на склад. Терминальный статус.
	OrderStatusCanceled OrderStatus = "canceled"
)

// События машины состояний заказа; используются в guard-ошибках и timeline.
const (
	EventCreateOrder     = "CreateOrder"
	EventPay             = "Pay"
	EventCancel          = "Cancel"
	EventShip            = "Ship"
	EventDeliver         = "Deliver"
	EventRefund          = "Refund"
	EventSetShippingCost = "SetShippingCost"
)

// OrderLine — замороженный снимок позиции корзины на момент оформления.
// Количество и цена не меняются, даже если товар в каталоге изменился:
// заказ — исторический документ.
type OrderLine struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — идентификатор товара в каталоге.
	ProductID string
	// SKU — внешний артикул товара на момент покупки.
	SKU string
	// Qty — количество единиц товара.
	Qty int32
	// UnitPriceMinor — цена за единицу на момент покупки, в минимальных денежных единицах.
	UnitPriceMinor int64
	// CreatedAt фиксирует момент заморозки позиции.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его замороженные позиции.
// Идентичность (ID, CustomerID, CreatedAt) неизменна; статусы меняет
// только workflow.
type Order struct {
	ID                string
	CustomerID        string
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	PaymentMethod     PaymentMethod
	Currency          string
	ShippingAddress   string
	ShippingCostMinor int64
	TrackingNumber    string
	Lines             []OrderLine
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SubtotalMinor возвращает сумму позиций без доставки: Σ qty × unit_price.
func (o *Order) SubtotalMinor() int64 {
	var sum int64
	for _, line := range o.Lines {
		sum += int64(line.Qty) * line.UnitPriceMinor
	}
	return sum
}

// TotalMinor возвращает полную сумму заказа: позиции плюс стоимость доставки.
func (o *Order) TotalMinor() int64 {
	return o.SubtotalMinor() + o.ShippingCostMinor
}

// CanCancel сообщает, допустима ли отмена из текущего статуса.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.ShippingCostMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrAmountNegative)
		}
	}

	return errs
}
