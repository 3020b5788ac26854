package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора покупателя.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match lines sum")
	// ErrInvalidQuantity возвращается при отрицательном или нулевом количестве там, где оно запрещено.
	ErrInvalidQuantity = errors.New("quantity is invalid")
	// ErrEmptyCart возвращается при попытке оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTrackingRequired возвращается, если при отгрузке не передан трек-номер.
	ErrTrackingRequired = errors.New("tracking number is required")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге или на складе.
	ErrProductNotFound = errors.New("product not found")
	// Ошибка отсутствующего артикула товара.
	ErrProductSKURequired = errors.New("product sku is required")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrCartNotFound возвращается, если у покупателя ещё нет корзины.
	ErrCartNotFound = errors.New("cart not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError возвращается, когда доступного остатка не хватает
// под запрошенное количество. Ошибка восстановимая: вызывающий может
// уменьшить количество или повторить попытку позже.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой стока.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// InvalidTransitionError возвращается, когда guard машины состояний отклонил
// событие. Состояние заказа при этом не меняется.
type InvalidTransitionError struct {
	From  OrderStatus
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q is not allowed from status %q", e.Event, e.From)
}

// IsInvalidTransition проверяет, отклонил ли guard событие workflow.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// PaymentError описывает отказ платёжного процессора: decline, невалидные
// реквизиты или недоступность провайдера. Заказ остаётся в прежнем статусе,
// сток не освобождается автоматически.
type PaymentError struct {
	Method PaymentMethod
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment via %s failed: %s", e.Method, e.Reason)
}

// IsPaymentError проверяет, была ли ошибка отказом процессора.
func IsPaymentError(err error) bool {
	var target *PaymentError
	return errors.As(err, &target)
}

// ConfigurationError означает, что для запрошенного метода оплаты не
// зарегистрирован процессор. Это ошибка конфигурации системы, а не decline;
// повторять запрос бессмысленно.
type ConfigurationError struct {
	Method PaymentMethod
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no payment processor registered for method %q", e.Method)
}

// IsConfigurationError проверяет, связана ли ошибка с отсутствующим процессором.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
