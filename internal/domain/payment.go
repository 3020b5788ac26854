package domain

// PaymentStatus описывает состояние оплаты заказа. Поле независимо от
// статуса заказа: неуспешный платёж оставляет заказ в pending.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата ещё не выполнялась или не подтверждена.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted — провайдер подтвердил списание средств.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed — провайдер отклонил платёж; можно повторить попытку.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded — средства возвращены покупателю. Только из completed.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod определяет способ оплаты, по которому диспетчеризуются процессоры.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodNetBanking PaymentMethod = "net_banking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// PaymentInfo — реквизиты платежа, специфичные для метода (номер карты,
// кошелёк и т.п.). Валидация содержимого живёт в конкретном процессоре.
type PaymentInfo map[string]string

// Receipt — подтверждение успешного списания от процессора.
type Receipt struct {
	ID          string
	Provider    string
	AmountMinor int64
}
