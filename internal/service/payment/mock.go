package payment

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// MockProcessor — конфигурируемая заглушка PaymentProcessor для тестов.
type MockProcessor struct {
	ChargeReceipt domain.Receipt
	ChargeErr     error
	RefundErr     error

	ChargeCalls []int64
	RefundCalls []int64
}

// NewMockProcessor возвращает mock с успешным сценарием по умолчанию.
func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		ChargeReceipt: domain.Receipt{ID: "mock-receipt", Provider: "mock"},
	}
}

// Charge возвращает заранее настроенный результат и запоминает суммы.
func (m *MockProcessor) Charge(amountMinor int64, info domain.PaymentInfo) (domain.Receipt, error) {
	m.ChargeCalls = append(m.ChargeCalls, amountMinor)
	if m.ChargeErr != nil {
		return domain.Receipt{}, m.ChargeErr
	}
	receipt := m.ChargeReceipt
	receipt.AmountMinor = amountMinor
	return receipt, nil
}

// Refund возвращает настроенную ошибку и запоминает суммы.
func (m *MockProcessor) Refund(amountMinor int64, info domain.PaymentInfo) error {
	m.RefundCalls = append(m.RefundCalls, amountMinor)
	return m.RefundErr
}

var _ domain.PaymentProcessor = (*MockProcessor)(nil)
