package notification

import "sync"

// MockSender — конфигурируемая заглушка Sender для тестов.
type MockSender struct {
	mu      sync.Mutex
	SendErr error
	Sent    []SentNotification
}

// SentNotification фиксирует одно отправленное уведомление.
type SentNotification struct {
	CustomerID string
	Subject    string
	Body       string
}

var _ Sender = (*MockSender)(nil)

// NewMockSender возвращает mock с успешным сценарием по умолчанию.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send запоминает уведомление и возвращает заранее настроенную ошибку.
func (m *MockSender) Send(customerID, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentNotification{
		CustomerID: customerID,
		Subject:    subject,
		Body:       body,
	})
	return nil
}

// SentCount возвращает число успешно отправленных уведомлений.
func (m *MockSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
