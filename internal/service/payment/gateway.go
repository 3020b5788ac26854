package payment

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Gateway — реестр платёжных процессоров по методу оплаты. Workflow
// обращается к любому методу одинаково; отсутствие процессора для метода —
// ошибка конфигурации системы, а не decline.
type Gateway struct {
	mu         sync.RWMutex
	processors map[domain.PaymentMethod]domain.PaymentProcessor
	logger     *log.Entry
}

// NewGateway создаёт пустой реестр.
func NewGateway(logger *log.Entry) *Gateway {
	if logger == nil {
		logger = log.New().WithField("component", "payment-gateway")
	}
	return &Gateway{
		processors: make(map[domain.PaymentMethod]domain.PaymentProcessor),
		logger:     logger,
	}
}

// NewDefaultGateway возвращает реестр со всеми встроенными процессорами.
func NewDefaultGateway(logger *log.Entry) *Gateway {
	g := NewGateway(logger)
	g.Register(domain.PaymentMethodCreditCard, NewCreditCardProcessor())
	g.Register(domain.PaymentMethodDebitCard, NewDebitCardProcessor())
	g.Register(domain.PaymentMethodNetBanking, NewNetBankingProcessor())
	g.Register(domain.PaymentMethodWallet, NewWalletProcessor())
	return g
}

// Register добавляет или заменяет процессор метода. Новые методы оплаты
// подключаются здесь, без изменения workflow.
func (g *Gateway) Register(method domain.PaymentMethod, processor domain.PaymentProcessor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.processors[method] = processor
	g.logger.WithField("method", method).Debug("payment processor registered")
}

// Processor возвращает процессор метода или ConfigurationError.
func (g *Gateway) Processor(method domain.PaymentMethod) (domain.PaymentProcessor, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	processor, ok := g.processors[method]
	if !ok {
		return nil, &domain.ConfigurationError{Method: method}
	}
	return processor, nil
}
