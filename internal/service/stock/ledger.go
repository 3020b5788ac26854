package stock

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Ledger — in-memory реализация StockLedger с блокировкой на товар.
// Проверка и списание остатка выполняются под одним mutex, поэтому два
// конкурентных Reserve за последнюю единицу не пройдут оба. Блокировка
// держится только на время арифметики: никаких внешних вызовов под ней.
type Ledger struct {
	mu     sync.RWMutex
	items  map[string]*stockItem
	logger *log.Entry
}

type stockItem struct {
	mu         sync.Mutex
	available  int32
	totalAdded int64
}

// NewLedger создаёт пустой ledger.
func NewLedger(logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "stock-ledger")
	}
	return &Ledger{
		items:  make(map[string]*stockItem),
		logger: logger,
	}
}

// AddStock регистрирует приёмку товара. Нулевое количество допустимо и
// просто заводит товар в ledger; отрицательное — ErrInvalidQuantity.
func (l *Ledger) AddStock(productID string, qty int32) error {
	if qty < 0 {
		return domain.ErrInvalidQuantity
	}

	item := l.getOrCreate(productID)
	item.mu.Lock()
	item.available += qty
	item.totalAdded += int64(qty)
	item.mu.Unlock()

	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"qty":        qty,
	}).Debug("stock added")
	return nil
}

// Reserve атомарно списывает qty из доступного остатка. При нехватке
// возвращает InsufficientStockError и не меняет состояние.
func (l *Ledger) Reserve(productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	item, err := l.get(productID)
	if err != nil {
		return err
	}

	item.mu.Lock()
	defer item.mu.Unlock()

	if item.available < qty {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: item.available,
		}
	}
	item.available -= qty
	return nil
}

// Release возвращает ранее зарезервированное количество в доступный остаток.
// Идемпотентность — ответственность вызывающего.
func (l *Ledger) Release(productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	item, err := l.get(productID)
	if err != nil {
		return err
	}

	item.mu.Lock()
	item.available += qty
	item.mu.Unlock()
	return nil
}

// AvailableQuantity возвращает снапшот остатка. Значение может устареть к
// моменту следующего Reserve: авторитетная проверка — сам Reserve.
func (l *Ledger) AvailableQuantity(productID string) (int32, error) {
	item, err := l.get(productID)
	if err != nil {
		return 0, err
	}

	item.mu.Lock()
	defer item.mu.Unlock()
	return item.available, nil
}

// TotalAdded возвращает суммарно принятое на склад количество товара.
// Используется для сверки: available + резервы живых заказов == totalAdded.
func (l *Ledger) TotalAdded(productID string) (int64, error) {
	item, err := l.get(productID)
	if err != nil {
		return 0, err
	}

	item.mu.Lock()
	defer item.mu.Unlock()
	return item.totalAdded, nil
}

func (l *Ledger) get(productID string) (*stockItem, error) {
	l.mu.RLock()
	item, ok := l.items[productID]
	l.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return item, nil
}

func (l *Ledger) getOrCreate(productID string) *stockItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[productID]
	if !ok {
		item = &stockItem{}
		l.items[productID] = item
	}
	return item
}

var _ domain.StockLedger = (*Ledger)(nil)
