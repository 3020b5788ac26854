package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepositoryInMemory хранит корзины покупателей в памяти.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartRepository создаёт in-memory реализацию CartRepository.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.Cart),
	}
}

// Get возвращает корзину покупателя или ErrCartNotFound.
func (r *cartRepositoryInMemory) Get(customerID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[customerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	// Clone защищает внутреннюю map от мутаций вызывающего.
	return cart.Clone(), nil
}

// Save перезаписывает корзину покупателя.
func (r *cartRepositoryInMemory) Save(cart domain.Cart) error {
	if cart.CustomerID == "" {
		return domain.ErrCustomerRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[cart.CustomerID] = cart.Clone()
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
