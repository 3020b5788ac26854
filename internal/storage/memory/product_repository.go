package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepositoryInMemory — in-memory каталог товаров.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository создаёт in-memory реализацию ProductRepository.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Put добавляет либо перезаписывает товар каталога.
func (r *productRepositoryInMemory) Put(product domain.Product) error {
	if errs := product.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.items[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Search ищет активные товары по подстроке в имени и/или точной категории.
// Пустые аргументы означают «без фильтра по этому полю».
func (r *productRepositoryInMemory) Search(name, category string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	category = strings.TrimSpace(category)

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if !product.Active {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(product.Name), name) {
			continue
		}
		if category != "" && product.Category != category {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
