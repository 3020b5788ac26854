package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// timelineRepositoryInMemory держит историю заказов в памяти. Используется
// в тестах и при запуске storefront без PostgreSQL.
type timelineRepositoryInMemory struct {
	mu      sync.RWMutex
	byOrder map[string][]domain.TimelineEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineRepositoryInMemory{byOrder: make(map[string][]domain.TimelineEvent)}
}

// Append добавляет запись в историю заказа, сохраняя хронологию. События
// с одинаковым временем остаются в порядке добавления.
func (r *timelineRepositoryInMemory) Append(event domain.TimelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := append(r.byOrder[event.OrderID], event)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Occurred.Before(history[j].Occurred)
	})
	r.byOrder[event.OrderID] = history

	return nil
}

// List возвращает копию истории заказа в хронологическом порядке.
func (r *timelineRepositoryInMemory) List(orderID string) ([]domain.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.byOrder[orderID]
	snapshot := make([]domain.TimelineEvent, len(history))
	copy(snapshot, history)
	return snapshot, nil
}

var _ domain.TimelineRepository = (*timelineRepositoryInMemory)(nil)
