package dao

import (
	"sync"

	"github.com/CatfishW/novus-pay/internal/models"
)

// MemoryRepository keeps orders for the lifetime of the process. It is
// injected where needed, never shared as a package-level variable.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*models.Order)}
}

func (r *MemoryRepository) Insert(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.OrderID]; exists {
		return models.ErrDuplicateOrder
	}
	cp := *order
	r.orders[order.OrderID] = &cp
	return nil
}

func (r *MemoryRepository) Get(orderID string) (*models.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, false
	}
	cp := *order
	return &cp, true
}

func (r *MemoryRepository) CompareAndSwap(orderID string, expect, next models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, models.ErrOrderNotFound
	}
	if order.Status != expect {
		return false, nil
	}
	order.Status = next
	return true, nil
}
