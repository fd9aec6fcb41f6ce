package dao

import "github.com/CatfishW/novus-pay/internal/models"

// Repository is the authority for order records and state transitions.
// CompareAndSwap is the only mutation path after Insert; it must be atomic
// with respect to concurrent callers so racing completions cannot both win.
type Repository interface {
	// Insert stores a new order. Returns models.ErrDuplicateOrder on id collision.
	Insert(order *models.Order) error
	// Get returns a copy of the order, or found=false for an unknown id.
	Get(orderID string) (*models.Order, bool)
	// CompareAndSwap moves the order from expect to next. swapped=false with a
	// nil error means the current status differed from expect; unknown ids
	// return models.ErrOrderNotFound.
	CompareAndSwap(orderID string, expect, next models.OrderStatus) (swapped bool, err error)
}
