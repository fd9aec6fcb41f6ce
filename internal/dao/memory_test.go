package dao

import (
	"sync"
	"testing"

	"github.com/CatfishW/novus-pay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestOrder(id string) *models.Order {
	return &models.Order{
		OrderID:     id,
		PlayerName:  "Steve",
		AmountCNY:   decimal.NewFromFloat(9.9),
		GameCoins:   100,
		ProviderRef: "weixin://wxpay/bizpayurl?pr=abc",
		Status:      models.OrderStatusPending,
	}
}

func TestMemoryRepository_InsertAndGet(t *testing.T) {
	repo := NewMemoryRepository()

	err := repo.Insert(newTestOrder("order-1"))
	assert.NoError(t, err)

	order, found := repo.Get("order-1")
	assert.True(t, found)
	assert.Equal(t, "order-1", order.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestMemoryRepository_InsertDuplicate(t *testing.T) {
	repo := NewMemoryRepository()

	assert.NoError(t, repo.Insert(newTestOrder("order-1")))
	err := repo.Insert(newTestOrder("order-1"))
	assert.ErrorIs(t, err, models.ErrDuplicateOrder)
}

func TestMemoryRepository_GetUnknown(t *testing.T) {
	repo := NewMemoryRepository()

	order, found := repo.Get("nope")
	assert.False(t, found)
	assert.Nil(t, order)
}

func TestMemoryRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Insert(newTestOrder("order-1")))

	order, _ := repo.Get("order-1")
	order.Status = models.OrderStatusCompleted

	// the store stays authoritative, callers cannot mutate it through Get
	again, _ := repo.Get("order-1")
	assert.Equal(t, models.OrderStatusPending, again.Status)
}

func TestMemoryRepository_CompareAndSwap(t *testing.T) {
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Insert(newTestOrder("order-1")))

	swapped, err := repo.CompareAndSwap("order-1", models.OrderStatusPending, models.OrderStatusPaid)
	assert.NoError(t, err)
	assert.True(t, swapped)

	// same expectation again: lost race semantics, no error
	swapped, err = repo.CompareAndSwap("order-1", models.OrderStatusPending, models.OrderStatusPaid)
	assert.NoError(t, err)
	assert.False(t, swapped)

	order, _ := repo.Get("order-1")
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestMemoryRepository_CompareAndSwapUnknown(t *testing.T) {
	repo := NewMemoryRepository()

	swapped, err := repo.CompareAndSwap("nope", models.OrderStatusPending, models.OrderStatusPaid)
	assert.False(t, swapped)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestMemoryRepository_ConcurrentCompareAndSwap(t *testing.T) {
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Insert(newTestOrder("order-1")))

	const callers = 32
	var wg sync.WaitGroup
	wins := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			swapped, err := repo.CompareAndSwap("order-1", models.OrderStatusPending, models.OrderStatusPaid)
			assert.NoError(t, err)
			wins <- swapped
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for swapped := range wins {
		if swapped {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one caller should win the transition")
}
