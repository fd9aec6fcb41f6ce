package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CatfishW/novus-pay/internal/dao"
	"github.com/CatfishW/novus-pay/internal/models"
	"github.com/CatfishW/novus-pay/internal/providers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService owns the order state machine: PENDING -> PAID -> COMPLETED,
// forward only. It is the sole writer of order status; all transitions go
// through the repository's CompareAndSwap so racing callers cannot
// double-credit an order.
type OrderService struct {
	repo     dao.Repository
	provider providers.Provider
	notifier Notifier
}

func NewOrderService(repo dao.Repository, provider providers.Provider, notifier Notifier) *OrderService {
	return &OrderService{repo: repo, provider: provider, notifier: notifier}
}

// CreateOrder validates the request, obtains a payment URI from the provider
// and only then inserts the order. A failed or timed-out provider call leaves
// no half-created order behind, and no store lock is held across it.
func (s *OrderService) CreateOrder(ctx context.Context, playerName string, amountCNY decimal.Decimal, gameCoins int64) (*models.Order, error) {
	if playerName == "" {
		return nil, &models.ValidationError{Field: "player_name", Reason: "must not be empty"}
	}
	if !amountCNY.IsPositive() {
		return nil, &models.ValidationError{Field: "amount_cny", Reason: "must be positive"}
	}
	if gameCoins <= 0 {
		return nil, &models.ValidationError{Field: "game_coins", Reason: "must be positive"}
	}
	minor, err := minorUnits(amountCNY)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	description := fmt.Sprintf("Novus Coins x%d", gameCoins)

	providerRef, err := s.provider.CreatePaymentIntent(ctx, minor, description, orderID)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	order := &models.Order{
		OrderID:     orderID,
		PlayerName:  playerName,
		AmountCNY:   amountCNY,
		GameCoins:   gameCoins,
		ProviderRef: providerRef,
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	slog.Info("order created",
		"order_id", orderID,
		"player", playerName,
		"amount_cny", amountCNY.String(),
		"game_coins", gameCoins)
	return order, nil
}

// GetOrder is side-effect-free.
func (s *OrderService) GetOrder(orderID string) (*models.Order, error) {
	order, ok := s.repo.Get(orderID)
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetStatus(orderID string) (models.OrderStatus, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// ConfirmPayment moves an order from PENDING to PAID. Repeated confirmations
// are accepted as no-op successes: provider webhooks are delivered at least
// once and possibly out of order.
func (s *OrderService) ConfirmPayment(orderID string) error {
	swapped, err := s.repo.CompareAndSwap(orderID, models.OrderStatusPending, models.OrderStatusPaid)
	if err != nil {
		return err
	}
	if !swapped {
		slog.Debug("duplicate payment confirmation", "order_id", orderID)
		return nil
	}
	slog.Info("order paid", "order_id", orderID)
	s.notifier.NotifyTransition(orderID, models.OrderStatusPending, models.OrderStatusPaid)
	return nil
}

// MarkCompleted moves an order from PAID to COMPLETED, called by the
// collaborator that credits the game currency. Completing an order that was
// never paid is a caller bug and is rejected.
func (s *OrderService) MarkCompleted(orderID string) error {
	swapped, err := s.repo.CompareAndSwap(orderID, models.OrderStatusPaid, models.OrderStatusCompleted)
	if err != nil {
		return err
	}
	if !swapped {
		order, ok := s.repo.Get(orderID)
		if !ok {
			return models.ErrOrderNotFound
		}
		slog.Warn("rejected order transition",
			"order_id", orderID,
			"from", order.Status,
			"to", models.OrderStatusCompleted)
		return &models.InvalidTransitionError{
			OrderID: orderID,
			From:    order.Status,
			To:      models.OrderStatusCompleted,
		}
	}
	slog.Info("order completed", "order_id", orderID)
	s.notifier.NotifyTransition(orderID, models.OrderStatusPaid, models.OrderStatusCompleted)
	return nil
}

// minorUnits converts a CNY amount to integer fen for the provider. Amounts
// with sub-fen precision are rejected rather than rounded; a float multiply
// here is the classic bug this guards against.
func minorUnits(amount decimal.Decimal) (int64, error) {
	fen := amount.Shift(2)
	if !fen.IsInteger() {
		return 0, &models.ValidationError{Field: "amount_cny", Reason: "has sub-fen precision"}
	}
	return fen.IntPart(), nil
}
