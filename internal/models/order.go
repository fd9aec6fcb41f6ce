package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Order is a single purchase attempt for in-game coins. OrderID is the only
// handle ever exposed outside the process; Status moves forward only.
type Order struct {
	OrderID     string          `gorm:"primaryKey;type:varchar(36)" json:"order_id"`
	PlayerName  string          `gorm:"type:varchar(64);not null" json:"player_name"`
	AmountCNY   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_cny"`
	GameCoins   int64           `gorm:"not null" json:"game_coins"`
	ProviderRef string          `gorm:"type:varchar(255)" json:"-"`
	Status      OrderStatus     `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}
