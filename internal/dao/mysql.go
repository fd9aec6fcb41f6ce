package dao

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CatfishW/novus-pay/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MysqlRepository is the durable store variant, selected when a mysql section
// is present in the configuration.
type MysqlRepository struct {
	db *gorm.DB
}

func NewMysqlRepository(dsn string) (*MysqlRepository, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return nil, fmt.Errorf("migrate orders table: %w", err)
	}
	return &MysqlRepository{db: db}, nil
}

func (d *MysqlRepository) Insert(order *models.Order) error {
	if err := d.db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (d *MysqlRepository) Get(orderID string) (*models.Order, bool) {
	var order models.Order
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// a transient failure must be tellable apart from a bad order id
			slog.Error("order lookup failed", "order_id", orderID, "error", err)
		}
		return nil, false
	}
	return &order, true
}

// CompareAndSwap relies on the conditional UPDATE being atomic on the server
// side; RowsAffected distinguishes a won swap from a lost race.
func (d *MysqlRepository) CompareAndSwap(orderID string, expect, next models.OrderStatus) (bool, error) {
	res := d.db.Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, expect).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// nothing updated: either the order is unknown or its status differs
	var count int64
	if err := d.db.Model(&models.Order{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, models.ErrOrderNotFound
	}
	return false, nil
}
