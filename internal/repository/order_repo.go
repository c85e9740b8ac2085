package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/vidgen_server/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create 插入一条订单，重复 ID 返回 ErrDuplicateOrder
func (r *OrderRepository) Create(order *model.Order) error {
	err := r.db.Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrder
	}
	return err
}

func (r *OrderRepository) List() ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.Order("created_at asc").Order("id asc").Find(&orders).Error
	return orders, err
}
