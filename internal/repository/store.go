package repository

import (
	"errors"

	"github.com/qs3c/vidgen_server/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateOrder = errors.New("order already recorded")
	ErrCorruptFile    = errors.New("data file is not valid JSON")
)

// Store 用户与订单的持久化能力，关系型与 JSON 文件两种实现可互换
type Store interface {
	LoadUsers() (map[string]*model.User, error)
	SaveUsers(users map[string]*model.User) error
	GetUser(email string) (*model.User, error)
	SaveUser(user *model.User) error
	AppendOrder(order *model.Order) error
	LoadOrders() ([]*model.Order, error)
	Close() error
}
