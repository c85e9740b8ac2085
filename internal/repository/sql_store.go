package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/vidgen_server/internal/model"
)

// SQLStore 关系型实现，每次调用独立提交
type SQLStore struct {
	db     *gorm.DB
	users  *UserRepository
	orders *OrderRepository
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{
		db:     db,
		users:  NewUserRepository(db),
		orders: NewOrderRepository(db),
	}
}

// MySQL 默认排序规则不区分大小写，邮箱列改为二进制排序
const mysqlEmailCollation = "utf8mb4_bin"

var emailTables = []string{"users", "orders"}

// Migrate 建表；MySQL 下保证 email 列区分大小写
func (s *SQLStore) Migrate() error {
	if err := s.db.AutoMigrate(&model.User{}, &model.Order{}); err != nil {
		return err
	}
	if s.db.Dialector.Name() != "mysql" {
		return nil
	}

	for _, table := range emailTables {
		var collation string
		err := s.db.Raw(`SELECT COLLATION_NAME FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = 'email'`, table).
			Scan(&collation).Error
		if err != nil {
			return err
		}
		if collation == mysqlEmailCollation {
			continue
		}
		if err := s.db.Exec(emailCollationDDL(table)).Error; err != nil {
			return fmt.Errorf("set %s.email collation: %w", table, err)
		}
	}
	return nil
}

func emailCollationDDL(table string) string {
	return fmt.Sprintf("ALTER TABLE `%s` MODIFY `email` VARCHAR(191) CHARACTER SET utf8mb4 COLLATE %s NOT NULL",
		table, mysqlEmailCollation)
}

func (s *SQLStore) LoadUsers() (map[string]*model.User, error) {
	list, err := s.users.List()
	if err != nil {
		return nil, err
	}
	users := make(map[string]*model.User, len(list))
	for _, u := range list {
		users[u.Email] = u
	}
	return users, nil
}

func (s *SQLStore) SaveUsers(users map[string]*model.User) error {
	list := make([]*model.User, 0, len(users))
	for email, u := range users {
		u.Email = email
		list = append(list, u)
	}
	return s.users.UpsertAll(list)
}

func (s *SQLStore) GetUser(email string) (*model.User, error) {
	return s.users.GetByEmail(email)
}

func (s *SQLStore) SaveUser(user *model.User) error {
	return s.users.Upsert(user)
}

func (s *SQLStore) AppendOrder(order *model.Order) error {
	return s.orders.Create(order)
}

func (s *SQLStore) LoadOrders() ([]*model.Order, error) {
	return s.orders.List()
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
