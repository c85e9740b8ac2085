package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/vidgen_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List() ([]*model.User, error) {
	var users []*model.User
	err := r.db.Order("email asc").Find(&users).Error
	return users, err
}

// Upsert 按主键插入或整行覆盖
func (r *UserRepository) Upsert(user *model.User) error {
	return upsertUsers(r.db, []*model.User{user})
}

// UpsertAll 在一个事务内写入全部用户
func (r *UserRepository) UpsertAll(users []*model.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return upsertUsers(tx, users)
	})
}

func upsertUsers(db *gorm.DB, users []*model.User) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		UpdateAll: true,
	}).Create(users).Error
}
