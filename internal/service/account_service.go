package service

import (
	"errors"
	"time"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/repository"
)

var ErrIncorrectPassword = errors.New("Incorrect password")

type AccountService struct {
	store repository.Store
	now   func() time.Time
}

func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store, now: time.Now}
}

// Current 读取用户并执行到期检查，过期则落库
func (s *AccountService) Current(email string) (*model.User, error) {
	user, err := s.store.GetUser(email)
	if err != nil {
		return nil, err
	}

	if ApplyExpiry(user, s.now()) {
		if err := s.store.SaveUser(user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// Cancel 取消订阅，需要重新输入密码，到期前额度仍可用
func (s *AccountService) Cancel(email, plain string) (*model.User, error) {
	user, err := s.store.GetUser(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrIncorrectPassword
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user, plain) {
		return nil, ErrIncorrectPassword
	}

	if err := ScheduleCancellation(user, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	return user, nil
}
