package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/password"
	"github.com/qs3c/vidgen_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("Email already in use, please login.")
	ErrInvalidCredentials = errors.New("Invalid email or password.")
)

// Mailer 通知邮件，未配置时不发送
type Mailer interface {
	Configured() bool
	SendWelcome(to, name string) error
	SendReceipt(to, planName string, amount float64, credits int, endDate string) error
}

type AuthService struct {
	store  repository.Store
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(store repository.Store, mailer Mailer) *AuthService {
	return &AuthService{
		store:  store,
		mailer: mailer,
		now:    time.Now,
	}
}

// Signup 注册，新用户没有任何额度
func (s *AuthService) Signup(req *dto.SignupRequest) (*model.User, error) {
	_, err := s.store.GetUser(req.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := newUser(req.Name, req.Email, req.Password, req.Promos != "")
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	notify(s.mailer, func(m Mailer) error { return m.SendWelcome(user.Email, user.Name) })

	return user, nil
}

// Login 未知邮箱与密码错误返回同一个错误
func (s *AuthService) Login(email, plain string) (*model.User, error) {
	user, err := s.store.GetUser(email)
	if errors.Is(err, repository.ErrNotFound) {
		// 对未知邮箱也做一次校验，响应时间一致
		_ = password.Verify(dummyHash(), plain)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := password.Verify(user.PasswordHash, plain); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CheckPassword 校验已有用户的密码
func CheckPassword(user *model.User, plain string) bool {
	return user != nil && password.Verify(user.PasswordHash, plain) == nil
}

func newUser(name, email, plain string, promos bool) (*model.User, error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Promos:       promos,
	}, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = password.Hash("not-a-real-password")
	})
	return dummy
}

// notify 异步发送邮件，失败只记录日志
func notify(m Mailer, send func(Mailer) error) {
	if m == nil || !m.Configured() {
		return
	}
	go func() {
		if err := send(m); err != nil {
			log.Printf("[email] send failed: %v", err)
		}
	}()
}
