package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/pkg/password"
	"github.com/qs3c/vidgen_server/internal/repository"
)

// DefaultPassword fixtures 用户的明文密码
const DefaultPassword = "password123"

var defaultHash string

func hashDefault(t *testing.T) string {
	t.Helper()
	if defaultHash == "" {
		h, err := password.Hash(DefaultPassword)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		defaultHash = h
	}
	return defaultHash
}

// TestUser 创建测试用户并写入 store
func TestUser(t *testing.T, store repository.Store, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Email:        fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		Name:         "Test User",
		PasswordHash: hashDefault(t),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := store.SaveUser(user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPassword 设置密码
func WithPassword(t *testing.T, plain string) func(*model.User) {
	return func(u *model.User) {
		h, err := password.Hash(plain)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		u.PasswordHash = h
	}
}

// WithPlan 已付费且剩余 credits
func WithPlan(planID string, credits int, startedAt time.Time) func(*model.User) {
	return func(u *model.User) {
		u.HasPaid = true
		u.PlanName = planID
		u.VideosLeft = credits
		if credits > u.MaxCredits {
			u.MaxCredits = credits
		}
		started := startedAt
		u.PlanStartedAt = &started
	}
}

// WithMaxCredits 设置进度条上限
func WithMaxCredits(max int) func(*model.User) {
	return func(u *model.User) {
		u.MaxCredits = max
	}
}

// WithCancelled 已取消，到期时间 expiry
func WithCancelled(expiry time.Time) func(*model.User) {
	return func(u *model.User) {
		u.Cancelled = true
		e := expiry
		u.PlanExpiry = &e
	}
}

// TestOrder 追加一条测试订单
func TestOrder(t *testing.T, store repository.Store, email string, opts ...func(*model.Order)) *model.Order {
	t.Helper()

	order := &model.Order{
		ID:         fmt.Sprintf("order-%d", time.Now().UnixNano()),
		Email:      email,
		Plan:       "Basic",
		Amount:     24.99,
		VideosLeft: 5,
		EndDate:    time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
		CreatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(order)
	}

	if err := store.AppendOrder(order); err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return order
}

// WithPayPal 标记为 PayPal 订单
func WithPayPal(paypalOrderID string) func(*model.Order) {
	return func(o *model.Order) {
		provider := model.ProviderPayPal
		o.Provider = &provider
		o.PayPalOrderID = &paypalOrderID
	}
}
