package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/paypal"
	"github.com/qs3c/vidgen_server/internal/repository"
)

var (
	ErrSignupRequired      = errors.New("Please sign up before purchase")
	ErrMissingAccount      = errors.New("Missing account details")
	ErrCaptureNotCompleted = errors.New("Capture failed")
	ErrNotLoggedIn         = errors.New("Not logged in")
	ErrUserNotFound        = errors.New("User not found")
)

// PaymentGateway 支付渠道
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Order, error)
}

// Purchase 一次购买的输入，SessionEmail 为空表示未登录
type Purchase struct {
	PlanID        string
	SessionEmail  string
	PayPalOrderID string
	Account       dto.NewAccountFields
}

type PaymentService struct {
	store   repository.Store
	catalog *PlanCatalog
	gateway PaymentGateway
	mailer  Mailer
	now     func() time.Time
	newID   func() string
}

func NewPaymentService(store repository.Store, catalog *PlanCatalog, gateway PaymentGateway, mailer Mailer) *PaymentService {
	return &PaymentService{
		store:   store,
		catalog: catalog,
		gateway: gateway,
		mailer:  mailer,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Confirm 直接确认支付：记录订单并叠加额度
func (s *PaymentService) Confirm(p *Purchase) (*model.User, error) {
	plan, err := s.catalog.Get(p.PlanID)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveBuyer(p, ErrSignupRequired)
	if err != nil {
		return nil, err
	}

	order := s.newOrder(user.Email, plan)
	if err := s.store.AppendOrder(order); err != nil {
		return nil, err
	}

	GrantPlan(user, plan, s.now())
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	s.sendReceipt(order)
	return user, nil
}

// CreatePayPalOrder 按套餐价格创建 PayPal 订单，返回订单号
func (s *PaymentService) CreatePayPalOrder(ctx context.Context, planID string) (string, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return "", err
	}

	order, err := s.gateway.CreateOrder(ctx, plan.Price)
	if err != nil {
		log.Printf("[paypal] create-order failed: %v", err)
		return "", err
	}
	return order.ID, nil
}

// CapturePayPalOrder 完成支付，状态不是 COMPLETED 时不记录订单也不加额度
func (s *PaymentService) CapturePayPalOrder(ctx context.Context, p *Purchase) (*model.User, error) {
	plan, err := s.catalog.Get(p.PlanID)
	if err != nil {
		return nil, err
	}

	buyer, err := s.resolveBuyer(p, ErrMissingAccount)
	if err != nil {
		return nil, err
	}
	// 先落库新账户，支付失败后可以直接登录重试
	if err := s.store.SaveUser(buyer); err != nil {
		return nil, err
	}

	result, err := s.gateway.CaptureOrder(ctx, p.PayPalOrderID)
	if err != nil {
		log.Printf("[paypal] capture-order failed: %v", err)
		return nil, err
	}
	if result.Status != paypal.StatusCompleted {
		return nil, fmt.Errorf("%w: %s", ErrCaptureNotCompleted, result.Status)
	}

	order := s.newOrder(buyer.Email, plan)
	provider := model.ProviderPayPal
	paypalID := p.PayPalOrderID
	order.Provider = &provider
	order.PayPalOrderID = &paypalID
	if err := s.store.AppendOrder(order); err != nil {
		return nil, err
	}

	// 重新读取，避免覆盖支付期间的其他修改
	user, err := s.store.GetUser(buyer.Email)
	if err != nil {
		return nil, err
	}
	GrantPlan(user, plan, s.now())
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	s.sendReceipt(order)
	return user, nil
}

// Activate 订阅按钮回调，只更新用户不记录订单
func (s *PaymentService) Activate(email, subscriptionID, planKey string) (*model.User, error) {
	if email == "" {
		return nil, ErrNotLoggedIn
	}

	user, err := s.store.GetUser(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	plan, err := s.catalog.Get(planKey)
	if err != nil {
		return nil, err
	}

	log.Printf("[paypal] activate subscription=%s plan=%s email=%s", subscriptionID, plan.ID, email)

	GrantPlan(user, plan, s.now())
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// resolveBuyer 已登录用会话邮箱；否则用表单邮箱，新邮箱需要 name+password，
// 已注册邮箱需要密码匹配
func (s *PaymentService) resolveBuyer(p *Purchase, missing error) (*model.User, error) {
	email := p.SessionEmail
	if email == "" {
		email = p.Account.Email
	}
	if email == "" {
		return nil, missing
	}

	user, err := s.store.GetUser(email)
	if errors.Is(err, repository.ErrNotFound) {
		if p.Account.Name == "" || p.Account.Password == "" {
			return nil, missing
		}
		return newUser(p.Account.Name, email, p.Account.Password, p.Account.Promotions != "")
	}
	if err != nil {
		return nil, err
	}

	if p.SessionEmail == "" && !CheckPassword(user, p.Account.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *PaymentService) newOrder(email string, plan model.Plan) *model.Order {
	now := s.now()
	return &model.Order{
		ID:         s.newID(),
		Email:      email,
		Plan:       plan.Name,
		Amount:     plan.Price,
		VideosLeft: plan.Credits,
		EndDate:    now.Add(PlanPeriod).Format("2006-01-02"),
		CreatedAt:  now,
	}
}

func (s *PaymentService) sendReceipt(o *model.Order) {
	notify(s.mailer, func(m Mailer) error {
		return m.SendReceipt(o.Email, o.Plan, o.Amount, o.VideosLeft, o.EndDate)
	})
}
