package dto

// NewAccountFields 下单时顺带注册账户
type NewAccountFields struct {
	Email      string `form:"email"`
	Name       string `form:"name"`
	Password   string `form:"password"`
	Promotions string `form:"promotions"`
}

// ConfirmPaymentRequest 直接确认支付
type ConfirmPaymentRequest struct {
	PlanID string `form:"plan_id" binding:"required"`
	NewAccountFields
}

// CreateOrderRequest 创建 PayPal 订单
type CreateOrderRequest struct {
	PlanID string `form:"plan_id" binding:"required"`
}

// CaptureOrderRequest 完成 PayPal 订单
type CaptureOrderRequest struct {
	PlanID  string `form:"plan_id" binding:"required"`
	OrderID string `form:"order_id" binding:"required"`
	NewAccountFields
}

// ActivateRequest PayPal 订阅按钮回调
type ActivateRequest struct {
	SubscriptionID string `json:"subscription_id"`
	PlanKey        string `json:"plan_key"`
}

// PlanInfo 套餐展示
type PlanInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Credits     int     `json:"credits"`
	MaxDuration int     `json:"max_duration"`
}

// CheckoutResponse 结算页数据
type CheckoutResponse struct {
	PlanID         string            `json:"plan_id"`
	PlanName       string            `json:"plan_name"`
	PlanPrice      float64           `json:"plan_price"`
	VideoLimit     int               `json:"video_limit"`
	Email          string            `json:"email,omitempty"`
	User           *Account          `json:"user"`
	PayPalClientID string            `json:"paypal_client_id"`
	PayPalPlanIDs  map[string]string `json:"paypal_plan_ids"`
}
