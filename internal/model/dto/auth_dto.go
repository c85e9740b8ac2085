package dto

// SignupRequest 注册表单
type SignupRequest struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Terms    string `form:"terms" binding:"required"`
	Promos   string `form:"promos"`
}

// LoginRequest 登录表单
type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// CancelRequest 取消订阅需要重新输入密码
type CancelRequest struct {
	Password string `form:"password" binding:"required"`
}

// Account 账户信息（返回给前端，不含密码）
type Account struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	HasPaid       bool    `json:"has_paid"`
	VideosLeft    int     `json:"videos_left"`
	MaxCredits    int     `json:"max_credits"`
	PlanName      string  `json:"plan_name,omitempty"`
	PlanStartedAt *string `json:"plan_started_at"`
	PlanExpiry    *string `json:"plan_expiry"`
	Cancelled     bool    `json:"cancelled"`
}
