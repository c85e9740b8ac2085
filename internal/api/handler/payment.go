package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/paypal"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/service"
)

// PaymentHandler PayPal 相关接口直接返回 PayPal JS SDK 约定的 JSON 结构
type PaymentHandler struct {
	paymentService *service.PaymentService
	sessions       *middleware.Sessions
}

func NewPaymentHandler(paymentService *service.PaymentService, sessions *middleware.Sessions) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		sessions:       sessions,
	}
}

// Confirm 直接确认支付
// POST /confirm-payment
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, "Invalid plan selected.")
		return
	}

	user, err := h.paymentService.Confirm(&service.Purchase{
		PlanID:       req.PlanID,
		SessionEmail: middleware.GetEmail(c),
		Account:      req.NewAccountFields,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			response.ParamError(c, "Invalid plan selected.")
		case errors.Is(err, service.ErrSignupRequired), errors.Is(err, service.ErrInvalidCredentials):
			response.Redirect(c, "/pricing", err.Error())
		default:
			log.Printf("Confirm payment failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	if err := h.bindSession(c, user); err != nil {
		response.ServerError(c, "")
		return
	}

	response.Redirect(c, "/", "Payment Confirmed")
}

// CreateOrder 创建 PayPal 订单
// POST /paypal/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrUnknownPlan.Error()})
		return
	}

	id, err := h.paymentService.CreatePayPalOrder(c.Request.Context(), req.PlanID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPlan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gatewayMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// CaptureOrder 完成 PayPal 订单并叠加额度
// POST /paypal/capture-order
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	var req dto.CaptureOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plan_id or order_id"})
		return
	}

	user, err := h.paymentService.CapturePayPalOrder(c.Request.Context(), &service.Purchase{
		PlanID:        req.PlanID,
		PayPalOrderID: req.OrderID,
		SessionEmail:  middleware.GetEmail(c),
		Account:       req.NewAccountFields,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan),
			errors.Is(err, service.ErrMissingAccount),
			errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrCaptureNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": gatewayMessage(err)})
		}
		return
	}

	if err := h.bindSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Activate 订阅按钮批准后的回调
// POST /paypal/activate
func (h *PaymentHandler) Activate(c *gin.Context) {
	var req dto.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request"})
		return
	}

	user, err := h.paymentService.Activate(middleware.GetEmail(c), req.SubscriptionID, req.PlanKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotLoggedIn):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, service.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Unknown plan"})
		default:
			log.Printf("Activate subscription failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Internal server error"})
		}
		return
	}

	h.sessions.Refresh(c, user)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// bindSession 购买后以买家身份登录
func (h *PaymentHandler) bindSession(c *gin.Context, user *model.User) error {
	if middleware.GetEmail(c) == user.Email {
		h.sessions.Refresh(c, user)
		return nil
	}
	if err := h.sessions.Start(c, user); err != nil {
		log.Printf("Failed to start session: %v", err)
		return err
	}
	return nil
}

// gatewayMessage PayPal 错误原样返回，其余错误不暴露细节
func gatewayMessage(err error) string {
	var apiErr *paypal.APIError
	if errors.As(err, &apiErr) || errors.Is(err, paypal.ErrNotConfigured) {
		return err.Error()
	}
	log.Printf("Payment request failed: %v", err)
	return "Internal server error"
}
