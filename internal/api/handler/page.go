package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/repository"
	"github.com/qs3c/vidgen_server/internal/service"
)

// PageHandler 页面数据接口，前端负责渲染
type PageHandler struct {
	catalog        *service.PlanCatalog
	accountService *service.AccountService
	paypal         config.PayPalConfig
}

func NewPageHandler(catalog *service.PlanCatalog, accountService *service.AccountService, paypal config.PayPalConfig) *PageHandler {
	return &PageHandler{
		catalog:        catalog,
		accountService: accountService,
		paypal:         paypal,
	}
}

// Home 首页
// GET /
func (h *PageHandler) Home(c *gin.Context) {
	_, data, ok := middleware.GetSession(c)

	resp := gin.H{
		"message":  c.Query("message"),
		"email":    nil,
		"has_paid": nil,
	}
	if ok {
		resp["email"] = data.Email
		resp["has_paid"] = data.HasPaid
	}
	response.Success(c, resp)
}

// Pricing 套餐列表
// GET /pricing
func (h *PageHandler) Pricing(c *gin.Context) {
	plans := h.catalog.List()
	list := make([]dto.PlanInfo, 0, len(plans))
	for _, p := range plans {
		list = append(list, dto.PlanInfo{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Credits:     p.Credits,
			MaxDuration: p.MaxDuration,
		})
	}

	resp := gin.H{
		"message":  c.Query("message"),
		"plans":    list,
		"email":    nil,
		"has_paid": nil,
	}
	if _, data, ok := middleware.GetSession(c); ok {
		resp["email"] = data.Email
		resp["has_paid"] = data.HasPaid
	}
	response.Success(c, resp)
}

// Checkout 结算页，未知套餐回落到 basic
// GET /checkout?plan=
func (h *PageHandler) Checkout(c *gin.Context) {
	plan := h.catalog.GetOrDefault(c.DefaultQuery("plan", service.DefaultPlanID))

	resp := &dto.CheckoutResponse{
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		PlanPrice:      plan.Price,
		VideoLimit:     plan.Credits,
		PayPalClientID: h.paypal.ClientID,
		PayPalPlanIDs:  h.paypal.PlanIDs,
	}
	if resp.PayPalPlanIDs == nil {
		resp.PayPalPlanIDs = map[string]string{}
	}

	if email := middleware.GetEmail(c); email != "" {
		resp.Email = email
		user, err := h.accountService.Current(email)
		switch {
		case err == nil:
			resp.User = toAccount(user)
		case errors.Is(err, repository.ErrNotFound):
		default:
			log.Printf("Checkout: failed to load %s: %v", email, err)
			response.ServerError(c, "")
			return
		}
	}

	response.Success(c, resp)
}
