package handler

import (
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
	sessions       *middleware.Sessions
}

func NewAccountHandler(accountService *service.AccountService, sessions *middleware.Sessions) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		sessions:       sessions,
	}
}

// Show 账户页
// GET /account
func (h *AccountHandler) Show(c *gin.Context) {
	user, _ := middleware.GetAccount(c)

	response.Success(c, gin.H{
		"message":     c.Query("message"),
		"user":        toAccount(user),
		"has_paid":    user.HasPaid,
		"videos_left": user.VideosLeft,
		"max_credits": user.MaxCredits,
	})
}

// Cancel 取消订阅
// POST /cancel-membership
func (h *AccountHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Redirect(c, "/account", service.ErrIncorrectPassword.Error())
		return
	}

	user, err := h.accountService.Cancel(middleware.GetEmail(c), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncorrectPassword), errors.Is(err, service.ErrAlreadyCancelled):
			response.Redirect(c, "/account", err.Error())
		default:
			log.Printf("Cancel membership failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	h.sessions.Refresh(c, user)
	response.Redirect(c, "/account", "Membership cancelled")
}

func toAccount(u *model.User) *dto.Account {
	if u == nil {
		return nil
	}
	return &dto.Account{
		Email:         u.Email,
		Name:          u.Name,
		HasPaid:       u.HasPaid,
		VideosLeft:    u.VideosLeft,
		MaxCredits:    u.MaxCredits,
		PlanName:      u.PlanName,
		PlanStartedAt: formatTime(u.PlanStartedAt),
		PlanExpiry:    formatTime(u.PlanExpiry),
		Cancelled:     u.Cancelled,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
