package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/service"
)

type GenerateHandler struct {
	generationService *service.GenerationService
	sessions          *middleware.Sessions
}

func NewGenerateHandler(generationService *service.GenerationService, sessions *middleware.Sessions) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
		sessions:          sessions,
	}
}

// Page 生成页
// GET /generate
func (h *GenerateHandler) Page(c *gin.Context) {
	user, _ := middleware.GetAccount(c)

	response.Success(c, &dto.GeneratePage{
		Email:      user.Email,
		HasPaid:    user.HasPaid,
		VideosLeft: user.VideosLeft,
		PlanTotal:  user.MaxCredits,
	})
}

// Create 生成视频，额度不足跳转到套餐页且不扣减
// POST /generate, POST /generate-video
func (h *GenerateHandler) Create(c *gin.Context) {
	email := middleware.GetEmail(c)
	if email == "" {
		response.Redirect(c, "/pricing", service.ErrUpgradeRequired.Error())
		return
	}

	// 先检查额度，到期降级时同步会话
	if user, err := h.generationService.Authorize(email); err != nil {
		h.reject(c, email, user, err)
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, user, err := h.generationService.Generate(c.Request.Context(), email, req.Prompt)
	if err != nil {
		h.reject(c, email, user, err)
		return
	}

	h.sessions.Refresh(c, user)
	response.Success(c, result)
}

func (h *GenerateHandler) reject(c *gin.Context, email string, user *model.User, err error) {
	if !errors.Is(err, service.ErrUpgradeRequired) {
		log.Printf("[generate] failed for %s: %v", email, err)
		response.ServerError(c, "")
		return
	}
	if user != nil {
		h.sessions.Refresh(c, user)
	}
	response.Redirect(c, "/pricing", err.Error())
}
