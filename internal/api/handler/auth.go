package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/api/middleware"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *middleware.Sessions
}

func NewAuthHandler(authService *service.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// Signup 注册并直接登录
// POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.Notice(c, response.CodeDuplicateAction, err.Error())
		default:
			log.Printf("Signup failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	if err := h.sessions.Start(c, user); err != nil {
		log.Printf("Failed to start session: %v", err)
		response.ServerError(c, "")
		return
	}

	response.Redirect(c, "/", "Account created successfully")
}

// Login 用户登录
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Notice(c, response.CodeAuthFailed, err.Error())
		default:
			log.Printf("Login failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	if err := h.sessions.Start(c, user); err != nil {
		log.Printf("Failed to start session: %v", err)
		response.ServerError(c, "")
		return
	}

	response.Redirect(c, "/", "Logged in successfully")
}

// Logout 退出登录
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.End(c)
	response.Redirect(c, "/", "Logged out successfully")
}
