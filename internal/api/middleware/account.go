package middleware

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/pkg/response"
	"github.com/qs3c/vidgen_server/internal/repository"
	"github.com/qs3c/vidgen_server/internal/service"
)

const AccountKey = "account"

// LoadAccount 需要登录；每个请求从存储读取一次用户并执行到期检查，
// 未登录跳转到 redirect
func LoadAccount(accounts *service.AccountService, sessions *Sessions, redirect, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := GetEmail(c)
		if email == "" {
			response.Redirect(c, redirect, message)
			c.Abort()
			return
		}

		user, err := accounts.Current(email)
		if errors.Is(err, repository.ErrNotFound) {
			sessions.End(c)
			response.Redirect(c, redirect, message)
			c.Abort()
			return
		}
		if err != nil {
			log.Printf("Failed to load account %s: %v", email, err)
			response.ServerError(c, "")
			c.Abort()
			return
		}

		sessions.Refresh(c, user)
		c.Set(AccountKey, user)
		c.Next()
	}
}

// GetAccount 从上下文获取 LoadAccount 读取的用户
func GetAccount(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
