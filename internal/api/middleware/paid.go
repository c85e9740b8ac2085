package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/internal/pkg/response"
)

// RequirePaid 未付费用户跳转到 redirect，需在 LoadAccount 之后使用
func RequirePaid(redirect, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetAccount(c)
		if !ok || !user.HasPaid {
			response.Redirect(c, redirect, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
