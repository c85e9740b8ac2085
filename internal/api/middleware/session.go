package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/pkg/session"
)

const (
	SessionIDKey = "sessionID"
	SessionKey   = "session"
)

// Sessions 管理会话 cookie 与 Redis 中的会话记录
type Sessions struct {
	store  *session.Store
	cookie string
	secure bool
}

func NewSessions(store *session.Store, cfg config.SessionConfig) *Sessions {
	name := cfg.CookieName
	if name == "" {
		name = "vidgen_session"
	}
	return &Sessions{store: store, cookie: name, secure: cfg.Secure}
}

// Load 解析 cookie，无效或过期的会话按未登录处理
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		id, data, err := s.store.Resolve(c.Request.Context(), token)
		if err == nil {
			c.Set(SessionIDKey, id)
			c.Set(SessionKey, data)
		}

		c.Next()
	}
}

// Start 登录后新建会话并写 cookie
func (s *Sessions) Start(c *gin.Context, user *model.User) error {
	if id, ok := c.Get(SessionIDKey); ok {
		_ = s.store.Destroy(c.Request.Context(), id.(string))
	}

	data := &session.Data{}
	data.Mirror(user)

	id, token, err := s.store.Create(c.Request.Context(), data)
	if err != nil {
		return err
	}

	s.setCookie(c, token, int(s.store.TTL().Seconds()))
	c.Set(SessionIDKey, id)
	c.Set(SessionKey, data)
	return nil
}

// Refresh 用户记录变更后同步会话镜像，未登录时忽略
func (s *Sessions) Refresh(c *gin.Context, user *model.User) {
	id, data, ok := GetSession(c)
	if !ok || data.Email != user.Email {
		return
	}

	data.Mirror(user)
	if err := s.store.Save(c.Request.Context(), id, data); err != nil {
		log.Printf("Failed to refresh session: %v", err)
	}
}

// End 删除会话并清除 cookie
func (s *Sessions) End(c *gin.Context) {
	if id, ok := c.Get(SessionIDKey); ok {
		if err := s.store.Destroy(c.Request.Context(), id.(string)); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	s.setCookie(c, "", -1)
	c.Set(SessionIDKey, "")
	c.Set(SessionKey, (*session.Data)(nil))
}

func (s *Sessions) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie, value, maxAge, "/", "", s.secure, true)
}

// GetSession 从上下文获取会话
func GetSession(c *gin.Context) (string, *session.Data, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return "", nil, false
	}
	data, ok := v.(*session.Data)
	if !ok || data == nil {
		return "", nil, false
	}
	return c.GetString(SessionIDKey), data, true
}

// GetEmail 当前登录邮箱，未登录返回空字符串
func GetEmail(c *gin.Context) string {
	if _, data, ok := GetSession(c); ok {
		return data.Email
	}
	return ""
}
