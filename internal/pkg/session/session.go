package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/pkg/jwt"
)

const keyPrefix = "session:"

var ErrNotFound = errors.New("session not found")

// Data 服务端会话内容；权益字段只是用户记录的镜像，用于展示
type Data struct {
	Email      string    `json:"email"`
	HasPaid    bool      `json:"has_paid"`
	VideosLeft int       `json:"videos_left"`
	MaxCredits int       `json:"max_credits"`
	CreatedAt  time.Time `json:"created_at"`
}

// Mirror 用最新用户记录刷新镜像字段
func (d *Data) Mirror(user *model.User) {
	d.Email = user.Email
	d.HasPaid = user.HasPaid
	d.VideosLeft = user.VideosLeft
	d.MaxCredits = user.MaxCredits
}

// Store 基于 Redis 的会话存储，cookie 中只放签名后的会话 ID
type Store struct {
	rdb    *redis.Client
	secret string
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, secret string, expireHours int) *Store {
	if expireHours <= 0 {
		expireHours = 24
	}
	return &Store{
		rdb:    rdb,
		secret: secret,
		ttl:    time.Duration(expireHours) * time.Hour,
	}
}

// TTL 会话有效期，同时用作 cookie MaxAge
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create 新建会话，返回会话 ID 和 cookie token
func (s *Store) Create(ctx context.Context, data *Data) (string, string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate session id: %w", err)
	}
	id := hex.EncodeToString(bytes)

	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	if err := s.Save(ctx, id, data); err != nil {
		return "", "", err
	}

	token, err := jwt.GenerateToken(id, s.secret, int(s.ttl/time.Hour))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return id, token, nil
}

// Resolve 校验 cookie token 并取出会话
func (s *Store) Resolve(ctx context.Context, token string) (string, *Data, error) {
	claims, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return "", nil, err
	}

	data, err := s.Get(ctx, claims.SessionID)
	if err != nil {
		return "", nil, err
	}
	return claims.SessionID, data, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &data, nil
}

// Save 写入会话并刷新过期时间
func (s *Store) Save(ctx context.Context, id string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Destroy 删除会话，不存在也不报错
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}
