package model

import (
	"time"
)

// User 以邮箱为主键（区分大小写，MySQL 下由 Migrate 设为 utf8mb4_bin），JSON 文件与数据表字段一一对应
type User struct {
	Email         string     `gorm:"primaryKey;size:191" json:"email"`
	Name          string     `gorm:"size:100" json:"name"`
	PasswordHash  string     `gorm:"type:text" json:"password_hash"`
	Promos        bool       `json:"promos"`
	HasPaid       bool       `json:"has_paid"`
	VideosLeft    int        `json:"videos_left"`
	MaxCredits    int        `json:"max_credits"`
	PlanName      string     `gorm:"size:20" json:"plan_name,omitempty"`
	PlanStartedAt *time.Time `json:"plan_started_at,omitempty"`
	PlanExpiry    *time.Time `json:"plan_expiry,omitempty"` // 仅在取消订阅时设置
	Cancelled     bool       `json:"cancelled"`

	// 旧版文件中的明文密码，只在读取时存在，落盘前换成哈希
	LegacyPassword string `gorm:"-" json:"-"`
}

func (User) TableName() string {
	return "users"
}
