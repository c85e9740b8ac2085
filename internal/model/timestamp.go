package model

import (
	"encoding/json"
	"time"
)

// 旧版 JSON 文件中的时间是不带时区的 isoformat，按本地时间解析
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp 兼容 RFC3339 与无时区的时间字符串
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// 无法解析的时间视为未设置
func optionalTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil
	}
	return &t
}

// UnmarshalJSON 兼容旧版 users.json：宽松解析时间，读取明文 password 字段
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		PlanStartedAt *string `json:"plan_started_at"`
		PlanExpiry    *string `json:"plan_expiry"`
		Password      *string `json:"password"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	u.PlanStartedAt = optionalTimestamp(aux.PlanStartedAt)
	u.PlanExpiry = optionalTimestamp(aux.PlanExpiry)
	if aux.Password != nil {
		u.LegacyPassword = *aux.Password
	}
	return nil
}

// UnmarshalJSON 兼容旧版 orders.json 的 created_at
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	aux := struct {
		*plain
		CreatedAt *string `json:"created_at"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if t := optionalTimestamp(aux.CreatedAt); t != nil {
		o.CreatedAt = *t
	}
	return nil
}
