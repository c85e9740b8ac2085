package service

import (
	"errors"
	"time"

	"github.com/qs3c/vidgen_server/internal/model"
)

// 套餐周期固定 30 天
const PlanPeriod = 30 * 24 * time.Hour

var ErrAlreadyCancelled = errors.New("Already cancelled")

// GrantPlan 叠加额度并重新激活套餐
func GrantPlan(u *model.User, plan model.Plan, now time.Time) {
	u.VideosLeft += plan.Credits
	if u.VideosLeft > u.MaxCredits {
		u.MaxCredits = u.VideosLeft
	}
	started := now
	u.HasPaid = true
	u.PlanName = plan.ID
	u.PlanStartedAt = &started
	u.PlanExpiry = nil
	u.Cancelled = false
}

// ScheduleCancellation 到期前仍可使用剩余额度
func ScheduleCancellation(u *model.User, now time.Time) error {
	if u.Cancelled {
		return ErrAlreadyCancelled
	}
	start := now
	if u.PlanStartedAt != nil {
		start = *u.PlanStartedAt
	}
	expiry := start.Add(PlanPeriod)
	u.Cancelled = true
	u.PlanExpiry = &expiry
	return nil
}

// ApplyExpiry 已取消且过期则清空额度，返回是否有变更
func ApplyExpiry(u *model.User, now time.Time) bool {
	if !u.Cancelled || u.PlanExpiry == nil || !now.After(*u.PlanExpiry) {
		return false
	}
	if !u.HasPaid && u.VideosLeft == 0 {
		return false
	}
	u.HasPaid = false
	u.VideosLeft = 0
	return true
}

// ConsumeCredit 扣减一次，不低于 0
func ConsumeCredit(u *model.User) {
	u.VideosLeft--
	if u.VideosLeft < 0 {
		u.VideosLeft = 0
	}
}

func CanGenerate(u *model.User) bool {
	return u.HasPaid && u.VideosLeft > 0
}
