package model

import (
	"time"
)

const ProviderPayPal = "paypal"

// Order 只追加的购买记录，不作为权益依据
type Order struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Email         string    `gorm:"size:191;not null;index" json:"email"`
	Plan          string    `gorm:"size:50;not null" json:"plan"`
	Amount        float64   `gorm:"not null" json:"amount"`
	VideosLeft    int       `json:"videos_left"`
	EndDate       string    `gorm:"size:10" json:"end_date"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	Provider      *string   `gorm:"size:20" json:"provider,omitempty"`
	PayPalOrderID *string   `gorm:"column:paypal_order_id;size:64" json:"paypal_order_id,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
