package model

// Plan 可购买的套餐
type Plan struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Credits     int     `json:"credits"`
	MaxDuration int     `json:"max_duration"` // 单个视频最长秒数
}
