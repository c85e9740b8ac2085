package dto

// GenerateRequest 生成视频表单
type GenerateRequest struct {
	Prompt string `form:"prompt" binding:"required"`
}

// GenerateResult 生成结果
type GenerateResult struct {
	Prompt     string `json:"prompt"`
	VideoURL   string `json:"video_url"`
	VideosLeft int    `json:"videos_left"`
	PlanTotal  int    `json:"plan_total"`
	Fallback   bool   `json:"fallback"`
}

// GeneratePage 生成页数据
type GeneratePage struct {
	Email      string `json:"email"`
	HasPaid    bool   `json:"has_paid"`
	VideosLeft int    `json:"videos_left"`
	PlanTotal  int    `json:"plan_total"`
}
