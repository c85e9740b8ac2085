package service

import (
	"context"
	"errors"
	"log"

	"github.com/qs3c/vidgen_server/internal/model"
	"github.com/qs3c/vidgen_server/internal/model/dto"
	"github.com/qs3c/vidgen_server/internal/repository"
)

var ErrUpgradeRequired = errors.New("Upgrade to generate videos")

// VideoGenerator 视频生成服务
type VideoGenerator interface {
	Run(ctx context.Context, prompt string, duration int) (string, error)
}

// VideoMirror 把第三方输出转存到自有存储
type VideoMirror interface {
	MirrorVideo(ctx context.Context, sourceURL, email string) (string, error)
}

type GenerationService struct {
	store       repository.Store
	catalog     *PlanCatalog
	accounts    *AccountService
	generator   VideoGenerator
	mirror      VideoMirror
	placeholder string
}

// NewGenerationService mirror 可以为 nil
func NewGenerationService(store repository.Store, catalog *PlanCatalog, accounts *AccountService,
	generator VideoGenerator, mirror VideoMirror, placeholder string) *GenerationService {
	return &GenerationService{
		store:       store,
		catalog:     catalog,
		accounts:    accounts,
		generator:   generator,
		mirror:      mirror,
		placeholder: placeholder,
	}
}

// Authorize 读取用户并执行到期检查；不能生成时返回 ErrUpgradeRequired，
// 用户存在时一并返回以便刷新会话
func (s *GenerationService) Authorize(email string) (*model.User, error) {
	user, err := s.accounts.Current(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUpgradeRequired
	}
	if err != nil {
		return nil, err
	}
	if !CanGenerate(user) {
		return user, ErrUpgradeRequired
	}
	return user, nil
}

// Generate 生成一个视频并扣减一次额度；第三方失败时返回占位视频，同样扣减
func (s *GenerationService) Generate(ctx context.Context, email, prompt string) (*dto.GenerateResult, *model.User, error) {
	user, err := s.Authorize(email)
	if err != nil {
		return nil, user, err
	}

	duration := 0
	if plan, err := s.catalog.Get(user.PlanName); err == nil {
		duration = plan.MaxDuration
	}

	result := &dto.GenerateResult{Prompt: prompt}

	videoURL, err := s.generator.Run(ctx, prompt, duration)
	if err != nil {
		log.Printf("[generate] provider failed for %s, using placeholder: %v", email, err)
		videoURL = s.placeholder
		result.Fallback = true
	} else if s.mirror != nil {
		mirrored, err := s.mirror.MirrorVideo(ctx, videoURL, email)
		if err != nil {
			log.Printf("[generate] mirror failed, keeping provider url: %v", err)
		} else {
			videoURL = mirrored
		}
	}
	result.VideoURL = videoURL

	// 生成耗时较长，扣减前重新读取
	user, err = s.store.GetUser(email)
	if err != nil {
		return nil, nil, err
	}
	ConsumeCredit(user)
	if err := s.store.SaveUser(user); err != nil {
		return nil, nil, err
	}

	result.VideosLeft = user.VideosLeft
	result.PlanTotal = user.MaxCredits
	return result, user, nil
}
