package recommend

import (
	"context"
	"errors"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// FallbackEngine 优先走索引推荐，索引不可用时降级为实时推荐。
// 种子本身的问题（不存在、无试听）不触发降级，直接向上传播。
type FallbackEngine struct {
	primary  Engine
	fallback Engine
}

// NewFallbackEngine 创建带降级的推荐引擎
func NewFallbackEngine(primary, fallback Engine) *FallbackEngine {
	return &FallbackEngine{primary: primary, fallback: fallback}
}

func (e *FallbackEngine) Recommend(ctx context.Context, seedTrackID string, candidateLimit, topK int) ([]model.ScoredTrack, error) {
	scored, err := e.primary.Recommend(ctx, seedTrackID, candidateLimit, topK)
	if err == nil {
		return scored, nil
	}
	if !errors.Is(err, errs.ErrIndex) {
		return nil, err
	}

	logger.Warn("[Recommend] 索引推荐不可用，降级为实时推荐",
		logger.String("seedId", seedTrackID), logger.ErrorField(err))
	return e.fallback.Recommend(ctx, seedTrackID, candidateLimit, topK)
}
