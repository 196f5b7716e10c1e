package recommend

import (
	"context"

	"EchoFM/logger"
	"EchoFM/model"
)

// collectCandidates 收集候选池：先取相关歌曲，不足时用榜单补齐到 candidateLimit。
// 去重、排除种子、跳过无试听的歌曲。
func collectCandidates(ctx context.Context, catalog Catalog, seedID string, candidateLimit int) []model.Track {
	poolSize := candidateLimit
	if poolSize < 1 {
		poolSize = DefaultCandidateLimit
	}
	seen := map[string]bool{seedID: true}
	pool := make([]model.Track, 0, poolSize)

	appendTrack := func(t model.Track) {
		if seen[t.ID] || !t.HasPreview() {
			return
		}
		seen[t.ID] = true
		pool = append(pool, t)
	}

	// 相关歌曲获取失败时降级为空列表，继续走榜单
	for _, t := range catalog.GetRelatedTracks(ctx, seedID, poolSize) {
		if len(pool) >= poolSize {
			break
		}
		appendTrack(t)
	}

	if len(pool) < poolSize {
		charts, err := catalog.GetChartTracks(ctx, poolSize, 0)
		if err != nil {
			logger.Warn("[collectCandidates] 获取榜单失败", logger.ErrorField(err))
		}
		for _, t := range charts {
			if len(pool) >= poolSize {
				break
			}
			appendTrack(t)
		}
	}

	logger.Debug("[collectCandidates] 候选池收集完成",
		logger.String("seedId", seedID), logger.Int("count", len(pool)))
	return pool
}
