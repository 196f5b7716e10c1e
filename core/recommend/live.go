package recommend

import (
	"context"
	"os"
	"sort"

	"EchoFM/core/errs"
	"EchoFM/core/similarity"
	"EchoFM/logger"
	"EchoFM/model"
)

// LiveEngine 实时推荐引擎：为种子与每个候选下载试听音频、
// 计算嵌入向量并按余弦相似度排序。单个候选失败只跳过不中断。
type LiveEngine struct {
	catalog  Catalog
	embedder Embedder
}

// NewLiveEngine 创建实时推荐引擎
func NewLiveEngine(catalog Catalog, embedder Embedder) *LiveEngine {
	return &LiveEngine{catalog: catalog, embedder: embedder}
}

// Recommend 对 candidateLimit 大小的候选池打分，返回最相似的topK首
func (e *LiveEngine) Recommend(ctx context.Context, seedTrackID string, candidateLimit, topK int) ([]model.ScoredTrack, error) {
	if seedTrackID == "" {
		return nil, errs.New(errs.ErrInvalidArgument, "种子歌曲ID为空")
	}
	if topK < 1 {
		topK = 1
	}

	seed, err := e.catalog.GetTrackMetadata(ctx, seedTrackID)
	if err != nil {
		return nil, err
	}
	if !seed.HasPreview() {
		return nil, errs.New(errs.ErrNoPreview, "种子歌曲 %s 无试听音频", seedTrackID)
	}

	seedVec, err := e.embedTrack(ctx, seed.PreviewURL)
	if err != nil {
		return nil, err
	}

	pool := collectCandidates(ctx, e.catalog, seedTrackID, candidateLimit)
	if len(pool) == 0 {
		logger.Warn("[Recommend] 候选池为空", logger.String("seedId", seedTrackID))
		return []model.ScoredTrack{}, nil
	}

	scored := make([]model.ScoredTrack, 0, len(pool))
	for _, candidate := range pool {
		vec, err := e.embedTrack(ctx, candidate.PreviewURL)
		if err != nil {
			logger.Warn("[Recommend] 候选处理失败，跳过",
				logger.String("trackId", candidate.ID), logger.ErrorField(err))
			continue
		}
		scored = append(scored, model.ScoredTrack{
			Track:      candidate,
			Similarity: similarity.Clamp01(e.embedder.Similarity(seedVec, vec)),
		})
	}

	if len(scored) == 0 {
		return nil, errs.New(errs.ErrNotFound, "所有候选歌曲处理失败")
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	logger.Info("[Recommend] 实时推荐完成",
		logger.String("seedId", seedTrackID),
		logger.Int("pool", len(pool)), logger.Int("returned", len(scored)))
	return scored, nil
}

// embedTrack 下载试听音频并计算嵌入，临时文件总是清理
func (e *LiveEngine) embedTrack(ctx context.Context, previewURL string) ([]float64, error) {
	path, err := e.catalog.DownloadPreview(ctx, previewURL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	return e.embedder.EmbedFile(ctx, path)
}
