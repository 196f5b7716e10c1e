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

// 索引近邻查询数量下限
const indexQueryTopK = 10

// IndexEngine 基于向量索引的推荐引擎：对种子嵌入做近邻搜索，
// 命中按热度重排后返回。索引不可用或为空时返回 ErrIndex，
// 由上层决定是否降级。
type IndexEngine struct {
	catalog  Catalog
	embedder Embedder
	index    VectorIndex
}

// NewIndexEngine 创建索引推荐引擎
func NewIndexEngine(catalog Catalog, embedder Embedder, index VectorIndex) *IndexEngine {
	return &IndexEngine{catalog: catalog, embedder: embedder, index: index}
}

// Recommend 返回索引中与种子最相似的歌曲，按热度降序。
// 近邻查询数量取 candidateLimit 与 3*topK 的较大者，保证重排有足够余量。
func (e *IndexEngine) Recommend(ctx context.Context, seedTrackID string, candidateLimit, topK int) ([]model.ScoredTrack, error) {
	if seedTrackID == "" {
		return nil, errs.New(errs.ErrInvalidArgument, "种子歌曲ID为空")
	}
	if candidateLimit < 1 {
		candidateLimit = DefaultCandidateLimit
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

	path, err := e.catalog.DownloadPreview(ctx, seed.PreviewURL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	seedVec, err := e.embedder.EmbedFile(ctx, path)
	if err != nil {
		return nil, err
	}

	queryK := candidateLimit
	if 3*topK > queryK {
		queryK = 3 * topK
	}
	if queryK < indexQueryTopK {
		queryK = indexQueryTopK
	}
	neighbors, err := e.index.QuerySimilar(ctx, seedVec, queryK, []string{seedTrackID})
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, errs.New(errs.ErrIndex, "索引中无可用近邻")
	}

	scored := make([]model.ScoredTrack, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Track.ID == seedTrackID {
			continue
		}
		scored = append(scored, model.ScoredTrack{
			Track:      n.Track,
			Similarity: similarity.Clamp01(1 - n.Distance),
		})
	}

	// 近邻内部按热度重排
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Rank > scored[j].Rank
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	logger.Info("[Recommend] 索引推荐完成",
		logger.String("seedId", seedTrackID), logger.Int("returned", len(scored)))
	return scored, nil
}
