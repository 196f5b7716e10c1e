// Package recommend 实现相似歌曲推荐引擎
package recommend

import (
	"context"

	"EchoFM/core/vecdb"
	"EchoFM/model"
)

// DefaultCandidateLimit 候选池默认大小
const DefaultCandidateLimit = 25

// Engine 推荐引擎：给定种子歌曲，返回按相似度降序的推荐列表。
// candidateLimit 控制参与打分的候选池大小，topK 控制最终返回数量，
// 两者独立：缩小返回数量不应缩小候选池。
type Engine interface {
	Recommend(ctx context.Context, seedTrackID string, candidateLimit, topK int) ([]model.ScoredTrack, error)
}

// Catalog 推荐所需的曲库能力
type Catalog interface {
	GetTrackMetadata(ctx context.Context, trackID string) (*model.Track, error)
	GetRelatedTracks(ctx context.Context, trackID string, limit int) []model.Track
	GetChartTracks(ctx context.Context, limit, index int) ([]model.Track, error)
	DownloadPreview(ctx context.Context, previewURL string) (string, error)
}

// Embedder 音频嵌入能力
type Embedder interface {
	EmbedFile(ctx context.Context, path string) ([]float64, error)
	Similarity(a, b []float64) float64
}

// VectorIndex 向量索引查询能力
type VectorIndex interface {
	QuerySimilar(ctx context.Context, vector []float64, topK int, excludeIDs []string) ([]vecdb.Neighbor, error)
}
