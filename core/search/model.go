package search

import (
	"context"
	"strings"

	"EchoFM/cache"
	"EchoFM/core/errs"
	"EchoFM/core/textnorm"
	"EchoFM/logger"
	"EchoFM/model"
)

// 最少抓取数量，保证排序有足够候选
const minFetchLimit = 5

// Catalog 提供歌曲搜索能力
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int, strict bool) ([]model.Track, error)
}

// Model 文本搜索服务：抓取候选、按相关性排序、缓存结果
type Model struct {
	catalog Catalog
	cache   cache.ResultCache
	ranker  Ranker
}

// NewModel 创建搜索服务
func NewModel(catalog Catalog, resultCache cache.ResultCache) *Model {
	return &Model{catalog: catalog, cache: resultCache}
}

// Predict 搜索歌曲并按相关性返回前limit条。
// 先用严格语法查询，无结果时放宽为普通查询。
// 缓存命中时不访问上游。
func (m *Model) Predict(ctx context.Context, query string, limit int) ([]model.Track, error) {
	normalized := textnorm.Normalize(query)
	if strings.TrimSpace(normalized) == "" {
		return nil, errs.New(errs.ErrInvalidArgument, "查询内容为空")
	}
	if limit < 1 {
		limit = 1
	}

	key := cache.Key(normalized, limit)
	if cached, ok := m.cache.Get(ctx, key); ok {
		logger.Debug("[Predict] 命中搜索缓存", logger.String("query", normalized), logger.Int("limit", limit))
		return cached, nil
	}

	// 抓取多于需要的候选，排序后再截断
	fetchLimit := 2 * limit
	if fetchLimit < minFetchLimit {
		fetchLimit = minFetchLimit
	}

	tracks, err := m.catalog.SearchTracks(ctx, query, fetchLimit, true)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		logger.Debug("[Predict] 严格查询无结果，放宽查询", logger.String("query", normalized))
		tracks, err = m.catalog.SearchTracks(ctx, query, fetchLimit, false)
		if err != nil {
			return nil, err
		}
	}

	ranked := m.ranker.Rank(query, tracks)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	m.cache.Set(ctx, key, ranked)
	logger.Info("[Predict] 搜索完成",
		logger.String("query", normalized), logger.Int("limit", limit), logger.Int("count", len(ranked)))
	return ranked, nil
}
