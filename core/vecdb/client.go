// Package vecdb 基于Milvus实现歌曲嵌入向量索引
package vecdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"EchoFM/config"
	"EchoFM/core/errs"
	"EchoFM/logger"
)

// Index 歌曲向量索引。写操作串行化，读操作可并发。
type Index struct {
	collection   string
	dim          int
	milvusClient client.Client

	writeMu sync.Mutex // 串行化写入，保证查重-插入的原子性
	loadMu  sync.RWMutex
	loaded  map[string]bool
}

// NewIndex 连接Milvus并创建向量索引客户端
func NewIndex(ctx context.Context, cfg *config.Config) (*Index, error) {
	logger.Info("[NewIndex] 连接Milvus", logger.String("addr", cfg.MilvusAddr))

	c, err := client.NewClient(ctx, client.Config{Address: cfg.MilvusAddr})
	if err != nil {
		return nil, errs.Wrap(errs.ErrIndex, err, "连接Milvus失败: %s", cfg.MilvusAddr)
	}

	return &Index{
		collection:   cfg.MilvusCollection,
		dim:          cfg.EmbedDim,
		milvusClient: c,
		loaded:       make(map[string]bool),
	}, nil
}

// Close 释放Milvus连接
func (idx *Index) Close() error {
	if idx.milvusClient != nil {
		return idx.milvusClient.Close()
	}
	return nil
}

// loadCollection 按需加载集合到内存，双重检查避免重复加载
func (idx *Index) loadCollection(ctx context.Context, name string) error {
	idx.loadMu.RLock()
	loaded := idx.loaded[name]
	idx.loadMu.RUnlock()
	if loaded {
		return nil
	}

	idx.loadMu.Lock()
	defer idx.loadMu.Unlock()
	if idx.loaded[name] {
		return nil
	}

	if err := idx.milvusClient.LoadCollection(ctx, name, false); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "加载集合 %s 失败", name)
	}
	idx.loaded[name] = true
	return nil
}

func (idx *Index) flush(ctx context.Context, name string) error {
	if err := idx.milvusClient.Flush(ctx, name, false); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "刷新集合 %s 失败", name)
	}
	return nil
}

// Count 返回索引中的歌曲数量
func (idx *Index) Count(ctx context.Context) (int64, error) {
	stats, err := idx.milvusClient.GetCollectionStatistics(ctx, idx.collection)
	if err != nil {
		return 0, errs.Wrap(errs.ErrIndex, err, "获取集合统计失败")
	}

	countStr, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	var count int64
	fmt.Sscanf(countStr, "%d", &count)
	return count, nil
}
