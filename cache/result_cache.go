package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"EchoFM/logger"
	"EchoFM/model"

	"github.com/redis/go-redis/v9"
)

// ResultCache 按规范化查询键缓存搜索结果。
// 有意保持简单：无淘汰、无TTL、无容量上限——缓存规模由用户交互量
// 而非曲库规模决定，进程生命周期内可接受。
type ResultCache interface {
	Get(ctx context.Context, key string) ([]model.Track, bool)
	Set(ctx context.Context, key string, tracks []model.Track)
}

// Key 构造缓存键：规范化查询 + 限制数量
func Key(normalizedQuery string, limit int) string {
	return fmt.Sprintf("%s|%d", normalizedQuery, limit)
}

// MemoryResultCache 进程内缓存实现
type MemoryResultCache struct {
	mu    sync.RWMutex
	store map[string][]model.Track
}

// NewMemoryResultCache 创建进程内搜索结果缓存
func NewMemoryResultCache() *MemoryResultCache {
	return &MemoryResultCache{store: make(map[string][]model.Track)}
}

func (c *MemoryResultCache) Get(_ context.Context, key string) ([]model.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks, ok := c.store[key]
	if !ok {
		return nil, false
	}
	// 返回副本，防止调用方修改缓存内容
	out := make([]model.Track, len(tracks))
	copy(out, tracks)
	return out, true
}

func (c *MemoryResultCache) Set(_ context.Context, key string, tracks []model.Track) {
	stored := make([]model.Track, len(tracks))
	copy(stored, tracks)
	c.mu.Lock()
	c.store[key] = stored
	c.mu.Unlock()
}

// RedisResultCache 基于Redis的搜索结果缓存，值为JSON编码的歌曲列表。
// 同键Set覆盖旧值，不设过期时间。
type RedisResultCache struct {
	client *redis.Client
	prefix string
}

// NewRedisResultCache 创建Redis搜索结果缓存
func NewRedisResultCache(client *redis.Client) *RedisResultCache {
	return &RedisResultCache{client: client, prefix: "search:"}
}

func (c *RedisResultCache) Get(ctx context.Context, key string) ([]model.Track, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("读取搜索缓存失败", logger.String("key", key), logger.ErrorField(err))
		return nil, false
	}

	var tracks []model.Track
	if err := json.Unmarshal([]byte(val), &tracks); err != nil {
		logger.Warn("搜索缓存内容损坏，按未命中处理", logger.String("key", key), logger.ErrorField(err))
		return nil, false
	}
	return tracks, true
}

func (c *RedisResultCache) Set(ctx context.Context, key string, tracks []model.Track) {
	data, err := json.Marshal(tracks)
	if err != nil {
		logger.Warn("序列化搜索结果失败", logger.String("key", key), logger.ErrorField(err))
		return
	}
	// 0 表示不过期
	if err := c.client.Set(ctx, c.prefix+key, data, 0).Err(); err != nil {
		logger.Warn("写入搜索缓存失败", logger.String("key", key), logger.ErrorField(err))
	}
}
