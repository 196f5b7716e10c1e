package cache

import (
	"context"
	"testing"

	"EchoFM/model"

	"github.com/stretchr/testify/assert"
)

func TestMemoryResultCacheGetSet(t *testing.T) {
	c := NewMemoryResultCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, Key("imagine", 3))
	assert.False(t, ok)

	tracks := []model.Track{
		{ID: "1", Title: "Imagine", Artist: "John Lennon"},
		{ID: "2", Title: "Imagine Dragons", Artist: "Various"},
	}
	c.Set(ctx, Key("imagine", 3), tracks)

	got, ok := c.Get(ctx, Key("imagine", 3))
	assert.True(t, ok)
	assert.Equal(t, tracks, got)

	// 不同limit是不同的键
	_, ok = c.Get(ctx, Key("imagine", 5))
	assert.False(t, ok)
}

func TestMemoryResultCacheReturnsCopy(t *testing.T) {
	c := NewMemoryResultCache()
	ctx := context.Background()

	c.Set(ctx, "k|1", []model.Track{{ID: "1", Title: "Original"}})
	got, _ := c.Get(ctx, "k|1")
	got[0].Title = "Mutated"

	again, _ := c.Get(ctx, "k|1")
	assert.Equal(t, "Original", again[0].Title)
}

func TestMemoryResultCacheOverwrite(t *testing.T) {
	c := NewMemoryResultCache()
	ctx := context.Background()

	c.Set(ctx, "k|1", []model.Track{{ID: "1"}})
	c.Set(ctx, "k|1", []model.Track{{ID: "2"}})

	got, ok := c.Get(ctx, "k|1")
	assert.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
