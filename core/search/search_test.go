package search

import (
	"context"
	"errors"
	"testing"

	"EchoFM/cache"
	"EchoFM/core/errs"
	"EchoFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	calls   []string // 记录每次调用的查询与模式
	strict  []model.Track
	relaxed []model.Track
	err     error
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string, limit int, strict bool) ([]model.Track, error) {
	mode := "relaxed"
	if strict {
		mode = "strict"
	}
	f.calls = append(f.calls, mode)
	if f.err != nil {
		return nil, f.err
	}
	if strict {
		return f.strict, nil
	}
	return f.relaxed, nil
}

func titled(titles ...string) []model.Track {
	tracks := make([]model.Track, 0, len(titles))
	for i, title := range titles {
		tracks = append(tracks, model.Track{ID: string(rune('a' + i)), Title: title})
	}
	return tracks
}

func TestPredictBlankQuery(t *testing.T) {
	m := NewModel(&fakeCatalog{}, cache.NewMemoryResultCache())
	_, err := m.Predict(context.Background(), "   ", 5)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestPredictExactMatchFirst(t *testing.T) {
	catalog := &fakeCatalog{strict: titled("Yesterday Once More", "Yesterday", "Yesterdays")}
	m := NewModel(catalog, cache.NewMemoryResultCache())

	tracks, err := m.Predict(context.Background(), "yesterday", 3)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "Yesterday", tracks[0].Title)
}

func TestPredictRelaxedFallbackOnlyWhenStrictEmpty(t *testing.T) {
	catalog := &fakeCatalog{relaxed: titled("Hey Jude")}
	m := NewModel(catalog, cache.NewMemoryResultCache())

	tracks, err := m.Predict(context.Background(), "hey jude", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, []string{"strict", "relaxed"}, catalog.calls)

	catalog2 := &fakeCatalog{strict: titled("Hey Jude")}
	m2 := NewModel(catalog2, cache.NewMemoryResultCache())
	_, err = m2.Predict(context.Background(), "hey jude", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"strict"}, catalog2.calls, "严格查询有结果时不应放宽")
}

func TestPredictCacheHitSkipsCatalog(t *testing.T) {
	catalog := &fakeCatalog{strict: titled("Imagine")}
	m := NewModel(catalog, cache.NewMemoryResultCache())
	ctx := context.Background()

	first, err := m.Predict(ctx, "Imagine", 5)
	require.NoError(t, err)
	callsAfterFirst := len(catalog.calls)

	second, err := m.Predict(ctx, "  IMAGINE  ", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, len(catalog.calls), "缓存命中不应访问上游")
}

func TestPredictTruncatesToLimit(t *testing.T) {
	catalog := &fakeCatalog{strict: titled("A", "B", "C", "D", "E", "F")}
	m := NewModel(catalog, cache.NewMemoryResultCache())

	tracks, err := m.Predict(context.Background(), "song", 2)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
}

func TestPredictPropagatesCatalogError(t *testing.T) {
	catalog := &fakeCatalog{err: errs.New(errs.ErrNetwork, "上游不可用")}
	m := NewModel(catalog, cache.NewMemoryResultCache())

	_, err := m.Predict(context.Background(), "anything", 5)
	assert.True(t, errors.Is(err, errs.ErrNetwork))
}

func TestRankerStableOnTies(t *testing.T) {
	tracks := []model.Track{
		{ID: "1", Title: "Same Title"},
		{ID: "2", Title: "Same Title"},
		{ID: "3", Title: "Same Title"},
	}
	ranked := Ranker{}.Rank("same title", tracks)
	require.Len(t, ranked, 3)
	assert.Equal(t, "1", ranked[0].ID)
	assert.Equal(t, "2", ranked[1].ID)
	assert.Equal(t, "3", ranked[2].ID)
}

func TestRankerAccentInsensitive(t *testing.T) {
	tracks := []model.Track{
		{ID: "1", Title: "Other Song"},
		{ID: "2", Title: "Café del Mar"},
	}
	ranked := Ranker{}.Rank("cafe del mar", tracks)
	assert.Equal(t, "2", ranked[0].ID)
}
