package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"EchoFM/cache"
	"EchoFM/core/errs"
	"EchoFM/core/recommend"
	"EchoFM/core/search"
	"EchoFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errs.New(errs.ErrInvalidArgument, "bad"), http.StatusBadRequest},
		{errs.New(errs.ErrNotFound, "missing"), http.StatusNotFound},
		{errs.New(errs.ErrNoPreview, "silent"), http.StatusConflict},
		{errs.New(errs.ErrNetwork, "down"), http.StatusBadGateway},
		{errs.New(errs.ErrEmbedding, "failed"), http.StatusBadGateway},
		{errs.New(errs.ErrIdentification, "unknown"), http.StatusInternalServerError},
		{errs.New(errs.ErrIndex, "empty"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 5, parseLimit("", 5))
	assert.Equal(t, 10, parseLimit("10", 5))
	assert.Equal(t, 5, parseLimit("0", 5))
	assert.Equal(t, 5, parseLimit("-3", 5))
	assert.Equal(t, 5, parseLimit("abc", 5))
}

type stubCatalog struct {
	tracks []model.Track
}

func (s stubCatalog) SearchTracks(_ context.Context, _ string, _ int, _ bool) ([]model.Track, error) {
	return s.tracks, nil
}

func TestHandleSearch(t *testing.T) {
	searcher := search.NewModel(stubCatalog{tracks: []model.Track{
		{ID: "1", Title: "Imagine", Artist: "John Lennon"},
	}}, cache.NewMemoryResultCache())
	h := &APIHandler{searcher: searcher}

	body := strings.NewReader(`{"songName": "imagine", "limit": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/search", body)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, "Imagine", resp.Tracks[0].Title)
}

func TestHandleSearchBlankQuery(t *testing.T) {
	searcher := search.NewModel(stubCatalog{}, cache.NewMemoryResultCache())
	h := &APIHandler{searcher: searcher}

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"songName": "  "}`))
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchBadBody(t *testing.T) {
	searcher := search.NewModel(stubCatalog{}, cache.NewMemoryResultCache())
	h := &APIHandler{searcher: searcher}

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubEngine struct {
	scored            []model.ScoredTrack
	err               error
	calls             int
	gotCandidateLimit int
	gotTopK           int
}

func (s *stubEngine) Recommend(_ context.Context, _ string, candidateLimit, topK int) ([]model.ScoredTrack, error) {
	s.calls++
	s.gotCandidateLimit = candidateLimit
	s.gotTopK = topK
	return s.scored, s.err
}

func recommendRequest(trackID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/"+trackID, nil)
	return mux.SetURLVars(req, map[string]string{"track_id": trackID})
}

func TestHandleRecommend(t *testing.T) {
	engine := &stubEngine{scored: []model.ScoredTrack{
		{Track: model.Track{ID: "2", Title: "Jealous Guy"}, Similarity: 0.88},
	}}
	h := &APIHandler{autoEngine: engine}

	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, recommendRequest("1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "auto", resp.Strategy)
	require.Len(t, resp.Tracks, 1)
	assert.InDelta(t, 0.88, resp.Tracks[0].Similarity, 1e-9)
	// 候选池与返回数量彼此独立
	assert.Equal(t, recommend.DefaultCandidateLimit, engine.gotCandidateLimit)
	assert.Equal(t, defaultRecommendLimit, engine.gotTopK)
}

func TestHandleRecommendCandidateLimitParam(t *testing.T) {
	engine := &stubEngine{scored: []model.ScoredTrack{}}
	h := &APIHandler{autoEngine: engine}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/1?candidateLimit=40&limit=2", nil)
	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, mux.SetURLVars(req, map[string]string{"track_id": "1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40, engine.gotCandidateLimit)
	assert.Equal(t, 2, engine.gotTopK)
}

func TestHandleRecommendIndexStrategy(t *testing.T) {
	indexEngine := &stubEngine{scored: []model.ScoredTrack{}}
	autoEngine := &stubEngine{}
	h := &APIHandler{indexEngine: indexEngine, autoEngine: autoEngine}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/1?strategy=index", nil)
	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, mux.SetURLVars(req, map[string]string{"track_id": "1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp recommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "index", resp.Strategy)
	assert.Equal(t, 1, indexEngine.calls)
	assert.Equal(t, 0, autoEngine.calls)
}

func TestHandleRecommendIndexStrategyUnconfigured(t *testing.T) {
	autoEngine := &stubEngine{}
	h := &APIHandler{autoEngine: autoEngine}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/1?strategy=index", nil)
	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, mux.SetURLVars(req, map[string]string{"track_id": "1"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, autoEngine.calls)
}

func TestHandleRecommendMissingTrackID(t *testing.T) {
	h := &APIHandler{autoEngine: &stubEngine{}}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/", nil)
	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecommendSeedNotFound(t *testing.T) {
	h := &APIHandler{autoEngine: &stubEngine{err: errs.New(errs.ErrNotFound, "未找到种子")}}

	rec := httptest.NewRecorder()
	h.HandleRecommend(rec, recommendRequest("999"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthWithoutIndex(t *testing.T) {
	h := &APIHandler{}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.IndexReady)
}

func TestSaveBase64Audio(t *testing.T) {
	path, err := saveBase64Audio("ZmFrZS1hdWRpbw==")
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake-audio", string(data))
}

func TestSaveBase64AudioDataURI(t *testing.T) {
	path, err := saveBase64Audio("data:audio/mp3;base64,ZmFrZS1hdWRpbw==")
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake-audio", string(data))
}

func TestSaveBase64AudioInvalid(t *testing.T) {
	_, err := saveBase64Audio("")
	assert.Error(t, err)

	_, err = saveBase64Audio("!!!not-base64!!!")
	assert.Error(t, err)
}
