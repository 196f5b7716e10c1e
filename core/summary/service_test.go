package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"EchoFM/config"
	"EchoFM/model"

	"github.com/stretchr/testify/assert"
)

func newTestService(baseURL string) *Service {
	return NewService(&config.Config{SummaryAPIURL: baseURL, SummaryModel: "test-model"})
}

func sampleInput() (model.Track, []model.ScoredTrack) {
	seed := model.Track{ID: "1", Title: "晴天", Artist: "周杰伦"}
	recs := []model.ScoredTrack{
		{Track: model.Track{ID: "2", Title: "七里香", Artist: "周杰伦"}, Similarity: 0.91},
		{Track: model.Track{ID: "3", Title: "安静", Artist: "周杰伦"}, Similarity: 0.87},
	}
	return seed, recs
}

func TestSummarizeReturnsModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "晴天")
		assert.Contains(t, req.Prompt, "七里香")
		json.NewEncoder(w).Encode(map[string]string{"response": " 这几首都是温柔的周氏情歌。 "})
	}))
	defer srv.Close()

	seed, recs := sampleInput()
	got := newTestService(srv.URL).Summarize(context.Background(), seed, recs)
	assert.Equal(t, "这几首都是温柔的周氏情歌。", got)
}

func TestSummarizeDegradesOnOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	seed, recs := sampleInput()
	got := newTestService(srv.URL).Summarize(context.Background(), seed, recs)
	assert.Equal(t, placeholderSummary, got)
}

func TestSummarizeDegradesOnEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "   "})
	}))
	defer srv.Close()

	seed, recs := sampleInput()
	got := newTestService(srv.URL).Summarize(context.Background(), seed, recs)
	assert.Equal(t, placeholderSummary, got)
}

func TestBuildPromptListsRecommendations(t *testing.T) {
	seed, recs := sampleInput()
	prompt := buildPrompt(seed, recs)
	assert.True(t, strings.Contains(prompt, "周杰伦"))
	assert.True(t, strings.Contains(prompt, "0.91"))
	assert.True(t, strings.Contains(prompt, "1. "))
}
