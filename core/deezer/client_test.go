package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"EchoFM/config"
	"EchoFM/core/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		DeezerAPIURL:   baseURL,
		DeezerTimeout:  5 * time.Second,
		PreviewTimeout: 5 * time.Second,
	})
}

func trackPayload(id int64, title string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"title":    title,
		"link":     fmt.Sprintf("https://example.com/track/%d", id),
		"duration": 212,
		"rank":     100000 + id,
		"preview":  fmt.Sprintf("https://cdn.example.com/%d.mp3", id),
		"artist":   map[string]interface{}{"id": 42, "name": "Queen"},
		"album": map[string]interface{}{
			"id": 7, "title": "A Night at the Opera",
			"cover_big": "https://img.example.com/big.jpg", "genre_id": 152,
		},
	}
}

func TestSearchTracksStrictQuerySyntax(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{trackPayload(1, "Bohemian Rhapsody")},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	tracks, err := c.SearchTracks(context.Background(), "Bohemian Rhapsody", 5, true)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, `track:"Bohemian Rhapsody"`, gotQuery)
	assert.Equal(t, "1", tracks[0].ID)
	assert.Equal(t, "Queen", tracks[0].Artist)
	assert.Equal(t, "https://img.example.com/big.jpg", tracks[0].Cover)

	_, err = c.SearchTracks(context.Background(), "Bohemian Rhapsody", 5, false)
	require.NoError(t, err)
	assert.Equal(t, "Bohemian Rhapsody", gotQuery)
}

func TestSearchTracksZeroMatchesReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer srv.Close()

	tracks, err := newTestClient(srv.URL).SearchTracks(context.Background(), "zzz", 5, true)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestGetTrackMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"type": "DataException", "message": "no data", "code": 800},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTrackMetadata(context.Background(), "999")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestGetTrackMetadataResolvesGenre(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/genre/152" {
			json.NewEncoder(w).Encode(map[string]interface{}{"id": 152, "name": "Rock"})
			return
		}
		json.NewEncoder(w).Encode(trackPayload(1, "Bohemian Rhapsody"))
	}))
	defer srv.Close()

	track, err := newTestClient(srv.URL).GetTrackMetadata(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Rock", track.Genre)
}

func TestResolveGenreMemoized(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 152, "name": "Rock"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()

	// ID 0 预置为无流派，不应触发请求
	assert.Nil(t, c.ResolveGenre(ctx, 0))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	first := c.ResolveGenre(ctx, 152)
	require.NotNil(t, first)
	assert.Equal(t, "Rock", *first)

	second := c.ResolveGenre(ctx, 152)
	require.NotNil(t, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "每个ID只请求一次上游")
}

func TestGetTopTracksStopsOnShortBatch(t *testing.T) {
	var requests []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		index, _ := strconv.Atoi(r.URL.Query().Get("index"))
		requests = append(requests, index)

		// 上游只有130首歌：第一批给满100，第二批只有30
		count := limit
		if index >= 100 {
			count = 30
		}
		data := make([]interface{}, 0, count)
		for i := 0; i < count; i++ {
			data = append(data, trackPayload(int64(index+i+1), fmt.Sprintf("Track %d", index+i+1)))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
	defer srv.Close()

	tracks, err := newTestClient(srv.URL).GetTopTracks(context.Background(), 300)
	require.NoError(t, err)
	assert.Len(t, tracks, 130)
	assert.Equal(t, []int{0, 100}, requests, "短批之后不再发起请求")
}

func TestGetRelatedTracksDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tracks := newTestClient(srv.URL).GetRelatedTracks(context.Background(), "1", 10)
	assert.Empty(t, tracks)
}

func TestGetRelatedTracksExcludesSeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/track/1":
			json.NewEncoder(w).Encode(trackPayload(1, "Seed"))
		case "/artist/42/top":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []interface{}{
					trackPayload(1, "Seed"),
					trackPayload(2, "Other"),
					trackPayload(3, "Another"),
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tracks := newTestClient(srv.URL).GetRelatedTracks(context.Background(), "1", 2)
	require.Len(t, tracks, 2)
	for _, tr := range tracks {
		assert.NotEqual(t, "1", tr.ID)
	}
}

func TestDownloadPreviewWritesTempFile(t *testing.T) {
	payload := []byte("fake-mp3-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	u, _ := url.JoinPath(srv.URL, "preview.mp3")
	path, err := c.DownloadPreview(context.Background(), u)
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownloadPreviewNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.DownloadPreview(context.Background(), srv.URL+"/missing.mp3")
	assert.True(t, errors.Is(err, errs.ErrNetwork))
}
