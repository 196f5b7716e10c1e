package server

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"EchoFM/core/errs"
	"EchoFM/core/vecdb"
	"EchoFM/logger"
	"EchoFM/model"
)

// 批量入索引默认抓取的榜单数量
const defaultIndexCount = 100

// adminCatalog 索引管理所需的曲库能力
type adminCatalog interface {
	GetTrackMetadata(ctx context.Context, trackID string) (*model.Track, error)
	GetTopTracks(ctx context.Context, totalCount int) ([]model.Track, error)
	DownloadPreview(ctx context.Context, previewURL string) (string, error)
}

type indexBuildResponse struct {
	Requested int `json:"requested"`
	Added     int `json:"added"`
	Skipped   int `json:"skipped"`
}

// HandleIndexBuild 批量将榜单歌曲写入向量索引
// POST /api/admin/tracks?count=<数量>
// 逐条处理：已在索引、无试听或处理失败的歌曲跳过。
func (h *APIHandler) HandleIndexBuild(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, errs.New(errs.ErrIndex, "向量索引未配置"))
		return
	}

	count := parseLimit(r.URL.Query().Get("count"), defaultIndexCount)
	ctx := r.Context()

	tracks, err := h.catalog.GetTopTracks(ctx, count)
	if err != nil {
		writeError(w, err)
		return
	}

	added := 0
	for _, track := range tracks {
		if err := h.indexTrack(ctx, track); err != nil {
			logger.Warn("[HandleIndexBuild] 跳过歌曲",
				logger.String("trackId", track.ID), logger.ErrorField(err))
			continue
		}
		added++
	}

	logger.Info("[HandleIndexBuild] 批量入索引完成",
		logger.Int("requested", len(tracks)), logger.Int("added", added))
	writeJSON(w, http.StatusOK, indexBuildResponse{
		Requested: len(tracks),
		Added:     added,
		Skipped:   len(tracks) - added,
	})
}

func (h *APIHandler) indexTrack(ctx context.Context, track model.Track) error {
	if !track.HasPreview() {
		return errs.New(errs.ErrNoPreview, "歌曲 %s 无试听音频", track.ID)
	}

	exists, err := h.index.TrackExists(ctx, track.ID)
	if err != nil {
		return err
	}
	if exists {
		return errs.New(errs.ErrIndex, "歌曲 %s 已在索引中", track.ID)
	}

	path, err := h.catalog.DownloadPreview(ctx, track.PreviewURL)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	vec, err := h.embedder.EmbedFile(ctx, path)
	if err != nil {
		return err
	}

	return h.index.AddTrack(ctx, vecdb.Entry{Track: track, Embedding: vec})
}

// HandleIndexDelete 从索引中删除一首歌曲
// DELETE /api/admin/tracks/{id}
func (h *APIHandler) HandleIndexDelete(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, errs.New(errs.ErrIndex, "向量索引未配置"))
		return
	}

	trackID := mux.Vars(r)["id"]
	if trackID == "" {
		writeError(w, errs.New(errs.ErrInvalidArgument, "缺少歌曲ID"))
		return
	}

	if err := h.index.DeleteTrack(r.Context(), trackID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": trackID})
}

// HandleIndexCount 查看索引中的歌曲数量
// GET /api/admin/tracks/count
func (h *APIHandler) HandleIndexCount(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, errs.New(errs.ErrIndex, "向量索引未配置"))
		return
	}

	count, err := h.index.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// HandleIndexReset 清空并重建向量集合
// POST /api/admin/reset
func (h *APIHandler) HandleIndexReset(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, errs.New(errs.ErrIndex, "向量索引未配置"))
		return
	}

	if err := h.index.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	logger.Info("[HandleIndexReset] 向量集合已重建")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type healthResponse struct {
	Status     string `json:"status"`
	IndexCount int64  `json:"indexCount"`
	IndexReady bool   `json:"indexReady"`
}

// HandleHealth 健康检查
// GET /health
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.index != nil {
		if count, err := h.index.Count(r.Context()); err == nil {
			resp.IndexCount = count
			resp.IndexReady = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
