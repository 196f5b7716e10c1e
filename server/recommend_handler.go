package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"EchoFM/core/errs"
	"EchoFM/core/recommend"
	"EchoFM/logger"
	"EchoFM/model"
)

// 推荐结果默认返回数量
const defaultRecommendLimit = 3

type recommendResponse struct {
	SeedTrackID string              `json:"seedTrackId"`
	Strategy    string              `json:"strategy"`
	Tracks      []model.ScoredTrack `json:"tracks"`
	Summary     string              `json:"summary,omitempty"`
}

// HandleRecommend 处理相似歌曲推荐请求
// POST /api/recommendations/{track_id}?strategy=<auto|index|live>&limit=<数量>&candidateLimit=<候选池>&summary=<true|false>
func (h *APIHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["track_id"]
	if trackID == "" {
		writeError(w, errs.New(errs.ErrInvalidArgument, "缺少track_id"))
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), defaultRecommendLimit)
	candidateLimit := parseLimit(r.URL.Query().Get("candidateLimit"), recommend.DefaultCandidateLimit)

	strategy := r.URL.Query().Get("strategy")
	var engine recommend.Engine
	switch strategy {
	case "live":
		engine = h.liveEngine
	case "index":
		if h.indexEngine == nil {
			writeError(w, errs.New(errs.ErrIndex, "向量索引未配置"))
			return
		}
		engine = h.indexEngine
	default:
		strategy = "auto"
		engine = h.autoEngine
	}

	scored, err := engine.Recommend(r.Context(), trackID, candidateLimit, limit)
	if err != nil {
		logger.Warn("[HandleRecommend] 推荐失败",
			logger.String("trackId", trackID), logger.ErrorField(err))
		writeError(w, err)
		return
	}
	if scored == nil {
		scored = []model.ScoredTrack{}
	}

	resp := recommendResponse{SeedTrackID: trackID, Strategy: strategy, Tracks: scored}

	// 摘要按需生成，失败时服务内部已兜底
	if r.URL.Query().Get("summary") == "true" && len(scored) > 0 {
		if seed, err := h.catalog.GetTrackMetadata(r.Context(), trackID); err == nil {
			resp.Summary = h.summarySvc.Summarize(r.Context(), *seed, scored)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
