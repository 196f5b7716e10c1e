package server

import (
	"encoding/json"
	"net/http"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// 搜索结果默认返回数量
const defaultSearchLimit = 5

type searchRequest struct {
	SongName string `json:"songName"`
	Limit    int    `json:"limit"`
}

type searchResponse struct {
	Query  string        `json:"query"`
	Tracks []model.Track `json:"tracks"`
}

// HandleSearch 处理文本搜索请求
// POST /api/search，JSON体：{songName, limit}
func (h *APIHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrInvalidArgument, err, "解析请求体失败"))
		return
	}
	if req.Limit < 1 {
		req.Limit = defaultSearchLimit
	}

	tracks, err := h.searcher.Predict(r.Context(), req.SongName, req.Limit)
	if err != nil {
		logger.Warn("[HandleSearch] 搜索失败", logger.String("query", req.SongName), logger.ErrorField(err))
		writeError(w, err)
		return
	}

	if tracks == nil {
		tracks = []model.Track{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: req.SongName, Tracks: tracks})
}
