package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"EchoFM/config"
	"EchoFM/core/errs"
	"EchoFM/core/recognize"
	"EchoFM/core/recommend"
	"EchoFM/core/search"
	"EchoFM/core/summary"
	"EchoFM/core/vecdb"
	"EchoFM/core/voice"
	"EchoFM/logger"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	searcher    *search.Model
	liveEngine  recommend.Engine
	indexEngine recommend.Engine // 可能为nil（Milvus未配置）
	autoEngine  recommend.Engine
	recognizer  *recognize.Service
	voiceSvc    *voice.Service
	summarySvc  *summary.Service
	index       *vecdb.Index // 可能为nil（Milvus未配置）
	catalog     adminCatalog
	embedder    recommend.Embedder
	cfg         *config.Config
}

// NewAPIHandler 创建API处理器
func NewAPIHandler(
	searcher *search.Model,
	liveEngine recommend.Engine,
	indexEngine recommend.Engine,
	autoEngine recommend.Engine,
	recognizer *recognize.Service,
	voiceSvc *voice.Service,
	summarySvc *summary.Service,
	index *vecdb.Index,
	catalog adminCatalog,
	embedder recommend.Embedder,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		searcher:    searcher,
		liveEngine:  liveEngine,
		indexEngine: indexEngine,
		autoEngine:  autoEngine,
		recognizer:  recognizer,
		voiceSvc:    voiceSvc,
		summarySvc:  summarySvc,
		index:       index,
		catalog:     catalog,
		embedder:    embedder,
		cfg:         cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("[writeJSON] 写入响应失败", logger.ErrorField(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError 按错误类别映射HTTP状态码
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrNoPreview):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrNetwork), errors.Is(err, errs.ErrEmbedding):
		status = http.StatusBadGateway
	case errors.Is(err, errs.ErrIdentification), errors.Is(err, errs.ErrIndex):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
