package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"EchoFM/core/errs"
	"EchoFM/core/recognize"
	"EchoFM/core/recommend"
	"EchoFM/logger"
	"EchoFM/model"
)

type identifyRequest struct {
	TrackID        string `json:"trackId"`
	SongName       string `json:"songName"`
	Artist         string `json:"artist"`
	PreviewURL     string `json:"previewUrl"`
	SimilarCount   int    `json:"similarCount"`
	CandidateLimit int    `json:"candidateLimit"`
}

type identifyResponse struct {
	Track      model.Track         `json:"track"`
	Confidence *float64            `json:"confidence,omitempty"`
	Similar    []model.ScoredTrack `json:"similar"`
	Summary    string              `json:"summary,omitempty"`
	Transcript string              `json:"transcript,omitempty"`
}

// HandleIdentify 处理元数据/试听URL识别请求
// POST /api/ai/identify，JSON体：{trackId, songName, artist, previewUrl, similarCount}
func (h *APIHandler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrInvalidArgument, err, "解析请求体失败"))
		return
	}

	resp, err := h.identifyAndRecommend(r.Context(), recognize.Query{
		TrackID:        req.TrackID,
		Title:          req.SongName,
		Artist:         req.Artist,
		PreviewURL:     req.PreviewURL,
		CandidateLimit: req.CandidateLimit,
	}, req.SimilarCount)
	if err != nil {
		logger.Warn("[HandleIdentify] 识别失败", logger.ErrorField(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleIdentifyUpload 处理音频识别请求
// POST /api/ai/identify/upload，multipart字段audioFile
func (h *APIHandler) HandleIdentifyUpload(w http.ResponseWriter, r *http.Request) {
	path, err := saveUploadedFile(r, "audioFile")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(path)

	similarCount := parseLimit(r.FormValue("similarCount"), defaultRecommendLimit)
	candidateLimit := parseLimit(r.FormValue("candidateLimit"), 0)

	resp, err := h.identifyAndRecommend(r.Context(), recognize.Query{
		AudioPath:      path,
		CandidateLimit: candidateLimit,
	}, similarCount)
	if err != nil {
		logger.Warn("[HandleIdentifyUpload] 音频识别失败", logger.ErrorField(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type voiceRequest struct {
	Audio          string `json:"audio"` // base64编码，容忍data-URI前缀
	SimilarCount   int    `json:"similarCount"`
	CandidateLimit int    `json:"candidateLimit"`
}

// HandleIdentifyVoice 处理语音点歌识别请求
// POST /api/ai/identify/voice，JSON体：{audio, similarCount}
func (h *APIHandler) HandleIdentifyVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrInvalidArgument, err, "解析请求体失败"))
		return
	}

	path, err := saveBase64Audio(req.Audio)
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(path)

	intent, err := h.voiceSvc.Interpret(r.Context(), path)
	if err != nil {
		logger.Warn("[HandleIdentifyVoice] 语音解析失败", logger.ErrorField(err))
		writeError(w, err)
		return
	}

	title := intent.Title
	if title == "" {
		title = intent.Query
	}

	resp, err := h.identifyAndRecommend(r.Context(), recognize.Query{
		Title:          title,
		Artist:         intent.Artist,
		CandidateLimit: req.CandidateLimit,
	}, req.SimilarCount)
	if err != nil {
		logger.Warn("[HandleIdentifyVoice] 识别失败", logger.ErrorField(err))
		writeError(w, err)
		return
	}
	resp.Transcript = intent.Transcript
	writeJSON(w, http.StatusOK, resp)
}

// identifyAndRecommend 识别歌曲后附带相似推荐与摘要。
// 推荐与摘要均为尽力而为，失败不影响识别结果。
// q.CandidateLimit 同时控制音频匹配与推荐的候选池大小。
func (h *APIHandler) identifyAndRecommend(ctx context.Context, q recognize.Query, similarCount int) (*identifyResponse, error) {
	if similarCount < 1 {
		similarCount = defaultRecommendLimit
	}
	candidateLimit := q.CandidateLimit
	if candidateLimit < 1 {
		candidateLimit = recommend.DefaultCandidateLimit
	}

	result, err := h.recognizer.Identify(ctx, q)
	if err != nil {
		return nil, err
	}

	resp := &identifyResponse{
		Track:      result.Track,
		Confidence: result.Confidence,
		Similar:    []model.ScoredTrack{},
	}

	similar, err := h.autoEngine.Recommend(ctx, result.ID, candidateLimit, similarCount)
	if err != nil {
		logger.Warn("[identifyAndRecommend] 推荐失败，仅返回识别结果",
			logger.String("trackId", result.ID), logger.ErrorField(err))
		return resp, nil
	}
	resp.Similar = similar

	if len(similar) > 0 {
		resp.Summary = h.summarySvc.Summarize(ctx, result.Track, similar)
	}
	return resp, nil
}

// saveBase64Audio 解码base64音频并写入临时文件，调用方负责删除
func saveBase64Audio(encoded string) (string, error) {
	if encoded == "" {
		return "", errs.New(errs.ErrInvalidArgument, "audio字段为空")
	}
	// 容忍 data:audio/mp3;base64, 前缀
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "解码base64音频失败")
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("echofm_voice_%s.mp3", uuid.NewString()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "保存语音文件失败")
	}
	return path, nil
}

// saveUploadedFile 将上传的音频保存为临时文件，调用方负责删除
func saveUploadedFile(r *http.Request, field string) (string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "解析上传表单失败")
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "表单缺少 %s 字段", field)
	}
	defer file.Close()

	path := filepath.Join(os.TempDir(), fmt.Sprintf("echofm_upload_%s.mp3", uuid.NewString()))
	out, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "创建临时文件失败")
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "保存上传文件失败")
	}
	return path, nil
}
