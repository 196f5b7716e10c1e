// Package summary 生成推荐结果的自然语言说明
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"EchoFM/config"
	"EchoFM/logger"
	"EchoFM/model"
)

// 生成服务不可用时的兜底文案
const placeholderSummary = "为你挑选了几首风格相近的歌曲，快来听听吧。"

// Service 推荐摘要服务，走Ollama生成接口
type Service struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewService 创建摘要服务
func NewService(cfg *config.Config) *Service {
	return &Service{
		baseURL:    cfg.SummaryAPIURL,
		model:      cfg.SummaryModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Summarize 为一次推荐生成说明文案。
// 生成失败时返回兜底文案，从不向上传播错误。
func (s *Service) Summarize(ctx context.Context, seed model.Track, recommended []model.ScoredTrack) string {
	payload, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: buildPrompt(seed, recommended),
		Stream: false,
	})
	if err != nil {
		return placeholderSummary
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return placeholderSummary
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("[Summarize] 摘要服务不可达，使用兜底文案", logger.ErrorField(err))
		return placeholderSummary
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("[Summarize] 摘要服务状态异常，使用兜底文案", logger.Int("status", resp.StatusCode))
		return placeholderSummary
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return placeholderSummary
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return placeholderSummary
	}
	return text
}

// buildPrompt 构造生成提示词：种子信息加推荐列表
func buildPrompt(seed model.Track, recommended []model.ScoredTrack) string {
	var b strings.Builder
	fmt.Fprintf(&b, "用户正在听《%s》（%s）。", seed.Title, seed.Artist)
	b.WriteString("系统推荐了以下歌曲：\n")
	for i, r := range recommended {
		fmt.Fprintf(&b, "%d. 《%s》 - %s（相似度 %.2f）\n", i+1, r.Title, r.Artist, r.Similarity)
	}
	b.WriteString("请用一两句中文向用户介绍这组推荐，语气自然，不要逐首罗列。")
	return b.String()
}
