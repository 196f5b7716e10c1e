// Package voice 实现语音点歌：音频转写与意图抽取
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"EchoFM/config"
	"EchoFM/core/errs"
	"EchoFM/logger"
)

// Intent 从语音中抽取的点歌意图。
// Title/Artist为空时退回到Query整句搜索。
// Transcript为原始转写文本，Raw保留模型原始输出便于排查。
type Intent struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Query      string `json:"query"`
	Transcript string `json:"transcript"`
	Raw        string `json:"-"`
}

// Service 语音点歌服务，走OpenAI兼容API
type Service struct {
	apiURL          string
	apiKey          string
	transcribeModel string
	reasonModel     string
	httpClient      *http.Client
}

// NewService 创建语音服务
func NewService(cfg *config.Config) *Service {
	return &Service{
		apiURL:          cfg.OpenAIAPIURL,
		apiKey:          cfg.OpenAIAPIKey,
		transcribeModel: cfg.TranscribeModel,
		reasonModel:     cfg.ReasonModel,
		httpClient:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Interpret 转写语音并抽取点歌意图
func (s *Service) Interpret(ctx context.Context, audioPath string) (*Intent, error) {
	transcript, err := s.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errs.New(errs.ErrIdentification, "语音转写结果为空")
	}

	intent := s.extractIntent(ctx, transcript)
	intent.Transcript = transcript
	logger.Info("[Interpret] 语音意图抽取完成",
		logger.String("transcript", transcript),
		logger.String("title", intent.Title), logger.String("artist", intent.Artist))
	return intent, nil
}

// Transcribe 上传音频并返回转写文本
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", errs.Wrap(errs.ErrInvalidArgument, err, "打开语音文件失败")
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "构造上传表单失败")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "读取语音文件失败")
	}
	if err := writer.WriteField("model", s.transcribeModel); err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "构造上传表单失败")
	}
	if err := writer.Close(); err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "构造上传表单失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "创建转写请求失败")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "转写服务不可达")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errs.New(errs.ErrNetwork, "转写服务返回状态码 %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "解析转写响应失败")
	}
	return result.Text, nil
}

const intentPrompt = `你是点歌助手。从用户的话中抽取想听的歌曲信息，只输出JSON：
{"title": "歌名", "artist": "歌手", "query": "原始搜索词"}
字段未知时留空字符串。用户说：`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// extractIntent 调用推理模型抽取意图。
// 模型输出不是合法JSON时降级：整句转写作为搜索词。
func (s *Service) extractIntent(ctx context.Context, transcript string) *Intent {
	fallback := &Intent{Query: transcript}

	payload, err := json.Marshal(chatRequest{
		Model: s.reasonModel,
		Messages: []chatMessage{
			{Role: "user", Content: intentPrompt + transcript},
		},
	})
	if err != nil {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return fallback
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("[extractIntent] 推理服务不可达，降级为整句搜索", logger.ErrorField(err))
		return fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("[extractIntent] 推理服务状态异常，降级为整句搜索",
			logger.Int("status", resp.StatusCode))
		return fallback
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.Choices) == 0 {
		return fallback
	}

	raw := result.Choices[0].Message.Content
	fallback.Raw = raw

	var intent Intent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &intent); err != nil {
		logger.Warn("[extractIntent] 模型输出非JSON，降级为整句搜索", logger.String("content", raw))
		return fallback
	}
	intent.Raw = raw
	if intent.Query == "" {
		intent.Query = transcript
	}
	return &intent
}

// extractJSON 截取模型输出中第一段大括号包裹的内容，
// 容忍模型在JSON前后附加说明文字。
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
