package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"EchoFM/config"
	"EchoFM/core/errs"
	"EchoFM/logger"
)

// RemoteModel 通过HTTP调用外部嵌入推理服务
type RemoteModel struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteModel 创建远程推理后端
func NewRemoteModel(cfg *config.Config) *RemoteModel {
	return &RemoteModel{
		baseURL:    cfg.EmbedServiceURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type inferRequest struct {
	PCM        []float32 `json:"pcm"`
	SampleRate int       `json:"sample_rate"`
}

type inferResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Infer 提交PCM信号，返回逐帧嵌入向量
func (m *RemoteModel) Infer(ctx context.Context, pcm []float32, sampleRate int) ([][]float64, error) {
	start := time.Now()

	body, err := json.Marshal(inferRequest{PCM: pcm, SampleRate: sampleRate})
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "序列化推理请求失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "创建推理请求失败")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "推理服务不可达")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errs.New(errs.ErrEmbedding, "推理服务返回状态码 %d: %s", resp.StatusCode, string(data))
	}

	var result inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "解析推理响应失败")
	}
	if result.Error != "" {
		return nil, errs.New(errs.ErrEmbedding, "推理服务错误: %s", result.Error)
	}

	logger.Debug("[Infer] 推理完成",
		logger.Int("frames", len(result.Embeddings)),
		logger.Duration("elapsed", time.Since(start)))
	return result.Embeddings, nil
}

// Ping 检查推理服务是否可用
func (m *RemoteModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("创建健康检查请求失败: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("推理服务不可达: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("推理服务状态异常: %d", resp.StatusCode)
	}
	return nil
}
