// Package deezer 封装Deezer公开目录API：搜索、元数据、榜单、
// 相关歌曲、试听下载以及流派解析缓存。
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"EchoFM/config"
	"EchoFM/core/errs"
)

// Client Deezer目录API客户端
type Client struct {
	baseURL       string
	httpClient    *http.Client
	previewClient *http.Client // 试听下载使用更长的超时

	genreMu    sync.Mutex
	genreCache map[int64]*string // nil表示无流派；进程生命周期内有效
}

// NewClient 创建新的目录API客户端
func NewClient(cfg *config.Config) *Client {
	c := &Client{
		baseURL:       cfg.DeezerAPIURL,
		httpClient:    &http.Client{Timeout: cfg.DeezerTimeout},
		previewClient: &http.Client{Timeout: cfg.PreviewTimeout},
		genreCache:    make(map[int64]*string),
	}
	// 流派ID 0 保留为"无流派"
	c.genreCache[0] = nil
	return c
}

// apiError Deezer统一错误载荷
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Deezer错误码：800 = 无数据
const codeNoData = 800

// getJSON 发送GET请求并解码JSON响应。
// 网络层失败与非200状态码统一归类为 ErrNetwork。
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.Wrap(errs.ErrNetwork, err, "创建请求失败")
	}
	req.Header.Set("User-Agent", "EchoFM/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.ErrNetwork, err, "请求失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.ErrNetwork, "API返回错误状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrNetwork, err, "读取响应失败")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errs.Wrap(errs.ErrNetwork, err, "解析响应失败")
	}
	return nil
}

// trackItem Deezer歌曲载荷（搜索、榜单、详情共用字段）
type trackItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Duration int    `json:"duration"`
	Rank     int    `json:"rank"`
	Preview  string `json:"preview"`
	GenreID  int64  `json:"genre_id"`
	Artist   struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		CoverBig    string `json:"cover_big"`
		CoverMedium string `json:"cover_medium"`
		GenreID     int64  `json:"genre_id"`
	} `json:"album"`
}

func fmtID(id int64) string {
	return fmt.Sprintf("%d", id)
}
