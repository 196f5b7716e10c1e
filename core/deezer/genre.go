package deezer

import (
	"context"
	"fmt"

	"EchoFM/logger"
)

// ResolveGenre 将流派ID解析为名称，进程生命周期内记忆化。
// 返回nil表示无流派（ID 0 预置为nil）。解析失败同样记忆化为nil，
// 避免对坏ID反复请求上游。
func (c *Client) ResolveGenre(ctx context.Context, genreID int64) *string {
	c.genreMu.Lock()
	if name, ok := c.genreCache[genreID]; ok {
		c.genreMu.Unlock()
		return name
	}
	c.genreMu.Unlock()

	var result struct {
		ID    int64     `json:"id"`
		Name  string    `json:"name"`
		Error *apiError `json:"error"`
	}

	var name *string
	reqURL := fmt.Sprintf("%s/genre/%d", c.baseURL, genreID)
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		logger.Debug("[ResolveGenre] 解析流派失败", logger.Int64("genreId", genreID), logger.ErrorField(err))
	} else if result.Error == nil && result.Name != "" {
		name = &result.Name
	}

	c.genreMu.Lock()
	c.genreCache[genreID] = name
	c.genreMu.Unlock()
	return name
}
