package deezer

import (
	"context"
	"fmt"
	"net/url"

	"EchoFM/logger"
	"EchoFM/model"
)

// SearchTracks 搜索歌曲。
// strict 模式用短语语法 track:"<query>" 约束查询，可能过度收紧；
// 非strict直接透传原始查询。零匹配返回空列表而非错误。
func (c *Client) SearchTracks(ctx context.Context, query string, limit int, strict bool) ([]model.Track, error) {
	if limit < 1 {
		limit = 1
	}

	q := query
	if strict {
		q = fmt.Sprintf("track:%q", query)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", fmt.Sprintf("%d", limit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	logger.Debug("[SearchTracks] 开始搜索歌曲",
		logger.String("query", query), logger.Int("limit", limit), logger.Bool("strict", strict))

	var result struct {
		Data  []trackItem `json:"data"`
		Total int         `json:"total"`
		Error *apiError   `json:"error"`
	}
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		logger.Error("[SearchTracks] 搜索失败", logger.String("query", query), logger.ErrorField(err))
		return nil, err
	}
	if result.Error != nil && result.Error.Code != codeNoData {
		return nil, apiErrToErr(result.Error, "搜索歌曲")
	}

	tracks := make([]model.Track, 0, len(result.Data))
	for _, item := range result.Data {
		tracks = append(tracks, c.toTrack(item))
	}

	logger.Debug("[SearchTracks] 搜索完成", logger.String("query", query), logger.Int("count", len(tracks)))
	return tracks, nil
}

// toTrack 将Deezer载荷映射为歌曲值对象
func (c *Client) toTrack(item trackItem) model.Track {
	cover := item.Album.CoverBig
	if cover == "" {
		cover = item.Album.CoverMedium
	}
	return model.Track{
		ID:         fmtID(item.ID),
		Title:      item.Title,
		Artist:     item.Artist.Name,
		Album:      item.Album.Title,
		Link:       item.Link,
		PreviewURL: item.Preview,
		Cover:      cover,
		Rank:       item.Rank,
		Duration:   item.Duration,
	}
}
