package deezer

import (
	"context"
	"fmt"

	"EchoFM/logger"
	"EchoFM/model"
)

// 榜单分页每批最大数量
const chartBatchSize = 100

// GetChartTracks 获取榜单歌曲，index为分页起始位置
func (c *Client) GetChartTracks(ctx context.Context, limit, index int) ([]model.Track, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > chartBatchSize {
		limit = chartBatchSize
	}

	reqURL := fmt.Sprintf("%s/chart/0/tracks?limit=%d&index=%d", c.baseURL, limit, index)
	logger.Debug("[GetChartTracks] 开始获取榜单歌曲", logger.Int("limit", limit), logger.Int("index", index))

	var result struct {
		Data  []trackItem `json:"data"`
		Error *apiError   `json:"error"`
	}
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		logger.Error("[GetChartTracks] 请求失败", logger.ErrorField(err))
		return nil, err
	}
	if result.Error != nil && result.Error.Code != codeNoData {
		return nil, apiErrToErr(result.Error, "获取榜单")
	}

	tracks := make([]model.Track, 0, len(result.Data))
	for _, item := range result.Data {
		tracks = append(tracks, c.toTrack(item))
	}
	return tracks, nil
}

// GetTopTracks 分页获取榜单前N首歌曲，每批默认100首，
// 某批返回数量不足时提前停止。
func (c *Client) GetTopTracks(ctx context.Context, totalCount int) ([]model.Track, error) {
	if totalCount < 1 {
		totalCount = 1
	}

	allTracks := make([]model.Track, 0, totalCount)
	index := 0

	for len(allTracks) < totalCount {
		remaining := totalCount - len(allTracks)
		limit := chartBatchSize
		if remaining < limit {
			limit = remaining
		}

		batch, err := c.GetChartTracks(ctx, limit, index)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		allTracks = append(allTracks, batch...)
		index += len(batch)

		logger.Info("[GetTopTracks] 已获取榜单歌曲",
			logger.Int("fetched", len(allTracks)), logger.Int("total", totalCount))

		if len(batch) < limit {
			// 上游数据不足，提前结束
			break
		}
	}

	if len(allTracks) > totalCount {
		allTracks = allTracks[:totalCount]
	}
	return allTracks, nil
}
