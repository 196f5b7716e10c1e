package deezer

import (
	"context"
	"fmt"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// GetTrackMetadata 获取歌曲详情。ID不存在时返回 ErrNotFound。
// 流派通过流派缓存懒解析，解析失败不影响主结果。
func (c *Client) GetTrackMetadata(ctx context.Context, trackID string) (*model.Track, error) {
	reqURL := fmt.Sprintf("%s/track/%s", c.baseURL, trackID)
	logger.Debug("[GetTrackMetadata] 开始获取歌曲详情", logger.String("trackId", trackID))

	var item struct {
		trackItem
		Error *apiError `json:"error"`
	}
	if err := c.getJSON(ctx, reqURL, &item); err != nil {
		logger.Error("[GetTrackMetadata] 请求失败", logger.String("trackId", trackID), logger.ErrorField(err))
		return nil, err
	}
	if item.Error != nil {
		return nil, apiErrToErr(item.Error, fmt.Sprintf("获取歌曲 %s", trackID))
	}
	if item.ID == 0 {
		return nil, errs.New(errs.ErrNotFound, "未找到歌曲 %s", trackID)
	}

	track := c.toTrack(item.trackItem)

	genreID := item.GenreID
	if genreID == 0 {
		genreID = item.Album.GenreID
	}
	if name := c.ResolveGenre(ctx, genreID); name != nil {
		track.Genre = *name
	}

	logger.Debug("[GetTrackMetadata] 成功获取歌曲详情",
		logger.String("trackId", trackID), logger.String("title", track.Title))
	return &track, nil
}

// GetRelatedTracks 获取与指定歌曲相关的歌曲（同艺术家热门曲目）。
// 尽力而为：任何失败都记录日志并返回空列表，不向上传播。
func (c *Client) GetRelatedTracks(ctx context.Context, trackID string, limit int) []model.Track {
	if limit < 1 {
		limit = 1
	}

	var detail struct {
		trackItem
		Error *apiError `json:"error"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/track/%s", c.baseURL, trackID), &detail); err != nil ||
		detail.Error != nil || detail.Artist.ID == 0 {
		logger.Warn("[GetRelatedTracks] 解析种子歌曲艺术家失败，降级为空列表", logger.String("trackId", trackID))
		return nil
	}

	reqURL := fmt.Sprintf("%s/artist/%d/top?limit=%d", c.baseURL, detail.Artist.ID, limit+1)
	var result struct {
		Data  []trackItem `json:"data"`
		Error *apiError   `json:"error"`
	}
	if err := c.getJSON(ctx, reqURL, &result); err != nil || (result.Error != nil && result.Error.Code != codeNoData) {
		logger.Warn("[GetRelatedTracks] 获取艺术家热门曲目失败，降级为空列表",
			logger.String("trackId", trackID), logger.ErrorField(err))
		return nil
	}

	tracks := make([]model.Track, 0, len(result.Data))
	for _, item := range result.Data {
		t := c.toTrack(item)
		if t.ID == trackID {
			continue
		}
		tracks = append(tracks, t)
		if len(tracks) >= limit {
			break
		}
	}

	logger.Debug("[GetRelatedTracks] 获取相关歌曲完成",
		logger.String("trackId", trackID), logger.Int("count", len(tracks)))
	return tracks
}

func apiErrToErr(e *apiError, op string) error {
	if e.Code == codeNoData || e.Type == "DataException" {
		return errs.New(errs.ErrNotFound, "%s: %s (code: %d)", op, e.Message, e.Code)
	}
	return errs.New(errs.ErrNetwork, "%s: API返回错误: %s (code: %d)", op, e.Message, e.Code)
}
