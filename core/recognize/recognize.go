// Package recognize 实现歌曲识别级联：ID直查、文本搜索、音频匹配
package recognize

import (
	"context"
	"os"
	"strings"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// 音频匹配时的默认榜单候选数量
const defaultAudioMatchPool = 50

// Query 识别请求。线索按优先级使用：
// TrackID存在时只走直查，不触发其余线索。
// 音频线索可以是本地文件或试听URL，前者由调用方负责清理。
// CandidateLimit 控制音频匹配的候选池大小，不填时用默认值。
type Query struct {
	TrackID        string
	Title          string
	Artist         string
	AudioPath      string
	PreviewURL     string
	CandidateLimit int
}

// Catalog 识别所需的曲库能力
type Catalog interface {
	GetTrackMetadata(ctx context.Context, trackID string) (*model.Track, error)
	GetChartTracks(ctx context.Context, limit, index int) ([]model.Track, error)
	DownloadPreview(ctx context.Context, previewURL string) (string, error)
}

// Searcher 文本搜索能力
type Searcher interface {
	Predict(ctx context.Context, query string, limit int) ([]model.Track, error)
}

// Embedder 音频嵌入能力
type Embedder interface {
	EmbedFile(ctx context.Context, path string) ([]float64, error)
	Similarity(a, b []float64) float64
}

// Service 歌曲识别服务
type Service struct {
	catalog  Catalog
	searcher Searcher
	embedder Embedder
}

// NewService 创建识别服务
func NewService(catalog Catalog, searcher Searcher, embedder Embedder) *Service {
	return &Service{catalog: catalog, searcher: searcher, embedder: embedder}
}

// Identify 按级联顺序识别歌曲。
// 元数据直查与文本搜索不产生置信度，音频匹配的置信度为最佳相似度。
func (s *Service) Identify(ctx context.Context, q Query) (*model.IdentifiedTrack, error) {
	if q.TrackID != "" {
		track, err := s.catalog.GetTrackMetadata(ctx, q.TrackID)
		if err != nil {
			return nil, err
		}
		return &model.IdentifiedTrack{Track: *track}, nil
	}

	if text := buildTextQuery(q.Title, q.Artist); text != "" {
		tracks, err := s.searcher.Predict(ctx, text, 1)
		if err != nil {
			logger.Warn("[Identify] 文本搜索失败", logger.String("query", text), logger.ErrorField(err))
		} else if len(tracks) > 0 {
			logger.Info("[Identify] 文本搜索命中",
				logger.String("query", text), logger.String("trackId", tracks[0].ID))
			return &model.IdentifiedTrack{Track: s.enrich(ctx, tracks[0])}, nil
		}
	}

	if q.AudioPath != "" {
		return s.identifyByAudio(ctx, q.AudioPath, q.CandidateLimit)
	}
	if q.PreviewURL != "" {
		path, err := s.catalog.DownloadPreview(ctx, q.PreviewURL)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path)
		return s.identifyByAudio(ctx, path, q.CandidateLimit)
	}

	if q.Title == "" && q.Artist == "" {
		return nil, errs.New(errs.ErrInvalidArgument, "识别请求缺少线索")
	}
	return nil, errs.New(errs.ErrIdentification, "无法识别歌曲")
}

// identifyByAudio 将查询音频与榜单候选逐一比对，返回相似度最高者
func (s *Service) identifyByAudio(ctx context.Context, audioPath string, candidateLimit int) (*model.IdentifiedTrack, error) {
	if candidateLimit < 1 {
		candidateLimit = defaultAudioMatchPool
	}

	queryVec, err := s.embedder.EmbedFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.GetChartTracks(ctx, candidateLimit, 0)
	if err != nil {
		return nil, err
	}

	bestScore := -1.0
	var best *model.Track
	for i := range candidates {
		candidate := candidates[i]
		if !candidate.HasPreview() {
			continue
		}

		path, err := s.catalog.DownloadPreview(ctx, candidate.PreviewURL)
		if err != nil {
			logger.Warn("[Identify] 候选下载失败，跳过",
				logger.String("trackId", candidate.ID), logger.ErrorField(err))
			continue
		}
		vec, err := s.embedder.EmbedFile(ctx, path)
		os.Remove(path)
		if err != nil {
			logger.Warn("[Identify] 候选嵌入失败，跳过",
				logger.String("trackId", candidate.ID), logger.ErrorField(err))
			continue
		}

		if score := s.embedder.Similarity(queryVec, vec); score > bestScore {
			bestScore = score
			best = &candidate
		}
	}

	if best == nil {
		return nil, errs.New(errs.ErrNotFound, "音频匹配无可用候选")
	}

	track := s.enrich(ctx, *best)

	logger.Info("[Identify] 音频匹配完成",
		logger.String("trackId", track.ID), logger.Float64("confidence", bestScore))
	confidence := bestScore
	return &model.IdentifiedTrack{Track: track, Confidence: &confidence}, nil
}

// enrich 重新拉取完整元数据补全搜索或匹配结果的缺失字段（如流派），
// 拉取失败时原样返回，不影响识别结果
func (s *Service) enrich(ctx context.Context, track model.Track) model.Track {
	full, err := s.catalog.GetTrackMetadata(ctx, track.ID)
	if err != nil {
		logger.Warn("[enrich] 补全元数据失败",
			logger.String("trackId", track.ID), logger.ErrorField(err))
		return track
	}
	return *full
}

func buildTextQuery(title, artist string) string {
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	if a := strings.TrimSpace(artist); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
