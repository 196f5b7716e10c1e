package vecdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// Entry 索引条目：歌曲元数据与其嵌入向量
type Entry struct {
	Track     model.Track
	Embedding []float64
}

// AddTrack 向索引添加一首歌曲。ID已存在时返回 ErrIndex。
func (idx *Index) AddTrack(ctx context.Context, entry Entry) error {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()
	return idx.addLocked(ctx, entry, true)
}

// BulkAdd 批量添加歌曲，逐条处理：已存在或维度不符的跳过并记录日志。
// 返回实际新增数量。
func (idx *Index) BulkAdd(ctx context.Context, entries []Entry) (int, error) {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	added := 0
	for _, entry := range entries {
		if err := idx.addLocked(ctx, entry, false); err != nil {
			logger.Warn("[BulkAdd] 跳过歌曲",
				logger.String("trackId", entry.Track.ID), logger.ErrorField(err))
			continue
		}
		added++
	}
	return added, idx.flush(ctx, idx.collection)
}

func (idx *Index) addLocked(ctx context.Context, entry Entry, flush bool) error {
	if entry.Track.ID == "" {
		return errs.New(errs.ErrInvalidArgument, "歌曲ID为空")
	}
	if len(entry.Embedding) != idx.dim {
		return errs.New(errs.ErrIndex, "嵌入维度不匹配: 期望 %d 实际 %d", idx.dim, len(entry.Embedding))
	}

	exists, err := idx.trackExistsLocked(ctx, entry.Track.ID)
	if err != nil {
		return err
	}
	if exists {
		return errs.New(errs.ErrIndex, "歌曲 %s 已在索引中", entry.Track.ID)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("track_id", []string{entry.Track.ID}),
		entity.NewColumnFloatVector("embedding", idx.dim, [][]float32{float64sToFloat32s(entry.Embedding)}),
		entity.NewColumnVarChar("title", []string{entry.Track.Title}),
		entity.NewColumnVarChar("artist", []string{entry.Track.Artist}),
		entity.NewColumnVarChar("preview_url", []string{entry.Track.PreviewURL}),
		entity.NewColumnVarChar("cover", []string{entry.Track.Cover}),
		entity.NewColumnInt64("rank", []int64{int64(entry.Track.Rank)}),
	}

	if _, err := idx.milvusClient.Insert(ctx, idx.collection, "", columns...); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "插入歌曲 %s 失败", entry.Track.ID)
	}

	logger.Debug("[AddTrack] 歌曲已入索引",
		logger.String("trackId", entry.Track.ID), logger.String("title", entry.Track.Title))

	if flush {
		return idx.flush(ctx, idx.collection)
	}
	return nil
}

// TrackExists 检查歌曲是否已在索引中
func (idx *Index) TrackExists(ctx context.Context, trackID string) (bool, error) {
	return idx.trackExistsLocked(ctx, trackID)
}

func (idx *Index) trackExistsLocked(ctx context.Context, trackID string) (bool, error) {
	if err := idx.loadCollection(ctx, idx.collection); err != nil {
		return false, err
	}

	filter := buildInFilter("track_id", []string{trackID})
	results, err := idx.milvusClient.Query(ctx, idx.collection, nil, filter, []string{"track_id"})
	if err != nil {
		return false, errs.Wrap(errs.ErrIndex, err, "查询歌曲 %s 失败", trackID)
	}

	for _, col := range results {
		if col.Name() == "track_id" {
			return col.Len() > 0, nil
		}
	}
	return false, nil
}

// DeleteTrack 从索引中删除歌曲
func (idx *Index) DeleteTrack(ctx context.Context, trackID string) error {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	if err := idx.loadCollection(ctx, idx.collection); err != nil {
		return err
	}

	filter := buildInFilter("track_id", []string{trackID})
	if err := idx.milvusClient.Delete(ctx, idx.collection, "", filter); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "删除歌曲 %s 失败", trackID)
	}
	return idx.flush(ctx, idx.collection)
}

// buildInFilter 构造字段值匹配过滤表达式
func buildInFilter(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		escaped := strings.ReplaceAll(v, "'", "\\'")
		quoted[i] = fmt.Sprintf("'%s'", escaped)
	}
	return fmt.Sprintf("%s in [%s]", field, strings.Join(quoted, ", "))
}

// buildNotInFilter 构造字段值排除过滤表达式
func buildNotInFilter(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		escaped := strings.ReplaceAll(v, "'", "\\'")
		quoted[i] = fmt.Sprintf("'%s'", escaped)
	}
	return fmt.Sprintf("%s not in [%s]", field, strings.Join(quoted, ", "))
}

func float64sToFloat32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
