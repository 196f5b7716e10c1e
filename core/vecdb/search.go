package vecdb

import (
	"context"
	"sort"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"EchoFM/core/errs"
	"EchoFM/logger"
	"EchoFM/model"
)

// Neighbor 相似搜索结果，距离越小越相似。
// 距离由余弦相似度换算：distance = 1 - score。
type Neighbor struct {
	Track    model.Track
	Distance float64
}

// QuerySimilar 对查询向量做近邻搜索，结果按距离升序。
// excludeIDs中的歌曲在索引侧被过滤。
func (idx *Index) QuerySimilar(ctx context.Context, vector []float64, topK int, excludeIDs []string) ([]Neighbor, error) {
	if len(vector) != idx.dim {
		return nil, errs.New(errs.ErrInvalidArgument, "查询向量维度不匹配: 期望 %d 实际 %d", idx.dim, len(vector))
	}
	if topK < 1 {
		topK = 1
	}

	if err := idx.loadCollection(ctx, idx.collection); err != nil {
		return nil, err
	}

	// HNSW搜索参数，ef不低于topK保证召回
	ef := topK * 2
	if ef < 64 {
		ef = 64
	}
	sp, err := entity.NewIndexHNSWSearchParam(ef)
	if err != nil {
		return nil, errs.Wrap(errs.ErrIndex, err, "构造搜索参数失败")
	}

	var filter string
	if len(excludeIDs) > 0 {
		filter = buildNotInFilter("track_id", excludeIDs)
	}

	outputFields := []string{"track_id", "title", "artist", "preview_url", "cover", "rank"}
	vectors := []entity.Vector{entity.FloatVector(float64sToFloat32s(vector))}

	results, err := idx.milvusClient.Search(ctx, idx.collection, nil, filter,
		outputFields, vectors, "embedding", entity.COSINE, topK, sp)
	if err != nil {
		return nil, errs.Wrap(errs.ErrIndex, err, "搜索集合 %s 失败", idx.collection)
	}

	var neighbors []Neighbor
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			track := model.Track{}
			for _, field := range result.Fields {
				switch field.Name() {
				case "track_id":
					track.ID, _ = field.(*entity.ColumnVarChar).ValueByIdx(i)
				case "title":
					track.Title, _ = field.(*entity.ColumnVarChar).ValueByIdx(i)
				case "artist":
					track.Artist, _ = field.(*entity.ColumnVarChar).ValueByIdx(i)
				case "preview_url":
					track.PreviewURL, _ = field.(*entity.ColumnVarChar).ValueByIdx(i)
				case "cover":
					track.Cover, _ = field.(*entity.ColumnVarChar).ValueByIdx(i)
				case "rank":
					if v, err := field.(*entity.ColumnInt64).ValueByIdx(i); err == nil {
						track.Rank = int(v)
					}
				}
			}

			// 余弦得分换算为距离，越小越相似
			neighbors = append(neighbors, Neighbor{
				Track:    track,
				Distance: 1 - float64(result.Scores[i]),
			})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	logger.Debug("[QuerySimilar] 近邻搜索完成",
		logger.Int("topK", topK), logger.Int("hits", len(neighbors)))
	return neighbors, nil
}
