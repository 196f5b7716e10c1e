package vecdb

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"EchoFM/core/errs"
	"EchoFM/logger"
)

// EnsureCollection 确保集合与索引存在，不存在则创建
func (idx *Index) EnsureCollection(ctx context.Context) error {
	exists, err := idx.milvusClient.HasCollection(ctx, idx.collection)
	if err != nil {
		return errs.Wrap(errs.ErrIndex, err, "检查集合 %s 失败", idx.collection)
	}
	if exists {
		logger.Debug("[EnsureCollection] 集合已存在", logger.String("collection", idx.collection))
		return nil
	}

	logger.Info("[EnsureCollection] 创建集合",
		logger.String("collection", idx.collection), logger.Int("dim", idx.dim))

	schema := idx.buildSchema()
	if err := idx.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "创建集合 %s 失败", idx.collection)
	}

	// 嵌入向量字段建HNSW索引，余弦度量
	hnsw, err := entity.NewIndexHNSW(entity.COSINE, 50, 250)
	if err != nil {
		return errs.Wrap(errs.ErrIndex, err, "构造HNSW索引参数失败")
	}
	if err := idx.milvusClient.CreateIndex(ctx, idx.collection, "embedding", hnsw, false); err != nil {
		return errs.Wrap(errs.ErrIndex, err, "为 %s.embedding 创建索引失败", idx.collection)
	}

	return nil
}

func (idx *Index) buildSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: idx.collection,
		AutoID:         false,
		Fields: []*entity.Field{
			{
				Name:       "track_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", idx.dim)},
			},
			{
				Name:       "title",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "artist",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "preview_url",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "1024"},
			},
			{
				Name:       "cover",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "1024"},
			},
			{
				Name:     "rank",
				DataType: entity.FieldTypeInt64,
			},
		},
	}
}

// Reset 删除并重建集合，清空所有数据。
// 与AddTrack等写操作共用writeMu，避免重建期间混入写入。
func (idx *Index) Reset(ctx context.Context) error {
	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	exists, err := idx.milvusClient.HasCollection(ctx, idx.collection)
	if err != nil {
		return errs.Wrap(errs.ErrIndex, err, "检查集合 %s 失败", idx.collection)
	}

	if exists {
		logger.Info("[Reset] 删除集合", logger.String("collection", idx.collection))
		if err := idx.milvusClient.DropCollection(ctx, idx.collection); err != nil {
			return errs.Wrap(errs.ErrIndex, err, "删除集合 %s 失败", idx.collection)
		}
		idx.loadMu.Lock()
		delete(idx.loaded, idx.collection)
		idx.loadMu.Unlock()
	}

	return idx.EnsureCollection(ctx)
}
