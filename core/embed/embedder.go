package embed

import (
	"context"
	"math"

	"EchoFM/config"
	"EchoFM/core/errs"
	"EchoFM/core/similarity"
	"EchoFM/logger"
)

// Model 音频嵌入推理后端：输入单声道PCM，输出逐帧嵌入向量
type Model interface {
	Infer(ctx context.Context, pcm []float32, sampleRate int) ([][]float64, error)
}

// Embedder 音频嵌入服务：解码、裁剪、推理并聚合为单个单位向量。
// 聚合策略：逐帧L2归一化后取均值，再整体归一化。
type Embedder struct {
	model      Model
	dim        int
	sampleRate int
	cropSec    float64
}

// NewEmbedder 创建音频嵌入服务
func NewEmbedder(model Model, cfg *config.Config) *Embedder {
	return &Embedder{
		model:      model,
		dim:        cfg.EmbedDim,
		sampleRate: cfg.EmbedSampleRate,
		cropSec:    cfg.EmbedCropSec,
	}
}

// Dim 返回嵌入向量维度
func (e *Embedder) Dim() int { return e.dim }

// EmbedFile 计算音频文件的嵌入向量
func (e *Embedder) EmbedFile(ctx context.Context, path string) ([]float64, error) {
	pcm, err := DecodeMP3(path, e.sampleRate)
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, pcm)
}

// Embed 计算PCM信号的嵌入向量。超长信号取中间窗口。
func (e *Embedder) Embed(ctx context.Context, pcm []float32) ([]float64, error) {
	if len(pcm) == 0 {
		return nil, errs.New(errs.ErrEmbedding, "音频信号为空")
	}

	maxSamples := int(e.cropSec * float64(e.sampleRate))
	pcm = CenterCrop(pcm, maxSamples)

	frames, err := e.model.Infer(ctx, pcm, e.sampleRate)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "嵌入推理失败")
	}
	if len(frames) == 0 {
		return nil, errs.New(errs.ErrEmbedding, "推理未返回任何帧")
	}

	vec, err := aggregate(frames, e.dim)
	if err != nil {
		return nil, err
	}

	logger.Debug("[Embed] 嵌入计算完成",
		logger.Int("frames", len(frames)), logger.Int("samples", len(pcm)))
	return vec, nil
}

// Similarity 计算两个嵌入向量的相似度。
// 向量均已归一化，点积即余弦相似度。
func (e *Embedder) Similarity(a, b []float64) float64 {
	return similarity.Dot(a, b)
}

// aggregate 逐帧归一化后取均值，再整体归一化。
// 零范数帧跳过，全部为零时返回 ErrEmbedding。
func aggregate(frames [][]float64, dim int) ([]float64, error) {
	mean := make([]float64, dim)
	used := 0

	for _, frame := range frames {
		if len(frame) != dim {
			return nil, errs.New(errs.ErrEmbedding, "帧维度不匹配: 期望 %d 实际 %d", dim, len(frame))
		}
		norm := similarity.Norm(frame)
		if norm == 0 {
			continue
		}
		for i, v := range frame {
			mean[i] += v / norm
		}
		used++
	}
	if used == 0 {
		return nil, errs.New(errs.ErrEmbedding, "所有帧均为零向量")
	}

	for i := range mean {
		mean[i] /= float64(used)
	}

	norm := similarity.Norm(mean)
	if norm == 0 || math.IsNaN(norm) {
		return nil, errs.New(errs.ErrEmbedding, "聚合后向量范数为零")
	}
	for i := range mean {
		mean[i] /= norm
	}
	return mean, nil
}
