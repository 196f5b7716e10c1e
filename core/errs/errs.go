// Package errs 定义核心流水线的错误分类。
// 调用方通过 errors.Is 判断错误类型，HTTP层据此映射状态码，
// 原始传输错误不会越过处理器边界。
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 输入非法（如空白查询），不重试，立即返回调用方
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound 请求的实体（歌曲ID、搜索词）无法解析
	ErrNotFound = errors.New("not found")
	// ErrNoPreview 歌曲元数据存在但没有可用试听音频
	ErrNoPreview = errors.New("no preview available")
	// ErrNetwork 访问外部API的瞬时失败
	ErrNetwork = errors.New("network failure")
	// ErrEmbedding 音频无法解码或产生退化（零范数）向量
	ErrEmbedding = errors.New("embedding failure")
	// ErrIdentification 识别级联所有策略均未产生结果
	ErrIdentification = errors.New("identification failed")
	// ErrIndex 向量索引损坏或后端不可用
	ErrIndex = errors.New("vector index failure")
)

// Wrap 在保留错误分类的前提下附加上下文。
// 产生的错误同时匹配 kind 与 cause（若cause非nil）。
func Wrap(kind error, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}

// New 构造仅携带分类的错误
func New(kind error, format string, args ...interface{}) error {
	return Wrap(kind, nil, format, args...)
}
