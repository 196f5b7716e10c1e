package model

// Track 表示目录API返回的一首歌曲。
// 构造后不可变，作为值对象在整个流水线中传递。
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Link       string `json:"link,omitempty"`       // 歌曲主页URL
	PreviewURL string `json:"previewUrl,omitempty"` // 为空表示无法进入嵌入流水线
	Cover      string `json:"cover,omitempty"`      // 封面URL
	Rank       int    `json:"rank"`                 // 目录热度排名
	Duration   int    `json:"duration,omitempty"`   // 时长（秒）
	Genre      string `json:"genre,omitempty"`      // 流派名称（懒解析）
}

// HasPreview 判断歌曲是否有可用的试听音频
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// ScoredTrack 携带相似度得分的歌曲，得分始终处于[0,1]区间
type ScoredTrack struct {
	Track
	Similarity float64 `json:"similarity"`
}

// IdentifiedTrack 识别结果。Confidence 仅在音频匹配路径下存在；
// 按ID或文本搜索识别时为nil（确定性无需置信度）。
type IdentifiedTrack struct {
	Track
	Confidence *float64 `json:"confidence,omitempty"`
}
