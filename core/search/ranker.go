package search

import (
	"sort"

	"EchoFM/core/similarity"
	"EchoFM/core/textnorm"
	"EchoFM/model"
)

// Ranker 按标题与查询的匹配程度对候选歌曲排序
type Ranker struct{}

// Rank 返回按相关性降序排列的副本。
// 精确匹配（规范化后标题与查询相等）排最前，其余按模糊相似度降序。
// 相似度相同的保持输入顺序。
func (Ranker) Rank(query string, tracks []model.Track) []model.Track {
	normQuery := textnorm.Normalize(query)

	type scored struct {
		track model.Track
		exact bool
		ratio float64
	}

	items := make([]scored, 0, len(tracks))
	for _, t := range tracks {
		normTitle := textnorm.Normalize(t.Title)
		items = append(items, scored{
			track: t,
			exact: normTitle == normQuery,
			ratio: similarity.StringRatio(normQuery, normTitle),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].exact != items[j].exact {
			return items[i].exact
		}
		return items[i].ratio > items[j].ratio
	})

	ranked := make([]model.Track, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, it.track)
	}
	return ranked
}
