// Package similarity 提供字符串相似度与向量余弦相似度计算。
package similarity

import (
	"math"

	"github.com/agnivade/levenshtein"
)

// StringRatio 计算两个已规范化字符串的相似度比率，范围[0,1]。
// 基于编辑距离：ratio = 1 - dist/maxLen。两个空串视为完全相同。
func StringRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// Cosine 计算两个向量的余弦相似度。
// 任一向量范数为零时返回0。调用方自行决定是否钳制到[0,1]：
// 近重复嵌入因浮点误差可能得到略大于1的值。
func Cosine(u, v []float64) float64 {
	if len(u) == 0 || len(u) != len(v) {
		return 0
	}
	var dot, nu, nv float64
	for i := range u {
		dot += u[i] * v[i]
		nu += u[i] * u[i]
		nv += v[i] * v[i]
	}
	if nu == 0 || nv == 0 {
		return 0
	}
	return dot / (math.Sqrt(nu) * math.Sqrt(nv))
}

// Dot 计算点积。两侧均为单位向量时等价于余弦相似度。
func Dot(u, v []float64) float64 {
	if len(u) != len(v) {
		return 0
	}
	var dot float64
	for i := range u {
		dot += u[i] * v[i]
	}
	return dot
}

// Norm 返回向量的L2范数
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Clamp01 将得分钳制到[0,1]区间
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
