package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringRatio(t *testing.T) {
	assert.Equal(t, 1.0, StringRatio("", ""))
	assert.Equal(t, 1.0, StringRatio("imagine", "imagine"))
	assert.Equal(t, 0.0, StringRatio("abc", ""))

	// 单字符替换："bohemian rapsody" 比 "xxx" 更接近原题
	typo := StringRatio("bohemian rhapsody", "bohemian rapsody")
	other := StringRatio("bohemian rhapsody", "another one bites the dust")
	assert.Greater(t, typo, 0.9)
	assert.Greater(t, typo, other)
}

func TestCosine(t *testing.T) {
	u := []float64{1, 0, 0}
	v := []float64{0, 1, 0}
	assert.InDelta(t, 0.0, Cosine(u, v), 1e-12)
	assert.InDelta(t, 1.0, Cosine(u, u), 1e-12)

	// 未归一化输入也要除以范数乘积
	w := []float64{3, 0, 0}
	assert.InDelta(t, 1.0, Cosine(u, w), 1e-12)

	// 零向量与长度不匹配
	assert.Equal(t, 0.0, Cosine(u, []float64{0, 0, 0}))
	assert.Equal(t, 0.0, Cosine(u, []float64{1, 2}))
}

func TestDotEqualsCosineForUnitVectors(t *testing.T) {
	u := []float64{0.6, 0.8}
	v := []float64{0.8, 0.6}
	assert.InDelta(t, Cosine(u, v), Dot(u, v), 1e-12)
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float64{3, 4}), 1e-12)
	assert.Equal(t, 0.0, Norm(nil))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.1))
	assert.Equal(t, 1.0, Clamp01(1.0000001))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.False(t, math.IsNaN(Clamp01(0.3)))
}
