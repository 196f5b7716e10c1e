package vecdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInFilter(t *testing.T) {
	assert.Equal(t, "", buildInFilter("track_id", nil))
	assert.Equal(t, "track_id in ['1']", buildInFilter("track_id", []string{"1"}))
	assert.Equal(t, "track_id in ['1', '2']", buildInFilter("track_id", []string{"1", "2"}))
}

func TestBuildInFilterEscapesQuotes(t *testing.T) {
	got := buildInFilter("title", []string{"don't stop"})
	assert.Equal(t, `title in ['don\'t stop']`, got)
}

func TestBuildNotInFilter(t *testing.T) {
	assert.Equal(t, "", buildNotInFilter("track_id", nil))
	assert.Equal(t, "track_id not in ['7']", buildNotInFilter("track_id", []string{"7"}))
}

func TestFloat64sToFloat32s(t *testing.T) {
	out := float64sToFloat32s([]float64{1.5, -2.25, 0})
	assert.Equal(t, []float32{1.5, -2.25, 0}, out)
	assert.Empty(t, float64sToFloat32s(nil))
}
