package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsAccentsAndCase(t *testing.T) {
	assert.Equal(t, "beyonce", Normalize("Beyoncé"))
	assert.Equal(t, "uber alles", Normalize("  Über Alles "))
	assert.Equal(t, "bohemian rhapsody", Normalize("Bohemian Rhapsody"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Beyoncé",
		"  CAFÉ del Mar  ",
		"Señorita",
		"北京欢迎你",
		"ﬁne", // NFKD兼容分解连字
		"",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalizeEmptyAndBlank(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \t "))
}
