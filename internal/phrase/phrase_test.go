package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAffinity(t *testing.T) {
	assert := assert.New(t)

	generator := New()
	for i := 0; i < 20; i++ {
		assert.Contains(affinities, generator.Affinity())
	}
}

func TestCompatibility(t *testing.T) {
	assert := assert.New(t)

	generator := New()

	t.Run("deterministic per birthdate pair", func(t *testing.T) {
		first := generator.Compatibility("1990-03-14", "1987-11-02")
		assert.Contains(compatibilities, first)
		for i := 0; i < 5; i++ {
			assert.Equal(first, generator.Compatibility("1990-03-14", "1987-11-02"))
		}
	})

	t.Run("symmetric in its arguments", func(t *testing.T) {
		assert.Equal(
			generator.Compatibility("1990-03-14", "1987-11-02"),
			generator.Compatibility("1987-11-02", "1990-03-14"))
	})

	t.Run("falls back on missing birthdates", func(t *testing.T) {
		assert.Contains(affinities, generator.Compatibility("", "1987-11-02"))
		assert.Contains(affinities, generator.Compatibility("not-a-date", "also not"))
	})
}
