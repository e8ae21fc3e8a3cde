package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewDiffersAcrossSeeds(t *testing.T) {
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestNewRandomProducesGenerator(t *testing.T) {
	r := NewRandom()
	n := r.IntN(10)
	assert.GreaterOrEqual(t, n, 0)
	assert.Less(t, n, 10)
}
