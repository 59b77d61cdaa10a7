package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReversed(t *testing.T) {
	ls := LineString{{X: 0, Y: 0, Z: 0}, {X: 50, Y: 0, Z: 1}, {X: 100, Y: 0, Z: 2}}

	assert.Equal(t, LineString{{X: 100, Y: 0, Z: 2}, {X: 50, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}}, ls.Reversed())
	// The original is untouched.
	assert.Equal(t, Point{X: 0, Y: 0, Z: 0}, ls[0])
}

func TestReversedEmpty(t *testing.T) {
	assert.Empty(t, LineString{}.Reversed())
}
