package dither

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumVec4(vs ...Vec4) Vec4 {
	var s Vec4
	for _, v := range vs {
		s = s.Add(v)
	}
	return s
}

func TestFloydSteinbergWeightsSumToWholeError(t *testing.T) {
	buf := newDiffusionBuffer(8, 2)
	err := Vec4{1, 1, 1, 1}
	x := 4
	propagateFloydSteinberg(buf, x, err)

	total := sumVec4(
		buf.get(0, x+1),
		buf.get(1, x-1),
		buf.get(1, x+0),
		buf.get(1, x+1),
	)
	assert.InDelta(t, err.X, total.X, 1e-6)
	assert.InDelta(t, err.Y, total.Y, 1e-6)
	assert.InDelta(t, err.Z, total.Z, 1e-6)
	assert.InDelta(t, err.W, total.W, 1e-6)
}

func TestAtkinsonWeightsSumToThreeQuarters(t *testing.T) {
	buf := newDiffusionBuffer(8, 3)
	err := Vec4{1, 1, 1, 1}
	x := 4
	propagateAtkinson(buf, x, err)

	total := sumVec4(
		buf.get(0, x+1), buf.get(0, x+2),
		buf.get(1, x-1), buf.get(1, x+0), buf.get(1, x+1),
		buf.get(2, x+0),
	)
	assert.InDelta(t, 0.75, total.X, 1e-6)
	assert.InDelta(t, 0.75, total.Y, 1e-6)
	assert.InDelta(t, 0.75, total.Z, 1e-6)
	assert.InDelta(t, 0.75, total.W, 1e-6)
}

func TestDiffusionBufferRotateZeroesNewRow(t *testing.T) {
	buf := newDiffusionBuffer(4, 2)
	buf.add(0, 2, Vec4{1, 2, 3, 4})
	buf.add(1, 2, Vec4{5, 6, 7, 8})

	buf.rotate()

	// Old row 1 becomes new row 0; old row 0 becomes new row 1, zeroed.
	assert.Equal(t, Vec4{5, 6, 7, 8}, buf.get(0, 2))
	assert.Equal(t, Vec4{}, buf.get(1, 2))
}

func TestDiffusionBufferEdgeWritesAreAbsorbed(t *testing.T) {
	buf := newDiffusionBuffer(4, 3)
	// Writes at the extreme left/right edges must not panic and must not
	// alias a real pixel's cell.
	propagateAtkinson(buf, 0, Vec4{1, 1, 1, 1})
	propagateAtkinson(buf, 3, Vec4{1, 1, 1, 1})
}
