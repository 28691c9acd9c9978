package dither

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec4Arithmetic(t *testing.T) {
	a := Vec4{1, 2, 3, 4}
	b := Vec4{0.5, -1, 2, 1}

	assert.Equal(t, Vec4{1.5, 1, 5, 5}, a.Add(b))
	assert.Equal(t, Vec4{0.5, 3, 1, 3}, a.Sub(b))
	assert.Equal(t, Vec4{0.5, -2, 6, 4}, a.Mul(b))
	assert.Equal(t, Vec4{2, 4, 6, 8}, a.MulScalar(2))
	assert.Equal(t, Vec4{0.5, 1, 2, 1}, b.Abs())
}

func TestVec4Dist2(t *testing.T) {
	a := Vec4{0, 0, 0, 0}
	b := Vec4{3, 4, 0, 0}
	assert.Equal(t, float32(25), a.Dist2(b))
	assert.Equal(t, float32(0), a.Dist2(a))
}

func TestBroadcast4(t *testing.T) {
	assert.Equal(t, Vec4{2.5, 2.5, 2.5, 2.5}, Broadcast4(2.5))
}
