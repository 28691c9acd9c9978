package dither

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerOffsetTileSumsToZero(t *testing.T) {
	var sum float32
	for y := uint32(0); y < 2; y++ {
		for x := uint32(0); x < 2; x++ {
			sum += CheckerOffset(x, y)
		}
	}
	assert.Equal(t, float32(0), sum)
}

func TestCheckerOffsetValues(t *testing.T) {
	assert.Equal(t, float32(-0.5), CheckerOffset(0, 0))
	assert.Equal(t, float32(0.5), CheckerOffset(1, 0))
	assert.Equal(t, float32(0.5), CheckerOffset(0, 1))
	assert.Equal(t, float32(-0.5), CheckerOffset(1, 1))
}

func TestBayerOffsetCoversEveryValueExactlyOnce(t *testing.T) {
	for n := uint8(1); n <= 4; n++ {
		size := uint32(1) << n
		total := uint32(size) * uint32(size)

		seen := make(map[float32]int, total)
		var sum float64
		for y := uint32(0); y < size; y++ {
			for x := uint32(0); x < size; x++ {
				v := BayerOffset(x, y, n)
				seen[v]++
				sum += float64(v)
			}
		}

		assert.Len(t, seen, int(total), "n=%d", n)
		for v, count := range seen {
			assert.Equal(t, 1, count, "value %v repeated for n=%d", v, n)
		}

		// Sum of all T = 2^(2n) distinct offsets k/T - 0.5 telescopes to
		// exactly -0.5, independent of T (spec.md §8).
		assert.InDelta(t, -0.5, sum, 1e-6, "n=%d", n)
	}
}

func TestBayerOffsetRange(t *testing.T) {
	for n := uint8(1); n <= 6; n++ {
		size := uint32(1) << n
		for y := uint32(0); y < size; y++ {
			for x := uint32(0); x < size; x++ {
				v := BayerOffset(x, y, n)
				assert.GreaterOrEqual(t, v, float32(-0.5))
				assert.Less(t, v, float32(0.5))
			}
		}
	}
}
