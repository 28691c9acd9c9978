package dither

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestIsArgMin(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0.4, 0.4, 0.4, 1},
		{1, 1, 1, 1},
	}
	q := Vec4{0.5, 0.5, 0.5, 1}
	got := Nearest(q, pal)

	best := q.Dist2(pal[got])
	for i, p := range pal {
		if i == got {
			continue
		}
		assert.False(t, q.Dist2(p) < best, "index %d is strictly closer than chosen %d", i, got)
	}
}

func TestNearestExactMatchReturnsLeastIndex(t *testing.T) {
	pal := []Vec4{
		{0.2, 0.2, 0.2, 1},
		{0.5, 0.5, 0.5, 1},
		{0.5, 0.5, 0.5, 1}, // duplicate, exact match, higher index
	}
	q := Vec4{0.5, 0.5, 0.5, 1}
	assert.Equal(t, 1, Nearest(q, pal))
}

func TestNearestPanicsOnEmptyPalette(t *testing.T) {
	assert.Panics(t, func() { Nearest(Vec4{}, nil) })
	assert.Panics(t, func() { NearestDithered(Vec4{}, Vec4{}, nil) })
}

func TestNearestDitheredZeroBiasDegeneratesToNearest(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1},
		{0.3, 0.3, 0.3, 1},
		{0.9, 0.9, 0.9, 1},
	}
	q := Vec4{0.35, 0.35, 0.35, 1}

	want := Nearest(q, pal)
	got := NearestDithered(q, Vec4{}, pal)
	require.Equal(t, want, got)
}

func TestNearestDitheredBiasCanSelectSecond(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1},
		{1, 1, 1, 1},
	}
	q := Vec4{0.45, 0.45, 0.45, 1}

	// Best is index 0, second is index 1; a strong positive bias should
	// push the requeried point towards the second entry.
	got := NearestDithered(q, Vec4{1, 1, 1, 1}, pal)
	assert.Equal(t, 1, got)
}

func TestNearestExcludingZeroNeverReturnsZero(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1}, // exact match, but reserved
		{0.01, 0.01, 0.01, 1},
		{0.9, 0.9, 0.9, 1},
	}
	q := Vec4{0, 0, 0, 1}
	assert.Equal(t, 1, NearestExcludingZero(q, pal))
}

func TestNearestExcludingZeroFallsBackWithSingleEntryPalette(t *testing.T) {
	pal := []Vec4{{0, 0, 0, 1}}
	assert.Equal(t, 0, NearestExcludingZero(Vec4{}, pal))
}

func TestNearestDitheredExcludingZeroNeverReturnsZero(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1},
		{1, 1, 1, 1},
		{0.5, 0.5, 0.5, 1},
	}
	q := Vec4{0.01, 0.01, 0.01, 1}
	for i := 0; i < 50; i++ {
		got := NearestDitheredExcludingZero(q, Vec4{1, 1, 1, 1}, pal)
		assert.NotEqual(t, 0, got)
	}
}

func TestNearestDitheredFarQueryKeepsSingleBest(t *testing.T) {
	pal := []Vec4{
		{0, 0, 0, 1},
		{0.01, 0.01, 0.01, 1},
		{10, 10, 10, 1},
	}
	q := Vec4{0, 0, 0, 1}
	got := NearestDithered(q, Vec4{100, 100, 100, 1}, pal)
	assert.Equal(t, 0, got)
}
