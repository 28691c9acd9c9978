package dither

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allColourspaces = []Colourspace{
	SRGB, RGBLinear, YCbCr, YCoCg, CIELab, ICtCp, OkLab, RGBPsy, YCbCrPsy, YCoCgPsy,
}

// sampleBytes is a representative, non-exhaustive spread of byte triples:
// corners, primaries, greys, and a few off-axis values. This exercises the
// round-trip law of spec.md §8 without a full 256^3 grid.
var sampleBytes = [][3]byte{
	{0, 0, 0}, {255, 255, 255}, {128, 128, 128},
	{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
	{10, 20, 30}, {200, 100, 50}, {64, 64, 64},
	{1, 254, 17}, {230, 5, 120},
}

func TestColourspaceRoundTrip(t *testing.T) {
	for _, cs := range allColourspaces {
		cs := cs
		t.Run(cs.String(), func(t *testing.T) {
			for _, rgb := range sampleBytes {
				in := Vec4{
					float32(rgb[0]) / 255,
					float32(rgb[1]) / 255,
					float32(rgb[2]) / 255,
					1,
				}
				working := ToWorkingSpace(in, cs)
				back := FromWorkingSpace(working, cs)

				msg := fmt.Sprintf("%s round-trip of %v", cs, rgb)
				assert.InDelta(t, in.X, back.X, 1e-3, msg)
				assert.InDelta(t, in.Y, back.Y, 1e-3, msg)
				assert.InDelta(t, in.Z, back.Z, 1e-3, msg)
				assert.InDelta(t, in.W, back.W, 1e-3, msg)
			}
		})
	}
}

func TestColourspaceAlphaPreserved(t *testing.T) {
	for _, cs := range allColourspaces {
		for _, alpha := range []float32{0, 0.25, 0.5, 0.75, 1} {
			in := Vec4{0.3, 0.6, 0.9, alpha}
			working := ToWorkingSpace(in, cs)
			assert.Equal(t, alpha, working.W)
			back := FromWorkingSpace(working, cs)
			assert.Equal(t, alpha, back.W)
		}
	}
}

func TestColourspaceNameRoundTrip(t *testing.T) {
	for _, cs := range allColourspaces {
		parsed, err := ParseColourspace(cs.String())
		require.NoError(t, err)
		assert.Equal(t, cs, parsed)
	}
}

func TestParseColourspaceRejectsUnknown(t *testing.T) {
	_, err := ParseColourspace("not-a-colourspace")
	assert.Error(t, err)
}
