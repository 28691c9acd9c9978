package bmp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalettizedRoundTrip(t *testing.T) {
	img := &Image{
		Width:  3,
		Height: 2,
		Palette: []BGRA{
			{B: 10, G: 20, R: 30, A: 255},
			{B: 40, G: 50, R: 60, A: 255},
		},
		PaletteCount: 2,
		PxIdx:        []byte{0, 1, 0, 1, 0, 1},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, img.Width, got.Width)
	assert.Equal(t, img.Height, got.Height)
	assert.Equal(t, img.PxIdx, got.PxIdx)
	assert.Equal(t, img.Palette[0], got.Palette[0])
	assert.Equal(t, img.Palette[1], got.Palette[1])
	assert.Equal(t, 2, got.PaletteCount)
}

func TestDirectColourRoundTrip(t *testing.T) {
	img := &Image{
		Width:  2,
		Height: 2,
		PxBGR: []BGRA{
			{B: 1, G: 2, R: 3, A: 255},
			{B: 4, G: 5, R: 6, A: 128},
			{B: 7, G: 8, R: 9, A: 0},
			{B: 10, G: 11, R: 12, A: 64},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, img.PxBGR, got.PxBGR)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrNotBMP)
}

func Test32BitUnusedAlphaTreatedOpaque(t *testing.T) {
	img := &Image{
		Width:  1,
		Height: 1,
		PxBGR:  []BGRA{{B: 9, G: 9, R: 9, A: 0}},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 255, got.PxBGR[0].A)
}

func TestEncodeRejectsMismatchedPixelCount(t *testing.T) {
	img := &Image{Width: 2, Height: 2, PxBGR: []BGRA{{}}}
	var buf bytes.Buffer
	err := Encode(&buf, img)
	assert.Error(t, err)
}
