package dither

import "github.com/pkg/errors"

// Error kinds per spec.md §7. Callers should compare with errors.Is; messages
// returned from the engine wrap these sentinels with context via
// github.com/pkg/errors, so the sentinel identity survives errors.Is/errors.As
// even though the printed message carries extra detail.
var (
	// ErrInvalidDimensions is returned when Width or Height is zero.
	ErrInvalidDimensions = errors.New("imgdither: invalid dimensions")

	// ErrInvalidPalette is returned when n_palette is not in [1, 256].
	ErrInvalidPalette = errors.New("imgdither: invalid palette size")

	// ErrPaletteAllocation is a fatal error: the palette table could not be
	// built, and the call returns without touching the output.
	ErrPaletteAllocation = errors.New("imgdither: palette allocation failed")
)
