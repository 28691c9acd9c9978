package dither

import (
	"github.com/pkg/errors"
)

// palettizeThreshold is the smallest palette size for which splitting the
// conversion across goroutines pays for the synchronization overhead. Below
// it, the sequential path is both simpler and faster.
const palettizeThreshold = 64

// allocPaletteTable recovers from an allocation panic the same way
// allocDiffusionBuffer does, but a failed palette table is fatal (spec.md
// §7's AllocationFailure(palette-table)): unlike the diffusion buffer, there
// is no degraded mode to fall back to without a palette to search.
func allocPaletteTable(n int) (table []Vec4, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrPaletteAllocation, "n=%d: %v", n, r)
		}
	}()
	table = make([]Vec4, n)
	return table, nil
}

// buildPalette converts N RGBA-byte palette entries into the working-space
// table the engine queries against (spec.md §4.3): divide by 255, apply the
// forward colourspace transform, and (if not premultiplied) multiply RGB by
// alpha. This happens once per job.
//
// Unlike the per-pixel driver loop (which spec.md §4.7/§5 requires to run in
// strict scan order under diffusion), palette entries have no cross-entry
// dependency, so for large palettes the conversion is split across
// runtime.GOMAXPROCS(0) workers the way the teacher's parallel.go splits
// per-pixel image writes across rows.
func buildPalette(rgba []byte, n int, cs Colourspace, premultiplied bool) ([]Vec4, error) {
	if n < 1 || n > 256 {
		return nil, errors.Wrapf(ErrInvalidPalette, "n_palette=%d", n)
	}
	if len(rgba) < n*4 {
		return nil, errors.Wrapf(ErrInvalidPalette, "palette byte slice too short: got %d, need %d", len(rgba), n*4)
	}

	table, err := allocPaletteTable(n)
	if err != nil {
		return nil, err
	}
	convert := func(i int) {
		off := i * 4
		p := Vec4{
			float32(rgba[off+0]) / 255,
			float32(rgba[off+1]) / 255,
			float32(rgba[off+2]) / 255,
			float32(rgba[off+3]) / 255,
		}
		p = ToWorkingSpace(p, cs)
		if !premultiplied {
			p.X *= p.W
			p.Y *= p.W
			p.Z *= p.W
		}
		table[i] = p
	}

	if n < palettizeThreshold {
		for i := 0; i < n; i++ {
			convert(i)
		}
		return table, nil
	}

	parallelRange(0, n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			convert(i)
		}
	})

	return table, nil
}
