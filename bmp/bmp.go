// Package bmp reads and writes the narrow slice of the Windows BMP format
// the engine's collaborators need: 8-bit palettized, 24-bit BGR (promoted to
// BGRA on load), and 32-bit BGRA, all stored bottom-up and uncompressed (or
// BI_BITFIELDS, which is accepted but not interpreted beyond its 8-bit use).
//
// This is a direct port of the original tool's Bitmap.c/Bitmap.h: same
// header layout, same row-padding and bottom-up conventions, same "unused
// alpha channel" recovery heuristic for 32-bit files. golang.org/x/image/bmp
// was considered and rejected (see DESIGN.md): its Encode only emits 24-bit
// BGR with no alpha channel, and its Decode doesn't expose the raw
// palettized index plane the dithering engine writes.
package bmp

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// BGRA is one pixel in on-disk channel order.
type BGRA struct {
	B, G, R, A byte
}

// paletteColours is the fixed palette slot count a BMP palette section
// always reserves, regardless of how many entries are actually significant.
const paletteColours = 256

// Image is a decoded or to-be-encoded BMP raster. Exactly one of Palette (in
// which case PxIdx holds Width*Height index bytes) or PxBGR (Width*Height
// direct-colour pixels) is populated.
type Image struct {
	Width, Height int
	Palette       []BGRA
	// PaletteCount is the number of palette entries that are actually
	// significant (ColorsUsed from the info header, or 256 if that field
	// is zero). Palette itself always has exactly 256 entries on decode;
	// callers that care about the "real" palette size should use this.
	PaletteCount int
	PxIdx        []byte
	PxBGR        []BGRA
}

var (
	// ErrNotBMP is returned when the file magic isn't "BM".
	ErrNotBMP = errors.New("bmp: not a BMP file")
	// ErrCompressed is returned for any compression type other than
	// BI_RGB or BI_BITFIELDS.
	ErrCompressed = errors.New("bmp: compressed bitmaps are not supported")
	// ErrBitDepth is returned for bit depths other than 8, 24, or 32.
	ErrBitDepth = errors.New("bmp: unsupported bit depth")
)

type fileHeader struct {
	Type     uint16
	Size     uint32
	Reserved [2]uint16
	Offset   uint32
}

type infoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	ImageSize       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

const bmMagic = 'B' | 'M'<<8

// Decode reads a BMP file from r, which must support Seek: 8-bit files seek
// past the palette to the pixel-data offset recorded in the file header
// (rather than assuming it immediately follows), matching BmpCtx_FromFile.
func Decode(r io.ReadSeeker) (*Image, error) {
	var fh fileHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, errors.Wrap(err, "bmp: reading file header")
	}
	if fh.Type != bmMagic {
		return nil, ErrNotBMP
	}

	var ih infoHeader
	if err := binary.Read(r, binary.LittleEndian, &ih); err != nil {
		return nil, errors.Wrap(err, "bmp: reading info header")
	}
	if ih.Compression != 0 && ih.Compression != 3 {
		return nil, ErrCompressed
	}

	width, height := int(ih.Width), int(ih.Height)
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("bmp: invalid dimensions %dx%d", width, height)
	}
	nPx := width * height

	img := &Image{Width: width, Height: height}

	switch ih.BitCount {
	case 8:
		palette := make([]BGRA, paletteColours)
		if err := binary.Read(r, binary.LittleEndian, &palette); err != nil {
			return nil, errors.Wrap(err, "bmp: reading palette")
		}
		for i := range palette {
			palette[i].A = 255
		}
		img.Palette = palette
		if ih.ColorsUsed != 0 {
			img.PaletteCount = int(ih.ColorsUsed)
		} else {
			img.PaletteCount = paletteColours
		}

		if _, err := r.Seek(int64(fh.Offset), io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "bmp: seeking to pixel data")
		}
		rowPad := (-width) & 3
		px := make([]byte, nPx)
		for y := 0; y < height; y++ {
			dst := px[(height-1-y)*width : (height-y)*width]
			if _, err := io.ReadFull(r, dst); err != nil {
				return nil, errors.Wrap(err, "bmp: reading palettized row")
			}
			if rowPad > 0 {
				if _, err := r.Seek(int64(rowPad), io.SeekCurrent); err != nil {
					return nil, errors.Wrap(err, "bmp: skipping row padding")
				}
			}
		}
		img.PxIdx = px

	case 24:
		if _, err := r.Seek(int64(fh.Offset), io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "bmp: seeking to pixel data")
		}
		rowPad := (-width * 3) & 3
		px := make([]BGRA, nPx)
		rowBuf := make([]byte, width*3)
		for y := 0; y < height; y++ {
			if _, err := io.ReadFull(r, rowBuf); err != nil {
				return nil, errors.Wrap(err, "bmp: reading BGR row")
			}
			row := px[(height-1-y)*width : (height-y)*width]
			for x := 0; x < width; x++ {
				row[x] = BGRA{B: rowBuf[x*3+0], G: rowBuf[x*3+1], R: rowBuf[x*3+2], A: 255}
			}
			if rowPad > 0 {
				if _, err := r.Seek(int64(rowPad), io.SeekCurrent); err != nil {
					return nil, errors.Wrap(err, "bmp: skipping row padding")
				}
			}
		}
		img.PxBGR = px

	case 32:
		if _, err := r.Seek(int64(fh.Offset), io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "bmp: seeking to pixel data")
		}
		px := make([]BGRA, nPx)
		if err := binary.Read(r, binary.LittleEndian, &px); err != nil {
			return nil, errors.Wrap(err, "bmp: reading BGRA pixels")
		}

		// File storage is bottom-up; unflip into top-down row order.
		for y := 0; y < height/2; y++ {
			top, bot := y*width, (height-1-y)*width
			for x := 0; x < width; x++ {
				px[top+x], px[bot+x] = px[bot+x], px[top+x]
			}
		}

		// Many 32-bit BMPs leave the alpha channel unused (all zero);
		// treat that as fully opaque rather than fully transparent.
		hasAlpha := false
		for _, p := range px {
			if p.A != 0 {
				hasAlpha = true
				break
			}
		}
		if !hasAlpha {
			for i := range px {
				px[i].A = 255
			}
		}
		img.PxBGR = px

	default:
		return nil, errors.Wrapf(ErrBitDepth, "bit depth %d", ih.BitCount)
	}

	return img, nil
}

// Encode writes img to w. A palettized image (Palette != nil) is written as
// 8-bit indices; otherwise PxBGR is written as 32-bit BGRA. 24-bit output is
// never produced, matching BmpCtx_ToFile.
func Encode(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return errors.New("bmp: invalid dimensions")
	}
	nPx := img.Width * img.Height

	palettized := img.Palette != nil
	if palettized {
		if len(img.Palette) > paletteColours {
			return errors.Errorf("bmp: palette has %d entries, max %d", len(img.Palette), paletteColours)
		}
		if len(img.PxIdx) != nPx {
			return errors.Errorf("bmp: PxIdx has %d entries, want %d", len(img.PxIdx), nPx)
		}
	} else if len(img.PxBGR) != nPx {
		return errors.Errorf("bmp: PxBGR has %d entries, want %d", len(img.PxBGR), nPx)
	}

	var bytesPerPixel uint32 = 4
	var bitCount uint16 = 32
	if palettized {
		bytesPerPixel = 1
		bitCount = 8
	}
	rowPadded := (uint32(img.Width)*bytesPerPixel + 3) &^ 3
	pixelDataSize := rowPadded * uint32(img.Height)

	var paletteBytes uint32
	if palettized {
		paletteBytes = paletteColours * 4
	}

	fh := fileHeader{
		Type:   bmMagic,
		Size:   14 + 40 + paletteBytes + pixelDataSize,
		Offset: 14 + 40 + paletteBytes,
	}
	ih := infoHeader{
		Size:     40,
		Width:    int32(img.Width),
		Height:   int32(img.Height),
		Planes:   1,
		BitCount: bitCount,
	}
	if palettized && img.PaletteCount > 0 && img.PaletteCount < paletteColours {
		ih.ColorsUsed = uint32(img.PaletteCount)
	}

	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return errors.Wrap(err, "bmp: writing file header")
	}
	if err := binary.Write(w, binary.LittleEndian, &ih); err != nil {
		return errors.Wrap(err, "bmp: writing info header")
	}

	if palettized {
		pal := make([]BGRA, paletteColours)
		copy(pal, img.Palette)
		if err := binary.Write(w, binary.LittleEndian, &pal); err != nil {
			return errors.Wrap(err, "bmp: writing palette")
		}

		pad := make([]byte, rowPadded-uint32(img.Width))
		for y := 0; y < img.Height; y++ {
			row := img.PxIdx[(img.Height-1-y)*img.Width : (img.Height-y)*img.Width]
			if _, err := w.Write(row); err != nil {
				return errors.Wrap(err, "bmp: writing palettized row")
			}
			if len(pad) > 0 {
				if _, err := w.Write(pad); err != nil {
					return errors.Wrap(err, "bmp: writing row padding")
				}
			}
		}
	} else {
		for y := 0; y < img.Height; y++ {
			row := img.PxBGR[(img.Height-1-y)*img.Width : (img.Height-y)*img.Width]
			if err := binary.Write(w, binary.LittleEndian, &row); err != nil {
				return errors.Wrap(err, "bmp: writing BGRA row")
			}
		}
	}

	return nil
}
