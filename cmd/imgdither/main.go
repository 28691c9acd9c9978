// Command imgdither matches each pixel of an input BMP against the palette
// of a second BMP, optionally dithering the result, and writes a palettized
// BMP of the same dimensions. It is a thin collaborator around the dither
// engine: argument parsing, BMP I/O, and pixel-layout conversion between
// BGRA and RGBA live here; the engine itself never touches a file.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	imgdither "github.com/neparij/imgdither"
	"github.com/neparij/imgdither/bmp"
)

var (
	flagPremultiplied bool
	flagColourspace   string
	flagDither        string
	flagCol0IsClear   bool
	flagClearColour   string
)

func main() {
	root := &cobra.Command{
		Use:   "imgdither INPUT.bmp PALETTE.bmp OUTPUT.bmp",
		Short: "Palette-matching image dithering tool",
		Long: "imgdither converts a full-colour BMP into a palette-indexed BMP,\n" +
			"using the colours found in a second, palettized BMP.",
		Args: cobra.ExactArgs(3),
		RunE: run,
	}

	flags := root.Flags()
	flags.BoolVar(&flagPremultiplied, "premultiplied", false,
		"alpha is pre-multiplied (most formats are; 32-bit BMP generally isn't)")
	flags.StringVar(&flagColourspace, "colorspace", imgdither.YCbCrPsy.String(),
		"colourspace for distance computation: srgb, rgb-linear, ycbcr[-psy], ycocg[-psy], cielab, ictcp, oklab, rgb-psy")
	flags.StringVar(&flagDither, "dither", "floyd,0.5",
		"dither mode[,level]: none, floyd, atkinson, checker, ord2, ord4, ord8, ord16, ord32, ord64")
	flags.BoolVar(&flagCol0IsClear, "col0-clear", true,
		"treat palette index 0 as transparent")
	flags.StringVar(&flagClearColour, "clear-color", "none",
		"colour treated as fully transparent regardless of alpha: `none` or a #RRGGBB hex triad")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	cs, err := imgdither.ParseColourspace(flagColourspace)
	if err != nil {
		logger.Warn().Str("value", flagColourspace).Msg("unrecognized colourspace, falling back to default")
		cs = imgdither.YCbCrPsy
	}

	ditherType, level, err := parseDitherMode(flagDither)
	if err != nil {
		logger.Warn().Str("value", flagDither).Msg("unrecognized dither mode, falling back to default")
		ditherType = imgdither.DitherFloydSteinberg
		level = ditherType.DefaultLevel()
	}

	clearColour, hasClearColour, err := parseClearColour(flagClearColour)
	if err != nil {
		return errors.Wrap(err, "parsing --clear-color")
	}

	srcBMP, err := readBMP(args[0])
	if err != nil {
		return errors.Wrap(err, "reading input file")
	}
	palBMP, err := readBMP(args[1])
	if err != nil {
		return errors.Wrap(err, "reading palette image file")
	}
	if palBMP.Palette == nil {
		return errors.New("palette image must be an 8-bit palettized BMP")
	}

	nPalette := palBMP.PaletteCount
	logger.Info().Int("colours", nPalette).Msg("using palette")

	// col0-is-clear reserves index 0 for transparent pixels; forcing its
	// alpha byte to 0 here keeps the palette entry itself honest (an
	// "opaque" colour parked at index 0 in the source BMP shouldn't read as
	// a match for a fully-covered pixel), while imgdither.Config.Col0IsClear
	// below does the actual search exclusion.
	paletteRGBA := bgraPaletteToRGBABytes(palBMP.Palette[:nPalette])
	if flagCol0IsClear && nPalette > 0 {
		paletteRGBA[3] = 0
	}

	sourceRGBA := bmpToRGBABytes(srcBMP)
	if hasClearColour {
		applyClearColour(sourceRGBA, clearColour)
	}

	out := make([]byte, srcBMP.Width*srcBMP.Height)
	cfg := imgdither.Config{
		Width:         srcBMP.Width,
		Height:        srcBMP.Height,
		DitherType:    ditherType,
		DitherLevel:   level,
		Colourspace:   cs,
		Premultiplied: flagPremultiplied,
		NPalette:      nPalette,
		Col0IsClear:   flagCol0IsClear,
		Logger:        &logger,
	}
	if err := imgdither.Dither(out, sourceRGBA, paletteRGBA, cfg); err != nil {
		return errors.Wrap(err, "dithering image")
	}

	outBMP := &bmp.Image{
		Width:        srcBMP.Width,
		Height:       srcBMP.Height,
		Palette:      palBMP.Palette,
		PaletteCount: palBMP.PaletteCount,
		PxIdx:        out,
	}
	if err := writeBMP(args[2], outBMP); err != nil {
		return errors.Wrap(err, "writing output file")
	}

	return nil
}

func readBMP(path string) (*bmp.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bmp.Decode(f)
}

func writeBMP(path string, img *bmp.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bmp.Encode(f, img)
}

// bmpToRGBABytes flattens a decoded BMP (palettized or direct-colour) into
// an RGBA byte raster, the layout the engine consumes.
func bmpToRGBABytes(img *bmp.Image) []byte {
	n := img.Width * img.Height
	out := make([]byte, n*4)
	if img.Palette != nil {
		for i, idx := range img.PxIdx {
			c := img.Palette[idx]
			out[i*4+0], out[i*4+1], out[i*4+2], out[i*4+3] = c.R, c.G, c.B, c.A
		}
		return out
	}
	for i, c := range img.PxBGR {
		out[i*4+0], out[i*4+1], out[i*4+2], out[i*4+3] = c.R, c.G, c.B, c.A
	}
	return out
}

func bgraPaletteToRGBABytes(pal []bmp.BGRA) []byte {
	out := make([]byte, len(pal)*4)
	for i, c := range pal {
		out[i*4+0], out[i*4+1], out[i*4+2], out[i*4+3] = c.R, c.G, c.B, c.A
	}
	return out
}

// applyClearColour forces alpha to 0 on every pixel whose RGB matches col,
// regardless of its existing alpha value (spec.md's supplemented
// "clear colour" feature, recovered from imgdither-cli.c's -clearcol flag).
func applyClearColour(rgba []byte, col [3]byte) {
	for i := 0; i+3 < len(rgba); i += 4 {
		if rgba[i+0] == col[0] && rgba[i+1] == col[1] && rgba[i+2] == col[2] {
			rgba[i+3] = 0
		}
	}
}

func parseClearColour(s string) (col [3]byte, ok bool, err error) {
	if s == "none" {
		return col, false, nil
	}
	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return col, false, errors.Errorf("clear colour must be `none` or #RRGGBB, got %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return col, false, errors.Wrapf(err, "invalid hex triad %q", s)
	}
	col[0] = byte(v >> 16)
	col[1] = byte(v >> 8)
	col[2] = byte(v)
	return col, true, nil
}

// parseDitherMode accepts "<mode>" or "<mode>,<level>"; an explicit level
// overrides the mode's default and is clamped to [0, 2] per spec.md §6.2.
func parseDitherMode(s string) (imgdither.DitherType, float32, error) {
	name, levelStr, hasLevel := strings.Cut(s, ",")
	d, err := imgdither.ParseDitherType(name)
	if err != nil {
		return imgdither.DitherType{}, 0, err
	}

	level := d.DefaultLevel()
	if hasLevel {
		parsed, err := strconv.ParseFloat(levelStr, 32)
		if err != nil {
			return imgdither.DitherType{}, 0, errors.Wrapf(err, "invalid dither level %q", levelStr)
		}
		level = float32(parsed)
	}
	if level < 0 {
		level = 0
	}
	if level > 2 {
		level = 2
	}
	return d, level, nil
}
