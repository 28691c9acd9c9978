package dither

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Colourspace selects the working space in which nearest-colour distance is
// computed. All ten spaces are bijective (within float tolerance) with sRGB;
// see colorspace_test.go for the round-trip property checks.
type Colourspace uint8

const (
	// SRGB performs no transform at all.
	SRGB Colourspace = iota
	// RGBLinear applies the sRGB electro-optical transfer function per channel.
	RGBLinear
	// YCbCr is the BT.709 luma/chroma matrix.
	YCbCr
	// YCoCg is the YCoCg matrix.
	YCoCg
	// CIELab is sRGB -> linear -> XYZ (D65) -> Lab, with L = 1.16*f(Y) - 0.16,
	// so L runs from 0 (black) to 1 (white).
	CIELab
	// ICtCp is sRGB -> linear -> LMS -> (per-channel sqrt) -> ICtCp.
	ICtCp
	// OkLab is sRGB -> linear -> LMS -> (per-channel cube root) -> Oklab.
	OkLab
	// RGBPsy is linear RGB, cube-rooted per channel, weighted (0.8, 1.0, 0.5).
	RGBPsy
	// YCbCrPsy is YCbCr with Y passed through the visual curve and Cb halved.
	YCbCrPsy
	// YCoCgPsy is YCoCg with Y passed through the same visual curve.
	YCoCgPsy
)

// String returns the CLI-facing name of the colourspace (see imgdither-cli.c's
// ColourspaceNameString / ParseColourspace).
func (c Colourspace) String() string {
	switch c {
	case SRGB:
		return "srgb"
	case RGBLinear:
		return "rgb-linear"
	case YCbCr:
		return "ycbcr"
	case YCoCg:
		return "ycocg"
	case CIELab:
		return "cielab"
	case ICtCp:
		return "ictcp"
	case OkLab:
		return "oklab"
	case RGBPsy:
		return "rgb-psy"
	case YCbCrPsy:
		return "ycbcr-psy"
	case YCoCgPsy:
		return "ycocg-psy"
	default:
		return "unknown"
	}
}

// ParseColourspace parses the CLI colourspace names from the table in
// spec.md §6.2.
func ParseColourspace(s string) (Colourspace, error) {
	switch s {
	case "srgb":
		return SRGB, nil
	case "rgb-linear":
		return RGBLinear, nil
	case "ycbcr":
		return YCbCr, nil
	case "ycocg":
		return YCoCg, nil
	case "cielab":
		return CIELab, nil
	case "ictcp":
		return ICtCp, nil
	case "oklab":
		return OkLab, nil
	case "rgb-psy":
		return RGBPsy, nil
	case "ycbcr-psy":
		return YCbCrPsy, nil
	case "ycocg-psy":
		return YCoCgPsy, nil
	default:
		return 0, fmt.Errorf("imgdither: unrecognized colourspace %q", s)
	}
}

// sRGB <-> linear RGB EOTF. Threshold/slope/gamma per spec.md §4.2.
func srgbToLinear(t float32) float32 {
	if t > 0.04045 {
		return math32.Pow((t+0.055)/1.055, 2.4)
	}
	return t / 12.92
}

func linearToSRGB(t float32) float32 {
	if t > 0.0031308 {
		return 1.055*math32.Pow(t, 1.0/2.4) - 0.055
	}
	return 12.92 * t
}

// sRGB <-> visual RGB, the cube-root-like response used by the Psy spaces.
func srgbToVisual(t float32) float32 {
	if t > 0 {
		return math32.Pow(t, 2.2/3.0)
	}
	return 0
}

func visualToSRGB(t float32) float32 {
	if t > 0 {
		return math32.Pow(t, 3.0/2.2)
	}
	return 0
}

func rgbToXYZ(x Vec4) Vec4 {
	r, g, b := srgbToLinear(x.X), srgbToLinear(x.Y), srgbToLinear(x.Z)
	return Vec4{
		0.412453*r + 0.357580*g + 0.180423*b,
		0.212671*r + 0.715160*g + 0.072169*b,
		0.019334*r + 0.119193*g + 0.950227*b,
		x.W,
	}
}

func xyzToRGB(x Vec4) Vec4 {
	return Vec4{
		linearToSRGB(3.24048137e+0*x.X - 1.53715153e+0*x.Y - 4.98536343e-1*x.Z),
		linearToSRGB(-9.69254927e-1*x.X + 1.87598996e+0*x.Y + 4.15559336e-2*x.Z),
		linearToSRGB(5.56466383e-2*x.X - 2.04041335e-1*x.Y + 1.05731104e+0*x.Z),
		x.W,
	}
}

// labF/labFInv are the canonical delta=6/29 piecewise cube-root pair.
func labF(t float32) float32 {
	const a = 0.008856 // delta^3
	const b = 7.787037 // 1/3 * delta^-2
	if t > a {
		return math32.Cbrt(t)
	}
	return float32(4.0/29.0) + b*t
}

func labFInv(t float32) float32 {
	const a = 0.128419 // 3*delta^2
	if t > float32(6.0/29.0) {
		return t * t * t
	}
	return (t - float32(4.0/29.0)) * a
}

func xyzToLab(x Vec4) Vec4 {
	xz := labF(x.X / 0.950489)
	yz := labF(x.Y)
	zz := labF(x.Z / 1.08884)
	return Vec4{
		1.16*yz - 0.16,
		5.00 * (xz - yz),
		2.00 * (yz - zz),
		x.W,
	}
}

func labToXYZ(x Vec4) Vec4 {
	lz := (x.X + 0.16) / 1.16
	az := x.Y / 5.0
	bz := x.Z / 2.0
	return Vec4{
		0.950489 * labFInv(lz+az),
		labFInv(lz),
		1.08884 * labFInv(lz-bz),
		x.W,
	}
}

func rgbToLMS(x Vec4) Vec4 {
	r, g, b := srgbToLinear(x.X), srgbToLinear(x.Y), srgbToLinear(x.Z)
	return Vec4{
		0.412221*r + 0.536333*g + 0.051446*b,
		0.211903*r + 0.680700*g + 0.107397*b,
		0.088302*r + 0.281719*g + 0.629979*b,
		x.W,
	}
}

func lmsToRGB(x Vec4) Vec4 {
	return Vec4{
		linearToSRGB(4.07674369e+0*x.X - 3.30771407e+0*x.Y + 2.30970251e-1*x.Z),
		linearToSRGB(-1.26843510e+0*x.X + 2.60975421e+0*x.Y - 3.41319079e-1*x.Z),
		linearToSRGB(-4.19436030e-3*x.X - 7.03419579e-1*x.Y + 1.70761392e+0*x.Z),
		x.W,
	}
}

// lmsToICtCp uses the per-channel sqrt in place of the full HLG OETF, per
// DitherImage-Colourspace.h's ConvertLMStoICtCp.
func lmsToICtCp(x Vec4) Vec4 {
	l := math32.Sqrt(math32.Max(0, x.X))
	m := math32.Sqrt(math32.Max(0, x.Y))
	s := math32.Sqrt(math32.Max(0, x.Z))
	return Vec4{
		0.500000*l + 0.500000*m,
		0.885010*l - 1.822510*m + 0.937500*s,
		2.319336*l - 2.249023*m - 0.070313*s,
		x.W,
	}
}

func ictcpToLMS(x Vec4) Vec4 {
	lp := x.X + 1.57186884e-2*x.Y + 2.09581024e-1*x.Z
	mp := x.X - 1.57186884e-2*x.Y - 2.09581024e-1*x.Z
	sp := x.X + 1.02127076e+0*x.Y - 6.05274471e-1*x.Z
	return Vec4{lp * lp, mp * mp, sp * sp, x.W}
}

func lmsToOklab(x Vec4) Vec4 {
	l := math32.Cbrt(x.X)
	m := math32.Cbrt(x.Y)
	s := math32.Cbrt(x.Z)
	return Vec4{
		0.210454*l + 0.793618*m - 0.004072*s,
		1.977998*l - 2.428592*m + 0.450594*s,
		0.025904*l + 0.782772*m - 0.808676*s,
		x.W,
	}
}

func oklabToLMS(x Vec4) Vec4 {
	lp := x.X + 3.96338021e-1*x.Y + 2.15804027e-1*x.Z
	mp := x.X - 1.05561239e-1*x.Y - 6.38540791e-2*x.Z
	sp := x.X - 8.94840979e-2*x.Y - 1.29148508e+0*x.Z
	return Vec4{lp * lp * lp, mp * mp * mp, sp * sp * sp, x.W}
}

// ToWorkingSpace converts a straight-alpha sRGB pixel (each channel nominally
// in [0, 1]) into the given working space. Alpha passes through unchanged.
func ToWorkingSpace(x Vec4, cs Colourspace) Vec4 {
	in := x
	switch cs {
	case RGBLinear, RGBPsy:
		in.X, in.Y, in.Z = srgbToLinear(in.X), srgbToLinear(in.Y), srgbToLinear(in.Z)
	}

	var out Vec4
	switch cs {
	case SRGB, RGBLinear, RGBPsy:
		out = in
	case YCbCr, YCbCrPsy:
		out = Vec4{
			0.2126*in.X + 0.71520*in.Y + 0.0722*in.Z,
			-0.1146*in.X - 0.38540*in.Y + 0.5000*in.Z,
			0.5000*in.X - 0.45420*in.Y - 0.0458*in.Z,
			in.W,
		}
	case YCoCg, YCoCgPsy:
		out = Vec4{
			0.25*in.X + 0.5*in.Y + 0.25*in.Z,
			0.50*in.X - 0.50*in.Z,
			-0.25*in.X + 0.5*in.Y - 0.25*in.Z,
			in.W,
		}
	case CIELab:
		out = xyzToLab(rgbToXYZ(in))
	case ICtCp:
		out = lmsToICtCp(rgbToLMS(in))
	case OkLab:
		out = lmsToOklab(rgbToLMS(in))
	default:
		out = in
	}

	switch cs {
	case RGBPsy:
		// In terms of importance, G > R > B. Cube-rooted similarly to Lab.
		out.X = math32.Cbrt(out.X) * 0.8
		out.Y = math32.Cbrt(out.Y) * 1.0
		out.Z = math32.Cbrt(out.Z) * 0.5
	case YCbCrPsy:
		// Curving luma reduces banding; Cb is weighted down (worse
		// blue-yellow discrimination than Y/Cr).
		out.X = srgbToVisual(out.X)
		out.Y *= 0.5
	case YCoCgPsy:
		// YCoCg's chroma opponents don't admit the same weighting trick.
		out.X = srgbToVisual(out.X)
	}
	return out
}

// FromWorkingSpace inverts ToWorkingSpace. Exists for testing the round-trip
// laws (spec.md §8) and to support other consumers; the dithering engine
// itself only ever needs the forward direction.
func FromWorkingSpace(x Vec4, cs Colourspace) Vec4 {
	in := x
	switch cs {
	case RGBPsy:
		in.X = math32.Pow(in.X/0.8, 3.0)
		in.Y = math32.Pow(in.Y/1.0, 3.0)
		in.Z = math32.Pow(in.Z/0.5, 3.0)
	case YCbCrPsy:
		in.X = visualToSRGB(in.X)
		in.Y /= 0.5
	case YCoCgPsy:
		in.X = visualToSRGB(in.X)
	}

	var out Vec4
	switch cs {
	case SRGB, RGBLinear, RGBPsy:
		out = in
	case YCbCr, YCbCrPsy:
		out = Vec4{
			in.X - 1.51498563e-4*in.Y + 1.57476529e+0*in.Z,
			in.X - 1.87280215e-1*in.Y - 4.68124612e-1*in.Z,
			in.X + 1.85560969e+0*in.Y + 1.05765138e-4*in.Z,
			in.W,
		}
	case YCoCg, YCoCgPsy:
		out = Vec4{
			in.X + in.Y - in.Z,
			in.X + in.Z,
			in.X - in.Y - in.Z,
			in.W,
		}
	case CIELab:
		out = xyzToRGB(labToXYZ(in))
	case ICtCp:
		out = lmsToRGB(ictcpToLMS(in))
	case OkLab:
		out = lmsToRGB(oklabToLMS(in))
	default:
		out = in
	}

	switch cs {
	case RGBLinear, RGBPsy:
		out.X, out.Y, out.Z = linearToSRGB(out.X), linearToSRGB(out.Y), linearToSRGB(out.Z)
	}
	return out
}
