package dither

// Vec4 is a 4-channel working-space pixel: three colour channels plus alpha,
// stored as IEEE-754 single-precision floats. All arithmetic is componentwise
// and allocation-free.
//
// Nominal range depends on the working space in use (see colorspace.go); the
// engine never clamps intermediate values.
type Vec4 struct {
	X, Y, Z, W float32
}

// Add returns a+b, componentwise.
func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

// Sub returns a-b, componentwise.
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

// Mul returns a*b, componentwise.
func (a Vec4) Mul(b Vec4) Vec4 {
	return Vec4{a.X * b.X, a.Y * b.Y, a.Z * b.Z, a.W * b.W}
}

// MulScalar returns a*s, broadcasting s to every channel.
func (a Vec4) MulScalar(s float32) Vec4 {
	return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s}
}

// Abs returns the componentwise absolute value of a.
func (a Vec4) Abs() Vec4 {
	return Vec4{absf32(a.X), absf32(a.Y), absf32(a.Z), absf32(a.W)}
}

// Dist2 returns the squared Euclidean distance between a and b: the sum of
// componentwise squared differences. The square root is never taken because
// the search in search.go only ever needs a monotone distance for comparison.
func (a Vec4) Dist2(b Vec4) float32 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z + d.W*d.W
}

// Broadcast4 returns a Vec4 with all four channels set to s.
func Broadcast4(s float32) Vec4 {
	return Vec4{s, s, s, s}
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
