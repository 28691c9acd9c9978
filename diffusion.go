package dither

// diffusionSlack is the number of out-of-bounds pixel slots kept on each side
// of every row buffer, so propagateFloydSteinberg/propagateAtkinson never
// need an edge-of-row branch (spec.md §4.6/§9's "Per-job scratch" note). Two
// slots cover every offset either kernel ever writes, from -1 to +2.
const diffusionSlack = 2

// diffusionBuffer is the sliding error-diffusion buffer of spec.md's Data
// Model: a small ring of row-sized Vec4 slices, rotated at the end of every
// scan line. Row 0 holds the contributions destined for the row currently
// being processed; row 1 the next row down; row 2 (Atkinson only) the row
// after that. All writes accumulate onto existing contents.
type diffusionBuffer struct {
	width int
	rows  [][]Vec4
}

// newDiffusionBuffer allocates a ring with the given number of rows (2 for
// Floyd-Steinberg, 3 for Atkinson), each initialised to zero.
func newDiffusionBuffer(width, nRows int) *diffusionBuffer {
	rows := make([][]Vec4, nRows)
	for i := range rows {
		rows[i] = make([]Vec4, width+2*diffusionSlack)
	}
	return &diffusionBuffer{width: width, rows: rows}
}

func (b *diffusionBuffer) get(row, x int) Vec4 {
	return b.rows[row][x+diffusionSlack]
}

func (b *diffusionBuffer) add(row, x int, v Vec4) {
	i := x + diffusionSlack
	b.rows[row][i] = b.rows[row][i].Add(v)
}

// rotate advances to the next scan line: row 0 (now fully consumed) becomes
// the new farthest future row and is zeroed; every other row shifts down by
// one index. Called once at the start of each row (spec.md §4.7 step 1).
func (b *diffusionBuffer) rotate() {
	consumed := b.rows[0]
	copy(b.rows, b.rows[1:])
	for i := range consumed {
		consumed[i] = Vec4{}
	}
	b.rows[len(b.rows)-1] = consumed
}

// propagateFloydSteinberg distributes err (source - chosen, in working
// space) to the forward/downward neighbours with the classic 7/3/5/1 over 16
// weights (spec.md §4.6). Weights sum to 16/16 = 1.
func propagateFloydSteinberg(buf *diffusionBuffer, x int, err Vec4) {
	buf.add(0, x+1, err.MulScalar(7.0/16))
	buf.add(1, x-1, err.MulScalar(3.0/16))
	buf.add(1, x+0, err.MulScalar(5.0/16))
	buf.add(1, x+1, err.MulScalar(1.0/16))
}

// propagateAtkinson distributes err to six neighbours at a uniform 1/8 each
// (spec.md §4.6). By design the weights sum to only 6/8 = 0.75: Atkinson
// diffuses just three quarters of the quantisation error.
func propagateAtkinson(buf *diffusionBuffer, x int, err Vec4) {
	eighth := err.MulScalar(1.0 / 8)
	buf.add(0, x+1, eighth)
	buf.add(0, x+2, eighth)
	buf.add(1, x-1, eighth)
	buf.add(1, x+0, eighth)
	buf.add(1, x+1, eighth)
	buf.add(2, x+0, eighth)
}
