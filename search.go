package dither

import "math"

// Nearest returns the index of the palette entry closest to q in squared
// Euclidean distance. Ties break toward the lowest index (strict `<` during
// the scan). Panics if pal is empty, since an empty palette is a caller
// error (spec.md §4.4).
func Nearest(q Vec4, pal []Vec4) int {
	if len(pal) == 0 {
		panic("dither: Nearest: empty palette")
	}
	best := 0
	bestDist := float32(math.Inf(1))
	for i, p := range pal {
		d := q.Dist2(p)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// NearestDithered implements the two-nearest-with-bias search used by the
// threshold (checker/ordered) dithers (spec.md §4.4).
//
// It finds the best and second-best palette matches (the second-best is
// never equal to the best, and is only accepted when dist > distBest &&
// dist < distSecond — ties with the best are never promoted to second,
// preserved exactly per spec.md §9). If there's no second match, or the best
// is more than twice as close (in Euclidean terms — i.e. distBest <
// 0.25*distSecond), dithering between the two candidates can't help and the
// single best is returned unchanged. Otherwise the bias-perturbed query
//
//	q' = q + bias * |pal[best] - pal[second]|
//
// is re-searched with Nearest.
func NearestDithered(q Vec4, bias Vec4, pal []Vec4) int {
	if len(pal) == 0 {
		panic("dither: NearestDithered: empty palette")
	}

	bestA, bestB := 0, 0
	distA := float32(math.Inf(1))
	distB := float32(math.Inf(1))
	for i, p := range pal {
		d := q.Dist2(p)
		if d < distA {
			bestB, distB = bestA, distA
			bestA, distA = i, d
		} else if d > distA && d < distB {
			bestB, distB = i, d
		}
	}

	if math.IsInf(float64(distB), 1) {
		return bestA
	}
	if distA < 0.25*distB {
		// Query is too far from the palette for dithering between two
		// entries to help.
		return bestA
	}

	diff := pal[bestA].Sub(pal[bestB]).Abs()
	qNew := q.Add(diff.Mul(bias))
	return Nearest(qNew, pal)
}

// NearestExcludingZero behaves like Nearest but never returns index 0 unless
// pal has no other entry to offer — the col0-is-clear convention (spec.md's
// supplemented clear-colour feature) reserves index 0 for transparent pixels
// and the opaque driver path must not land on it by proximity alone.
func NearestExcludingZero(q Vec4, pal []Vec4) int {
	if len(pal) <= 1 {
		return 0
	}
	return 1 + Nearest(q, pal[1:])
}

// NearestDitheredExcludingZero is NearestDithered's col0-is-clear counterpart
// for the threshold (checker/ordered) dithers.
func NearestDitheredExcludingZero(q Vec4, bias Vec4, pal []Vec4) int {
	if len(pal) <= 1 {
		return 0
	}
	return 1 + NearestDithered(q, bias, pal[1:])
}
