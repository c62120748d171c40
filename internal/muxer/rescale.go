package muxer

import "math/bits"

// Rescale converts a timestamp from one timescale to another:
// round(v * outTS / inTS). The multiplication is carried out with a
// 128-bit intermediate so that large source timestamps (hours of
// recording at a fine-grained timescale) never overflow before the
// division narrows the result back down, per spec.md §3.
//
// v must be non-negative; source timescales in this package are always
// positive track clock rates.
func Rescale(v, inTS, outTS int64) int64 {
	if inTS == outTS {
		return v
	}
	if v == 0 {
		return 0
	}

	hi, lo := bits.Mul64(uint64(v), uint64(outTS))

	// Round-to-nearest: add inTS/2 before dividing. This addition can
	// itself carry into hi, so do it with the wide add.
	half := uint64(inTS) / 2
	var carry uint64
	lo, carry = bits.Add64(lo, half, 0)
	hi += carry

	q, _ := bits.Div64(hi, lo, uint64(inTS))
	return int64(q)
}
