// Package rng implements the pseudo-random number streams used during
// transport. The generator is a 63-bit linear congruential generator with
// O(log n) skip-ahead, which lets independent sub-streams be derived from a
// particle id and lets a draw be taken "in the future" of a stream without
// disturbing its cursor. Both properties are load-bearing: they make every
// draw a pure function of (particle id, stream, offset), so results are
// bit-reproducible regardless of how histories are scheduled across workers.
package rng

const (
	mult   uint64 = 6364136223846793005
	add    uint64 = 1442695040888963407
	stride uint64 = 152917
	mask   uint64 = 0x7fffffffffffffff
)

// Stream identifiers for per-purpose sub-streams owned by a particle.
const (
	StreamTracking = iota
	StreamSource
	StreamURRPtable
	NStreams
)

// Prn advances the seed and returns a uniform variate in [0,1). The top 52
// bits of the 63-bit state map onto [0,1) with spacing 2^-52.
func Prn(seed *uint64) float64 {
	*seed = (*seed*mult + add) & mask
	return float64(*seed>>11) * (1.0 / 4503599627370496.0)
}

// FuturePrn returns the variate that the n-th future call to Prn on this
// stream would produce, without advancing the stream.
func FuturePrn(n int64, seed uint64) float64 {
	s := FutureSeed(uint64(n), seed)
	return Prn(&s)
}

// FutureSeed advances a seed by n steps in O(log n) using the standard LCG
// skip-ahead recurrence.
func FutureSeed(n, seed uint64) uint64 {
	// Accumulate multiplier g and increment c such that
	// seed' = g*seed + c after n steps.
	g, c := mult, add
	gNew, cNew := uint64(1), uint64(0)
	for n > 0 {
		if n&1 == 1 {
			gNew = (gNew * g) & mask
			cNew = (cNew*g + c) & mask
		}
		c = ((g + 1) * c) & mask
		g = (g * g) & mask
		n >>= 1
	}
	return (gNew*seed + cNew) & mask
}

// InitSeeds produces the per-stream seeds for one particle history. Each
// stream is offset by a fixed stride so streams never overlap for histories
// with ids smaller than the stride.
func InitSeeds(id int64, master uint64) [NStreams]uint64 {
	var seeds [NStreams]uint64
	for s := 0; s < NStreams; s++ {
		seeds[s] = FutureSeed(uint64(id)*uint64(NStreams)*stride+uint64(s)*stride, master)
	}
	return seeds
}

// Normalize keeps a seed inside the generator's 63-bit state space.
func Normalize(seed uint64) uint64 {
	if seed == 0 {
		return 1
	}
	return seed & mask
}
