package rng

import "testing"

func TestPrnRangeAndDeterminism(t *testing.T) {
	seed := uint64(1)
	max := 0.0
	for i := 0; i < 10000; i++ {
		v := Prn(&seed)
		if v < 0.0 || v >= 1.0 {
			t.Fatalf("draw %d out of [0,1): %g", i, v)
		}
		if v > max {
			max = v
		}
	}
	// Draws must cover the whole unit interval, not a scaled-down prefix
	// of it.
	if max <= 0.5 {
		t.Fatalf("max of 10000 draws = %g, generator never exceeds 0.5", max)
	}

	a, b := uint64(99), uint64(99)
	for i := 0; i < 100; i++ {
		if Prn(&a) != Prn(&b) {
			t.Fatalf("identical seeds diverged at draw %d", i)
		}
	}
}

func TestFutureSeedMatchesStepping(t *testing.T) {
	for _, n := range []uint64{0, 1, 2, 3, 17, 152917, 1 << 20} {
		seed := uint64(0x123456789)
		stepped := seed
		for i := uint64(0); i < n; i++ {
			Prn(&stepped)
		}
		if got := FutureSeed(n, seed); got != stepped {
			t.Fatalf("FutureSeed(%d) = %d, stepping gives %d", n, got, stepped)
		}
	}
}

func TestFuturePrn(t *testing.T) {
	seed := uint64(42)

	// The n-th future draw equals the value obtained after advancing n times.
	advanced := seed
	for i := 0; i < 5; i++ {
		Prn(&advanced)
	}
	want := Prn(&advanced)

	if got := FuturePrn(5, seed); got != want {
		t.Fatalf("FuturePrn(5) = %g, want %g", got, want)
	}
	if seed != 42 {
		t.Fatalf("FuturePrn advanced the caller's seed to %d", seed)
	}
}

func TestInitSeedsDistinct(t *testing.T) {
	seen := make(map[uint64]bool)
	for id := int64(0); id < 50; id++ {
		seeds := InitSeeds(id, 1)
		for s := 0; s < NStreams; s++ {
			if seen[seeds[s]] {
				t.Fatalf("seed collision for history %d stream %d", id, s)
			}
			seen[seeds[s]] = true
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(0) == 0 {
		t.Fatal("zero seed must be remapped")
	}
	if s := Normalize(1<<63 | 5); s != 5 {
		t.Fatalf("Normalize dropped the high bit wrong: %d", s)
	}
}
