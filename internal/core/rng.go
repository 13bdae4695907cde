package core

import "time"

// Source is the randomness used by every generation stage. Passing the same
// seeded Source through layout and assignment makes a run reproducible.
type Source interface {
	// Float returns a random float64 in [0, 1).
	Float() float64
	// Intn returns a random int in [0, n). It returns 0 when n <= 0.
	Intn(n int) int
}

// SimpleRNG is a deterministic pseudo-random number generator (xorshift64).
type SimpleRNG struct {
	state uint64
}

// NewRNG creates a new RNG with the given seed. The seed is scrambled with
// splitmix64 so neighbouring seeds start from unrelated states.
func NewRNG(seed uint64) *SimpleRNG {
	state := splitmix64(seed)
	if state == 0 {
		state = 88172645463325252 // Default seed
	}
	return &SimpleRNG{state: state}
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// SeedFromTime returns a non-zero seed derived from the wall clock.
func SeedFromTime() uint64 {
	s := uint64(time.Now().UnixNano())
	if s == 0 {
		s = 1
	}
	return s
}

// Next returns the next random uint64.
func (r *SimpleRNG) Next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}

// Float returns a random float64 in [0, 1).
func (r *SimpleRNG) Float() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// Intn returns a random int in [0, n).
func (r *SimpleRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Int63 returns a non-negative random int64, used to seed derived generators.
func (r *SimpleRNG) Int63() int64 {
	return int64(r.Next() >> 1)
}

// Centered returns a value in [-span/2, span/2).
func Centered(rng Source, span float64) float64 {
	return (rng.Float() - 0.5) * span
}
