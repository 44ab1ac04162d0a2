package dist

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync/atomic"
)

// forkCount makes every forked stream seed unique process-wide, so two
// generators forked from the same parent can never replay each other.
var forkCount atomic.Uint64

// Stream is a self-contained pseudo-random stream owned by exactly one
// generator instance. Streams are never shared: each generator constructs
// its own, and concurrently running simulations therefore never contend on
// or perturb another instance's sequence.
//
// Thread-safety: NOT thread-safe. A stream must be used from one goroutine.
type Stream struct {
	seed int64
	rng  *rand.Rand
}

// NewStream creates a stream seeded with the given value.
func NewStream(seed int64) *Stream {
	return &Stream{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// DeriveSeed maps a master seed and a label to an isolated seed.
// Subsystems that share one configured seed (arrival generator, service
// generator, random discipline) derive distinct streams through distinct
// labels, so the same --seed value never aliases two sequences.
func DeriveSeed(master int64, label string) int64 {
	return master ^ fnv1a64(label)
}

// Fork returns a new independent stream. The forked seed mixes the parent
// seed with a process-wide counter; the fork starts a fresh sequence and
// cannot reproduce the parent's future draws.
func (s *Stream) Fork() *Stream {
	n := forkCount.Add(1)
	return NewStream(s.seed ^ fnv1a64(fmt.Sprintf("fork_%d", n)))
}

// Seed returns the seed this stream was created with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// ExpFloat64 returns an exponential draw with mean 1.
func (s *Stream) ExpFloat64() float64 {
	return s.rng.ExpFloat64()
}

// Intn returns a uniform draw in [0, n).
func (s *Stream) Intn(n int) int {
	return s.rng.Intn(n)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
