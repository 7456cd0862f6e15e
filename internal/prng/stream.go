package prng

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// Stream is the audit-wide pseudo-random stream: a single
// logical source consulted only by the posterior sampler and planner
// within a stage, seeded by the arbitrarily large audit seed. It widens
// the seed via SHA-256 counter mode rather than truncating to a fixed
// 32/64-bit word, so 20+ digit seeds are honored exactly and the
// RNG call sequence is a pure function of (audit_seed, call index).
//
// Stream implements math/rand.Source64 so it plugs directly into
// gonum.org/v1/gonum/stat/distuv samplers (internal/posterior).
type Stream struct {
	seedBytes []byte
	counter   uint64
}

// NewStream returns a Stream seeded by seed.
func NewStream(seed *big.Int) *Stream {
	return &Stream{seedBytes: append([]byte(nil), seed.Bytes()...)}
}

// Seed reseeds the stream and resets its counter, satisfying
// math/rand.Source.
func (s *Stream) Seed(seed int64) {
	s.seedBytes = big.NewInt(seed).Bytes()
	s.counter = 0
}

// Int63 satisfies math/rand.Source.
func (s *Stream) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Uint64 satisfies math/rand.Source64: it derives the next 64-bit word by
// hashing the seed bytes together with a monotone counter, so the stream
// is reproducible and side-effect-free beyond the counter itself.
func (s *Stream) Uint64() uint64 {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], s.counter)
	s.counter++

	h := sha256.New()
	h.Write(s.seedBytes)
	h.Write(counterBytes[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// Float64 returns a pseudo-random float in [0, 1), derived from the next
// stream word.
func (s *Stream) Float64() float64 {
	// 53 bits of mantissa, matching math/rand's Float64 precision.
	return float64(s.Uint64()>>11) / (1 << 53)
}
