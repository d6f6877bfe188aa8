package engine

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// FloatToIndex maps a float in [0, 1) onto a segment index in [0, n).
func FloatToIndex(f float64, n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(f * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// FairPicker derives the winner from the first HMAC float of a seed pair and nonce.
type FairPicker struct {
	Seeds Seeds
	Nonce uint64
}

// Pick implements spin.Source.
func (p FairPicker) Pick(n int) int {
	return FloatToIndex(Floats(p.Seeds.Server, p.Seeds.Client, p.Nonce, 0, 1)[0], n)
}

// Proof replays the pick and returns the published proof for it.
func (p FairPicker) Proof(n int) Proof {
	return Verify(p.Seeds, p.Nonce, n)
}

// Verify recomputes a fair pick from revealed seeds.
func Verify(seeds Seeds, nonce uint64, n int) Proof {
	f := Floats(seeds.Server, seeds.Client, nonce, 0, 1)[0]
	return Proof{
		ServerSeedHash: HashServerSeed(seeds.Server),
		ClientSeed:     seeds.Client,
		Nonce:          nonce,
		Float:          f,
		Segments:       n,
		Index:          FloatToIndex(f, n),
	}
}

// CryptoPicker draws from crypto/rand. It is the default for unpinned server spins.
type CryptoPicker struct{}

// Pick implements spin.Source.
func (CryptoPicker) Pick(n int) int {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.IntN(n)
	}
	// 53 bits -> [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return FloatToIndex(float64(u)/(1<<53), n)
}

// SeededPicker is a reproducible PCG-backed source for simulations and tests.
type SeededPicker struct {
	r *rand.Rand
}

// NewSeededPicker creates a picker whose sequence is fixed by seed.
func NewSeededPicker(seed uint64) *SeededPicker {
	return &SeededPicker{r: rand.New(rand.NewPCG(seed, 0))}
}

// Pick implements spin.Source.
func (s *SeededPicker) Pick(n int) int {
	return s.r.IntN(n)
}
