package rand

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Sampler is a deterministic source of words expanded from a seed with SHAKE256
type Sampler struct {
	xof sha3.ShakeHash
}

func NewSampler(seed []byte) *Sampler {
	h := sha3.NewShake256()
	_, _ = h.Write(seed)
	return &Sampler{xof: h}
}

func (s *Sampler) Bytes(length int) []byte {
	value := make([]byte, length)
	_, _ = s.xof.Read(value)
	return value
}

func (s *Sampler) Uint64() uint64 {
	return binary.LittleEndian.Uint64(s.Bytes(8))
}

// Intn returns a value in [0, n)
func (s *Sampler) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}
	return int(s.Uint64() % uint64(n))
}

// Vector returns a random word whose bits above symbols*bitsPerSymbol are zero
func (s *Sampler) Vector(symbols, bitsPerSymbol int) uint64 {
	used := symbols * bitsPerSymbol
	v := s.Uint64()
	if used >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(used)) - 1)
}

// SHAKE256 hashes the concatenation of inputs to outputLength bytes
func SHAKE256(outputLength int, inputs ...[]byte) []byte {
	output := make([]byte, outputLength)

	h := sha3.NewShake256()
	for _, input := range inputs {
		_, _ = h.Write(input[:])
	}
	_, _ = h.Read(output[:])

	return output
}
