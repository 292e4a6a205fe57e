package rand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamplerIsDeterministic(t *testing.T) {
	a := NewSampler([]byte("seed"))
	b := NewSampler([]byte("seed"))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}

	c := NewSampler([]byte("other seed"))
	require.NotEqual(t, NewSampler([]byte("seed")).Bytes(32), c.Bytes(32))
}

func TestSamplerVectorKeepsUnusedBitsZero(t *testing.T) {
	s := NewSampler([]byte("vectors"))
	for i := 0; i < 1000; i++ {
		v := s.Vector(30, 2)
		require.Zero(t, v>>60)
	}
	require.NotPanics(t, func() { s.Vector(64, 1) })
}

func TestSHAKE256MatchesSampler(t *testing.T) {
	require.Equal(t, SHAKE256(48, []byte("se"), []byte("ed")), NewSampler([]byte("seed")).Bytes(48))
}

func TestUint64ReadsLittleEndianBytes(t *testing.T) {
	b := NewSampler([]byte("words")).Bytes(16)
	s := NewSampler([]byte("words"))
	require.Equal(t, uint64(b[0])|uint64(b[7])<<56, s.Uint64()&(0xff|0xff<<56))
	require.Equal(t, uint64(b[8]), s.Uint64()&0xff)
}
