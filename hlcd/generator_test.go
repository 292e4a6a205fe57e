package hlcd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aljumaily/hlcd-search/field"
)

func mustParams(t *testing.T, n, k, d, base int, opts ...ParameterOption) CodeParameters {
	t.Helper()
	p, err := NewCodeParameters(n, k, d, base, opts...)
	require.NoError(t, err)
	return p
}

func drain(g *VectorGenerator) []field.Vector {
	var values []field.Vector
	for {
		v, ok := g.NextSubVector()
		if !ok {
			return values
		}
		values = append(values, v)
	}
}

func TestRestrictedGeneratorSkipsOmegaLeaders(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 5, 2, 3, 4))
	require.Equal(t, NotStarted, g.State())

	expected := []field.Vector{5, 6, 7}
	for v := field.Vector(17); v < 32; v++ {
		expected = append(expected, v)
	}
	require.Equal(t, expected, drain(g))
	require.Equal(t, Exhausted, g.State())
	require.False(t, g.Valid())

	_, ok := g.NextSubVector()
	require.False(t, ok)
}

func TestUnrestrictedGeneratorVisitsEveryHeavyValue(t *testing.T) {
	params := mustParams(t, 5, 2, 3, 4, WithRestrictedGeneration(false))
	f := field.MustInitField(4)

	var expected []field.Vector
	for v := field.Vector(0); v < 64; v++ {
		if f.HammingWeight(v) >= 2 {
			expected = append(expected, v)
		}
	}
	values := drain(NewVectorGenerator(params))
	require.Equal(t, expected, values)
	require.Len(t, values, 54)
}

func TestBinaryGenerator(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 7, 4, 3, 2))
	require.Equal(t, []field.Vector{3, 5, 6, 7}, drain(g))
}

func TestRestrictedCandidatesLeadWithOne(t *testing.T) {
	params := mustParams(t, 9, 3, 4, 4)
	f := field.MustInitField(4)
	g := NewVectorGenerator(params)
	count := 0
	for _, v := range drain(g) {
		digits := f.Unpack(v, params.SubVectorLength())
		for _, d := range digits {
			if d != 0 {
				require.Equal(t, byte(1), d, "%v", digits)
				break
			}
		}
		require.GreaterOrEqual(t, f.HammingWeight(v), 3)
		count++
	}
	require.Positive(t, count)
}

func TestNextFullVectorPrefixesIdentity(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 5, 2, 3, 4))
	v, ok, err := g.NextFullVector(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, field.Vector(1<<6|5), v)

	_, _, err = g.NextFullVector(2)
	require.ErrorIs(t, err, ErrInvalidIdentityRowIndex)
	_, _, err = g.NextFullVector(-1)
	require.ErrorIs(t, err, ErrInvalidIdentityRowIndex)

	noIdentity := NewVectorGenerator(mustParams(t, 5, 2, 3, 4, WithAppendIdentity(false)))
	v, ok, err = noIdentity.NextFullVector(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, field.Vector(5), v)
}

func TestSuccessorRetestsCurrentValue(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 5, 2, 3, 4))
	v, ok := g.NextSubVector()
	require.True(t, ok)
	require.Equal(t, field.Vector(5), v)
	require.Equal(t, Advancing, g.State())

	next := g.Successor()
	require.Equal(t, Positioned, next.State())
	v, ok = next.NextSubVector()
	require.True(t, ok)
	require.Equal(t, field.Vector(5), v)
	v, _ = next.NextSubVector()
	require.Equal(t, field.Vector(6), v)

	// the parent is unaffected by its successor
	v, _ = g.NextSubVector()
	require.Equal(t, field.Vector(6), v)

	fresh := NewVectorGenerator(mustParams(t, 5, 2, 3, 4)).Successor()
	require.Equal(t, NotStarted, fresh.State())
}

func TestGeneratorTooShortIsExhausted(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 3, 3, 3, 4))
	_, ok, err := g.NextFullVector(0)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Exhausted, g.State())

	// 1 0 0
	require.Equal(t, field.Vector(1<<4), g.CanonicalFirstRow())
}

func TestCanonicalFirstRow(t *testing.T) {
	g := NewVectorGenerator(mustParams(t, 7, 4, 3, 4))
	f := field.MustInitField(4)
	require.Equal(t, f.Pack([]byte{1, 0, 0, 0, 1, 1, 1}), g.CanonicalFirstRow())

	g = NewVectorGenerator(mustParams(t, 5, 2, 3, 4, WithAppendIdentity(false)))
	require.Equal(t, f.Pack([]byte{1, 1, 1, 1, 1}), g.CanonicalFirstRow())
}

func TestGeneratorStateString(t *testing.T) {
	require.Equal(t, "NotStarted", NotStarted.String())
	require.Equal(t, "Positioned", Positioned.String())
	require.Equal(t, "Advancing", Advancing.String())
	require.Equal(t, "Exhausted", Exhausted.String())
	require.Equal(t, "unknown", GeneratorState(9).String())
}
