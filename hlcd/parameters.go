package hlcd

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/field"
)

// CodeParameters describes the code searched for. It is immutable once built.
type CodeParameters struct {
	// An [n, k, d] code over GF(base)
	n, k, d, base int
	// Weight the right hand side of a systematic row must reach
	rhsWeight int
	// Search switches
	isHLCD, appendIdentity, restrictCodewordGeneration, isMultithreaded bool
}

type ParameterOption func(*CodeParameters)

// WithHLCD requires G·Ḡᵗ to be invertible. Defaults to true for base 4.
func WithHLCD(enabled bool) ParameterOption {
	return func(p *CodeParameters) { p.isHLCD = enabled }
}

// WithAppendIdentity searches generator matrices of the form [I | A]. Defaults to true.
func WithAppendIdentity(enabled bool) ParameterOption {
	return func(p *CodeParameters) { p.appendIdentity = enabled }
}

// WithRestrictedGeneration skips candidates whose leading symbol is not 1 and
// fixes the first row. Defaults to true.
func WithRestrictedGeneration(enabled bool) ParameterOption {
	return func(p *CodeParameters) { p.restrictCodewordGeneration = enabled }
}

// WithMultithreading requests the experimental concurrent orthogonality check
func WithMultithreading(enabled bool) ParameterOption {
	return func(p *CodeParameters) { p.isMultithreaded = enabled }
}

func NewCodeParameters(n, k, d, base int, opts ...ParameterOption) (CodeParameters, error) {
	p := CodeParameters{
		n:                          n,
		k:                          k,
		d:                          d,
		base:                       base,
		rhsWeight:                  d - 1,
		isHLCD:                     base == field.Quaternary,
		appendIdentity:             true,
		restrictCodewordGeneration: true,
	}
	for _, opt := range opts {
		opt(&p)
	}

	if !field.ValidBase(base) {
		return CodeParameters{}, errors.Wrapf(ErrInvalidBase, "base %d", base)
	}
	if n < 1 || n > field.MaxSymbols(base) {
		return CodeParameters{}, errors.Wrapf(ErrInvalidCodeParameters,
			"n %d is not in [1, %d] for base %d", n, field.MaxSymbols(base), base)
	}
	if k < 1 || k > n {
		return CodeParameters{}, errors.Wrapf(ErrInvalidCodeParameters, "k %d is not in [1, %d]", k, n)
	}
	if d < 3 {
		return CodeParameters{}, errors.Wrapf(ErrInvalidMinimumDistance, "d %d", d)
	}
	if p.isHLCD && base != field.Quaternary {
		return CodeParameters{}, errors.Wrapf(ErrInvalidCodeParameters,
			"Hermitian LCD codes are defined over GF(4), base was %d", base)
	}

	return p, nil
}

func (p CodeParameters) N() int                           { return p.n }
func (p CodeParameters) K() int                           { return p.k }
func (p CodeParameters) D() int                           { return p.d }
func (p CodeParameters) Base() int                        { return p.base }
func (p CodeParameters) RHSWeight() int                   { return p.rhsWeight }
func (p CodeParameters) IsHLCD() bool                     { return p.isHLCD }
func (p CodeParameters) AppendIdentity() bool             { return p.appendIdentity }
func (p CodeParameters) RestrictCodewordGeneration() bool { return p.restrictCodewordGeneration }
func (p CodeParameters) IsMultithreaded() bool            { return p.isMultithreaded }

// SubVectorLength is the number of symbols the candidate generator enumerates
func (p CodeParameters) SubVectorLength() int {
	if p.appendIdentity {
		return p.n - p.k
	}
	return p.n
}

// CombinationCount is base^k, the number of codewords
func (p CodeParameters) CombinationCount() uint64 {
	return power(p.base, p.k)
}

func (p CodeParameters) String() string {
	return fmt.Sprintf("[%d, %d, %d]_%d", p.n, p.k, p.d, p.base)
}

// Key identifies the parameters including every search switch
func (p CodeParameters) Key() string {
	return fmt.Sprintf("n=%d/k=%d/d=%d/base=%d/hlcd=%t/identity=%t/restricted=%t",
		p.n, p.k, p.d, p.base, p.isHLCD, p.appendIdentity, p.restrictCodewordGeneration)
}

func power(base, exponent int) uint64 {
	result := uint64(1)
	for i := 0; i < exponent; i++ {
		result *= uint64(base)
	}
	return result
}
