package field

import (
	"fmt"
	"math/bits"
)

// Vector packs up to MaxSymbols symbols into one word. Symbols are stored
// most significant first and right aligned, so symbol j of an n-symbol vector
// sits at bit offset BitsPerSymbol*(n-1-j). Unused high bits are always zero.
type Vector = uint64

const (
	// loMask selects the constant coefficient of every GF(4) symbol
	loMask Vector = 0x5555555555555555
	// hiMask selects the ω coefficient of every GF(4) symbol
	hiMask Vector = 0xAAAAAAAAAAAAAAAA
)

// Add adds (and subtracts) two packed vectors
func Add(a, b Vector) Vector {
	return a ^ b
}

// MultiplyByOmega multiplies every GF(4) symbol of v by ω.
// (hω + l)ω = (h+l)ω + h
func MultiplyByOmega(v Vector) Vector {
	hi := v & hiMask
	lo := v & loMask
	return (hi ^ (lo << 1)) | (hi >> 1)
}

// MultiplyByOmegaBar multiplies every GF(4) symbol of v by ω̄ = ω².
// (hω + l)ω̄ = lω + (h+l)
func MultiplyByOmegaBar(v Vector) Vector {
	hi := v & hiMask
	lo := v & loMask
	return (lo << 1) | ((hi >> 1) ^ lo)
}

// ConjugateVector swaps ω and ω̄ in every GF(4) symbol
func ConjugateVector(v Vector) Vector {
	return v ^ ((v & hiMask) >> 1)
}

// MultiplyByScalar multiplies every symbol of v by digit. digit must satisfy
// ValidDigit, any other value panics. Callers taking digits from outside
// check them first, as Matrix.Set does.
func (f *Field) MultiplyByScalar(v Vector, digit byte) Vector {
	switch digit {
	case 0:
		return 0
	case 1:
		return v
	case 2:
		if f.base == Quaternary {
			return MultiplyByOmega(v)
		}
	case 3:
		if f.base == Quaternary {
			return MultiplyByOmegaBar(v)
		}
	}
	panic(fmt.Sprintf("invalid digit %d for scalar multiplication in GF(%d)", digit, f.base))
}

// Multiply is the symbol-wise product of two packed vectors. With a and b the
// ω coefficients of v1 and v2 moved onto the constant position,
// (aω+b1)(bω+b2) = (a·b2 + b1·b + a·b)ω + (a·b + b1·b2).
func (f *Field) Multiply(v1, v2 Vector) Vector {
	if f.base == Binary {
		return v1 & v2
	}
	a := (v1 & hiMask) >> 1
	b := (v2 & hiMask) >> 1
	return (((v1 & b) ^ (v2 & a)) << 1) ^ (a & b) ^ (v1 & v2)
}

// InnerProduct folds the symbol-wise product into a single element
func (f *Field) InnerProduct(v1, v2 Vector) byte {
	if f.base == Binary {
		return byte(bits.OnesCount64(v1&v2) & 1)
	}
	p := f.Multiply(v1, v2)
	p ^= p >> 32
	p ^= p >> 16
	p ^= p >> 8
	p ^= p >> 4
	p ^= p >> 2
	return byte(p & 3)
}

// HermitianInnerProduct is the inner product of codeword with the conjugate of v
func (f *Field) HermitianInnerProduct(codeword, v Vector) byte {
	if f.base == Binary {
		return f.InnerProduct(codeword, v)
	}
	return f.InnerProduct(codeword, ConjugateVector(v))
}

// HammingWeight counts the nonzero symbols of v
func (f *Field) HammingWeight(v Vector) int {
	if f.base == Binary {
		return bits.OnesCount64(v)
	}
	return bits.OnesCount64((v | (v >> 1)) & loMask)
}

// Ones returns the vector with its lowest count symbols set to 1
func (f *Field) Ones(count int) Vector {
	if f.base == Binary {
		if count >= 64 {
			return ^Vector(0)
		}
		return (Vector(1) << uint(count)) - 1
	}
	if count >= 32 {
		return loMask
	}
	return ((Vector(1) << uint(2*count)) - 1) & loMask
}

// Digit reads symbol j of an n-symbol vector
func (f *Field) Digit(v Vector, n, j int) byte {
	shift := uint(f.BitsPerSymbol() * (n - 1 - j))
	return byte((v >> shift) & f.SymbolMask())
}

// SetDigit overwrites symbol j of an n-symbol vector
func (f *Field) SetDigit(v Vector, n, j int, digit byte) Vector {
	shift := uint(f.BitsPerSymbol() * (n - 1 - j))
	v &^= f.SymbolMask() << shift
	return v | (Vector(digit)&f.SymbolMask())<<shift
}

// Pack packs digits, most significant first
func (f *Field) Pack(digits []byte) Vector {
	var v Vector
	for _, d := range digits {
		v = (v << uint(f.BitsPerSymbol())) | (Vector(d) & f.SymbolMask())
	}
	return v
}

// Unpack returns the n digits of v, most significant first
func (f *Field) Unpack(v Vector, n int) []byte {
	digits := make([]byte, n)
	for j := 0; j < n; j++ {
		digits[j] = f.Digit(v, n, j)
	}
	return digits
}

// MultiplySlow is the table-driven symbol-by-symbol product of two vectors of
// MaxSymbols symbols, the reference Multiply is checked against
func (f *Field) MultiplySlow(v1, v2 Vector) Vector {
	n := 64 / f.BitsPerSymbol()
	var r Vector
	for j := 0; j < n; j++ {
		r = f.SetDigit(r, n, j, f.Mul(f.Digit(v1, n, j), f.Digit(v2, n, j)))
	}
	return r
}

// HammingWeightSlow counts nonzero symbols one at a time
func (f *Field) HammingWeightSlow(v Vector) int {
	n := 64 / f.BitsPerSymbol()
	weight := 0
	for j := 0; j < n; j++ {
		if f.Digit(v, n, j) != 0 {
			weight++
		}
	}
	return weight
}
