package field

import (
	"fmt"
)

const (
	Binary     = 2
	Quaternary = 4

	// InvalidDigit is returned by Div when dividing by zero
	InvalidDigit byte = 0xff
)

// Field holds the lookup tables of GF(2) or GF(4). Elements of GF(4) are
// encoded as 0, 1, 2 = ω and 3 = ω̄ = ω + 1.
type Field struct {
	base     int
	mulTable [][]byte
	divTable [][]byte
	invTable []byte
}

func InitField(base int) (*Field, error) {
	if !ValidBase(base) {
		return nil, fmt.Errorf("base must be %d or %d, was: %d", Binary, Quaternary, base)
	}

	mulTable, invTable := generateMulAndInvTable(base)

	return &Field{
		base:     base,
		mulTable: mulTable,
		divTable: generateDivTable(base, mulTable, invTable),
		invTable: invTable,
	}, nil
}

// MustInitField is InitField for bases known to be valid
func MustInitField(base int) *Field {
	f, err := InitField(base)
	if err != nil {
		panic(err)
	}
	return f
}

func ValidBase(base int) bool {
	return base == Binary || base == Quaternary
}

func (f *Field) Base() int {
	return f.base
}

func (f *Field) ValidDigit(d byte) bool {
	return int(d) < f.base
}

// BitsPerSymbol is the width of one packed symbol
func (f *Field) BitsPerSymbol() int {
	if f.base == Quaternary {
		return 2
	}
	return 1
}

// MaxSymbols is the number of symbol slots usable in a packed vector
func (f *Field) MaxSymbols() int {
	return MaxSymbols(f.base)
}

func MaxSymbols(base int) int {
	if base == Quaternary {
		return 30
	}
	return 62
}

// SymbolMask masks the lowest symbol slot
func (f *Field) SymbolMask() Vector {
	return Vector(f.base - 1)
}

// Mul multiplies two elements
func (f *Field) Mul(a, b byte) byte {
	return f.mulTable[a][b]
}

// Div divides a by b, InvalidDigit if b is zero
func (f *Field) Div(a, b byte) byte {
	return f.divTable[a][b]
}

// Inv calculates the inverse of an element, zero has none and maps to zero
func (f *Field) Inv(a byte) byte {
	return f.invTable[a]
}

func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

func (f *Field) Sub(a, b byte) byte {
	return a ^ b
}

// Conjugate maps x to x^2, swapping ω and ω̄. It is the identity on GF(2).
func (f *Field) Conjugate(a byte) byte {
	if f.base == Quaternary && a >= 2 {
		return a ^ 1
	}
	return a
}

// gf4Mul multiplies in GF(2)[x]/(x^2+x+1)
func gf4Mul(a, b byte) byte {
	var r byte
	if b&1 != 0 {
		r ^= a
	}
	if b&2 != 0 {
		r ^= (a << 1) ^ (a >> 1) ^ (a & 2)
	}
	return r & 3
}

func generateMulAndInvTable(base int) ([][]byte, []byte) {
	mulTable := make([][]byte, base)
	invTable := make([]byte, base)

	for i := 0; i < base; i++ {
		mulTable[i] = make([]byte, base)
		for j := 0; j < base; j++ {
			if base == Quaternary {
				mulTable[i][j] = gf4Mul(byte(i), byte(j))
			} else {
				mulTable[i][j] = byte(i & j)
			}

			if mulTable[i][j] == 1 {
				invTable[i] = byte(j)
			}
		}
	}
	return mulTable, invTable
}

func generateDivTable(base int, mulTable [][]byte, invTable []byte) [][]byte {
	divTable := make([][]byte, base)
	for i := 0; i < base; i++ {
		divTable[i] = make([]byte, base)
		divTable[i][0] = InvalidDigit
		for j := 1; j < base; j++ {
			divTable[i][j] = mulTable[i][invTable[j]]
		}
	}
	return divTable
}
