package hlcd

import (
	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/field"
)

// unit is the vector with only its last symbol set to 1
const unit field.Vector = 1

type GeneratorState int

const (
	NotStarted GeneratorState = iota
	Positioned
	Advancing
	Exhausted
)

func (s GeneratorState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Positioned:
		return "Positioned"
	case Advancing:
		return "Advancing"
	case Exhausted:
		return "Exhausted"
	default:
		return "unknown"
	}
}

// VectorGenerator enumerates the candidate rows of one matrix row. The
// subvector (the symbols right of the identity prefix) is counted upwards and
// only values of weight at least rhsWeight are returned. In restricted mode
// values whose leading nonzero symbol is ω or ω̄ are skipped: once the
// subvector reaches 2·resetPoint every remaining value below nextResetPoint
// leads with ω or ω̄, so it jumps straight to nextResetPoint.
type VectorGenerator struct {
	field          *field.Field
	n, k           int
	rhsWeight      int
	appendIdentity bool
	restricted     bool
	// symbols enumerated and base^length
	length int
	limit  field.Vector

	subVector      field.Vector
	resetPoint     field.Vector
	nextResetPoint field.Vector
	state          GeneratorState
}

func NewVectorGenerator(params CodeParameters) *VectorGenerator {
	length := params.SubVectorLength()
	return &VectorGenerator{
		field:          field.MustInitField(params.Base()),
		n:              params.N(),
		k:              params.K(),
		rhsWeight:      params.RHSWeight(),
		appendIdentity: params.AppendIdentity(),
		restricted:     params.RestrictCodewordGeneration(),
		length:         length,
		limit:          power(params.Base(), length),
		state:          NotStarted,
	}
}

func (g *VectorGenerator) State() GeneratorState {
	return g.state
}

// Valid reports whether the generator can still produce candidates
func (g *VectorGenerator) Valid() bool {
	return g.state != Exhausted
}

// SubVector is the most recently produced (or carried) subvector
func (g *VectorGenerator) SubVector() field.Vector {
	return g.subVector
}

// position starts at the smallest value of the required weight: rhsWeight
// ones packed at the right
func (g *VectorGenerator) position() {
	if g.rhsWeight > g.length {
		g.state = Exhausted
		return
	}
	g.subVector = g.field.Ones(g.rhsWeight)
	g.resetPoint = unit << uint(g.field.BitsPerSymbol()*(g.rhsWeight-1))
	g.nextResetPoint = g.resetPoint << uint(g.field.BitsPerSymbol())
	g.state = Positioned
}

func (g *VectorGenerator) increment() {
	g.subVector++
	if g.restricted && g.subVector == 2*g.resetPoint {
		g.subVector = g.nextResetPoint
	}
	if g.subVector == g.nextResetPoint {
		g.resetPoint = g.nextResetPoint
		g.nextResetPoint <<= uint(g.field.BitsPerSymbol())
	}
}

// NextSubVector advances to the next subvector of sufficient weight. It
// returns false once the enumeration is exhausted.
func (g *VectorGenerator) NextSubVector() (field.Vector, bool) {
	switch g.state {
	case Exhausted:
		return 0, false
	case NotStarted:
		g.position()
		if g.state == Exhausted {
			return 0, false
		}
		fallthrough
	case Positioned:
		g.state = Advancing
		if g.subVector < g.limit && g.field.HammingWeight(g.subVector) >= g.rhsWeight {
			return g.subVector, true
		}
	}

	for {
		g.increment()
		if g.subVector >= g.limit {
			g.state = Exhausted
			return 0, false
		}
		if g.field.HammingWeight(g.subVector) >= g.rhsWeight {
			return g.subVector, true
		}
	}
}

// NextFullVector returns the next candidate for matrix row row, prefixed by
// the identity row when the generator appends the identity
func (g *VectorGenerator) NextFullVector(row int) (field.Vector, bool, error) {
	if row < 0 || row >= g.k {
		return 0, false, errors.Wrapf(ErrInvalidIdentityRowIndex, "row %d is not in [0, %d)", row, g.k)
	}
	sub, ok := g.NextSubVector()
	if !ok {
		return 0, false, nil
	}
	return g.identity(row) | sub, true, nil
}

func (g *VectorGenerator) identity(row int) field.Vector {
	if !g.appendIdentity {
		return 0
	}
	return unit << uint(g.field.BitsPerSymbol()*(g.n-1-row))
}

// CanonicalFirstRow is identity row 0 followed by a subvector of all ones
func (g *VectorGenerator) CanonicalFirstRow() field.Vector {
	return g.identity(0) | g.field.Ones(g.length)
}

// Successor returns the generator of the next matrix row. It resumes at the
// current subvector, which is tested again before anything larger.
func (g *VectorGenerator) Successor() *VectorGenerator {
	next := *g
	if next.state == Advancing {
		next.state = Positioned
	}
	return &next
}
