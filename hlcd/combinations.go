package hlcd

import (
	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/field"
)

const defaultSegmentSize = 1 << 24

// CombinationStore holds every linear combination of the accepted generator
// rows. Index i written in base b is the coefficient vector of the
// combination, least significant digit first: i = c·b^r + j stores
// c·row_r + combination[j]. The logical array is split into segments that
// are allocated on first write.
type CombinationStore struct {
	field       *field.Field
	length      uint64
	segmentSize uint64
	segments    [][]field.Vector
}

// NewCombinationStore sizes a store for base^k combinations. A non-zero
// ceiling rejects stores with more entries.
func NewCombinationStore(params CodeParameters, ceiling uint64) (*CombinationStore, error) {
	return newCombinationStore(params.Base(), params.K(), ceiling, defaultSegmentSize)
}

func newCombinationStore(base, k int, ceiling, segmentSize uint64) (*CombinationStore, error) {
	f, err := field.InitField(base)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase, err.Error())
	}
	// 4^31 and 2^63 already overflow a useful store
	if k >= 64/f.BitsPerSymbol()-1 {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%d^%d combinations", base, k)
	}
	length := power(base, k)
	if ceiling > 0 && length > ceiling {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%d^%d = %d combinations, ceiling is %d", base, k, length, ceiling)
	}

	segments := (length + segmentSize - 1) / segmentSize
	return &CombinationStore{
		field:       f,
		length:      length,
		segmentSize: segmentSize,
		segments:    make([][]field.Vector, segments),
	}, nil
}

// Len is the logical size base^k
func (s *CombinationStore) Len() uint64 {
	return s.length
}

func (s *CombinationStore) Base() int {
	return s.field.Base()
}

// Get returns the combination at index, zero if it was never written
func (s *CombinationStore) Get(index uint64) field.Vector {
	if index >= s.length {
		panic(errors.Wrapf(ErrInvalidRowIndex, "combination %d is not in [0, %d)", index, s.length))
	}
	segment := s.segments[index/s.segmentSize]
	if segment == nil {
		return 0
	}
	return segment[index%s.segmentSize]
}

func (s *CombinationStore) Set(index uint64, v field.Vector) {
	if index >= s.length {
		panic(errors.Wrapf(ErrInvalidRowIndex, "combination %d is not in [0, %d)", index, s.length))
	}
	s.segment(index / s.segmentSize)[index%s.segmentSize] = v
}

func (s *CombinationStore) segment(i uint64) []field.Vector {
	if s.segments[i] == nil {
		size := s.segmentSize
		if rest := s.length - i*s.segmentSize; rest < size {
			size = rest
		}
		s.segments[i] = make([]field.Vector, size)
	}
	return s.segments[i]
}

// Reserve allocates every segment covering [0, upto) so concurrent writers
// to distinct indices never allocate
func (s *CombinationStore) Reserve(upto uint64) {
	if upto > s.length {
		upto = s.length
	}
	for i := uint64(0); i*s.segmentSize < upto; i++ {
		s.segment(i)
	}
}

// PopulateCombinations rebuilds the combinations of the first rows rows of m
func (s *CombinationStore) PopulateCombinations(m *Matrix, rows int) error {
	if m.Base() != s.field.Base() {
		return errors.Wrapf(ErrInvalidMatricesBases, "store base %d, matrix base %d", s.field.Base(), m.Base())
	}
	if rows < 0 || rows > m.Rows() || power(s.field.Base(), rows) > s.length {
		return rangeError(ErrInvalidRowIndex, "row count", rows, m.Rows()+1)
	}

	s.Set(0, 0)
	limit := uint64(1)
	for r := 0; r < rows; r++ {
		row := m.rows[r]
		for c := byte(1); int(c) < s.field.Base(); c++ {
			multiple := s.field.MultiplyByScalar(row, c)
			offset := uint64(c) * limit
			for j := uint64(0); j < limit; j++ {
				s.Set(offset+j, field.Add(multiple, s.Get(j)))
			}
		}
		limit *= uint64(s.field.Base())
	}
	return nil
}

// Each calls fn for every index below upto, in order
func (s *CombinationStore) Each(upto uint64, fn func(index uint64, v field.Vector)) {
	if upto > s.length {
		upto = s.length
	}
	for i := uint64(0); i < upto; i++ {
		fn(i, s.Get(i))
	}
}

func (s *CombinationStore) Equal(other *CombinationStore) bool {
	if other == nil || s.length != other.length || s.field.Base() != other.field.Base() {
		return false
	}
	for i := uint64(0); i < s.length; i++ {
		if s.Get(i) != other.Get(i) {
			return false
		}
	}
	return true
}

// CombinationView gives read access to the combinations of a finished search
type CombinationView struct {
	store *CombinationStore
}

// View returns a read-only view of s. Writes to s stay visible through it.
func (s *CombinationStore) View() *CombinationView {
	return &CombinationView{store: s}
}

func (v *CombinationView) Len() uint64 {
	return v.store.Len()
}

func (v *CombinationView) Base() int {
	return v.store.Base()
}

func (v *CombinationView) Get(index uint64) field.Vector {
	return v.store.Get(index)
}

func (v *CombinationView) Each(upto uint64, fn func(index uint64, v field.Vector)) {
	v.store.Each(upto, fn)
}
