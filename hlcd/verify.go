package hlcd

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Report lists what Verify found about a generator matrix
type Report struct {
	// Closure is false when the supplied store differs from the recomputed one
	Closure         bool
	Distinct        bool
	NoZeroRow       bool
	MinimumDistance int
	WeightCounts    []uint64
	// Determinant of G·Ḡᵗ
	Determinant byte
	Violations  []string
}

func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

func (r *Report) violate(format string, args ...interface{}) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// Verify recomputes every codeword spanned by matrix and checks the code
// against params. Non-nil combinations are compared with the recomputed
// ones. Codes needing more than DefaultCombinationCeiling combinations are
// rejected with ErrCapacityExceeded.
func Verify(params CodeParameters, matrix *Matrix, combinations *CombinationView) (*Report, error) {
	return VerifyWithCeiling(params, matrix, combinations, DefaultCombinationCeiling)
}

// VerifyWithCeiling is Verify with its own bound on the recomputed
// combinations. Zero disables the check.
func VerifyWithCeiling(params CodeParameters, matrix *Matrix, combinations *CombinationView, ceiling uint64) (*Report, error) {
	if matrix.Rows() != params.K() || matrix.Cols() != params.N() {
		return nil, errors.Wrapf(ErrInvalidMatrixDimensions, "matrix is %d x %d, code needs %d x %d",
			matrix.Rows(), matrix.Cols(), params.K(), params.N())
	}
	if matrix.Base() != params.Base() {
		return nil, errors.Wrapf(ErrInvalidMatricesBases, "matrix base %d, code base %d", matrix.Base(), params.Base())
	}

	recomputed, err := NewCombinationStore(params, ceiling)
	if err != nil {
		return nil, err
	}
	if err := recomputed.PopulateCombinations(matrix, matrix.Rows()); err != nil {
		return nil, err
	}

	report := &Report{Closure: true}
	if combinations != nil && !combinations.store.Equal(recomputed) {
		report.Closure = false
		report.violate("stored combinations differ from the ones spanned by the matrix")
	}

	report.NoZeroRow = !matrix.ContainsZeroRow()
	if !report.NoZeroRow {
		report.violate("matrix contains a zero row")
	}

	report.WeightCounts = WeightEnumerator(recomputed, params.N())
	report.MinimumDistance = MinimumDistance(report.WeightCounts)
	if report.WeightCounts[0] > 1 {
		// a nontrivial combination vanishes
		report.MinimumDistance = 0
	}
	if report.MinimumDistance < params.D() {
		report.violate("minimum distance %d is below %d", report.MinimumDistance, params.D())
	}

	codewords := make([]uint64, 0, recomputed.Len())
	recomputed.Each(recomputed.Len(), func(_ uint64, v uint64) {
		codewords = append(codewords, v)
	})
	slices.Sort(codewords)
	report.Distinct = true
	for i := 1; i < len(codewords); i++ {
		if codewords[i] == codewords[i-1] {
			report.Distinct = false
			report.violate("codeword %#x appears more than once", codewords[i])
			break
		}
	}

	gPrime, err := matrix.GPrime()
	if err != nil {
		return nil, err
	}
	if report.Determinant, err = gPrime.Determinant(); err != nil {
		return nil, err
	}
	if params.IsHLCD() && report.Determinant == 0 {
		report.violate("G·Ḡᵗ is singular")
	}

	return report, nil
}
