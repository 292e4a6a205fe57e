package hlcd

import (
	"github.com/pkg/errors"
)

// Parameter errors
var (
	ErrInvalidBase             = errors.New("InvalidBase: base must be 2 or 4")
	ErrInvalidCodeParameters   = errors.New("InvalidCodeParameters: code parameters are out of range")
	ErrInvalidMinimumDistance  = errors.New("InvalidMinimumDistance: minimum distance must be at least 3")
	ErrUnsupportedOperation    = errors.New("UnsupportedOperation: operation is not supported")
	ErrCapacityExceeded        = errors.New("CapacityExceeded: combination store would exceed the configured ceiling")
	ErrInvalidIdentityRowIndex = errors.New("InvalidIdentityRowIndex: identity row index is out of range")
)

// Matrix errors
var (
	ErrInvalidRowIndex              = errors.New("InvalidRowIndex: row index is out of range")
	ErrInvalidColIndex              = errors.New("InvalidColIndex: column index is out of range")
	ErrInvalidDigit                 = errors.New("InvalidDigit: symbol is not a digit of the field")
	ErrInvalidColumnVectorDimension = errors.New("InvalidColumnVectorDimension: column vector does not fit the matrix")
	ErrInvalidColumnDimensionToSet  = errors.New("InvalidColumnDimensionToSet: column vector length does not match the row count")
	ErrInvalidMatrixDimensions      = errors.New("InvalidMatrixDimensions: inner dimensions do not agree")
	ErrInvalidMatricesBases         = errors.New("InvalidMatricesBases: matrices are over different fields")
	ErrNotSquare                    = errors.New("NotSquare: determinant requires a square matrix")
)

func rangeError(err error, what string, value, limit int) error {
	return errors.Wrapf(err, "%s %d is not in [0, %d)", what, value, limit)
}
