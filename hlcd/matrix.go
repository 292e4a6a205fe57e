package hlcd

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/field"
)

// Matrix is a matrix over GF(2) or GF(4) with every row packed into one word
type Matrix struct {
	field        *field.Field
	rows         []field.Vector
	nRows, nCols int
}

func NewMatrix(nRows, nCols, base int) (*Matrix, error) {
	f, err := field.InitField(base)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidBase, err.Error())
	}
	if nRows < 0 {
		return nil, errors.Wrapf(ErrInvalidRowIndex, "row count %d is negative", nRows)
	}
	if nCols < 0 || nCols > f.MaxSymbols() {
		return nil, errors.Wrapf(ErrInvalidColIndex, "column count %d is not in [0, %d]", nCols, f.MaxSymbols())
	}

	return &Matrix{
		field: f,
		rows:  make([]field.Vector, nRows),
		nRows: nRows,
		nCols: nCols,
	}, nil
}

// NewMatrixFromRows builds a matrix from packed rows of nCols symbols
func NewMatrixFromRows(nCols, base int, rows []field.Vector) (*Matrix, error) {
	m, err := NewMatrix(len(rows), nCols, base)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if err := m.SetRow(r, row); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMatrixFromDigits builds a matrix from unpacked rows
func NewMatrixFromDigits(base int, digits [][]byte) (*Matrix, error) {
	nCols := 0
	if len(digits) > 0 {
		nCols = len(digits[0])
	}
	m, err := NewMatrix(len(digits), nCols, base)
	if err != nil {
		return nil, err
	}
	for r := range digits {
		if len(digits[r]) != nCols {
			return nil, errors.Wrapf(ErrInvalidColIndex, "row %d has %d columns, expected %d", r, len(digits[r]), nCols)
		}
		for c, d := range digits[r] {
			if err := m.Set(r, c, d); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Matrix) Rows() int           { return m.nRows }
func (m *Matrix) Cols() int           { return m.nCols }
func (m *Matrix) Base() int           { return m.field.Base() }
func (m *Matrix) Field() *field.Field { return m.field }

func (m *Matrix) checkRow(r int) error {
	if r < 0 || r >= m.nRows {
		return rangeError(ErrInvalidRowIndex, "row", r, m.nRows)
	}
	return nil
}

func (m *Matrix) checkCol(c int) error {
	if c < 0 || c >= m.nCols {
		return rangeError(ErrInvalidColIndex, "column", c, m.nCols)
	}
	return nil
}

// fits reports whether v has no symbols beyond the first length slots
func (m *Matrix) fits(v field.Vector, length int) bool {
	used := uint(length * m.field.BitsPerSymbol())
	return used >= 64 || v>>used == 0
}

func (m *Matrix) get(r, c int) byte {
	return m.field.Digit(m.rows[r], m.nCols, c)
}

func (m *Matrix) set(r, c int, d byte) {
	m.rows[r] = m.field.SetDigit(m.rows[r], m.nCols, c, d)
}

func (m *Matrix) Get(r, c int) (byte, error) {
	if err := m.checkRow(r); err != nil {
		return 0, err
	}
	if err := m.checkCol(c); err != nil {
		return 0, err
	}
	return m.get(r, c), nil
}

func (m *Matrix) Set(r, c int, d byte) error {
	if err := m.checkRow(r); err != nil {
		return err
	}
	if err := m.checkCol(c); err != nil {
		return err
	}
	if !m.field.ValidDigit(d) {
		return rangeError(ErrInvalidDigit, "digit", int(d), m.field.Base())
	}
	m.set(r, c, d)
	return nil
}

func (m *Matrix) Row(r int) (field.Vector, error) {
	if err := m.checkRow(r); err != nil {
		return 0, err
	}
	return m.rows[r], nil
}

func (m *Matrix) SetRow(r int, v field.Vector) error {
	if err := m.checkRow(r); err != nil {
		return err
	}
	if !m.fits(v, m.nCols) {
		return errors.Wrapf(ErrInvalidColIndex, "row vector %#x has symbols beyond column %d", v, m.nCols)
	}
	m.rows[r] = v
	return nil
}

// Column packs column c into a vector of Rows() symbols
func (m *Matrix) Column(c int) (field.Vector, error) {
	if err := m.checkCol(c); err != nil {
		return 0, err
	}
	if m.nRows > m.field.MaxSymbols() {
		return 0, errors.Wrapf(ErrInvalidColumnVectorDimension,
			"%d rows do not fit in a packed vector of %d symbols", m.nRows, m.field.MaxSymbols())
	}
	var v field.Vector
	for r := 0; r < m.nRows; r++ {
		v = m.field.SetDigit(v, m.nRows, r, m.get(r, c))
	}
	return v, nil
}

// SetColumn installs a packed column of length symbols
func (m *Matrix) SetColumn(c int, v field.Vector, length int) error {
	if err := m.checkCol(c); err != nil {
		return err
	}
	if length != m.nRows {
		return errors.Wrapf(ErrInvalidColumnDimensionToSet, "column of length %d, matrix has %d rows", length, m.nRows)
	}
	if length > m.field.MaxSymbols() || !m.fits(v, length) {
		return errors.Wrapf(ErrInvalidColumnVectorDimension, "column vector %#x does not fit %d symbols", v, length)
	}
	for r := 0; r < m.nRows; r++ {
		m.set(r, c, m.field.Digit(v, length, r))
	}
	return nil
}

func (m *Matrix) Transpose() (*Matrix, error) {
	t, err := NewMatrix(m.nCols, m.nRows, m.field.Base())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidColumnVectorDimension, err.Error())
	}
	for c := 0; c < m.nCols; c++ {
		column, err := m.Column(c)
		if err != nil {
			return nil, err
		}
		t.rows[c] = column
	}
	return t, nil
}

// HermitianTranspose transposes and conjugates every entry
func (m *Matrix) HermitianTranspose() (*Matrix, error) {
	t, err := m.Transpose()
	if err != nil {
		return nil, err
	}
	if m.field.Base() == field.Quaternary {
		for r := range t.rows {
			t.rows[r] = field.ConjugateVector(t.rows[r])
		}
	}
	return t, nil
}

// Multiply returns m·other
func (m *Matrix) Multiply(other *Matrix) (*Matrix, error) {
	if m.field.Base() != other.field.Base() {
		return nil, errors.Wrapf(ErrInvalidMatricesBases, "base %d times base %d", m.field.Base(), other.field.Base())
	}
	if m.nCols != other.nRows {
		return nil, errors.Wrapf(ErrInvalidMatrixDimensions,
			"(%d x %d) times (%d x %d)", m.nRows, m.nCols, other.nRows, other.nCols)
	}

	columns, err := other.Transpose()
	if err != nil {
		return nil, err
	}
	product, err := NewMatrix(m.nRows, other.nCols, m.field.Base())
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.nRows; i++ {
		for j := 0; j < other.nCols; j++ {
			product.set(i, j, m.field.InnerProduct(m.rows[i], columns.rows[j]))
		}
	}
	return product, nil
}

// Determinant runs fraction-free (Bareiss) elimination. Signs vanish in
// characteristic 2, so row swaps do not change the result.
func (m *Matrix) Determinant() (byte, error) {
	if m.nRows != m.nCols {
		return 0, errors.Wrapf(ErrNotSquare, "matrix is %d x %d", m.nRows, m.nCols)
	}
	n := m.nRows
	if n == 0 {
		return 1, nil
	}

	f := m.field
	a := m.Digits()
	pivot := byte(1)
	for k := 0; k < n-1; k++ {
		if a[k][k] == 0 {
			swap := -1
			for i := k + 1; i < n; i++ {
				if a[i][k] != 0 {
					swap = i
					break
				}
			}
			if swap < 0 {
				return 0, nil
			}
			a[k], a[swap] = a[swap], a[k]
		}

		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				numerator := f.Sub(f.Mul(a[i][j], a[k][k]), f.Mul(a[i][k], a[k][j]))
				a[i][j] = f.Div(numerator, pivot)
			}
		}
		pivot = a[k][k]
	}
	return a[n-1][n-1], nil
}

func (m *Matrix) IsInvertible() (bool, error) {
	det, err := m.Determinant()
	if err != nil {
		return false, err
	}
	return det != 0, nil
}

// GPrime computes G·Ḡᵗ. Over GF(2) the conjugate is the identity, so this is G·Gᵗ.
func (m *Matrix) GPrime() (*Matrix, error) {
	return m.GPrimeUpTo(m.nRows - 1)
}

// GPrimeUpTo computes G·Ḡᵗ for the first lastRow+1 rows of G
func (m *Matrix) GPrimeUpTo(lastRow int) (*Matrix, error) {
	if err := m.checkRow(lastRow); err != nil {
		return nil, err
	}
	g, err := NewMatrixFromRows(m.nCols, m.field.Base(), m.rows[:lastRow+1])
	if err != nil {
		return nil, err
	}
	h, err := g.HermitianTranspose()
	if err != nil {
		return nil, err
	}
	return g.Multiply(h)
}

func (m *Matrix) ContainsZeroRow() bool {
	for _, row := range m.rows {
		if row == 0 {
			return true
		}
	}
	return false
}

// Digits unpacks the matrix
func (m *Matrix) Digits() [][]byte {
	digits := make([][]byte, m.nRows)
	for r, row := range m.rows {
		digits[r] = m.field.Unpack(row, m.nCols)
	}
	return digits
}

// PackedRows returns a copy of the packed rows
func (m *Matrix) PackedRows() []field.Vector {
	rows := make([]field.Vector, m.nRows)
	copy(rows, m.rows)
	return rows
}

func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		field: m.field,
		rows:  m.PackedRows(),
		nRows: m.nRows,
		nCols: m.nCols,
	}
}

func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.field.Base() != other.field.Base() || m.nRows != other.nRows || m.nCols != other.nCols {
		return false
	}
	for r := range m.rows {
		if m.rows[r] != other.rows[r] {
			return false
		}
	}
	return true
}

func (m *Matrix) String() string {
	var sb strings.Builder
	for r, row := range m.Digits() {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, d := range row {
			sb.WriteByte('0' + d)
		}
	}
	return sb.String()
}
