package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch    = errors.New("column size mismatch")
	ErrColOutOfBounds = errors.New("column is out of bounds")
)

// NewDenseFromArray builds a row major dense matrix from a slice of rows. All rows must
// have the same number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	if len(x) == 0 {
		return nil, mat.ErrZeroLength
	}
	m := len(x)
	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
	}
	if n == 0 {
		return nil, mat.ErrZeroLength
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewDenseFromColumns builds a dense matrix where each input slice becomes a column.
func NewDenseFromColumns(cols [][]float64) (*mat.Dense, error) {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, mat.ErrZeroLength
	}
	m := len(cols[0])
	n := len(cols)
	x := mat.NewDense(m, n, nil)
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows instead of %d, %w", j, len(col), m, ErrColMismatch)
		}
		x.SetCol(j, col)
	}
	return x, nil
}

// WithIntercept returns a copy of x with a constant 1.0 column prepended.
func WithIntercept(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

// DropColumn copies x without column c.
func DropColumn(x mat.Matrix, c int) (*mat.Dense, error) {
	m, n := x.Dims()
	if c < 0 || c >= n {
		return nil, fmt.Errorf("column %d of %d, %w", c, n, ErrColOutOfBounds)
	}
	if n == 1 {
		return nil, mat.ErrZeroLength
	}
	out := mat.NewDense(m, n-1, nil)
	for i := 0; i < m; i++ {
		k := 0
		for j := 0; j < n; j++ {
			if j == c {
				continue
			}
			out.Set(i, k, x.At(i, j))
			k++
		}
	}
	return out, nil
}
