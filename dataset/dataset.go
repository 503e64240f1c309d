package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoData             = errors.New("no data")
	ErrDatasetLenMismatch = errors.New("column has a different length than the dataset")
	ErrDuplicateColumn    = errors.New("duplicate column")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrNonBinaryLabel     = errors.New("label values must be 0 or 1")
	ErrMissingValue       = errors.New("missing value in predictor column")
	ErrEmptySubset        = errors.New("no predictor columns selected")
	ErrLabelInSubset      = errors.New("label column cannot be used as a predictor")
	ErrNoRows             = errors.New("no rows selected")
)

// Dataset is a read only table of named numeric columns with one binary label column.
// Predictor columns may hold NaN for missing values; the label may not.
type Dataset struct {
	label   string
	names   []string
	columns map[string][]float64
	n       int
}

// NewDataset copies the provided columns into a Dataset. label must name one of the columns
// and contain only 0 and 1.
func NewDataset(names []string, columns [][]float64, label string) (*Dataset, error) {
	if len(names) == 0 || len(columns) == 0 || len(columns[0]) == 0 {
		return nil, ErrNoData
	}
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns, %w", len(names), len(columns), ErrDatasetLenMismatch)
	}

	n := len(columns[0])
	ds := &Dataset{
		label:   label,
		names:   make([]string, 0, len(names)),
		columns: make(map[string][]float64, len(names)),
		n:       n,
	}
	for i, name := range names {
		if len(columns[i]) != n {
			return nil, fmt.Errorf(
				"column %s has length of %d, but dataset has a length of %d, %w",
				name, len(columns[i]), n, ErrDatasetLenMismatch,
			)
		}
		if _, exists := ds.columns[name]; exists {
			return nil, fmt.Errorf("%s, %w", name, ErrDuplicateColumn)
		}
		ds.names = append(ds.names, name)
		ds.columns[name] = slices.Clone(columns[i])
	}

	labels, exists := ds.columns[label]
	if !exists {
		return nil, fmt.Errorf("label %s, %w", label, ErrUnknownColumn)
	}
	for i, v := range labels {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("row %d has label %v, %w", i, v, ErrNonBinaryLabel)
		}
	}
	return ds, nil
}

// Len returns the number of rows
func (ds *Dataset) Len() int {
	return ds.n
}

// Label returns the name of the label column
func (ds *Dataset) Label() string {
	return ds.label
}

// Columns returns every column name, label included, in load order
func (ds *Dataset) Columns() []string {
	return slices.Clone(ds.names)
}

// HasColumn reports whether name is a column of the dataset
func (ds *Dataset) HasColumn(name string) bool {
	_, exists := ds.columns[name]
	return exists
}

// Column returns a copy of the named column
func (ds *Dataset) Column(name string) ([]float64, error) {
	col, exists := ds.columns[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	return slices.Clone(col), nil
}

// ClassRows returns the row indices whose label equals class, in row order
func (ds *Dataset) ClassRows(class float64) []int {
	var rows []int
	for i, v := range ds.columns[ds.label] {
		if v == class {
			rows = append(rows, i)
		}
	}
	return rows
}

// ClassCounts returns the number of negative (0) and positive (1) rows
func (ds *Dataset) ClassCounts() (int, int) {
	var pos int
	for _, v := range ds.columns[ds.label] {
		if v == 1 {
			pos++
		}
	}
	return ds.n - pos, pos
}

// WithLabel returns a new slice holding vars followed by label. vars is never modified.
func WithLabel(vars []string, label string) []string {
	out := make([]string, 0, len(vars)+1)
	out = append(out, vars...)
	return append(out, label)
}

// ValidateSubset checks that vars is a non empty set of existing, distinct predictor columns
func (ds *Dataset) ValidateSubset(vars []string) error {
	if len(vars) == 0 {
		return ErrEmptySubset
	}
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if v == ds.label {
			return fmt.Errorf("%s, %w", v, ErrLabelInSubset)
		}
		if !ds.HasColumn(v) {
			return fmt.Errorf("%s, %w", v, ErrUnknownColumn)
		}
		if _, exists := seen[v]; exists {
			return fmt.Errorf("%s, %w", v, ErrDuplicateColumn)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// Matrices builds the design matrix of the vars columns and the single column label matrix
// for the given rows, in the order given.
func (ds *Dataset) Matrices(rows []int, vars []string) (*mat.Dense, *mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil, ErrNoRows
	}
	if err := ds.ValidateSubset(vars); err != nil {
		return nil, nil, err
	}

	cols := WithLabel(vars, ds.label)
	n := len(vars)
	x := mat.NewDense(len(rows), n, nil)
	y := mat.NewDense(len(rows), 1, nil)
	for i, r := range rows {
		if r < 0 || r >= ds.n {
			return nil, nil, fmt.Errorf("row %d of %d is out of range, %w", r, ds.n, ErrNoRows)
		}
		for j, name := range cols {
			v := ds.columns[name][r]
			if j == n {
				y.Set(i, 0, v)
				continue
			}
			if math.IsNaN(v) {
				return nil, nil, fmt.Errorf("column %s at row %d, %w", name, r, ErrMissingValue)
			}
			x.Set(i, j, v)
		}
	}
	return x, y, nil
}
