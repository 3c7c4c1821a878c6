package flows

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/matrix"
)

// divideColumns returns a copy of raw with column j divided by output j
func divideColumns(raw *matrix.Labeled, pv *matrix.ProductionVector) (*matrix.Labeled, error) {
	r, c := raw.Dims()
	if c != pv.Len() {
		return nil, apperrors.NewInternalError(fmt.Sprintf("matrix has %d columns but production has %d entries", c, pv.Len()), nil)
	}
	for j, e := range pv.Entries {
		if e.Value == 0 {
			return nil, apperrors.NewInternalError(
				fmt.Sprintf("zero principal production at position %d %s survived pruning", j, e.Sector), nil)
		}
	}

	out := raw.Clone()
	if r == 0 || c == 0 {
		return out, nil
	}
	for j, e := range pv.Entries {
		col := mat.Col(nil, j, out.Data)
		for i := range col {
			col[i] /= e.Value
		}
		out.Data.SetCol(j, col)
	}
	return out, nil
}

// NormalizeTechnosphere divides every column by its sector output and returns
// Identity minus the result
func NormalizeTechnosphere(raw *matrix.Labeled, pv *matrix.ProductionVector) (*matrix.Labeled, error) {
	r, c := raw.Dims()
	if r != c {
		return nil, apperrors.NewInternalError(fmt.Sprintf("technosphere is %dx%d, not square", r, c), nil)
	}
	coefficients, err := divideColumns(raw, pv)
	if err != nil {
		return nil, err
	}
	if r == 0 {
		return coefficients, nil
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		result.Set(i, i, 1)
	}
	result.Sub(result, coefficients.Data)
	coefficients.Data = result
	return coefficients, nil
}

// NormalizeExtension divides every column by its sector output
func NormalizeExtension(raw *matrix.Labeled, pv *matrix.ProductionVector) (*matrix.Labeled, error) {
	return divideColumns(raw, pv)
}

// Project keeps the given row and column positions. A nil position list keeps
// the whole axis.
func Project(m *matrix.Labeled, rows, cols []int) *matrix.Labeled {
	out := m
	if rows != nil {
		out = out.SelectRows(rows)
	}
	if cols != nil {
		out = out.SelectCols(cols)
	}
	if out == m {
		return m.Clone()
	}
	return out
}
