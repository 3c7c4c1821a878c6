package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Labeled is a dense matrix with labeled rows and columns
type Labeled struct {
	Rows Axis
	Cols Axis
	Data *mat.Dense
}

// NewLabeled creates a labeled matrix and checks the dimensions agree
func NewLabeled(rows, cols Axis, data *mat.Dense) (*Labeled, error) {
	if data == nil {
		if rows.Len() != 0 && cols.Len() != 0 {
			return nil, fmt.Errorf("missing data for %dx%d matrix", rows.Len(), cols.Len())
		}
		return &Labeled{Rows: rows, Cols: cols}, nil
	}
	if r, c := data.Dims(); r != rows.Len() || c != cols.Len() {
		return nil, fmt.Errorf("matrix is %dx%d but axes are %dx%d", r, c, rows.Len(), cols.Len())
	}
	return &Labeled{Rows: rows, Cols: cols, Data: data}, nil
}

// Dims returns the matrix dimensions. A matrix with an empty axis has no
// backing data.
func (m *Labeled) Dims() (int, int) {
	if m.Data == nil {
		return m.Rows.Len(), m.Cols.Len()
	}
	return m.Data.Dims()
}

// At returns the value at row i, column j
func (m *Labeled) At(i, j int) float64 {
	return m.Data.At(i, j)
}

// Clone returns a deep copy
func (m *Labeled) Clone() *Labeled {
	var data *mat.Dense
	if m.Data != nil {
		data = mat.DenseCopyOf(m.Data)
	}
	return &Labeled{Rows: m.Rows.Clone(), Cols: m.Cols.Clone(), Data: data}
}

// SelectRows returns a new matrix keeping only the given rows
func (m *Labeled) SelectRows(positions []int) *Labeled {
	_, c := m.Dims()
	out := &Labeled{Rows: m.Rows.Select(positions), Cols: m.Cols.Clone()}
	if len(positions) == 0 || c == 0 {
		out.Data = emptyDense(len(positions), c)
		return out
	}
	data := mat.NewDense(len(positions), c, nil)
	for i, p := range positions {
		data.SetRow(i, mat.Row(nil, p, m.Data))
	}
	out.Data = data
	return out
}

// SelectCols returns a new matrix keeping only the given columns
func (m *Labeled) SelectCols(positions []int) *Labeled {
	r, _ := m.Dims()
	out := &Labeled{Rows: m.Rows.Clone(), Cols: m.Cols.Select(positions)}
	if len(positions) == 0 || r == 0 {
		out.Data = emptyDense(r, len(positions))
		return out
	}
	data := mat.NewDense(r, len(positions), nil)
	for j, p := range positions {
		data.SetCol(j, mat.Col(nil, p, m.Data))
	}
	out.Data = data
	return out
}

// emptyDense returns nil for zero-sized matrices, which gonum cannot represent
func emptyDense(r, c int) *mat.Dense {
	if r == 0 || c == 0 {
		return nil
	}
	return mat.NewDense(r, c, nil)
}
