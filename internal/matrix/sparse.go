package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Triplet is one stored entry of a coordinate matrix
type Triplet struct {
	Row   int
	Col   int
	Value float64
}

// Sparse is a coordinate (COO) matrix
type Sparse struct {
	NRows   int
	NCols   int
	Entries []Triplet
}

// FromDense collects the non-zero entries of d in row-major order
func FromDense(d *mat.Dense) *Sparse {
	if d == nil {
		return &Sparse{}
	}
	r, c := d.Dims()
	s := &Sparse{NRows: r, NCols: c}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := d.At(i, j); v != 0 {
				s.Entries = append(s.Entries, Triplet{Row: i, Col: j, Value: v})
			}
		}
	}
	return s
}

// Dims returns the matrix dimensions
func (s *Sparse) Dims() (int, int) {
	return s.NRows, s.NCols
}

// NNZ returns the number of stored entries
func (s *Sparse) NNZ() int {
	return len(s.Entries)
}

// ToDense expands the coordinate list. Duplicate coordinates are summed.
func (s *Sparse) ToDense() (*mat.Dense, error) {
	if s.NRows == 0 || s.NCols == 0 {
		if len(s.Entries) > 0 {
			return nil, fmt.Errorf("empty %dx%d matrix has %d entries", s.NRows, s.NCols, len(s.Entries))
		}
		return nil, nil
	}
	d := mat.NewDense(s.NRows, s.NCols, nil)
	for _, t := range s.Entries {
		if t.Row < 0 || t.Row >= s.NRows || t.Col < 0 || t.Col >= s.NCols {
			return nil, fmt.Errorf("entry (%d, %d) outside %dx%d matrix", t.Row, t.Col, s.NRows, s.NCols)
		}
		d.Set(t.Row, t.Col, d.At(t.Row, t.Col)+t.Value)
	}
	return d, nil
}
