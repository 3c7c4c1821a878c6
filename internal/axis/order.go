package axis

import (
	"fmt"

	"mriopack/internal/matrix"
)

// Axis names used in mismatch reports
const (
	NameSectors  = "sectors"
	NameProducts = "products"
)

// OrderMismatch reports the first position where an observed axis disagrees
// with the canonical order. A missing label is reported as an empty tuple.
type OrderMismatch struct {
	Axis     string
	Index    int
	Expected matrix.Label
	Actual   matrix.Label
}

func (e *OrderMismatch) Error() string {
	return fmt.Sprintf("%s axis position %d: expected %s, got %s", e.Axis, e.Index, e.Expected, e.Actual)
}

// DeriveOrder returns the sector and product axes in production vector order
func DeriveOrder(pv *matrix.ProductionVector) (sectors, products matrix.Axis) {
	n := pv.Len()
	sectors = matrix.Axis{Names: append([]string(nil), matrix.SectorFields...), Labels: make([]matrix.Label, n)}
	products = matrix.Axis{Names: append([]string(nil), matrix.ProductFields...), Labels: make([]matrix.Label, n)}
	for i, e := range pv.Entries {
		sectors.Labels[i] = e.Sector.Clone()
		products.Labels[i] = e.Product.Clone()
	}
	return sectors, products
}

// Verify compares observed against canonical label by label. It returns nil
// or an *OrderMismatch naming axis.
func Verify(name string, observed, canonical matrix.Axis) error {
	n := len(canonical.Labels)
	if len(observed.Labels) > n {
		n = len(observed.Labels)
	}
	for i := 0; i < n; i++ {
		var want, got matrix.Label
		if i < len(canonical.Labels) {
			want = canonical.Labels[i]
		}
		if i < len(observed.Labels) {
			got = observed.Labels[i]
		}
		if want == nil || got == nil || !want.Equal(got) {
			return &OrderMismatch{Axis: name, Index: i, Expected: clone(want), Actual: clone(got)}
		}
	}
	return nil
}

func clone(l matrix.Label) matrix.Label {
	if l == nil {
		return matrix.Label{}
	}
	return l.Clone()
}

// NonZero returns the positions of entries with a non-zero output
func NonZero(pv *matrix.ProductionVector) []int {
	kept := make([]int, 0, pv.Len())
	for i, e := range pv.Entries {
		if e.Value != 0 {
			kept = append(kept, i)
		}
	}
	return kept
}

// Reconcile checks an observed axis against the canonical order and returns
// the observed positions that belong to the pruned order given by kept.
// A source may list the full order (positions outside kept are then dropped)
// or already the pruned order; either way the check is positional.
func Reconcile(name string, observed, canonical matrix.Axis, kept []int) ([]int, error) {
	if observed.Len() == canonical.Len() {
		if err := Verify(name, observed, canonical); err != nil {
			return nil, err
		}
		return append([]int(nil), kept...), nil
	}
	if err := Verify(name, observed, canonical.Select(kept)); err != nil {
		return nil, err
	}
	positions := make([]int, len(kept))
	for i := range positions {
		positions[i] = i
	}
	return positions, nil
}
