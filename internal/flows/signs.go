package flows

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"mriopack/internal/matrix"
	"mriopack/pkg/contracts/domain"
)

var flipKinds = map[domain.ExtensionKind]bool{
	domain.KindEmission:                  true,
	domain.KindUnregisteredWasteEmission: true,
	domain.KindWasteSupply:               true,
	domain.KindPackagingSupply:           true,
	domain.KindMachinerySupply:           true,
	domain.KindStockAddition:             true,
}

// ShouldFlip reports whether rows of this category change sign. The shared
// other_supply_use category only flips rows whose name contains "supply".
func ShouldFlip(kind domain.ExtensionKind, name string) bool {
	if kind == domain.KindOtherSupplyUse {
		return strings.Contains(name, "supply")
	}
	return flipKinds[kind]
}

// RowCategory returns the kind and name of row i of a matrix
type RowCategory func(i int) (domain.ExtensionKind, string)

// LevelCategory reads the category of each row from the "kind" and "name"
// levels of the row axis
func LevelCategory(m *matrix.Labeled) RowCategory {
	kinds := m.Rows.Level("kind")
	names := m.Rows.Level("name")
	return func(i int) (domain.ExtensionKind, string) {
		var kind domain.ExtensionKind
		var name string
		if kinds != nil {
			kind = domain.ExtensionKind(kinds[i])
		}
		if names != nil {
			name = names[i]
		}
		return kind, name
	}
}

// ApplySignConvention returns a copy of m with the rows of flipped categories
// multiplied by -1. Applying it twice restores m.
func ApplySignConvention(m *matrix.Labeled, category RowCategory) *matrix.Labeled {
	out := m.Clone()
	r, c := out.Dims()
	if r == 0 || c == 0 {
		return out
	}
	for i := 0; i < r; i++ {
		if !ShouldFlip(category(i)) {
			continue
		}
		row := mat.Row(nil, i, out.Data)
		for j := range row {
			row[j] = -row[j]
		}
		out.Data.SetRow(i, row)
	}
	return out
}
