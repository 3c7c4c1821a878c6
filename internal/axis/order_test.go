package axis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mriopack/internal/matrix"
)

func entry(loc, name string, value float64) matrix.ProductionEntry {
	return matrix.EntryFromRow([]string{loc, name, "A_" + name, "i" + name, name, "C_" + name, "p" + name, "tonnes"}, value)
}

func fixture() *matrix.ProductionVector {
	return &matrix.ProductionVector{Entries: []matrix.ProductionEntry{
		entry("BE", "Steel", 4),
		entry("AT", "Wheat", 0),
		entry("AT", "Barley", 2),
	}}
}

func TestDeriveOrderKeepsVectorOrder(t *testing.T) {
	sectors, products := DeriveOrder(fixture())

	assert.Equal(t, matrix.SectorFields, sectors.Names)
	assert.Equal(t, matrix.ProductFields, products.Names)
	assert.Equal(t, []string{"BE", "AT", "AT"}, sectors.Level("location"))
	assert.Equal(t, []string{"Steel", "Wheat", "Barley"}, sectors.Level("sector name"))
	assert.Equal(t, []string{"C_Steel", "C_Wheat", "C_Barley"}, products.Level("product code 1"))
}

func TestVerify(t *testing.T) {
	sectors, _ := DeriveOrder(fixture())
	permuted := sectors.Select([]int{1, 0, 2})
	renamed := sectors.Clone()
	renamed.Labels[2][3] = "i99"

	tests := []struct {
		name     string
		observed matrix.Axis
		index    int
	}{
		{"identical", sectors.Clone(), -1},
		{"same set in a different order", permuted, 0},
		{"one field differs", renamed, 2},
		{"observed shorter", sectors.Select([]int{0, 1}), 2},
		{"observed longer", sectors.Select([]int{0, 1, 2, 2}), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(NameSectors, tt.observed, sectors)
			if tt.index < 0 {
				assert.NoError(t, err)
				return
			}
			var mismatch *OrderMismatch
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, NameSectors, mismatch.Axis)
			assert.Equal(t, tt.index, mismatch.Index)
		})
	}
}

func TestVerifyReportsLabels(t *testing.T) {
	sectors, _ := DeriveOrder(fixture())
	err := Verify(NameSectors, sectors.Select([]int{1, 0, 2}), sectors)

	var mismatch *OrderMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, matrix.Label{"BE", "Steel", "A_Steel", "iSteel"}, mismatch.Expected)
	assert.Equal(t, matrix.Label{"AT", "Wheat", "A_Wheat", "iWheat"}, mismatch.Actual)
	assert.Contains(t, err.Error(), "sectors axis position 0")
}

func TestVerifyComparesFieldsNotJoinedStrings(t *testing.T) {
	canonical := matrix.NewAxis([]string{"a", "b"}, []matrix.Label{{"x-y", "z"}})
	observed := matrix.NewAxis([]string{"a", "b"}, []matrix.Label{{"x", "y-z"}})
	assert.Error(t, Verify("test", observed, canonical))
}

func TestNonZero(t *testing.T) {
	assert.Equal(t, []int{0, 2}, NonZero(fixture()))
	assert.Empty(t, NonZero(&matrix.ProductionVector{}))
}

func TestReconcile(t *testing.T) {
	pv := fixture()
	sectors, _ := DeriveOrder(pv)
	kept := NonZero(pv)

	positions, err := Reconcile(NameSectors, sectors.Clone(), sectors, kept)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, positions)

	positions, err = Reconcile(NameSectors, sectors.Select(kept), sectors, kept)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, positions)

	_, err = Reconcile(NameSectors, sectors.Select([]int{2, 0}), sectors, kept)
	var mismatch *OrderMismatch
	assert.True(t, errors.As(err, &mismatch))
}
