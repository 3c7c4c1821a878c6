package operations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"mriopack/internal/axis"
	"mriopack/internal/matrix"
	"mriopack/internal/schema"
	"mriopack/internal/tabular"
	"mriopack/pkg/contracts/domain"
)

const fixtureVersion = "fixture hybrid"

// fixtureProduction lists Steel, Wheat and Barley; Wheat has no output
func fixtureProduction() *matrix.ProductionVector {
	row := func(loc, name string, v float64) matrix.ProductionEntry {
		return matrix.EntryFromRow([]string{loc, name, "A_" + name, "i" + name, name, "C_" + name, "p" + name, "tonnes"}, v)
	}
	return &matrix.ProductionVector{Entries: []matrix.ProductionEntry{
		row("BE", "Steel", 4),
		row("AT", "Wheat", 0),
		row("AT", "Barley", 8),
	}}
}

// fixtureTechnosphere holds raw flows, products by sectors
var fixtureTechnosphere = []float64{
	1, 0, 2,
	3, 0, 0,
	0.5, 0, 4,
}

func fixtureRegistry(t *testing.T, output schema.OutputFormat, edit func(v *schema.Version)) *schema.Registry {
	t.Helper()
	v, err := schema.Default().Resolve("3.3.18 hybrid")
	require.NoError(t, err)

	v.ID = fixtureVersion
	v.Production.Source = schema.Source{Filename: "production.csv"}
	v.Technosphere.Source = schema.Source{Filename: "technosphere.csv"}
	if output == schema.OutputTable {
		v.Technosphere.Output = schema.OutputTable
		v.Technosphere.SaveAs = "technosphere.csv.bz2"
		v.Resources = schema.StandardResources(v.Compression, schema.OutputTable)
	}
	v.Extensions.Sheets = []schema.ExtensionSheet{
		{
			Kind:       domain.KindResource,
			Source:     schema.Source{Filename: "extensions.xlsx", Worksheet: "resource_act"},
			IndexNames: []string{"name", "unit"},
		},
		{
			Kind:       domain.KindEmission,
			Source:     schema.Source{Filename: "extensions.xlsx", Worksheet: "Emiss_act"},
			IndexNames: []string{"name", "unit", "compartment"},
		},
	}
	v.Nomenclature = schema.NomenclatureSchema{
		Locations: []schema.NomenclatureSheet{{
			Source:  schema.Source{Filename: "countries.csv"},
			Mapping: map[string]string{"Country code": "code", "Country name": "name"},
		}},
	}
	if edit != nil {
		edit(v)
	}

	r, err := schema.NewRegistry(*v)
	require.NoError(t, err)
	return r
}

// writeSources writes raw sources for the fixture version into dir. The
// sector order of the technosphere columns is permuted by sectorOrder.
func writeSources(t *testing.T, dir string, sectorOrder []int) {
	t.Helper()
	pv := fixtureProduction()

	fields := make([][]string, len(matrix.ProductionFields))
	values := make([]string, 0, pv.Len())
	for _, e := range pv.Entries {
		for k, f := range e.Row() {
			fields[k] = append(fields[k], f)
		}
		values = append(values, tabular.FormatValue(e.Value))
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strings.Join(f, ",") + "\n")
	}
	b.WriteString(strings.Join(values, ",") + "\n")
	writeFile(t, dir, "production.csv", b.String())

	sectors, products := axis.DeriveOrder(pv)
	raw, err := matrix.NewLabeled(products, sectors, mat.NewDense(3, 3, append([]float64(nil), fixtureTechnosphere...)))
	require.NoError(t, err)
	if sectorOrder != nil {
		raw = raw.SelectCols(sectorOrder)
	}
	f, err := os.Create(filepath.Join(dir, "technosphere.csv"))
	require.NoError(t, err)
	require.NoError(t, tabular.EncodeLabeled(f, raw))
	require.NoError(t, f.Close())

	header := func(indexCols int) [][]interface{} {
		var rows [][]interface{}
		for level, name := range matrix.SectorFields {
			row := make([]interface{}, 0, indexCols+len(sectors.Labels))
			for k := 0; k < indexCols-1; k++ {
				row = append(row, "")
			}
			row = append(row, name)
			for _, l := range sectors.Labels {
				row = append(row, l[level])
			}
			rows = append(rows, row)
		}
		return rows
	}
	resources := append(header(2),
		[]interface{}{"name", "unit"},
		[]interface{}{"Coal", "kg", 8, 1, 16},
	)
	emissions := append(header(3),
		[]interface{}{"name", "unit", "compartment"},
		[]interface{}{"CO2", "kg", "Air", 4, 5, 8},
	)
	writeWorkbook(t, filepath.Join(dir, "extensions.xlsx"), []string{"resource_act", "Emiss_act"},
		[][][]interface{}{resources, emissions})

	writeFile(t, dir, "countries.csv", "Country code,Country name\nAT,Austria\nBE,Belgium\n")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeWorkbook(t *testing.T, path string, sheets []string, contents [][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for s, sheet := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, row := range contents[s] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &r))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
