package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mriopack/internal/errors"
	"mriopack/pkg/contracts/domain"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"3.3.17 hybrid", "3.3.18 hybrid"}, r.IDs())

	v, err := r.Resolve("3.3.18 hybrid")
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, v.Production.Format)
	assert.Equal(t, FormatCSV, v.Technosphere.Format)
	assert.Equal(t, OutputSparse, v.Technosphere.Output)
	require.Len(t, v.Extensions.Sheets, 12)
	assert.Equal(t, domain.KindResource, v.Extensions.Sheets[0].Kind)
	assert.Equal(t, domain.KindOtherSupplyUse, v.Extensions.Sheets[11].Kind)
	for _, sheet := range v.Extensions.Sheets {
		assert.Equal(t, FormatXLSB, sheet.Format, sheet.Worksheet)
		assert.Equal(t, "MR_HIOT_2011_v3_3_18_extensions.xlsb", sheet.Filename, sheet.Worksheet)
	}
	assert.Equal(t, "exiobase-3.3.18-hybrid.tar", v.ArchiveName())

	old, err := r.Resolve("3.3.17 hybrid")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSB, old.Production.Format)
	assert.Equal(t, OutputTable, old.Technosphere.Output)
}

func TestResolveUnknownVersion(t *testing.T) {
	_, err := Default().Resolve("9.9.9")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
	assert.Contains(t, err.Error(), "3.3.18 hybrid")
}

func TestResolveReturnsIndependentCopy(t *testing.T) {
	r := Default()
	v, err := r.Resolve("3.3.18 hybrid")
	require.NoError(t, err)

	v.Production.SaveAs = "changed.csv.bz2"
	v.Extensions.Sheets[0].IndexNames[0] = "changed"
	v.Nomenclature.Locations[0].Mapping["Country code"] = "changed"
	v.Resources[1].Schema.Fields[0].Name = "changed"

	again, err := r.Resolve("3.3.18 hybrid")
	require.NoError(t, err)
	assert.Equal(t, "production.csv.bz2", again.Production.SaveAs)
	assert.Equal(t, "name", again.Extensions.Sheets[0].IndexNames[0])
	assert.Equal(t, "code", again.Nomenclature.Locations[0].Mapping["Country code"])
	assert.Equal(t, "location", again.Resources[1].Schema.Fields[0].Name)
}

func validVersion(t *testing.T) Version {
	t.Helper()
	v, err := Default().Resolve("3.3.18 hybrid")
	require.NoError(t, err)
	v.ID = "test"
	return *v
}

func TestNewRegistryRejectsInvalidVersions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *Version)
		message string
	}{
		{
			name:    "unknown source extension",
			mutate:  func(v *Version) { v.Production.Filename = "production.parquet" },
			message: "unrecognized file extension",
		},
		{
			name: "workbook without worksheet",
			mutate: func(v *Version) {
				v.Technosphere.Filename = "hiot.xlsx"
				v.Technosphere.Worksheet = ""
			},
			message: "needs a worksheet",
		},
		{
			name:    "unknown extension kind",
			mutate:  func(v *Version) { v.Extensions.Sheets[0].Kind = "radiation" },
			message: "unknown extension kind",
		},
		{
			name:    "save_as does not match codec",
			mutate:  func(v *Version) { v.Production.SaveAs = "production.csv.zst" },
			message: "must end with",
		},
		{
			name:    "sparse output with table suffix",
			mutate:  func(v *Version) { v.Technosphere.SaveAs = "technosphere.csv.bz2" },
			message: "sparse save_as",
		},
		{
			name: "missing resource descriptor",
			mutate: func(v *Version) {
				var kept []ResourceDescriptor
				for _, r := range v.Resources {
					if r.Name != ResourceProduction {
						kept = append(kept, r)
					}
				}
				v.Resources = kept
			},
			message: "missing resource descriptor \"production\"",
		},
		{
			name:    "duplicate resource",
			mutate:  func(v *Version) { v.Resources = append(v.Resources, v.Resources[0]) },
			message: "listed twice",
		},
		{
			name:    "nested resource path",
			mutate:  func(v *Version) { v.Resources[3].Path = "nomenclature/locations.csv.bz2" },
			message: "top-level file name",
		},
		{
			name:    "wrong production column count",
			mutate:  func(v *Version) { v.Production.ColumnNames = v.Production.ColumnNames[:3] },
			message: "invalid version definition",
		},
		{
			name:    "unknown output format",
			mutate:  func(v *Version) { v.Technosphere.Output = "parquet" },
			message: "invalid version definition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVersion(t)
			tt.mutate(&v)

			_, err := NewRegistry(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConfig)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestNewRegistryRejectsDuplicateIDs(t *testing.T) {
	v := validVersion(t)
	_, err := NewRegistry(v, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestNewRegistryDoesNotMutateInput(t *testing.T) {
	v := validVersion(t)
	v.Production.Format = ""

	_, err := NewRegistry(v)
	require.NoError(t, err)
	assert.Equal(t, SourceFormat(""), v.Production.Format)
}

const registryFile = `
versions:
  - id: "test zst"
    compression: zst
    dataset:
      slug: test
      name: Test dataset
      id: test-1
      version: "1"
    production:
      filename: production.csv
      column_names: [location, sector name, sector code 1, sector code 2, product name, product code 1, product code 2, unit]
      save_as: production.csv.zst
    technosphere:
      filename: hiot.csv
      index_names: [location, product name, product code 1, product code 2, unit]
      column_names: [location, sector name, sector code 1, sector code 2]
      output: table
      save_as: technosphere.csv.zst
    extensions:
      sheets:
        - kind: emission
          filename: emissions.csv
          index_names: [name, unit, compartment]
        - kind: other supply
          filename: other.csv
          index_names: [name, unit]
      column_names: [location, sector name, sector code 1, sector code 2]
      save_as: extensions.csv.zst
    resources:
      - name: production
        path: production.csv.zst
        mediatype: text/csv+zstd
      - name: technosphere
        path: technosphere.csv.zst
        mediatype: text/csv+zstd
      - name: extensions
        path: extensions.csv.zst
        mediatype: text/csv+zstd
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryFile), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.3.17 hybrid", "3.3.18 hybrid", "test zst"}, r.IDs())

	v, err := r.Resolve("test zst")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, v.Compression)
	assert.Equal(t, OutputTable, v.Technosphere.Output)
	assert.Equal(t, domain.KindOtherSupplyUse, v.Extensions.Sheets[1].Kind)
	assert.True(t, v.Nomenclature.Empty())
	assert.Equal(t, "test-test-zst.tar", v.ArchiveName())
}

func TestLoadFileCannotRedefineBuiltin(t *testing.T) {
	content := []byte("versions:\n  - id: \"3.3.18 hybrid\"\n")
	path := filepath.Join(t.TempDir(), "versions.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, apperrors.ErrConfig)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("versions:\n  - id: x\n    unknown_key: 1\n"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     SourceFormat
		ok       bool
	}{
		{"a.csv", FormatCSV, true},
		{"A.CSV", FormatCSV, true},
		{"a.xlsx", FormatXLSX, true},
		{"a.xlsm", FormatXLSX, true},
		{"a.xlsb", FormatXLSB, true},
		{"a.txt", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := DetectFormat(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
