package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	content := "\ufeffa,b,c\n1,2\n\"x,y\",z,w\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.csv"), []byte(content), 0o644))

	r := NewDir(dir, nil)
	rows, err := r.ReadTable(context.Background(), schema.Source{Filename: "t.csv"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"1", "2", ""},
		{"x,y", "z", "w"},
	}, rows)

	headers, err := r.ReadHeaders(context.Background(), schema.Source{Filename: "t.csv", Format: schema.FormatCSV}, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, headers)
}

func TestReadWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "book.xlsx"), "Country", [][]interface{}{
		{"Country code", "Country name"},
		{"AT", "Austria"},
		{"BE"},
	})

	r := NewDir(dir, nil)
	src := schema.Source{Filename: "book.xlsx", Worksheet: "Country", Format: schema.FormatXLSX}
	rows, err := r.ReadTable(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Country code", "Country name"},
		{"AT", "Austria"},
		{"BE", ""},
	}, rows)

	headers, err := r.ReadHeaders(context.Background(), src, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Country code", "Country name"}}, headers)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "book.xlsx"), "Country", [][]interface{}{{"a"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.xlsb"), []byte("binary"), 0o644))

	tests := []struct {
		name    string
		src     schema.Source
		errType apperrors.ErrorType
	}{
		{"missing file", schema.Source{Filename: "absent.csv"}, apperrors.ErrTypeNotFound},
		{"missing worksheet", schema.Source{Filename: "book.xlsx", Worksheet: "Nope"}, apperrors.ErrTypeNotFound},
		{"binary workbook", schema.Source{Filename: "data.xlsb", Worksheet: "HIOT"}, apperrors.ErrTypeUnsupportedFormat},
		{"unknown suffix", schema.Source{Filename: "data.parquet"}, apperrors.ErrTypeUnsupportedFormat},
	}

	r := NewDir(dir, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ReadTable(context.Background(), tt.src)
			require.Error(t, err)
			assert.Equal(t, tt.errType, apperrors.GetErrorType(err))
			assert.Contains(t, err.Error(), tt.src.Filename)
		})
	}
}

func TestReadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDir(t.TempDir(), nil).ReadTable(ctx, schema.Source{Filename: "t.csv"})
	assert.ErrorIs(t, err, context.Canceled)
}
