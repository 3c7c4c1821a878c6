package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/matrix"
)

// ProductionHeader is the header of the canonical production table
func ProductionHeader() []string {
	return append(cloneNames(matrix.ProductionFields), "value")
}

// EncodeProduction writes the production vector as one row per entry
func EncodeProduction(w io.Writer, pv *matrix.ProductionVector) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ProductionHeader()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, e := range pv.Entries {
		row := append(e.Row(), FormatValue(e.Value))
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadProduction decodes a canonical production table from r
func ReadProduction(r io.Reader) (*matrix.ProductionVector, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeProduction(rows)
}

// DecodeProduction decodes the rows of a canonical production table
func DecodeProduction(rows [][]string) (*matrix.ProductionVector, error) {
	header := ProductionHeader()
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaMismatch("production table has no header")
	}
	for k, name := range header {
		if got := cell(rows[0], k); got != name {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("production header column %d is %q, expected %q", k+1, got, name))
		}
	}

	n := len(matrix.ProductionFields)
	pv := &matrix.ProductionVector{Entries: make([]matrix.ProductionEntry, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		fields := make([]string, n)
		for k := range fields {
			fields[k] = cell(row, k)
		}
		v, err := ParseValue(cell(row, n))
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("production row %d: %q is not a number", i+2, cell(row, n)))
		}
		pv.Entries = append(pv.Entries, matrix.EntryFromRow(fields, v))
	}
	return pv, nil
}

// DecodeProductionWide decodes a raw production vector published as one
// column per entry: one header row per field, then a single row of values.
// Columns whose header cells are all blank (an exported row index) are
// skipped.
func DecodeProductionWide(rows [][]string, fieldNames []string) (*matrix.ProductionVector, error) {
	n := len(fieldNames)
	if n != len(matrix.ProductionFields) {
		return nil, apperrors.NewConfigError(fmt.Sprintf("production layout needs %d field names, got %d", len(matrix.ProductionFields), n), nil)
	}
	if len(rows) < n+1 {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("production source has %d rows, expected %d header rows and a value row", len(rows), n))
	}

	width := 0
	for _, r := range rows[:n+1] {
		if len(r) > width {
			width = len(r)
		}
	}

	values := rows[n]
	pv := &matrix.ProductionVector{}
	for j := 0; j < width; j++ {
		fields := make([]string, n)
		empty := true
		for h := 0; h < n; h++ {
			fields[h] = cell(rows[h], j)
			if fields[h] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		// an index column repeats the level names in its header cells
		if fields[0] == fieldNames[0] && fields[n-1] == fieldNames[n-1] {
			continue
		}
		v, err := ParseValue(cell(values, j))
		if err != nil {
			return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("production column %d: %q is not a number", j+1, cell(values, j)))
		}
		pv.Entries = append(pv.Entries, matrix.EntryFromRow(fields, v))
	}
	return pv, nil
}
