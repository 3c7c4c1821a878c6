package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/matrix"
)

// Layout names the index levels (one leading column each) and the column
// levels (one header row each) of a labeled table
type Layout struct {
	IndexNames  []string
	ColumnNames []string
}

// FormatValue renders a float in its shortest exact form
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseValue parses a numeric cell. Blank cells are zero.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// EncodeLabeled writes m as a multi-row-header CSV table
func EncodeLabeled(w io.Writer, m *matrix.Labeled) error {
	nIdx, nHdr := len(m.Rows.Names), len(m.Cols.Names)
	if nIdx == 0 || nHdr == 0 {
		return fmt.Errorf("labeled table needs at least one index and one column level")
	}
	nRows, nCols := m.Dims()

	writer := csv.NewWriter(w)
	for h := 0; h < nHdr; h++ {
		row := make([]string, nIdx+nCols)
		row[nIdx-1] = m.Cols.Names[h]
		for j, l := range m.Cols.Labels {
			row[nIdx+j] = l[h]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write header row %d: %w", h, err)
		}
	}

	names := make([]string, nIdx+nCols)
	copy(names, m.Rows.Names)
	if err := writer.Write(names); err != nil {
		return fmt.Errorf("failed to write index names: %w", err)
	}

	for i := 0; i < nRows; i++ {
		row := make([]string, 0, nIdx+nCols)
		row = append(row, m.Rows.Labels[i]...)
		for j := 0; j < nCols; j++ {
			row = append(row, FormatValue(m.Data.At(i, j)))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadLabeled decodes a labeled CSV table from r
func ReadLabeled(r io.Reader, layout Layout) (*matrix.Labeled, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeLabeled(rows, layout)
}

// DecodeLabeled builds a labeled matrix from raw rows. The row naming the index
// levels is optional so that tables exported by other tools are accepted.
func DecodeLabeled(rows [][]string, layout Layout) (*matrix.Labeled, error) {
	nIdx, nHdr := len(layout.IndexNames), len(layout.ColumnNames)
	if nIdx == 0 || nHdr == 0 {
		return nil, apperrors.NewConfigError("labeled table layout needs index and column names", nil)
	}
	if len(rows) < nHdr {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("table has %d rows but %d header rows are expected", len(rows), nHdr))
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	nCols := width - nIdx
	if nCols < 0 {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("table has %d columns but %d index columns are expected", width, nIdx))
	}

	cols := matrix.Axis{Names: cloneNames(layout.ColumnNames), Labels: make([]matrix.Label, nCols)}
	for j := 0; j < nCols; j++ {
		l := make(matrix.Label, nHdr)
		for h := 0; h < nHdr; h++ {
			l[h] = cell(rows[h], nIdx+j)
		}
		cols.Labels[j] = l
	}

	start := nHdr
	if start < len(rows) && isNamesRow(rows[start], layout.IndexNames) {
		start++
	}

	labels := make([]matrix.Label, 0, len(rows)-start)
	var values []float64
	for i := start; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		l := make(matrix.Label, nIdx)
		for k := 0; k < nIdx; k++ {
			l[k] = cell(rows[i], k)
		}
		for j := 0; j < nCols; j++ {
			raw := cell(rows[i], nIdx+j)
			v, err := ParseValue(raw)
			if err != nil {
				return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("row %d column %d: %q is not a number", i+1, nIdx+j+1, raw))
			}
			values = append(values, v)
		}
		labels = append(labels, l)
	}

	var data *mat.Dense
	if len(labels) > 0 && nCols > 0 {
		data = mat.NewDense(len(labels), nCols, values)
	}
	return matrix.NewLabeled(matrix.Axis{Names: cloneNames(layout.IndexNames), Labels: labels}, cols, data)
}

// isNamesRow reports whether row names the index levels. A row whose value
// cells are all blank is still data unless its index cells are the names.
func isNamesRow(row []string, names []string) bool {
	for k, name := range names {
		if !strings.EqualFold(cell(row, k), name) {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func readAll(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewSchemaMismatch(fmt.Sprintf("malformed csv: %v", err))
	}
	return rows, nil
}
