package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "mriopack/internal/errors"
	"mriopack/internal/schema"
)

// Reader is the uniform table reading capability used by every conversion
// stage
type Reader interface {
	// ReadTable returns every row of the table. Rows are padded to the width
	// of the widest row.
	ReadTable(ctx context.Context, src schema.Source) ([][]string, error)
	// ReadHeaders returns at most the first n rows without loading the rest
	ReadHeaders(ctx context.Context, src schema.Source, n int) ([][]string, error)
}

// Dir reads sources relative to one directory
type Dir struct {
	root   string
	logger *slog.Logger
}

// NewDir creates a reader rooted at dir
func NewDir(dir string, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{root: dir, logger: logger.With(slog.String("component", "sources"))}
}

// Root returns the directory the reader resolves filenames against
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) path(src schema.Source) (string, error) {
	p := filepath.Join(d.root, src.Filename)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NewConversionError(apperrors.ErrTypeNotFound, "source file not found", nil).
				WithResource(src.Filename).
				WithContext("directory", d.root)
		}
		return "", apperrors.NewInternalError("cannot access source file", err).WithResource(src.Filename)
	}
	return p, nil
}

func format(src schema.Source) (schema.SourceFormat, error) {
	if src.Format != "" {
		return src.Format, nil
	}
	f, ok := schema.DetectFormat(src.Filename)
	if !ok {
		return "", apperrors.NewUnsupportedFormat(filepath.Ext(src.Filename), "").WithResource(src.Filename)
	}
	return f, nil
}

// ReadTable implements Reader
func (d *Dir) ReadTable(ctx context.Context, src schema.Source) ([][]string, error) {
	return d.read(ctx, src, -1)
}

// ReadHeaders implements Reader
func (d *Dir) ReadHeaders(ctx context.Context, src schema.Source, n int) ([][]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return d.read(ctx, src, n)
}

func (d *Dir) read(ctx context.Context, src schema.Source, limit int) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := format(src)
	if err != nil {
		return nil, err
	}
	if f == schema.FormatXLSB {
		return nil, apperrors.NewUnsupportedFormat(string(f), "").WithResource(src.Filename)
	}
	p, err := d.path(src)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch f {
	case schema.FormatCSV:
		rows, err = readCSV(p, limit)
	case schema.FormatXLSX:
		rows, err = readWorkbook(p, src.Worksheet, limit)
	default:
		return nil, apperrors.NewUnsupportedFormat(string(f), "").WithResource(src.Filename)
	}
	if err != nil {
		var ce *apperrors.ConversionError
		if errors.As(err, &ce) {
			return nil, ce.WithResource(src.Filename)
		}
		return nil, apperrors.NewConversionError(apperrors.ErrTypeSchemaMismatch, "cannot read source table", err).WithResource(src.Filename)
	}

	d.logger.DebugContext(ctx, "source table read",
		slog.String("file", src.Filename),
		slog.String("worksheet", src.Worksheet),
		slog.Int("rows", len(rows)))
	return pad(rows), nil
}

func readCSV(p string, limit int) ([][]string, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	var rows [][]string
	for limit < 0 || len(rows) < limit {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if len(rows) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readWorkbook(p, sheet string, limit int) ([][]string, error) {
	wb, err := excelize.OpenFile(p)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	if idx, err := wb.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.NewConversionError(apperrors.ErrTypeNotFound, fmt.Sprintf("worksheet %q not found", sheet), nil)
	}

	it, err := wb.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("worksheet %q: %w", sheet, err)
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		if limit >= 0 && len(rows) >= limit {
			break
		}
		row, err := it.Columns()
		if err != nil {
			return nil, fmt.Errorf("worksheet %q row %d: %w", sheet, len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("worksheet %q: %w", sheet, err)
	}
	return rows, nil
}

// pad extends every row to the widest row; spreadsheet readers trim trailing
// empty cells
func pad(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows
}
