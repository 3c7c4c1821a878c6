package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// EncodeRecords writes a flat table with a single header row
func EncodeRecords(w io.Writer, headers []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRecords reads a flat table and returns its header and records
func ReadRecords(r io.Reader) ([]string, [][]string, error) {
	rows, err := readAll(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}
