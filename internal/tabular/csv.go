package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// WriteCSV writes rs as CSV: a header row then one record per result row.
func WriteCSV(w io.Writer, rs *ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(rs.Columns))
	for i, row := range rs.Rows {
		for j := range record {
			if j < len(row) {
				record[j] = FormatValue(row[j])
			} else {
				record[j] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rs to path, replacing any existing file.
func WriteCSVFile(path string, rs *ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses CSV with a header row into a Frame.
// Input with no header yields an empty Frame with no columns.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return NewFrame(nil, nil), nil
	}
	return NewFrame(records[0], records[1:]), nil
}

// ReadCSVFile reads the CSV file at path into a Frame.
func ReadCSVFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
