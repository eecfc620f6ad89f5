// Package export bundles query artifacts into a single spreadsheet.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// Workbook writes one sheet per artifact, in the order given, reading
// <outputsDir>/<name>.csv. It returns the number of sheets written; with no
// artifacts nothing is written.
func Workbook(path, outputsDir string, artifacts []string) (int, error) {
	if len(artifacts) == 0 {
		slog.Debug("no artifacts to export", "path", path)
		return 0, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(artifacts))
	for i, name := range artifacts {
		frame, err := tabular.ReadCSVFile(filepath.Join(outputsDir, name+".csv"))
		if err != nil {
			return 0, fmt.Errorf("read artifact %s: %w", name, err)
		}

		sheet := uniqueSheetName(name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return 0, fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, frame, headerStyle); err != nil {
			return 0, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save file: %w", err)
	}
	return len(artifacts), nil
}

func writeSheet(f *excelize.File, sheet string, frame *tabular.Frame, headerStyle int) error {
	cols := frame.Columns()
	for c, name := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r := 0; r < frame.Len(); r++ {
		for c := range cols {
			raw, err := frame.Cell(r, c)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(raw)); err != nil {
				return err
			}
		}
	}

	if len(cols) > 0 {
		last, err := excelize.ColumnNumberToName(len(cols))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return err
		}
	}
	return nil
}

// cellValue stores numeric text as a number so spreadsheet formulas work.
func cellValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

// invalidSheetChars are rejected by spreadsheet applications in sheet names.
const invalidSheetChars = `:\/?*[]`

// sheetName maps an artifact name to a legal sheet name: invalid characters
// become '_', leading and trailing apostrophes are dropped and the result is
// cut to maxSheetName characters.
func sheetName(artifact string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, artifact)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "sheet"
	}
	return truncateRunes(name, maxSheetName)
}

// uniqueSheetName returns sheetName(artifact), suffixed with ~N when that
// name (compared case-insensitively, as workbooks do) is already in used.
func uniqueSheetName(artifact string, used map[string]bool) string {
	base := sheetName(artifact)
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = truncateRunes(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
