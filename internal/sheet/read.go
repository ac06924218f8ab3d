// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet read as records keyed by its header row.
type Sheet struct {
	Name    string
	Records []Record
}

// ReadWorkbook reads every sheet of the workbook at path, in tab order.
// The first row of a sheet is its header. Empty header cells are named
// "Unnamed: N" (0-based column) and repeated names get a ".1", ".2"
// suffix. Rows with no values are skipped. Empty cells become nil,
// numeric cells become float64 and booleans become bool.
func ReadWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		s, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q of %s: %w", name, path, err)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func readSheet(f *excelize.File, name string) (Sheet, error) {
	s := Sheet{Name: name}
	rows, err := f.GetRows(name)
	if err != nil {
		return s, err
	}
	if len(rows) == 0 {
		return s, nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	header := headerNames(rows[0], width)

	for r := 1; r < len(rows); r++ {
		rec := Record{Keys: header, Values: make([]any, width)}
		blank := true
		for c := 0; c < width; c++ {
			if c >= len(rows[r]) || rows[r][c] == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return s, err
			}
			v, err := cellValue(f, name, cell, rows[r][c])
			if err != nil {
				return s, err
			}
			rec.Values[c] = v
			blank = false
		}
		if !blank {
			s.Records = append(s.Records, rec)
		}
	}
	return s, nil
}

// cellValue types a cell. Numbers whose display differs from their stored
// value because of a number format (dates, percentages) keep the display
// string.
func cellValue(f *excelize.File, sheet, cell, shown string) (any, error) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return shown == "TRUE" || shown == "1", nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return shown, nil
		}
		if raw != shown {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(shown, ",", ""), 64); err != nil {
				return shown, nil
			}
		}
		return n, nil
	default:
		return shown, nil
	}
}

func headerNames(row []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range width {
		name := ""
		if i < len(row) {
			name = strings.TrimSpace(row[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}
