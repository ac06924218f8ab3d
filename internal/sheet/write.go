// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sheet reads and writes Excel workbooks and converts between
// workbooks and JSON.
package sheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	// maxColWidth caps the width of a column, in characters.
	maxColWidth = 100
	// maxSheetName is the Excel limit on sheet name length.
	maxSheetName = 31
	// headerFill is the background of the header row.
	headerFill = "D9E1F2"
)

// WriteTable writes header and rows to a new workbook at path with a single
// sheet. Cells wrap and align to the top. Each column is as wide as its
// longest value plus two, capped at 100 characters. Nil values leave the
// cell empty.
func WriteTable(path, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	name := SheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("naming sheet %q: %w", name, err)
	}

	headerStyle, cellStyle, err := tableStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("opening sheet %q: %w", name, err)
	}

	for i, w := range columnWidths(header, rows) {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for r, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = excelize.Cell{StyleID: cellStyle, Value: v}
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet %q: %w", name, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// StringRows widens string rows to the cell type WriteTable takes.
func StringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		out[i] = row
	}
	return out
}

func tableStyles(f *excelize.File) (header, cell int, err error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	align := &excelize.Alignment{WrapText: true, Vertical: "top"}

	header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: align,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border:    border,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("creating header style: %w", err)
	}
	cell, err = f.NewStyle(&excelize.Style{Alignment: align, Border: border})
	if err != nil {
		return 0, 0, fmt.Errorf("creating cell style: %w", err)
	}
	return header, cell, nil
}

func columnWidths(header []string, rows [][]any) []float64 {
	n := len(header)
	for _, r := range rows {
		n = max(n, len(r))
	}
	widest := make([]int, n)
	for i, h := range header {
		widest[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		for i, v := range r {
			if v == nil {
				continue
			}
			widest[i] = max(widest[i], utf8.RuneCountInString(fmt.Sprint(v)))
		}
	}
	out := make([]float64, n)
	for i, w := range widest {
		out[i] = float64(min(w+2, maxColWidth))
	}
	return out
}

// SheetName makes s a valid Excel sheet name: the characters []:*?/\ are
// replaced with spaces and the result is cut to 31 characters. An empty
// name becomes Sheet1.
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "Sheet1"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = strings.TrimSpace(string(r[:maxSheetName]))
	}
	return s
}
