package workbook

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/okian/engage/internal/domain/dataset"
	"github.com/okian/engage/internal/domain/types"
)

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// maxSheetName is the longest sheet name xlsx allows.
const maxSheetName = 31

// WriteTable writes a single-sheet workbook holding t.
func WriteTable(w io.Writer, t types.Table) error {
	f := excelize.NewFile()
	if err := writeRows(f, defaultSheet, 1, headerRow(t.Columns), t.Rows); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteSheets writes one worksheet per sheet, in order.
func WriteSheets(w io.Writer, sheets []dataset.Sheet) error {
	f := excelize.NewFile()
	keepDefault := false
	for _, s := range sheets {
		if s.Name == defaultSheet {
			keepDefault = true
		}
		f.NewSheet(s.Name)
		rows := make([][]any, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = stringsRow(r)
		}
		if err := writeRows(f, s.Name, 1, stringsRow(s.Header), rows); err != nil {
			return err
		}
	}
	if !keepDefault && len(sheets) > 0 {
		f.DeleteSheet(defaultSheet)
	}
	return f.Write(w)
}

// WriteCharts writes one worksheet per saved chart with its title, filter
// description and note above the chart table.
func WriteCharts(w io.Writer, entries []types.WorkbookEntry) error {
	f := excelize.NewFile()
	for i, e := range entries {
		name := sheetName(i+1, string(e.Chart.Kind))
		f.NewSheet(name)
		meta := [][]any{
			{"Title", e.Chart.Title},
			{"Filters", e.Chart.Subtitle},
			{"Note", e.Note},
		}
		if err := writeRows(f, name, 1, nil, meta); err != nil {
			return err
		}
		if err := writeRows(f, name, len(meta)+2, headerRow(e.Chart.Table.Columns), e.Chart.Table.Rows); err != nil {
			return err
		}
	}
	if len(entries) > 0 {
		f.DeleteSheet(defaultSheet)
	}
	return f.Write(w)
}

func sheetName(n int, kind string) string {
	name := fmt.Sprintf("%d %s", n, kind)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// writeRows writes header (when non-nil) and rows starting at row start.
func writeRows(f *excelize.File, sheet string, start int, header []any, rows [][]any) error {
	line := start
	if header != nil {
		if err := setRow(f, sheet, line, header); err != nil {
			return err
		}
		line++
	}
	for _, r := range rows {
		if err := setRow(f, sheet, line, r); err != nil {
			return err
		}
		line++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, row []any) error {
	axis, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", line, err)
	}
	cells := []interface{}(row)
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write row %d of %q: %w", line, sheet, err)
	}
	return nil
}

func headerRow(cols []string) []any {
	return stringsRow(cols)
}

func stringsRow(r []string) []any {
	out := make([]any, len(r))
	for i, v := range r {
		out[i] = v
	}
	return out
}
