// Package workbook reads and writes xlsx workbooks with excelize.
package workbook

import (
	"io"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/okian/engage/internal/domain/dataset"
	"github.com/okian/engage/internal/domain/model"
)

// Reader serves the sheets of an opened workbook. It implements dataset.Source.
type Reader struct {
	file *excelize.File
	// names maps lowercased sheet names to their spelling in the file.
	names map[string]string
}

var _ dataset.Source = (*Reader)(nil)

// Open parses an xlsx document.
func Open(r io.Reader) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.WrapKind("workbook.Open", model.ErrParse, err)
	}
	names := map[string]string{}
	for _, name := range f.GetSheetMap() {
		names[strings.ToLower(strings.TrimSpace(name))] = name
	}
	return &Reader{file: f, names: names}, nil
}

// SheetNames lists the sheets in the workbook.
func (r *Reader) SheetNames() []string {
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	return out
}

// Sheet returns the first row as the header and the remaining non-blank rows.
// Sheet names match case-insensitively.
func (r *Reader) Sheet(name string) (dataset.Sheet, error) {
	const op = "workbook.Sheet"

	actual, ok := r.names[strings.ToLower(name)]
	if !ok {
		return dataset.Sheet{}, model.NewKind(op, model.ErrParse, "workbook has no sheet %q", name)
	}
	rows, err := r.file.GetRows(actual)
	if err != nil {
		return dataset.Sheet{}, model.WrapKind(op, model.ErrParse, err)
	}
	out := dataset.Sheet{Name: name}
	if len(rows) == 0 {
		return out, nil
	}
	out.Header = rows[0]
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Load opens r and builds a dataset from it.
func Load(r io.Reader) (*dataset.Dataset, error) {
	src, err := Open(r)
	if err != nil {
		return nil, err
	}
	return dataset.Build(src)
}
