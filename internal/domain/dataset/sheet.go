package dataset

import (
	"strings"

	"github.com/okian/engage/internal/domain/model"
)

// Sheet names of the uploaded workbook.
const (
	SheetData           = "Data"
	SheetDemographics   = "Demographics"
	SheetEventGroupings = "Event Groupings"
	SheetEventRankings  = "Event Rankings"
	SheetMajors         = "Majors and Minors"
	SheetMajorGroupings = "Majors and Minors Groupings"
	SheetGraduates      = "Graduate Emails"
)

// Column headers, matched case-insensitively against the first line of each header cell.
const (
	ColEmail            = "Email"
	ColEventType        = "Event Type Name"
	ColStartDate        = "Events Start Date Date"
	ColSemester         = "Semester"
	ColClassLevel       = "Class Level"
	ColCompletion       = "Expected Completion Period"
	ColSummarized       = "Event Type Summarized"
	ColGroupingType     = "Types of Event Groupings"
	ColRankedImportance = "Ranked Importance of Events"
	ColStudentEmail     = "Students Email - Institution"
	ColMajorName        = "Majors Name"
	ColMajorType        = "Types of Majors"
	ColMajorRestricted  = "Majors (Restricted List)"
)

// Sheet is a header row plus data rows. Rows may be shorter than the header.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Source provides sheets by name.
type Source interface {
	Sheet(name string) (Sheet, error)
}

// Column finds the index of a header. A missing header is a parse error.
func (s Sheet) Column(name string) (int, error) {
	want := strings.ToLower(name)
	for i, h := range s.Header {
		if headerKey(h) == want {
			return i, nil
		}
	}
	return -1, model.NewKind("dataset.Column", model.ErrParse, "sheet %q has no column %q", s.Name, name)
}

// Columns resolves several headers at once.
func (s Sheet) Columns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, err := s.Column(n)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Cell returns the trimmed value at column i of row, or "" when the row is short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func headerKey(h string) string {
	h = strings.ReplaceAll(h, "\r", "")
	if i := strings.Index(h, "\n"); i >= 0 {
		h = h[:i]
	}
	return strings.ToLower(strings.TrimSpace(h))
}

// Sheets is an in-memory Source.
type Sheets []Sheet

// Sheet finds a sheet by case-insensitive name.
func (s Sheets) Sheet(name string) (Sheet, error) {
	for _, sh := range s {
		if strings.EqualFold(sh.Name, name) {
			return sh, nil
		}
	}
	return Sheet{}, model.NewKind("dataset.Sheets", model.ErrParse, "workbook has no sheet %q", name)
}
