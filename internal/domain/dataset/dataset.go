// Package dataset turns the sheets of an uploaded workbook into engagement records.
package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
	"github.com/okian/engage/internal/domain/trend"
)

// droppedColumns are Data sheet columns never carried into records or exports.
var droppedColumns = map[string]struct{}{
	"email.1":                       {},
	"self-reported graduation date": {},
	"medium":                        {},
	"event originator":              {},
	"event medium":                  {},
	"host":                          {},
}

// Dataset is an ingested workbook. It is read-only once built.
type Dataset struct {
	// Records are sorted by person then time and contiguously indexed.
	Records []model.Record
	// Catalog carries the importance ranking; frequency is applied per filter.
	Catalog catalog.Catalog
	// Majors are the major categories offered for filtering, sorted.
	Majors []string
	// MajorsByPerson maps a lowercased email to its major categories.
	MajorsByPerson map[string][]string
	// Graduates are the known-graduate lists in sheet column order.
	Graduates []trend.GraduateClass
	// GraduationYears are offered for the graduating class filter, newest first.
	GraduationYears []int
	// ExtraColumns are Data sheet headers kept verbatim on each record.
	ExtraColumns []string
}

// Build reads every sheet from src. Mapping mismatches fail with model.ErrLookup,
// malformed cells and missing columns with model.ErrParse.
func Build(src Source) (*Dataset, error) {
	eventCategory, err := readGroupings(src)
	if err != nil {
		return nil, err
	}
	ranking, err := readRankings(src)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(ranking)
	if err != nil {
		return nil, err
	}
	gradLabel, err := readDemographics(src)
	if err != nil {
		return nil, err
	}
	majorsByPerson, majorOptions, err := readMajors(src)
	if err != nil {
		return nil, err
	}
	graduates, err := readGraduates(src)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		Catalog:        cat,
		Majors:         majorOptions,
		MajorsByPerson: majorsByPerson,
		Graduates:      graduates,
	}
	if err := d.readRecords(src, eventCategory, gradLabel); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(gradLabel))
	for _, l := range gradLabel {
		labels = append(labels, l)
	}
	d.GraduationYears = semester.GraduationYears(labels)
	return d, nil
}

// KnownGraduates is the union of all graduate lists.
func (d *Dataset) KnownGraduates() map[string]struct{} {
	out := map[string]struct{}{}
	for _, c := range d.Graduates {
		for _, e := range c.Emails {
			out[e] = struct{}{}
		}
	}
	return out
}

// HasMajor reports whether the person has a major in want.
func (d *Dataset) HasMajor(email string, want []string) bool {
	for _, m := range d.MajorsByPerson[email] {
		for _, w := range want {
			if m == w {
				return true
			}
		}
	}
	return false
}

func (d *Dataset) readRecords(src Source, eventCategory, gradLabel map[string]string) error {
	const op = "dataset.readRecords"

	sheet, err := src.Sheet(SheetData)
	if err != nil {
		return err
	}
	cols, err := sheet.Columns(ColEmail, ColEventType, ColStartDate, ColSemester, ColClassLevel)
	if err != nil {
		return err
	}
	emailCol, typeCol, dateCol, semCol, levelCol := cols[0], cols[1], cols[2], cols[3], cols[4]

	used := map[int]struct{}{}
	for _, c := range cols {
		used[c] = struct{}{}
	}
	extra := map[int]string{}
	for i, h := range sheet.Header {
		key := headerKey(h)
		if _, ok := used[i]; ok || key == "" || strings.HasPrefix(key, "unnamed") {
			continue
		}
		if _, ok := droppedColumns[key]; ok {
			continue
		}
		extra[i] = strings.TrimSpace(h)
		d.ExtraColumns = append(d.ExtraColumns, strings.TrimSpace(h))
	}

	records := make([]model.Record, 0, len(sheet.Rows))
	for n, row := range sheet.Rows {
		line := n + 2
		email := strings.ToLower(Cell(row, emailCol))
		if email == "" {
			continue
		}
		eventType := strings.ToLower(Cell(row, typeCol))
		category, ok := eventCategory[eventType]
		if !ok {
			return model.NewKind(op, model.ErrLookup, "row %d: event type %q is not in %q", line, eventType, SheetEventGroupings)
		}
		if category == catalog.DoNotInclude {
			continue
		}
		if !d.Catalog.Contains(category) {
			return model.NewKind(op, model.ErrLookup, "row %d: category %q is not in %q", line, category, SheetEventRankings)
		}
		ts, err := ParseDate(Cell(row, dateCol))
		if err != nil {
			return model.WrapKind(op, model.ErrParse, lineError(line, err))
		}
		raw := Cell(row, semCol)
		label, err := semester.Canonical(raw)
		if err != nil {
			return model.WrapKind(op, model.ErrParse, lineError(line, err))
		}
		ordinal, err := semester.Ordinal(label)
		if err != nil {
			return model.WrapKind(op, model.ErrParse, lineError(line, err))
		}
		grad := gradLabel[email]
		relative, err := semester.Relative(label, grad)
		if err != nil {
			return model.WrapKind(op, model.ErrParse, lineError(line, err))
		}

		r := model.Record{
			PersonID:        email,
			EventType:       eventType,
			Category:        category,
			TS:              ts,
			RawSemester:     raw,
			Semester:        label,
			SemesterOrdinal: ordinal,
			RelativeOrdinal: relative,
			GraduationLabel: grad,
			ClassLevel:      Cell(row, levelCol),
			Majors:          d.MajorsByPerson[email],
		}
		if len(extra) > 0 {
			r.Extra = make(map[string]string, len(extra))
			for i, h := range extra {
				r.Extra[h] = Cell(row, i)
			}
		}
		records = append(records, r)
	}

	people := map[string]int{}
	for _, r := range records {
		people[r.PersonID] = 0
	}
	emails := make([]string, 0, len(people))
	for e := range people {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	for i, e := range emails {
		people[e] = i + 1
	}
	for i := range records {
		records[i].UniqueID = people[records[i].PersonID]
	}

	d.Records = model.SortByPerson(records)
	return nil
}

func readGroupings(src Source) (map[string]string, error) {
	sheet, err := src.Sheet(SheetEventGroupings)
	if err != nil {
		return nil, err
	}
	cols, err := sheet.Columns(ColEventType, ColSummarized)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(sheet.Rows))
	for _, row := range sheet.Rows {
		name := strings.ToLower(Cell(row, cols[0]))
		if name == "" {
			continue
		}
		out[name] = Cell(row, cols[1])
	}
	return out, nil
}

func readRankings(src Source) (map[string]int, error) {
	const op = "dataset.readRankings"

	sheet, err := src.Sheet(SheetEventRankings)
	if err != nil {
		return nil, err
	}
	cols, err := sheet.Columns(ColGroupingType, ColRankedImportance)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(sheet.Rows))
	for n, row := range sheet.Rows {
		name := Cell(row, cols[0])
		if name == "" {
			continue
		}
		raw := Cell(row, cols[1])
		rank, err := strconv.ParseFloat(raw, 64)
		if err != nil || rank != math.Trunc(rank) {
			return nil, model.NewKind(op, model.ErrParse,
				"row %d: rank %q of %q is not a whole number", n+2, raw, name)
		}
		if _, dup := out[name]; dup {
			return nil, model.NewKind(op, model.ErrLookup, "row %d: %q is ranked twice", n+2, name)
		}
		out[name] = int(rank)
	}
	return out, nil
}

func readDemographics(src Source) (map[string]string, error) {
	sheet, err := src.Sheet(SheetDemographics)
	if err != nil {
		return nil, err
	}
	cols, err := sheet.Columns(ColEmail, ColCompletion)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(sheet.Rows))
	for _, row := range sheet.Rows {
		email := strings.ToLower(Cell(row, cols[0]))
		if email == "" {
			continue
		}
		out[email] = Cell(row, cols[1])
	}
	return out, nil
}

func readMajors(src Source) (map[string][]string, []string, error) {
	const op = "dataset.readMajors"

	groupings, err := src.Sheet(SheetMajorGroupings)
	if err != nil {
		return nil, nil, err
	}
	gcols, err := groupings.Columns(ColMajorType, ColMajorRestricted)
	if err != nil {
		return nil, nil, err
	}
	categoryOf := make(map[string]string, len(groupings.Rows))
	options := map[string]struct{}{}
	for _, row := range groupings.Rows {
		major, category := Cell(row, gcols[0]), Cell(row, gcols[1])
		if major == "" || category == "" {
			continue
		}
		categoryOf[major] = category
		options[category] = struct{}{}
	}

	sheet, err := src.Sheet(SheetMajors)
	if err != nil {
		return nil, nil, err
	}
	cols, err := sheet.Columns(ColStudentEmail, ColMajorName)
	if err != nil {
		return nil, nil, err
	}
	byPerson := map[string][]string{}
	for n, row := range sheet.Rows {
		email := strings.ToLower(Cell(row, cols[0]))
		major := Cell(row, cols[1])
		if email == "" || major == "" {
			continue
		}
		category, ok := categoryOf[major]
		if !ok {
			return nil, nil, model.NewKind(op, model.ErrLookup, "row %d: major %q is not in %q", n+2, major, SheetMajorGroupings)
		}
		if !contains(byPerson[email], category) {
			byPerson[email] = append(byPerson[email], category)
		}
	}

	list := make([]string, 0, len(options))
	for o := range options {
		list = append(list, o)
	}
	sort.Strings(list)
	return byPerson, list, nil
}

func readGraduates(src Source) ([]trend.GraduateClass, error) {
	sheet, err := src.Sheet(SheetGraduates)
	if err != nil {
		return nil, err
	}
	var out []trend.GraduateClass
	for i, h := range sheet.Header {
		name := strings.TrimSpace(h)
		if name == "" || strings.HasPrefix(strings.ToLower(name), "unnamed") {
			continue
		}
		class := trend.GraduateClass{Name: name}
		for _, row := range sheet.Rows {
			if e := strings.ToLower(Cell(row, i)); e != "" {
				class.Emails = append(class.Emails, e)
			}
		}
		out = append(out, class)
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
