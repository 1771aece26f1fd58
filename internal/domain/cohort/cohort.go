// Package cohort restricts records by graduating class, major and known-graduate status.
package cohort

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/engage/internal/domain/model"
)

// Criteria selects the cohort. The zero value keeps every record.
type Criteria struct {
	// GraduationYear keeps the class graduating that year; 0 disables the filter.
	GraduationYear int `json:"graduation_year" validate:"omitempty,gte=2000,lte=2100"`
	// Majors keeps people with at least one major in the set; empty disables the filter.
	Majors []string `json:"majors"`
	// KnownGraduatesOnly keeps people on the graduate email lists.
	KnownGraduatesOnly bool `json:"known_graduates_only"`
}

// Result is the filtered record set and its description.
type Result struct {
	Records     []model.Record
	Description string
}

const (
	notByClass    = "Data not restricted by graduating class"
	onlyGraduates = "Data restricted to only include students known to have graduated, but not by students major or graduating class"
	alsoGraduates = ". Data also restricted to only include students known to have graduated"
	majorsClause  = ", only including students with majors in the following categories: "
	notByMajor    = ", data not restricted by students major"
	orByMajor     = " or students major"
	classOfPrefix = "Graduating class of "
)

// GraduationLabels returns the graduation labels that belong to the class of year.
func GraduationLabels(year int) []string {
	y := strconv.Itoa(year)
	prev := strconv.Itoa(year - 1)
	return []string{
		"Spring Semester " + y,
		"Summer Semester " + y,
		"GPS Spring Semester " + y,
		"GPS Fall Semester " + prev,
		"Fall Semester " + prev,
	}
}

// Apply filters records, which must be sorted by person and time, and returns a
// re-indexed copy. graduates holds lowercased known-graduate emails.
// An empty outcome fails with model.ErrEmptyResult.
func Apply(records []model.Record, c Criteria, graduates map[string]struct{}) (Result, error) {
	var labels map[string]struct{}
	if c.GraduationYear != 0 {
		labels = make(map[string]struct{}, 5)
		for _, l := range GraduationLabels(c.GraduationYear) {
			labels[l] = struct{}{}
		}
	}
	var majors map[string]struct{}
	if len(c.Majors) > 0 {
		majors = make(map[string]struct{}, len(c.Majors))
		for _, m := range c.Majors {
			majors[m] = struct{}{}
		}
	}

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if labels != nil {
			if _, ok := labels[strings.TrimSpace(r.GraduationLabel)]; !ok {
				continue
			}
		}
		if majors != nil && !r.HasMajor(majors) {
			continue
		}
		if c.KnownGraduatesOnly {
			if _, ok := graduates[r.PersonID]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	model.Reindex(out)

	desc := Describe(c)
	if len(out) == 0 {
		return Result{Description: desc}, model.NewKind("cohort.Apply", model.ErrEmptyResult,
			"no records match: %s", desc)
	}
	return Result{Records: out, Description: desc}, nil
}

// Describe composes the restriction text in graduation, major, known-graduate order.
func Describe(c Criteria) string {
	var desc string
	if c.GraduationYear != 0 {
		desc = classOfPrefix + strconv.Itoa(c.GraduationYear)
	} else {
		desc = notByClass
	}

	switch {
	case len(c.Majors) > 0:
		majors := append([]string(nil), c.Majors...)
		sort.Strings(majors)
		desc += majorsClause + strings.Join(majors, ", ")
	case c.GraduationYear == 0:
		desc += orByMajor
	default:
		desc += notByMajor
	}

	if c.KnownGraduatesOnly {
		if desc == notByClass+orByMajor {
			return onlyGraduates
		}
		desc += alsoGraduates
	}
	return desc
}
