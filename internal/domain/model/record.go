// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// NoMajorFound is shown for people without any mapped major.
const NoMajorFound = "No Major Found"

// Record is one engagement: a person attending or using one event.
// Records are created at ingest and only derived fields change afterwards.
type Record struct {
	PersonID  string    // lowercased email
	UniqueID  int       // dense person number assigned at ingest
	EventType string    // raw event type name, lowercased
	Category  string    // summarized category from the groupings sheet
	TS        time.Time // event start

	RawSemester     string
	Semester        string // canonical label
	SemesterOrdinal int
	RelativeOrdinal int // offset from graduation, semester.NotApplicable when unknown
	GraduationLabel string
	ClassLevel      string
	Majors          []string
	Extra           map[string]string

	// Index is the record's position in the slice it was last sorted or filtered into.
	Index int
}

// HasMajor reports whether any declared major is in want.
func (r Record) HasMajor(want map[string]struct{}) bool {
	for _, m := range r.Majors {
		if _, ok := want[m]; ok {
			return true
		}
	}
	return false
}

// MajorsLabel joins the majors for display.
func (r Record) MajorsLabel() string {
	if len(r.Majors) == 0 {
		return NoMajorFound
	}
	out := r.Majors[0]
	for _, m := range r.Majors[1:] {
		out += ", " + m
	}
	return out
}

// SortByPerson returns a copy of records ordered by person then timestamp,
// keeping input order for equal timestamps, with Index reset to 0..n-1.
func SortByPerson(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PersonID != out[j].PersonID {
			return out[i].PersonID < out[j].PersonID
		}
		return out[i].TS.Before(out[j].TS)
	})
	Reindex(out)
	return out
}

// Reindex assigns contiguous positions to records in place.
func Reindex(records []Record) {
	for i := range records {
		records[i].Index = i
	}
}
