package semester

import (
	"strings"

	"github.com/okian/engage/internal/domain/model"
)

// Aggregation selects how records are bucketed over time.
type Aggregation int

const (
	// None buckets by the raw semester ordinal.
	None Aggregation = iota
	// ClassYearAndTerm buckets by graduation-relative class year and term (16 buckets).
	ClassYearAndTerm
	// ClassYear buckets by graduation-relative class year (4 buckets).
	ClassYear
)

// Excluded names the bucket of offsets outside the defined class-year range.
const Excluded = "Do Not Include"

var classYears = []string{"Freshman", "Sophomore", "Junior", "Senior"}

var termOrder = []string{Summer, Fall, Winter, Spring}

// String returns the configuration name of the mode.
func (a Aggregation) String() string {
	switch a {
	case ClassYearAndTerm:
		return "class_year_term"
	case ClassYear:
		return "class_year"
	default:
		return "none"
	}
}

// ParseAggregation accepts the names produced by String.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "class_year_term":
		return ClassYearAndTerm, nil
	case "class_year":
		return ClassYear, nil
	}
	return None, model.NewKind("semester.ParseAggregation", model.ErrConfiguration, "unknown aggregation %q", s)
}

// Bucket is a time bucket a record falls into.
type Bucket struct {
	Key  int
	Name string
}

// ClassYearAndTermName names offsets 1..16, e.g. 2 is "Freshman Fall".
func ClassYearAndTermName(offset int) (string, bool) {
	if offset < 1 || offset > len(classYears)*termsPerYear {
		return Excluded, false
	}
	i := offset - 1
	return classYears[i/termsPerYear] + " " + termOrder[i%termsPerYear], true
}

// ClassYearName names offsets by class year only, e.g. 1..4 is "Freshman Year".
func ClassYearName(offset int) (string, bool) {
	if offset < 1 || offset > len(classYears)*termsPerYear {
		return Excluded, false
	}
	return classYears[(offset-1)/termsPerYear] + " Year", true
}

// Of returns the bucket of a record. ok is false for the Excluded bucket.
func (a Aggregation) Of(r model.Record) (Bucket, bool) {
	switch a {
	case ClassYearAndTerm:
		name, ok := ClassYearAndTermName(r.RelativeOrdinal)
		return Bucket{Key: r.RelativeOrdinal, Name: name}, ok
	case ClassYear:
		name, ok := ClassYearName(r.RelativeOrdinal)
		if !ok {
			return Bucket{Key: r.RelativeOrdinal, Name: name}, false
		}
		return Bucket{Key: (r.RelativeOrdinal + termsPerYear - 1) / termsPerYear, Name: name}, true
	default:
		return Bucket{Key: r.SemesterOrdinal, Name: Label(r.SemesterOrdinal)}, true
	}
}

// NameOf returns the display name of a bucket key.
func (a Aggregation) NameOf(key int) string {
	switch a {
	case ClassYearAndTerm:
		name, _ := ClassYearAndTermName(key)
		return name
	case ClassYear:
		if key < 1 || key > len(classYears) {
			return Excluded
		}
		return classYears[key-1] + " Year"
	default:
		return Label(key)
	}
}

// AxisTitle is the chart axis title for the mode.
func (a Aggregation) AxisTitle() string {
	switch a {
	case ClassYearAndTerm:
		return "Class Year and Term"
	case ClassYear:
		return "Class Year"
	default:
		return "Semester"
	}
}
