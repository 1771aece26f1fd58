// Package semester turns free-text term labels into chronological ordinals,
// graduation-relative offsets and class-year buckets.
package semester

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/engage/internal/domain/model"
)

// Term names in chronological order within an academic year starting in summer.
const (
	Summer = "Summer"
	Fall   = "Fall"
	Winter = "Winter"
	Spring = "Spring"
)

// NotApplicable is the offset of a record whose graduation term is unknown.
const NotApplicable = -9999

const (
	baseYear     = 2017
	baseGradYear = 2021
	termsPerYear = 4
)

var (
	yearPattern     = regexp.MustCompile(`(\d{4})`)
	fiscalPattern   = regexp.MustCompile(`(?i)\(?\s*FY\s*(\d{2})\s*\)?`)
	twoDigitPattern = regexp.MustCompile(`(\d{2})\s*\)?\s*$`)
)

var termOffsets = map[string]int{
	Summer: 0,
	Fall:   1,
	Winter: 2,
	Spring: -1,
}

// Canonical normalizes a raw label, e.g. "Winter (FY24)" -> "Winter 2024",
// "Fall (FY24)" -> "Fall 2023", "Fall 2023 (FY24)" -> "Fall 2023", "FAll 2022" -> "Fall 2022".
// Academic years start in summer; a fiscal year FYnn ends with Spring 20nn.
// Winter is named after the year its academic year ends, so Winter 2018
// falls between Fall 2017 and Spring 2018.
func Canonical(raw string) (string, error) {
	const op = "semester.Canonical"

	s := strings.TrimSpace(strings.ReplaceAll(raw, "FAll", Fall))
	if s == "" {
		return "", model.NewKind(op, model.ErrParse, "empty semester label")
	}
	term, err := termOf(s)
	if err != nil {
		return "", model.WrapKind(op, model.ErrParse, err)
	}

	fiscal := 0
	if m := fiscalPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		fiscal = 2000 + n
		s = strings.TrimSpace(fiscalPattern.ReplaceAllString(s, ""))
	}
	year := yearPattern.FindString(s)

	switch {
	case term == Winter && fiscal != 0:
		return Winter + " " + strconv.Itoa(fiscal), nil
	case term == Winter && year != "":
		return Winter + " " + year, nil
	case term == Winter:
		m := twoDigitPattern.FindStringSubmatch(s)
		if m == nil {
			return "", model.NewKind(op, model.ErrParse, "winter label %q has no year", raw)
		}
		n, _ := strconv.Atoi(m[1])
		return Winter + " " + strconv.Itoa(2000+n), nil
	case year != "":
		return s, nil
	case fiscal != 0:
		if term != Spring {
			fiscal--
		}
		return term + " " + strconv.Itoa(fiscal), nil
	}
	return "", model.NewKind(op, model.ErrParse, "label %q lacks a 4-digit year", raw)
}

// Ordinal maps a label onto a strictly increasing scale where Summer 2017 is 1.
func Ordinal(raw string) (int, error) {
	const op = "semester.Ordinal"

	label, err := Canonical(raw)
	if err != nil {
		return 0, err
	}
	year, err := yearOf(label)
	if err != nil {
		return 0, model.WrapKind(op, model.ErrParse, err)
	}
	term, err := termOf(label)
	if err != nil {
		return 0, model.WrapKind(op, model.ErrParse, err)
	}
	if term == Winter {
		year--
	}
	return (year-baseYear)*termsPerYear + 1 + termOffsets[term], nil
}

// Label is the inverse of Ordinal and returns a canonical label.
func Label(ordinal int) string {
	year := floorDiv(ordinal, termsPerYear) + baseYear
	var term string
	switch floorMod(ordinal, termsPerYear) {
	case 1:
		term = Summer
	case 2:
		term = Fall
	case 3:
		term = Winter
		year++
	default:
		term = Spring
	}
	return term + " " + strconv.Itoa(year)
}

// Relative expresses a term as an offset from the graduation term so that 1 is
// the summer before the first fall and 16 the graduating spring.
// An unknown graduation label yields NotApplicable.
func Relative(raw, graduation string) (int, error) {
	const op = "semester.Relative"

	if unknownGraduation(graduation) {
		return NotApplicable, nil
	}
	ord, err := Ordinal(raw)
	if err != nil {
		return 0, err
	}
	gradYear, err := yearOf(graduation)
	if err != nil {
		return 0, model.WrapKind(op, model.ErrParse, err)
	}
	shift := gradYear - baseGradYear
	if strings.Contains(graduation, Fall) {
		shift++
	}
	return ord - shift*termsPerYear, nil
}

// GraduationYears lists the distinct 4-digit years found in graduation labels, newest first.
func GraduationYears(labels []string) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, l := range labels {
		if unknownGraduation(l) {
			continue
		}
		y, err := yearOf(l)
		if err != nil {
			continue
		}
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func unknownGraduation(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "nan", "none", "null", "0":
		return true
	}
	return false
}

func yearOf(label string) (int, error) {
	m := yearPattern.FindAllString(label, -1)
	if len(m) == 0 {
		return 0, model.NewKind("semester.yearOf", model.ErrParse, "label %q lacks a 4-digit year", label)
	}
	return strconv.Atoi(m[len(m)-1])
}

func termOf(label string) (string, error) {
	lower := strings.ToLower(label)
	for _, t := range []string{Summer, Fall, Winter, Spring} {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t, nil
		}
	}
	return "", model.NewKind("semester.termOf", model.ErrParse, "label %q names no term", label)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
