// Package sampledata generates synthetic career-center workbooks for demos and tests.
package sampledata

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/dataset"
)

// Config controls the generated population.
type Config struct {
	People     int    // students in the demographics sheet
	FirstClass int    // graduation year of the earliest class
	Classes    int    // number of consecutive graduating classes
	MaxEvents  int    // upper bound of engagements per student
	Seed       uint64 // same seed, same workbook
	Domain     string // email domain
}

// Option applies a configuration option to Config.
type Option func(*Config)

// WithPeople sets the number of students.
func WithPeople(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.People = n
		}
	}
}

// WithClasses sets the first graduating class and how many follow it.
func WithClasses(first, n int) Option {
	return func(c *Config) {
		if first > 0 && n > 0 {
			c.FirstClass = first
			c.Classes = n
		}
	}
}

// WithMaxEvents bounds engagements per student.
func WithMaxEvents(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxEvents = n
		}
	}
}

// WithSeed fixes the random source.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// DefaultConfig returns a small population spanning four classes.
func DefaultConfig() Config {
	return Config{
		People:     200,
		FirstClass: 2022,
		Classes:    4,
		MaxEvents:  8,
		Seed:       1,
		Domain:     "example.edu",
	}
}

type eventType struct {
	name     string
	category string
	weight   int
}

var eventTypes = []eventType{
	{"Resume Review", "Appointment", 5},
	{"Mock Interview", "Appointment", 2},
	{"Career Advising", "Appointment", 4},
	{"Fall Career Fair", "Fair", 3},
	{"Spring Career Fair", "Fair", 2},
	{"Employer Info Session", "Employer Event", 3},
	{"LinkedIn Workshop", "Workshop", 3},
	{"Grad School Workshop", "Workshop", 1},
	{"Drop-In Hours", "Drop-In", 4},
	{"Front Desk Check-In", catalog.DoNotInclude, 1},
}

// Rankings is the importance order of the generated categories.
var Rankings = map[string]int{
	"Appointment":    1,
	"Employer Event": 2,
	"Fair":           3,
	"Workshop":       4,
	"Drop-In":        5,
}

var majors = map[string]string{
	"History BA":          "Humanities",
	"English BA":          "Humanities",
	"Biology BS":          "Sciences",
	"Computer Science BS": "Sciences",
	"Economics BA":        "Social Sciences",
	"Psychology BA":       "Social Sciences",
}

var classLevels = []string{"Freshman", "Sophomore", "Junior", "Senior"}

// term is one semester a student can engage in.
type term struct {
	label string
	start time.Time
	days  int
	level string
}

// Generate builds every sheet the dataset loader reads.
func Generate(opts ...Option) dataset.Sheets {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	majorNames := make([]string, 0, len(majors))
	for m := range majors {
		majorNames = append(majorNames, m)
	}
	sort.Strings(majorNames)

	totalWeight := 0
	for _, e := range eventTypes {
		totalWeight += e.weight
	}
	pick := func() eventType {
		n := rng.IntN(totalWeight)
		for _, e := range eventTypes {
			if n < e.weight {
				return e
			}
			n -= e.weight
		}
		return eventTypes[0]
	}

	var (
		data         [][]string
		demographics [][]string
		majorRows    [][]string
		graduates    = make([][]string, cfg.Classes)
	)
	for i := 0; i < cfg.People; i++ {
		email := fmt.Sprintf("student%04d@%s", i+1, cfg.Domain)
		class := cfg.FirstClass + rng.IntN(cfg.Classes)

		completion := "Spring Semester " + strconv.Itoa(class)
		if rng.Float64() < 0.15 {
			completion = "Fall Semester " + strconv.Itoa(class-1)
		}
		demographics = append(demographics, []string{email, completion})

		if rng.Float64() < 0.9 {
			first := majorNames[rng.IntN(len(majorNames))]
			majorRows = append(majorRows, []string{email, first})
			if rng.Float64() < 0.15 {
				if second := majorNames[rng.IntN(len(majorNames))]; second != first {
					majorRows = append(majorRows, []string{email, second})
				}
			}
		}
		if rng.Float64() < 0.85 {
			graduates[class-cfg.FirstClass] = append(graduates[class-cfg.FirstClass], email)
		}

		terms := termsOf(class)
		events := rng.IntN(cfg.MaxEvents + 1)
		if rng.Float64() < 0.3 {
			events = 1
		}
		for j := 0; j < events; j++ {
			t := terms[rng.IntN(len(terms))]
			at := t.start.AddDate(0, 0, rng.IntN(t.days)).Add(time.Duration(9+rng.IntN(8)) * time.Hour)
			e := pick()
			data = append(data, []string{
				email,
				e.name,
				at.Format("2006-01-02 15:04:05"),
				t.label,
				t.level,
				medium(rng),
			})
		}
	}

	return dataset.Sheets{
		{
			Name:   dataset.SheetData,
			Header: []string{dataset.ColEmail, dataset.ColEventType, dataset.ColStartDate, dataset.ColSemester, dataset.ColClassLevel, "Event Medium"},
			Rows:   data,
		},
		{
			Name:   dataset.SheetDemographics,
			Header: []string{dataset.ColEmail, dataset.ColCompletion},
			Rows:   demographics,
		},
		{
			Name:   dataset.SheetEventGroupings,
			Header: []string{dataset.ColEventType, dataset.ColSummarized},
			Rows:   groupingRows(),
		},
		{
			Name:   dataset.SheetEventRankings,
			Header: []string{dataset.ColGroupingType, dataset.ColRankedImportance},
			Rows:   rankingRows(),
		},
		{
			Name:   dataset.SheetMajors,
			Header: []string{dataset.ColStudentEmail, dataset.ColMajorName},
			Rows:   majorRows,
		},
		{
			Name:   dataset.SheetMajorGroupings,
			Header: []string{dataset.ColMajorType, dataset.ColMajorRestricted},
			Rows:   majorGroupingRows(majorNames),
		},
		graduateSheet(cfg.FirstClass, graduates),
	}
}

// termsOf lists the four academic years before a spring graduation in class.
func termsOf(class int) []term {
	out := make([]term, 0, 16)
	for k, level := range classLevels {
		y := class - len(classLevels) + k
		out = append(out,
			term{"Summer " + strconv.Itoa(y), date(y, time.June, 1), 60, level},
			term{"Fall " + strconv.Itoa(y), date(y, time.September, 1), 90, level},
			term{fmt.Sprintf("Winter (FY%02d)", (y+1)%100), date(y+1, time.January, 2), 14, level},
			term{"Spring " + strconv.Itoa(y+1), date(y+1, time.February, 1), 85, level},
		)
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func medium(rng *rand.Rand) string {
	if rng.IntN(3) == 0 {
		return "Virtual"
	}
	return "In Person"
}

func groupingRows() [][]string {
	out := make([][]string, 0, len(eventTypes))
	for _, e := range eventTypes {
		out = append(out, []string{e.name, e.category})
	}
	return out
}

func rankingRows() [][]string {
	names := make([]string, 0, len(Rankings))
	for n := range Rankings {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return Rankings[names[i]] < Rankings[names[j]] })
	out := make([][]string, 0, len(names))
	for _, n := range names {
		out = append(out, []string{n, strconv.Itoa(Rankings[n])})
	}
	return out
}

func majorGroupingRows(names []string) [][]string {
	out := make([][]string, 0, len(names))
	for _, m := range names {
		out = append(out, []string{m, majors[m]})
	}
	return out
}

// graduateSheet lays the class lists side by side, one column per class.
func graduateSheet(first int, classes [][]string) dataset.Sheet {
	s := dataset.Sheet{Name: dataset.SheetGraduates}
	longest := 0
	for i, emails := range classes {
		s.Header = append(s.Header, "Class of "+strconv.Itoa(first+i))
		longest = max(longest, len(emails))
	}
	for r := 0; r < longest; r++ {
		row := make([]string, len(classes))
		for c, emails := range classes {
			if r < len(emails) {
				row[c] = emails[r]
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
