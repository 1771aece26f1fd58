package dataset_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/engage/internal/domain/dataset"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
	. "github.com/smartystreets/goconvey/convey"
)

type memSource map[string]dataset.Sheet

func (m memSource) Sheet(name string) (dataset.Sheet, error) {
	s, ok := m[name]
	if !ok {
		return dataset.Sheet{}, model.NewKind("memSource.Sheet", model.ErrParse, "no sheet %q", name)
	}
	s.Name = name
	return s, nil
}

func workbook() memSource {
	return memSource{
		dataset.SheetData: {
			Header: []string{"Email", "Event Type Name", "Events Start Date Date", "Semester", "Class Level", "Host", "Location"},
			Rows: [][]string{
				{"B@X.edu", "Resume Review", "2023-10-02", "Fall 2023 (FY24)", "Senior", "Jo", "Room 1"},
				{"a@x.edu", "Career Fair", "2023-09-15", "Fall 2023 (FY24)", "Junior", "", "Hall"},
				{"a@x.edu", "Resume Review", "45300", "Winter (FY24)", "Junior"},
				{"a@x.edu", "Staff Meeting", "2023-09-16", "Fall 2023", "Junior"},
				{"", "Career Fair", "2023-09-15", "Fall 2023", "Junior"},
			},
		},
		dataset.SheetDemographics: {
			Header: []string{"Email", "Expected Completion Period"},
			Rows: [][]string{
				{"a@x.edu", "Spring Semester 2025"},
				{"b@x.edu", "Spring Semester 2024"},
			},
		},
		dataset.SheetEventGroupings: {
			Header: []string{"Event Type Name", "Event Type Summarized\r\nIn order to ignore this event, use \"Do not Include\""},
			Rows: [][]string{
				{"Resume Review", "Appointment"},
				{"Career Fair", "Fair"},
				{"Staff Meeting", "Do not Include"},
			},
		},
		dataset.SheetEventRankings: {
			Header: []string{"Types of Event Groupings\r\nDO NOT MODIFY", "Ranked Importance of Events"},
			Rows: [][]string{
				{"Appointment", "1"},
				{"Fair", "2"},
			},
		},
		dataset.SheetMajors: {
			Header: []string{"Students Email - Institution", "Majors Name"},
			Rows: [][]string{
				{"A@x.edu", "Computer Science BS"},
				{"a@x.edu", "Computer Engineering BS"},
			},
		},
		dataset.SheetMajorGroupings: {
			Header: []string{"Types of Majors", "Majors (Restricted List)"},
			Rows: [][]string{
				{"Computer Science BS", "Computing"},
				{"Computer Engineering BS", "Computing"},
				{"Art BA", "Arts"},
			},
		},
		dataset.SheetGraduates: {
			Header: []string{"Class of 2023", "Class of 2024"},
			Rows: [][]string{
				{"c@x.edu", "B@x.edu"},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	Convey("Given a complete workbook", t, func() {
		d, err := dataset.Build(workbook())
		So(err, ShouldBeNil)

		Convey("Then excluded and blank rows are dropped", func() {
			So(len(d.Records), ShouldEqual, 3)
			for _, r := range d.Records {
				So(r.Category, ShouldNotEqual, "Do not Include")
			}
		})

		Convey("Then records are sorted by person and time", func() {
			So(d.Records[0].PersonID, ShouldEqual, "a@x.edu")
			So(d.Records[0].Category, ShouldEqual, "Fair")
			So(d.Records[1].TS, ShouldHappenAfter, d.Records[0].TS)
			So(d.Records[2].PersonID, ShouldEqual, "b@x.edu")
			So(d.Records[2].Index, ShouldEqual, 2)
		})

		Convey("Then semesters are normalized", func() {
			So(d.Records[0].Semester, ShouldEqual, "Fall 2023")
			So(d.Records[1].Semester, ShouldEqual, "Winter 2024")
			ord, _ := semester.Ordinal("Fall 2023")
			So(d.Records[0].SemesterOrdinal, ShouldEqual, ord)
			So(d.Records[2].RelativeOrdinal, ShouldEqual, 14)
		})

		Convey("Then spreadsheet serial dates are decoded", func() {
			So(d.Records[1].TS.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Then majors are mapped to their categories", func() {
			So(d.Records[0].Majors, ShouldResemble, []string{"Computing"})
			So(d.Records[2].Majors, ShouldBeEmpty)
			So(d.Majors, ShouldResemble, []string{"Arts", "Computing"})
			So(d.HasMajor("a@x.edu", []string{"Computing"}), ShouldBeTrue)
		})

		Convey("Then unique ids follow sorted emails", func() {
			So(d.Records[0].UniqueID, ShouldEqual, 1)
			So(d.Records[2].UniqueID, ShouldEqual, 2)
		})

		Convey("Then dropped columns are not kept as extras", func() {
			So(d.ExtraColumns, ShouldResemble, []string{"Location"})
			So(d.Records[2].Extra["Location"], ShouldEqual, "Room 1")
		})

		Convey("Then graduates and graduation years are read", func() {
			So(len(d.Graduates), ShouldEqual, 2)
			_, ok := d.KnownGraduates()["b@x.edu"]
			So(ok, ShouldBeTrue)
			So(d.GraduationYears, ShouldResemble, []int{2025, 2024})
		})

		Convey("Then the catalog follows the rankings", func() {
			So(d.Catalog.ByImportance(), ShouldResemble, []string{"Appointment", "Fair"})
		})
	})

	Convey("Given an event type missing from the groupings", t, func() {
		wb := workbook()
		data := wb[dataset.SheetData]
		data.Rows = append(data.Rows, []string{"a@x.edu", "Mock Interview", "2023-09-15", "Fall 2023", "Junior"})
		wb[dataset.SheetData] = data

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrLookup), ShouldBeTrue)
	})

	Convey("Given a major missing from the groupings", t, func() {
		wb := workbook()
		majors := wb[dataset.SheetMajors]
		majors.Rows = append(majors.Rows, []string{"b@x.edu", "Underwater Basket Weaving"})
		wb[dataset.SheetMajors] = majors

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrLookup), ShouldBeTrue)
	})

	Convey("Given a missing column", t, func() {
		wb := workbook()
		demo := wb[dataset.SheetDemographics]
		demo.Header = []string{"Email", "Graduation"}
		wb[dataset.SheetDemographics] = demo

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
	})

	Convey("Given a fractional importance rank", t, func() {
		wb := workbook()
		ranks := wb[dataset.SheetEventRankings]
		ranks.Rows = [][]string{{"Appointment", "1"}, {"Fair", "2.5"}}
		wb[dataset.SheetEventRankings] = ranks

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "row 3")
	})

	Convey("Given a category ranked twice", t, func() {
		wb := workbook()
		ranks := wb[dataset.SheetEventRankings]
		ranks.Rows = [][]string{{"Appointment", "1"}, {"Fair", "2"}, {"Appointment", "3"}}
		wb[dataset.SheetEventRankings] = ranks

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrLookup), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "ranked twice")
	})

	Convey("Given a malformed semester", t, func() {
		wb := workbook()
		data := wb[dataset.SheetData]
		data.Rows = [][]string{{"a@x.edu", "Career Fair", "2023-09-15", "Fall", "Junior"}}
		wb[dataset.SheetData] = data

		_, err := dataset.Build(wb)
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "row 2")
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given dates in several layouts", t, func() {
		for _, s := range []string{"2023-09-15", "9/15/2023", "09-15-23", "2023-09-15 10:30:00"} {
			ts, err := dataset.ParseDate(s)
			So(err, ShouldBeNil)
			So(ts.Year(), ShouldEqual, 2023)
			So(ts.Month(), ShouldEqual, time.September)
			So(ts.Day(), ShouldEqual, 15)
		}

		_, err := dataset.ParseDate("someday")
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
	})
}
