package workbook_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/okian/engage/internal/adapters/workbook"
	"github.com/okian/engage/internal/domain/dataset"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sheets() []dataset.Sheet {
	return []dataset.Sheet{
		{
			Name:   dataset.SheetData,
			Header: []string{"Email", "Event Type Name", "Events Start Date Date", "Semester", "Class Level", "Location"},
			Rows: [][]string{
				{"a@x.edu", "Career Fair", "2023-09-15", "Fall 2023", "Junior", "Hall"},
				{"a@x.edu", "Resume Review", "2023-10-02", "Fall 2023", "Junior", "Room 1"},
				{"b@x.edu", "Resume Review", "2024-02-01", "Spring 2024", "Senior", ""},
			},
		},
		{
			Name:   dataset.SheetDemographics,
			Header: []string{"Email", "Expected Completion Period"},
			Rows:   [][]string{{"a@x.edu", "Spring Semester 2025"}},
		},
		{
			Name:   dataset.SheetEventGroupings,
			Header: []string{"Event Type Name", "Event Type Summarized"},
			Rows:   [][]string{{"Career Fair", "Fair"}, {"Resume Review", "Appointment"}},
		},
		{
			Name:   dataset.SheetEventRankings,
			Header: []string{"Types of Event Groupings", "Ranked Importance of Events"},
			Rows:   [][]string{{"Appointment", "1"}, {"Fair", "2"}},
		},
		{
			Name:   dataset.SheetMajors,
			Header: []string{"Students Email - Institution", "Majors Name"},
			Rows:   [][]string{{"a@x.edu", "History BA"}},
		},
		{
			Name:   dataset.SheetMajorGroupings,
			Header: []string{"Types of Majors", "Majors (Restricted List)"},
			Rows:   [][]string{{"History BA", "Humanities"}},
		},
		{
			Name:   dataset.SheetGraduates,
			Header: []string{"Class of 2024"},
			Rows:   [][]string{{"b@x.edu"}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a workbook written from sheets", t, func() {
		var buf bytes.Buffer
		So(workbook.WriteSheets(&buf, sheets()), ShouldBeNil)

		Convey("When it is opened", func() {
			r, err := workbook.Open(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)

			Convey("Then every sheet is present and the default sheet is gone", func() {
				So(len(r.SheetNames()), ShouldEqual, 7)
				So(r.SheetNames(), ShouldNotContain, "Sheet1")
			})

			Convey("Then sheets are found case-insensitively", func() {
				s, err := r.Sheet("data")
				So(err, ShouldBeNil)
				So(s.Header[0], ShouldEqual, "Email")
				So(len(s.Rows), ShouldEqual, 3)
				So(s.Rows[1][5], ShouldEqual, "Room 1")
			})

			Convey("Then a missing sheet is a parse error", func() {
				_, err := r.Sheet("Nope")
				So(errors.Is(err, model.ErrParse), ShouldBeTrue)
			})
		})

		Convey("When it is loaded as a dataset", func() {
			d, err := workbook.Load(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			So(len(d.Records), ShouldEqual, 3)
			So(d.Majors, ShouldResemble, []string{"Humanities"})
			So(d.ExtraColumns, ShouldResemble, []string{"Location"})
		})
	})

	Convey("Given bytes that are not a workbook", t, func() {
		_, err := workbook.Open(bytes.NewReader([]byte("not a zip")))
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
	})
}

func TestWriteTable(t *testing.T) {
	Convey("Given a table", t, func() {
		table := types.Table{
			Columns: []string{"Email", "Student's Number of Engagements"},
			Rows:    [][]any{{"a@x.edu", 2}, {"b@x.edu", 1}},
		}
		var buf bytes.Buffer
		So(workbook.WriteTable(&buf, table), ShouldBeNil)

		Convey("Then it reads back from the default sheet", func() {
			r, err := workbook.Open(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			s, err := r.Sheet("Sheet1")
			So(err, ShouldBeNil)
			So(s.Header, ShouldResemble, table.Columns)
			So(s.Rows[0], ShouldResemble, []string{"a@x.edu", "2"})
		})
	})
}

func TestWriteCharts(t *testing.T) {
	Convey("Given saved charts", t, func() {
		entries := []types.WorkbookEntry{
			{
				Chart: types.Chart{
					Kind:     types.KindRelationshipsTotal,
					Title:    "Engagement relationships (all engagements)",
					Subtitle: "Data not restricted by graduating class",
					Table:    types.Table{Columns: []string{"source", "destination"}, Rows: [][]any{{"Fair", "Appointment"}}},
				},
				Note: "Fairs feed appointments",
			},
		}
		var buf bytes.Buffer
		So(workbook.WriteCharts(&buf, entries), ShouldBeNil)

		Convey("Then each chart gets its own sheet with the note", func() {
			r, err := workbook.Open(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			s, err := r.Sheet("1 relationships_total")
			So(err, ShouldBeNil)
			So(s.Header, ShouldResemble, []string{"Title", "Engagement relationships (all engagements)"})
			So(s.Rows[1], ShouldResemble, []string{"Note", "Fairs feed appointments"})
			So(s.Rows[2], ShouldResemble, []string{"source", "destination"})
		})
	})
}
