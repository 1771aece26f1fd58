package trend_test

import (
	"testing"

	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
	"github.com/okian/engage/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGraduateEngagement(t *testing.T) {
	Convey("Given two graduate classes and some engagement", t, func() {
		records := []model.Record{
			{PersonID: "a", Category: "Workshop"},
			{PersonID: "b", Category: "Appointment"},
			{PersonID: "z", Category: "Workshop"},
		}
		classes := []trend.GraduateClass{
			{Name: "Class of 2023", Emails: []string{"a", "b", "c", "d"}},
			{Name: "Class of 2024", Emails: nil},
		}

		Convey("When counting any engagement and one category", func() {
			series := trend.GraduateEngagement(records, classes, []string{trend.AnyEngagement, "Workshop"}, nil)

			Convey("Then shares are per class", func() {
				So(len(series), ShouldEqual, 2)
				So(series[0].Points[0].Count, ShouldEqual, 2)
				So(series[0].Points[0].Share, ShouldEqual, 0.5)
				So(series[1].Points[0].Share, ShouldEqual, 0.25)
			})

			Convey("And an empty class reports zero", func() {
				So(series[0].Points[1].Share, ShouldEqual, 0.0)
			})
		})

		Convey("When the denominator is restricted", func() {
			keep := func(e string) bool { return e == "a" || e == "c" }
			series := trend.GraduateEngagement(records, classes, []string{trend.AnyEngagement}, keep)

			So(series[0].Points[0].Share, ShouldEqual, 0.5)
		})
	})
}

func TestTimeline(t *testing.T) {
	Convey("Given graduates engaging at different class terms", t, func() {
		records := []model.Record{
			{PersonID: "a", Category: "Workshop", RelativeOrdinal: 2},
			{PersonID: "a", Category: "Workshop", RelativeOrdinal: 6},
			{PersonID: "b", Category: "Workshop", RelativeOrdinal: 0},
			{PersonID: "c", Category: "Appointment", RelativeOrdinal: 6},
			{PersonID: "d", Category: "Appointment", RelativeOrdinal: semester.NotApplicable},
		}
		classes := []trend.GraduateClass{{Name: "Class of 2024", Emails: []string{"a", "b", "c", "d"}}}

		Convey("When bucketing by class year and term", func() {
			series := trend.Timeline(records, classes, []string{trend.AnyEngagement}, semester.ClassYearAndTerm, nil)

			Convey("Then the count is cumulative", func() {
				So(len(series), ShouldEqual, 1)
				s := series[0]
				So(s.Name, ShouldEqual, "Class of 2024 - Any Engagement")
				So(len(s.Points), ShouldEqual, 2)
				So(s.Points[0].Label, ShouldEqual, "Freshman Fall")
				So(s.Points[0].Count, ShouldEqual, 2)
				So(s.Points[1].Label, ShouldEqual, "Sophomore Fall")
				So(s.Points[1].Count, ShouldEqual, 3)
				So(s.Points[1].Share, ShouldEqual, 0.75)
			})
		})

		Convey("When bucketing by class year", func() {
			series := trend.Timeline(records, classes, []string{"Workshop"}, semester.ClassYear, nil)

			So(len(series[0].Points), ShouldEqual, 2)
			So(series[0].Points[0].Label, ShouldEqual, "Freshman Year")
			So(series[0].Points[0].Count, ShouldEqual, 2)
		})
	})
}

func TestVolume(t *testing.T) {
	Convey("Given engagements over two semesters", t, func() {
		records := []model.Record{
			{Category: "Workshop", SemesterOrdinal: 2},
			{Category: "Workshop", SemesterOrdinal: 2},
			{Category: "Appointment", SemesterOrdinal: 3},
		}
		series := trend.Volume(records, []string{"Appointment", "Workshop"}, semester.None)

		So(len(series), ShouldEqual, 2)
		So(series[0].Points[0].Count, ShouldEqual, 0)
		So(series[0].Points[1].Count, ShouldEqual, 1)
		So(series[1].Points[0].Count, ShouldEqual, 2)
		So(series[1].Points[0].Label, ShouldEqual, "Fall 2017")
	})
}
