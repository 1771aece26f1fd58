package cohort_test

import (
	"errors"
	"testing"

	"github.com/okian/engage/internal/domain/cohort"
	"github.com/okian/engage/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func records() []model.Record {
	return []model.Record{
		{PersonID: "a@x.edu", GraduationLabel: "Spring Semester 2024", Majors: []string{"Computer Science", "Art"}},
		{PersonID: "a@x.edu", GraduationLabel: "Spring Semester 2024", Majors: []string{"Computer Science", "Art"}},
		{PersonID: "b@x.edu", GraduationLabel: "Spring Semester 2023", Majors: []string{"Art"}},
		{PersonID: "c@x.edu", GraduationLabel: "GPS Fall Semester 2023"},
		{PersonID: "d@x.edu", GraduationLabel: ""},
	}
}

func people(rs []model.Record) []string {
	var out []string
	for _, r := range rs {
		if len(out) == 0 || out[len(out)-1] != r.PersonID {
			out = append(out, r.PersonID)
		}
	}
	return out
}

func TestApply(t *testing.T) {
	Convey("Given a mixed set of records", t, func() {
		in := records()
		model.Reindex(in)
		graduates := map[string]struct{}{"b@x.edu": {}, "d@x.edu": {}}

		Convey("When filtering by the class of 2024", func() {
			res, err := cohort.Apply(in, cohort.Criteria{GraduationYear: 2024}, graduates)

			Convey("Then spring 2024 and prior GPS fall graduates stay", func() {
				So(err, ShouldBeNil)
				So(people(res.Records), ShouldResemble, []string{"a@x.edu", "c@x.edu"})
				So(res.Description, ShouldEqual, "Graduating class of 2024, data not restricted by students major")
			})

			Convey("And the spring 2023 graduate is rejected", func() {
				for _, r := range res.Records {
					So(r.GraduationLabel, ShouldNotEqual, "Spring Semester 2023")
				}
			})

			Convey("And indexes are contiguous after filtering", func() {
				for i, r := range res.Records {
					So(r.Index, ShouldEqual, i)
				}
			})
		})

		Convey("When filtering by major", func() {
			res, err := cohort.Apply(in, cohort.Criteria{Majors: []string{"Computer Science"}}, graduates)

			Convey("Then only people with an intersecting major stay", func() {
				So(err, ShouldBeNil)
				So(people(res.Records), ShouldResemble, []string{"a@x.edu"})
				So(res.Description, ShouldEqual,
					"Data not restricted by graduating class, only including students with majors in the following categories: Computer Science")
			})
		})

		Convey("When restricting to known graduates only", func() {
			res, err := cohort.Apply(in, cohort.Criteria{KnownGraduatesOnly: true}, graduates)

			So(err, ShouldBeNil)
			So(people(res.Records), ShouldResemble, []string{"b@x.edu", "d@x.edu"})
			So(res.Description, ShouldEqual,
				"Data restricted to only include students known to have graduated, but not by students major or graduating class")
		})

		Convey("When filters compose", func() {
			res, err := cohort.Apply(in, cohort.Criteria{GraduationYear: 2023, Majors: []string{"Art"}, KnownGraduatesOnly: true}, graduates)

			So(err, ShouldBeNil)
			So(people(res.Records), ShouldResemble, []string{"b@x.edu"})
			So(res.Description, ShouldEqual,
				"Graduating class of 2023, only including students with majors in the following categories: Art. Data also restricted to only include students known to have graduated")
		})

		Convey("When nothing matches", func() {
			res, err := cohort.Apply(in, cohort.Criteria{GraduationYear: 2030}, graduates)

			Convey("Then an empty result error carries the description", func() {
				So(errors.Is(err, model.ErrEmptyResult), ShouldBeTrue)
				So(res.Description, ShouldStartWith, "Graduating class of 2030")
			})
		})

		Convey("When no filter is set", func() {
			res, err := cohort.Apply(in, cohort.Criteria{}, graduates)

			So(err, ShouldBeNil)
			So(len(res.Records), ShouldEqual, len(in))
			So(res.Description, ShouldEqual, "Data not restricted by graduating class or students major")
		})
	})
}
