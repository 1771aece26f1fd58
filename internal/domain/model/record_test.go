package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/engage/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func rec(person, category string, minute int) model.Record {
	return model.Record{
		PersonID: person,
		Category: category,
		TS:       time.Date(2023, 9, 1, 10, minute, 0, 0, time.UTC),
	}
}

func TestSortAndGroup(t *testing.T) {
	convey.Convey("Given unsorted records for two people", t, func() {
		in := []model.Record{
			rec("b@x.edu", "Workshop", 5),
			rec("a@x.edu", "Appointment", 9),
			rec("b@x.edu", "Fair", 1),
			rec("a@x.edu", "Workshop", 2),
			rec("a@x.edu", "Fair", 2),
		}

		convey.Convey("When sorting by person", func() {
			out := model.SortByPerson(in)

			convey.Convey("Then records are ordered by person and time with stable ties", func() {
				convey.So(out[0].PersonID, convey.ShouldEqual, "a@x.edu")
				convey.So(out[0].Category, convey.ShouldEqual, "Workshop")
				convey.So(out[1].Category, convey.ShouldEqual, "Fair")
				convey.So(out[2].Category, convey.ShouldEqual, "Appointment")
				convey.So(out[3].Category, convey.ShouldEqual, "Fair")
				convey.So(out[4].Category, convey.ShouldEqual, "Workshop")
			})

			convey.Convey("And indexes are contiguous", func() {
				for i, r := range out {
					convey.So(r.Index, convey.ShouldEqual, i)
				}
			})

			convey.Convey("And the input is untouched", func() {
				convey.So(in[0].PersonID, convey.ShouldEqual, "b@x.edu")
			})

			convey.Convey("And grouping yields one group per person", func() {
				groups := model.Group(out)
				convey.So(len(groups), convey.ShouldEqual, 2)
				convey.So(len(groups[0].Records), convey.ShouldEqual, 3)
				convey.So(groups[0].First().Category, convey.ShouldEqual, "Workshop")
				convey.So(groups[0].Last().Category, convey.ShouldEqual, "Appointment")
				convey.So(groups[1].Remaining(0), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a person has one record", func() {
			groups := model.Group(model.SortByPerson([]model.Record{rec("c@x.edu", "Fair", 0)}))

			convey.Convey("Then it is both first and last", func() {
				convey.So(groups[0].IsFirst(0), convey.ShouldBeTrue)
				convey.So(groups[0].IsLast(0), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When grouping nothing", func() {
			convey.So(model.Group(nil), convey.ShouldBeEmpty)
		})
	})
}

func TestRecordMajors(t *testing.T) {
	convey.Convey("Given a record with majors", t, func() {
		r := model.Record{Majors: []string{"Computer Science", "Art"}}

		convey.So(r.HasMajor(map[string]struct{}{"Art": {}}), convey.ShouldBeTrue)
		convey.So(r.HasMajor(map[string]struct{}{"Biology": {}}), convey.ShouldBeFalse)
		convey.So(r.MajorsLabel(), convey.ShouldEqual, "Computer Science, Art")
		convey.So(model.Record{}.MajorsLabel(), convey.ShouldEqual, model.NoMajorFound)
	})
}

func TestErrorKinds(t *testing.T) {
	convey.Convey("Given a wrapped lookup error", t, func() {
		cause := errors.New("unknown category")
		err := model.WrapKind("catalog.Rank", model.ErrLookup, cause)

		convey.So(errors.Is(err, model.ErrLookup), convey.ShouldBeTrue)
		convey.So(errors.Is(err, cause), convey.ShouldBeTrue)
		convey.So(errors.Is(err, model.ErrParse), convey.ShouldBeFalse)
		convey.So(model.KindOf(err), convey.ShouldEqual, model.ErrLookup)
		convey.So(err.Error(), convey.ShouldContainSubstring, "catalog.Rank")
		convey.So(model.WrapKind("op", model.ErrLookup, nil), convey.ShouldBeNil)
	})
}
