package semester_test

import (
	"errors"
	"testing"

	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonical(t *testing.T) {
	Convey("Given raw semester labels", t, func() {
		cases := map[string]string{
			"Winter (FY24)":      "Winter 2024",
			"Winter 24":          "Winter 2024",
			"Winter 2023":        "Winter 2023",
			"Winter 2023 (FY24)": "Winter 2024",
			"Fall 2023 (FY24)":   "Fall 2023",
			"Fall (FY24)":        "Fall 2023",
			"Summer (FY24)":      "Summer 2023",
			"Spring (FY24)":      "Spring 2024",
			"FAll 2022":          "Fall 2022",
			"  Spring 2024 ":     "Spring 2024",
			"Summer 2021 (FY22)": "Summer 2021",
		}

		Convey("Then each canonicalizes to term and calendar year", func() {
			for raw, want := range cases {
				got, err := semester.Canonical(raw)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then labels without a 4-digit year fail with a parse error", func() {
			for _, raw := range []string{"Fall 23", "", "Spring", "2023", "Winter", "(FY24)"} {
				_, err := semester.Canonical(raw)
				So(errors.Is(err, model.ErrParse), ShouldBeTrue)
			}
		})
	})
}

func TestOrdinal(t *testing.T) {
	Convey("Given a chronological run of terms", t, func() {
		labels := []string{
			"Summer 2017", "Fall 2017", "Winter 2018", "Spring 2018",
			"Summer 2018", "Fall (FY19)", "Winter (FY19)", "Spring 2019",
			"Summer 2019", "Fall 2019", "Winter 20", "Spring (FY20)",
		}

		Convey("Then ordinals strictly increase", func() {
			prev := -1 << 31
			for _, l := range labels {
				n, err := semester.Ordinal(l)
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, prev)
				prev = n
			}
		})

		Convey("Then the base terms have the documented values", func() {
			n, _ := semester.Ordinal("Summer 2017")
			So(n, ShouldEqual, 1)
			n, _ = semester.Ordinal("Fall 2017")
			So(n, ShouldEqual, 2)
			n, _ = semester.Ordinal("Winter 2018")
			So(n, ShouldEqual, 3)
			n, _ = semester.Ordinal("Spring 2018")
			So(n, ShouldEqual, 4)
			n, _ = semester.Ordinal("Summer 2018")
			So(n, ShouldEqual, 5)
		})

		Convey("Then fiscal and calendar spellings of a winter agree", func() {
			a, _ := semester.Ordinal("Winter (FY18)")
			b, _ := semester.Ordinal("Winter 2018")
			So(a, ShouldEqual, b)
			So(semester.Label(3), ShouldEqual, "Winter 2018")
		})
	})

	Convey("Given any ordinal", t, func() {
		Convey("Then label and ordinal round trip", func() {
			for n := -12; n <= 60; n++ {
				back, err := semester.Ordinal(semester.Label(n))
				So(err, ShouldBeNil)
				So(back, ShouldEqual, n)
			}
		})
	})
}

func TestRelative(t *testing.T) {
	Convey("Given a student graduating in Spring 2024", t, func() {
		grad := "Spring Semester 2024"

		Convey("Then their first fall is offset 2 and final spring 16", func() {
			n, err := semester.Relative("Fall 2020", grad)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			n, _ = semester.Relative("Spring 2024", grad)
			So(n, ShouldEqual, 16)
		})

		Convey("And a Fall graduation one year earlier lines up with the spring class", func() {
			a, _ := semester.Relative("Fall 2021", "Fall Semester 2023")
			b, _ := semester.Relative("Fall 2021", grad)
			So(a, ShouldEqual, b)
		})
	})

	Convey("Given an unknown graduation label", t, func() {
		for _, g := range []string{"", "nan", "None"} {
			n, err := semester.Relative("Fall 2020", g)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, semester.NotApplicable)
		}
	})

	Convey("Given a malformed graduation label", t, func() {
		_, err := semester.Relative("Fall 2020", "Spring Semester")
		So(errors.Is(err, model.ErrParse), ShouldBeTrue)
	})
}

func TestBuckets(t *testing.T) {
	Convey("Given graduation-relative offsets", t, func() {
		Convey("Then class-year-and-term names cover 1..16", func() {
			name, ok := semester.ClassYearAndTermName(1)
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "Freshman Summer")
			name, _ = semester.ClassYearAndTermName(2)
			So(name, ShouldEqual, "Freshman Fall")
			name, _ = semester.ClassYearAndTermName(7)
			So(name, ShouldEqual, "Sophomore Winter")
			name, _ = semester.ClassYearAndTermName(16)
			So(name, ShouldEqual, "Senior Spring")
		})

		Convey("Then class-year names group four terms", func() {
			name, _ := semester.ClassYearName(4)
			So(name, ShouldEqual, "Freshman Year")
			name, _ = semester.ClassYearName(5)
			So(name, ShouldEqual, "Sophomore Year")
			name, _ = semester.ClassYearName(16)
			So(name, ShouldEqual, "Senior Year")
		})

		Convey("Then offsets outside the range are excluded", func() {
			for _, n := range []int{0, 17, -3, semester.NotApplicable} {
				name, ok := semester.ClassYearAndTermName(n)
				So(ok, ShouldBeFalse)
				So(name, ShouldEqual, semester.Excluded)
				_, ok = semester.ClassYearName(n)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Then record bucketing follows the aggregation mode", func() {
			r := model.Record{SemesterOrdinal: 14, RelativeOrdinal: 6}

			b, ok := semester.None.Of(r)
			So(ok, ShouldBeTrue)
			So(b.Key, ShouldEqual, 14)
			So(b.Name, ShouldEqual, "Fall 2020")

			b, ok = semester.ClassYearAndTerm.Of(r)
			So(ok, ShouldBeTrue)
			So(b.Name, ShouldEqual, "Sophomore Fall")

			b, ok = semester.ClassYear.Of(r)
			So(ok, ShouldBeTrue)
			So(b.Key, ShouldEqual, 2)
			So(semester.ClassYear.NameOf(b.Key), ShouldEqual, "Sophomore Year")
		})

		Convey("Then aggregation names parse back", func() {
			for _, a := range []semester.Aggregation{semester.None, semester.ClassYearAndTerm, semester.ClassYear} {
				got, err := semester.ParseAggregation(a.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, a)
			}
			_, err := semester.ParseAggregation("weekly")
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})
	})
}

func TestGraduationYears(t *testing.T) {
	Convey("Given graduation labels", t, func() {
		years := semester.GraduationYears([]string{"Spring Semester 2023", "", "Fall Semester 2024", "GPS Spring Semester 2023", "nan"})
		So(years, ShouldResemble, []int{2024, 2023})
	})
}
