package signal

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given comma separated input", t, func() {
		got, err := Parse("-1.4408, 1.2876, -1.0992, -0.4306, 1.4696, 0.1682, 1.228, -0.1394")

		Convey("Then every value should be parsed in order", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []float64{-1.4408, 1.2876, -1.0992, -0.4306, 1.4696, 0.1682, 1.228, -0.1394})
		})
	})

	Convey("Given whitespace, newline and bracketed input", t, func() {
		got, err := Parse("[-1.4408 1.2876 -1.0992 -0.4306 \n    1.4696 0.1682,1.228\t-0.1394]")

		Convey("Then it should parse the same eight samples", func() {
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 8)
			So(got[4], ShouldEqual, 1.4696)
			So(got[6], ShouldEqual, 1.228)
		})
	})

	Convey("Given scientific notation and signs", t, func() {
		got, err := Parse("1e-3 +2.5 -3E2")

		Convey("Then it should accept them", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []float64{0.001, 2.5, -300})
		})
	})

	Convey("Given a non-numeric token", t, func() {
		got, err := Parse("1.0, 2.0, abc, 4.0")

		Convey("Then it should be rejected naming the token and position", func() {
			So(got, ShouldBeNil)
			So(errors.Is(err, ErrInvalidSample), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"abc"`)
			So(err.Error(), ShouldContainSubstring, "position 3")
		})
	})

	Convey("Given NaN or Inf tokens", t, func() {
		for _, raw := range []string{"1 NaN 2", "inf", "-Inf, 3"} {
			_, err := Parse(raw)
			So(errors.Is(err, ErrInvalidSample), ShouldBeTrue)
		}
	})

	Convey("Given empty or separator-only input", t, func() {
		for _, raw := range []string{"", "   ", ",,,", "[ ]\n"} {
			_, err := Parse(raw)
			So(errors.Is(err, ErrNoSamples), ShouldBeTrue)
		}
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a varying signal", t, func() {
		z := Normalize([]float64{2, 4, 4, 4, 5, 5, 7, 9})

		Convey("Then the result should have zero mean and unit population std", func() {
			s := Summarize(z)
			So(s.Mean, ShouldAlmostEqual, 0, 1e-12)
			So(s.Std, ShouldAlmostEqual, 1, 1e-12)
			So(z[0], ShouldAlmostEqual, -1.5, 1e-12)
		})
	})

	Convey("Given a flat signal", t, func() {
		z := Normalize([]float64{3, 3, 3})

		Convey("Then it should map to zeros instead of NaN", func() {
			So(z, ShouldResemble, []float64{0, 0, 0})
		})
	})

	Convey("Given an empty signal", t, func() {
		So(Normalize(nil), ShouldBeEmpty)
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a known signal", t, func() {
		s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})

		Convey("Then population statistics should be reported", func() {
			So(s.Count, ShouldEqual, 8)
			So(s.Mean, ShouldAlmostEqual, 5, 1e-12)
			So(s.Std, ShouldAlmostEqual, 2, 1e-12)
			So(s.Min, ShouldEqual, 2)
			So(s.Max, ShouldEqual, 9)
		})
	})

	Convey("Given samples near the float64 limit", t, func() {
		s := Summarize([]float64{1e308, 1e308, -1e308, 1e308})

		Convey("Then mean and std should stay finite", func() {
			So(s.Mean, ShouldAlmostEqual, 5e307, 1e295)
			So(s.Std, ShouldAlmostEqual, math.Sqrt(3)/2*1e308, 1e296)
			So(math.IsInf(s.Std, 0) || math.IsNaN(s.Std), ShouldBeFalse)
		})

		Convey("Then the z-scores should be finite", func() {
			for _, v := range Normalize([]float64{1e308, 1e308, -1e308, 1e308}) {
				So(math.IsInf(v, 0) || math.IsNaN(v), ShouldBeFalse)
			}
			z := Normalize([]float64{1e200, -1e200})
			So(z[0], ShouldAlmostEqual, 1, 1e-12)
			So(z[1], ShouldAlmostEqual, -1, 1e-12)
		})
	})

	Convey("Given a single sample", t, func() {
		s := Summarize([]float64{-1.5})
		So(s.Std, ShouldEqual, 0)
		So(math.IsNaN(s.Mean), ShouldBeFalse)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given decoded samples", t, func() {
		Convey("Then finite values should pass", func() {
			So(Validate([]float64{1, -2.5, 0}), ShouldBeNil)
		})

		Convey("Then an empty slice should report no samples", func() {
			So(errors.Is(Validate(nil), ErrNoSamples), ShouldBeTrue)
		})

		Convey("Then infinities should be rejected with their position", func() {
			err := Validate([]float64{1, math.Inf(1)})
			So(errors.Is(err, ErrInvalidSample), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "position 2")
		})
	})
}
