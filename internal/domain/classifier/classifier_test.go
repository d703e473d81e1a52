package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func testSignal(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i) / 5)
	}
	return out
}

func TestNew(t *testing.T) {
	Convey("Given predictor names", t, func() {
		Convey("Then lstm and random should be constructed", func() {
			p, err := New("lstm")
			So(err, ShouldBeNil)
			So(p.Name(), ShouldEqual, NameLSTM)

			p, err = New(" Random ", WithSeizureRate(0.5), WithSeed(7))
			So(err, ShouldBeNil)
			So(p.Name(), ShouldEqual, NameRandom)
		})

		Convey("Then unknown names should be rejected", func() {
			p, err := New("transformer")
			So(p, ShouldBeNil)
			So(errors.Is(err, ErrUnknownPredictor), ShouldBeTrue)
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given the 0.5 threshold", t, func() {
		So(Decide(0.51, 0.5), ShouldBeTrue)
		So(Decide(0.5, 0.5), ShouldBeFalse)
		So(Decide(0.2, 0.5), ShouldBeFalse)

		Convey("Then labels and confidence should follow the decision", func() {
			So(Label(true), ShouldEqual, LabelSeizure)
			So(Label(false), ShouldEqual, LabelNormal)
			So(Confidence(0.8, true), ShouldAlmostEqual, 0.8, 1e-12)
			So(Confidence(0.3, false), ShouldAlmostEqual, 0.7, 1e-12)
		})
	})
}

func TestLSTM(t *testing.T) {
	Convey("Given a seeded placeholder network", t, func() {
		ctx := context.Background()
		m := NewLSTM(42, 16, 8)

		Convey("When predicting a segment", func() {
			p, err := m.Predict(ctx, testSignal(200))

			Convey("Then it should return a probability strictly inside (0, 1)", func() {
				So(err, ShouldBeNil)
				So(p, ShouldBeGreaterThan, 0)
				So(p, ShouldBeLessThan, 1)
			})

			Convey("Then the same seed should reproduce it exactly", func() {
				again, err := NewLSTM(42, 16, 8).Predict(ctx, testSignal(200))
				So(err, ShouldBeNil)
				So(again, ShouldEqual, p)
			})

			Convey("Then a different seed should change it", func() {
				other, err := NewLSTM(43, 16, 8).Predict(ctx, testSignal(200))
				So(err, ShouldBeNil)
				So(other, ShouldNotEqual, p)
			})
		})

		Convey("When the input is empty", func() {
			_, err := m.Predict(ctx, nil)
			So(errors.Is(err, ErrEmptyInput), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.Predict(cctx, testSignal(10))

			Convey("Then it should stop with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("Then the forget gate bias should start at one", func() {
			u := m.first.units
			So(m.first.bias[u], ShouldEqual, 1)
			So(m.first.bias[0], ShouldEqual, 0)
			So(m.first.bias[2*u], ShouldEqual, 0)
		})
	})

	Convey("Given the default sized network", t, func() {
		p, err := New(NameLSTM)
		So(err, ShouldBeNil)
		prob, err := p.Predict(context.Background(), testSignal(64))
		So(err, ShouldBeNil)
		So(prob, ShouldBeBetween, 0, 1)
	})
}

func TestOrthogonal(t *testing.T) {
	Convey("Given an orthogonal recurrent kernel", t, func() {
		rows, cols := 6, 24
		w := orthogonal(seededRand(1), rows, cols)

		Convey("Then its rows should be orthonormal", func() {
			for a := 0; a < rows; a++ {
				for b := 0; b < rows; b++ {
					var dot float64
					for k := 0; k < cols; k++ {
						dot += w[a*cols+k] * w[b*cols+k]
					}
					want := 0.0
					if a == b {
						want = 1
					}
					So(dot, ShouldAlmostEqual, want, 1e-9)
				}
			}
		})
	})

	Convey("Given a glorot kernel", t, func() {
		w := glorotUniform(seededRand(1), 1, 256)
		limit := math.Sqrt(6.0 / 257)
		for _, v := range w {
			So(math.Abs(v), ShouldBeLessThanOrEqualTo, limit)
		}
	})
}

func TestRandom(t *testing.T) {
	Convey("Given the mock predictor at a 20% rate", t, func() {
		ctx := context.Background()
		r := NewRandom(42, 0.2)
		x := []float64{1, 2, 3}

		Convey("Then outputs should be 0 or 1 with roughly the configured rate", func() {
			positives := 0
			const draws = 10_000
			for i := 0; i < draws; i++ {
				p, err := r.Predict(ctx, x)
				So(err, ShouldBeNil)
				So(p == 0 || p == 1, ShouldBeTrue)
				if p == 1 {
					positives++
				}
			}
			So(float64(positives)/draws, ShouldAlmostEqual, 0.2, 0.03)
		})
	})

	Convey("Given two mock predictors with the same seed", t, func() {
		ctx := context.Background()
		a, b := NewRandom(7, 0.5), NewRandom(7, 0.5)

		Convey("Then they should draw the same verdict sequence", func() {
			for i := 0; i < 50; i++ {
				pa, _ := a.Predict(ctx, []float64{1})
				pb, _ := b.Predict(ctx, []float64{1})
				So(pa, ShouldEqual, pb)
			}
		})
	})

	Convey("Given extreme rates", t, func() {
		ctx := context.Background()
		never, always := NewRandom(1, 0), NewRandom(1, 1)
		for i := 0; i < 100; i++ {
			p, _ := never.Predict(ctx, []float64{0})
			So(p, ShouldEqual, 0)
			p, _ = always.Predict(ctx, []float64{0})
			So(p, ShouldEqual, 1)
		}
	})

	Convey("Given a cancelled context or empty input", t, func() {
		r := NewRandom(1, 0.5)
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Predict(cctx, []float64{1})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		_, err = r.Predict(context.Background(), nil)
		So(errors.Is(err, ErrEmptyInput), ShouldBeTrue)
	})
}
