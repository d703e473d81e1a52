package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	model "github.com/okian/eegscreen/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJob(t *testing.T) {
	convey.Convey("Given a new job", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		job, reply := model.NewJob(ctx, "job-1", []float64{0.1, -0.1})

		convey.Convey("Then it should carry its inputs", func() {
			convey.So(job.ID, convey.ShouldEqual, "job-1")
			convey.So(job.Samples, convey.ShouldResemble, []float64{0.1, -0.1})
			convey.So(job.Submitted, convey.ShouldHappenWithin, time.Second, time.Now())
			convey.So(job.Done(), convey.ShouldBeFalse)
		})

		convey.Convey("When it is completed twice", func() {
			job.Complete(model.Result{Probability: 0.7, Predictor: "lstm"})
			job.Complete(model.Result{Err: errors.New("late")})

			convey.Convey("Then only the first result should be delivered", func() {
				r := <-reply
				convey.So(r.JobID, convey.ShouldEqual, "job-1")
				convey.So(r.Probability, convey.ShouldEqual, 0.7)
				convey.So(r.Err, convey.ShouldBeNil)
				convey.So(len(reply), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the submitter cancels", func() {
			cancel()

			convey.Convey("Then the job should report done", func() {
				convey.So(job.Done(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a zero job", t, func() {
		var job model.Job

		convey.Convey("Then Complete and Done should be safe", func() {
			convey.So(func() { job.Complete(model.Result{}) }, convey.ShouldNotPanic)
			convey.So(job.Done(), convey.ShouldBeFalse)
		})
	})
}
