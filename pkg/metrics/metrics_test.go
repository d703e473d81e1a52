package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should use the screening namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "eeg")
				So(manager.subsystem, ShouldEqual, "screening")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("lab"),
				WithSubsystem("bench"),
				WithMetricPrefix("t_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.parseErrors.Inc()

			Convey("Then collectors should carry the custom names and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, mf := range families {
					if mf.GetName() == "lab_bench_t_parse_errors_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(nil),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "eeg")
				So(manager.subsystem, ShouldEqual, "screening")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestScreeningMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a screening is recorded", func() {
			before := testutil.ToFloat64(globalManager.screenings.WithLabelValues("seizure"))
			RecordScreening("seizure", 384, 0.91)

			Convey("Then the outcome counter should increase", func() {
				So(testutil.ToFloat64(globalManager.screenings.WithLabelValues("seizure")), ShouldEqual, before+1)
			})
		})

		Convey("When inputs are rejected", func() {
			before := testutil.ToFloat64(globalManager.parseErrors)
			RecordParseError()
			RecordParseError()

			Convey("Then the parse error counter should increase by two", func() {
				So(testutil.ToFloat64(globalManager.parseErrors), ShouldEqual, before+2)
			})
		})

		Convey("When pool gauges are updated", func() {
			UpdateQueueSize(3)
			UpdateQueueCapacity(256)
			UpdateWorkerCount(4)
			AddWorkerBusy(1)
			AddWorkerBusy(-1)

			Convey("Then the gauges should hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 256)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerBusy), ShouldEqual, 0)
			})
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				RecordFeatureSkip()
				RecordInferenceLatency("lstm", 12.5)
				RecordInferenceError()
				RecordPlotRender()
				RecordPlotError()
				UpdateQueueUtilization(0.5)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.2)
				RecordWorkerError()
				RecordWorkerProcessingLatency(3)
				RecordHTTPRequest("/api/v1/screen", "POST", "200")
				RecordHTTPRequestDuration("/api/v1/screen", "POST", "200", 4.2)
				RecordErrorByComponent("pool", "backpressure")
				RecordErrorByType("invalid_sample", "warning")
				RecordErrorByEndpoint("/predict", "POST", "invalid_sample")
				RecordErrorLatency("pool", "timeout", 10000)
				UpdateSystemMemoryUsage(100 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordHTTPRequest("/stats", "GET", "200")

		Convey("Then it should expose screening metrics without Go runtime collectors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var names []string
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			joined := strings.Join(names, ",")
			So(joined, ShouldContainSubstring, "eeg_screening_http_requests_total")
			So(joined, ShouldNotContainSubstring, "go_goroutines")
		})
	})
}
