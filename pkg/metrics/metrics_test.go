package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.exports.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_exports_total"], ShouldBeTrue)
				So(names["test_unit_active_sessions"], ShouldBeTrue)
			})
		})

		Convey("When the same names are registered twice on one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a workbook is loaded", func() {
			before := testutil.ToFloat64(globalManager.recordsIngested)
			uploads := testutil.ToFloat64(globalManager.workbookUploads)
			RecordWorkbookUpload(120)
			RecordWorkbookLoadDuration(42)

			Convey("Then uploads and records are counted", func() {
				So(testutil.ToFloat64(globalManager.workbookUploads), ShouldEqual, uploads+1)
				So(testutil.ToFloat64(globalManager.recordsIngested), ShouldEqual, before+120)
			})
		})

		Convey("When charts are generated", func() {
			before := testutil.ToFloat64(globalManager.chartsGenerated.WithLabelValues("pathways"))
			RecordChartGenerated("pathways")
			RecordChartError("one_and_done", "empty_result")

			Convey("Then they are counted per kind", func() {
				So(testutil.ToFloat64(globalManager.chartsGenerated.WithLabelValues("pathways")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.chartErrors.WithLabelValues("one_and_done", "empty_result")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When sessions change", func() {
			UpdateActiveSessions(7)

			Convey("Then the gauge follows", func() {
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining collectors", func() {
			So(func() {
				RecordHTTPRequest("/sessions", "POST", "201")
				RecordHTTPRequestDuration("/sessions", "POST", "201", 12.5)
				RecordWorkbookError("parse_error")
				RecordRunDuration(30)
				RecordCohortSize(500)
				RecordExport()
				RecordSessionEvicted()
				RecordErrorByComponent("service", "lookup_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a configured global manager", t, func() {
		Configure(
			WithNamespace("career"),
			WithSubsystem("center"),
			WithHistogramBuckets([]float64{10, 100, 1000}),
		)
		defer Configure()

		RecordExport()
		RecordRunDuration(50)

		Convey("Then collectors use the configured names on the new registry", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			buckets := 0
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
				if f.GetName() == "career_center_chart_run_duration_milliseconds" {
					buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
				}
			}
			So(names["career_center_exports_total"], ShouldBeTrue)
			So(names["engage_analytics_exports_total"], ShouldBeFalse)
			So(buckets, ShouldEqual, 3)
		})
	})
}
