package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register the dashboard namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.leadsInStore.Set(3)
				So(testutil.ToFloat64(manager.leadsInStore), ShouldEqual, 3)
				n, err := testutil.GatherAndCount(registry, "leaddash_dashboard_leads_in_store")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("crm"),
				WithSubsystem("ui"),
				WithMetricPrefix("v2"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names should carry namespace, subsystem and prefix", func() {
				manager.staleReloadsDiscarded.Inc()
				n, err := testutil.GatherAndCount(registry, "crm_ui_v2_stale_reloads_discarded_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
			})
		})

		Convey("When creating a disabled manager", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(registry))

			Convey("Then recording works but nothing reaches the registry", func() {
				So(func() { manager.leadsInStore.Set(3) }, ShouldNotPanic)
				So(testutil.ToFloat64(manager.leadsInStore), ShouldEqual, 3)
				n, err := testutil.GatherAndCount(registry)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues("reload", "ok"))
			RecordPipelineRun("reload", "ok")
			RecordPipelineDuration(12)
			RecordRenderDuration("activity", 3)
			RecordStaleReload()
			UpdateLeadsInStore(42)
			UpdateUndatedLeads(1)
			UpdateLiveHotLeads(5)

			Convey("Then counters and gauges should move", func() {
				So(testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues("reload", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.leadsInStore), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.liveHotLeads), ShouldEqual, 5)
			})
		})

		Convey("When recording collaborator and queue metrics", func() {
			So(func() {
				RecordCollaboratorFetch("leads", 20)
				RecordCollaboratorError("analytics")
				RecordCollaboratorRetry("analytics")
				UpdateQueueCapacity(64)
				UpdateQueueSize(2)
				UpdateQueueUtilization(2.0 / 64)
				RecordQueueEnqueue("reload")
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordTriggerCoalesced("realtime")
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
		})

		Convey("When recording HTTP, error and system metrics", func() {
			So(func() {
				RecordHTTPRequest("dashboard", "GET", "200")
				RecordHTTPRequestDuration("dashboard", "GET", "200", 4)
				RecordRefreshRateLimited()
				RecordErrorByComponent("collab", "timeout")
				RecordErrorByType("timeout", "medium")
				RecordErrorByEndpoint("refresh", "POST", "rate_limit")
				RecordErrorLatency("http", "rate_limit", 1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("When taking a snapshot", func() {
			UpdateLeadsInStore(7)
			snap, err := Snapshot()

			Convey("Then gauges should be reported by family name", func() {
				So(err, ShouldBeNil)
				So(snap["leaddash_dashboard_leads_in_store"], ShouldEqual, 7)
			})
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a reconfigured global manager", t, func() {
		previous := customRegistry
		Configure(WithRefreshInterval(250 * time.Millisecond))
		defer Configure()

		Convey("Then the refresh interval and registry follow the options", func() {
			So(RefreshInterval(), ShouldEqual, 250*time.Millisecond)
			So(GetRegistry(), ShouldNotEqual, previous)
			UpdateLeadsInStore(9)
			snap, err := Snapshot()
			So(err, ShouldBeNil)
			So(snap["leaddash_dashboard_leads_in_store"], ShouldEqual, 9)
		})

		Convey("When metrics are disabled", func() {
			Configure(WithMetricsEnabled(false))
			UpdateLeadsInStore(9)

			Convey("Then the exported registry stays empty", func() {
				snap, err := Snapshot()
				So(err, ShouldBeNil)
				So(snap, ShouldBeEmpty)
				So(RefreshInterval(), ShouldEqual, 10*time.Second)
			})
		})
	})
}
