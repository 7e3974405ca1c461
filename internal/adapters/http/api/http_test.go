package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Ismail26477/crm-main/internal/adapters/http/api"
	service "github.com/Ismail26477/crm-main/internal/app"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/render"
	"github.com/Ismail26477/crm-main/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDeps records triggers and serves a canned snapshot.
type mockDeps struct {
	mu       sync.Mutex
	triggers []model.Trigger
	status   service.EnqueueStatus
	err      error

	snapshot types.Snapshot
	legend   []types.LegendEntry
	cached   map[string][]byte
	rendered []service.Size
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		status: service.Accepted,
		snapshot: types.Snapshot{
			Generation: 3,
			WindowDays: 30,
			Period:     types.Daily,
			Headline:   types.Headline{TotalLeads: 12, LeadsChangeLabel: "+20.0%"},
			Live:       types.Live{HotLeads: 4, Available: true},
		},
		legend: []types.LegendEntry{{Label: "New Lead", Count: 3, Color: "#667eea"}},
		cached: map[string][]byte{},
	}
}

func (m *mockDeps) Enqueue(_ context.Context, t model.Trigger) (service.EnqueueStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.triggers = append(m.triggers, t)
	return m.status, nil
}

func (m *mockDeps) Snapshot() types.Snapshot       { return m.snapshot }
func (m *mockDeps) Live() types.Live               { return m.snapshot.Live }
func (m *mockDeps) Legend() []types.LegendEntry    { return m.legend }
func (m *mockDeps) last() model.Trigger            { return m.triggers[len(m.triggers)-1] }
func (m *mockDeps) Chart(chart string) ([]byte, error) {
	if chart != service.ChartActivity && chart != service.ChartPipeline {
		return nil, service.ErrUnknownChart
	}
	return m.cached[chart], nil
}

func (m *mockDeps) RenderChart(_ context.Context, chart string, size service.Size, _ types.Granularity) ([]byte, error) {
	if !size.Valid() {
		size = service.Size{Width: 10, Height: 10}
	}
	m.rendered = append(m.rendered, size)
	r := render.NewRaster(size.Width, size.Height)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type staticStats map[string]interface{}

func (s staticStats) GetStats() map[string]interface{} { return s }

func newRouter(deps *mockDeps, opts ...api.Option) http.Handler {
	r := chi.NewRouter()
	api.NewServer(deps, staticStats{"started": true}, opts...).Register(context.Background(), r)
	return r
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestReadRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		h := newRouter(deps)

		Convey("When requesting the dashboard snapshot", func() {
			w := do(h, http.MethodGet, "/api/v1/dashboard")

			Convey("Then the snapshot is returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
				var snap types.Snapshot
				So(json.Unmarshal(w.Body.Bytes(), &snap), ShouldBeNil)
				So(snap.Generation, ShouldEqual, 3)
				So(snap.Headline.TotalLeads, ShouldEqual, 12)
			})
		})

		Convey("When requesting the live counters", func() {
			w := do(h, http.MethodGet, "/api/v1/dashboard/live")

			Convey("Then only the live slice is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"hotLeads":4`)
			})
		})

		Convey("When requesting the pipeline legend", func() {
			w := do(h, http.MethodGet, "/api/v1/charts/pipeline/legend")

			Convey("Then the legend entries are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var legend []types.LegendEntry
				So(json.Unmarshal(w.Body.Bytes(), &legend), ShouldBeNil)
				So(legend, ShouldResemble, deps.legend)
			})

			Convey("And an empty legend is an empty array", func() {
				deps.legend = nil
				w := do(h, http.MethodGet, "/api/v1/charts/pipeline/legend")
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When requesting stats and metrics", func() {
			stats := do(h, http.MethodGet, "/stats")
			health := do(h, http.MethodGet, "/healthz")

			Convey("Then both respond", func() {
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(stats.Body.String(), ShouldContainSubstring, `"started":true`)
				So(health.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When a client sends its own request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set("X-Request-ID", "abc")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get("X-Request-ID"), ShouldEqual, "abc")
			})
		})
	})
}

func TestChartRoutes(t *testing.T) {
	Convey("Given an API server with a cached pipeline chart", t, func() {
		deps := newMockDeps()
		deps.cached[service.ChartPipeline] = []byte("cached-png")
		h := newRouter(deps)

		Convey("When requesting the chart without parameters", func() {
			w := do(h, http.MethodGet, "/api/v1/charts/pipeline.png")

			Convey("Then the cached image is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(w.Body.String(), ShouldEqual, "cached-png")
				So(deps.rendered, ShouldBeEmpty)
			})
		})

		Convey("When requesting a chart that was never rendered", func() {
			w := do(h, http.MethodGet, "/api/v1/charts/activity.png")

			Convey("Then it is rendered on demand", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				So(len(deps.rendered), ShouldEqual, 1)
			})
		})

		Convey("When requesting an explicit size", func() {
			w := do(h, http.MethodGet, "/api/v1/charts/pipeline.png?width=64&height=32")

			Convey("Then an ad hoc render of that size is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 64)
				So(img.Bounds().Dy(), ShouldEqual, 32)
			})
		})

		Convey("When the size or period is invalid", func() {
			for _, target := range []string{
				"/api/v1/charts/activity.png?width=0&height=10",
				"/api/v1/charts/activity.png?width=10",
				"/api/v1/charts/activity.png?width=99999&height=10",
				"/api/v1/charts/activity.png?period=hourly",
			} {
				w := do(h, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})
	})
}

func TestTriggerRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		h := newRouter(deps, api.WithRefreshLimit(0, 0))

		Convey("When refreshing", func() {
			w := do(h, http.MethodPost, "/api/v1/dashboard/refresh")

			Convey("Then a reload trigger is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.last().Kind, ShouldEqual, model.TriggerReload)
				So(deps.last().Source, ShouldStartWith, "api:")
			})
		})

		Convey("When an equivalent trigger is pending", func() {
			deps.status = service.Coalesced
			w := do(h, http.MethodPost, "/api/v1/dashboard/refresh")

			Convey("Then the response reports a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the trigger queue is full", func() {
			deps.err = fmt.Errorf("%w: reload", service.ErrBackpressure)
			w := do(h, http.MethodPost, "/api/v1/dashboard/refresh")

			Convey("Then backpressure is reported", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the service is not running", func() {
			deps.err = service.ErrNotStarted
			w := do(h, http.MethodPost, "/api/v1/dashboard/refresh")

			Convey("Then the API is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When changing the window", func() {
			ok := do(h, http.MethodPut, "/api/v1/dashboard/window?days=90")

			Convey("Then valid windows are queued", func() {
				So(ok.Code, ShouldEqual, http.StatusAccepted)
				So(deps.last().Kind, ShouldEqual, model.TriggerSetWindow)
				So(deps.last().Days, ShouldEqual, 90)
			})

			Convey("And invalid windows are rejected", func() {
				for _, q := range []string{"0", "366", "abc", ""} {
					w := do(h, http.MethodPut, "/api/v1/dashboard/window?days="+q)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
				}
				So(len(deps.triggers), ShouldEqual, 1)
			})
		})

		Convey("When changing the period", func() {
			ok := do(h, http.MethodPut, "/api/v1/dashboard/period?value=weekly")
			bad := do(h, http.MethodPut, "/api/v1/dashboard/period?value=yearly")

			Convey("Then only known granularities are queued", func() {
				So(ok.Code, ShouldEqual, http.StatusAccepted)
				So(deps.last().Period, ShouldEqual, "weekly")
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When resizing a chart", func() {
			ok := do(h, http.MethodPut, "/api/v1/charts/activity/size?width=640&height=240")

			Convey("Then the chart and size travel with the trigger", func() {
				So(ok.Code, ShouldEqual, http.StatusAccepted)
				So(deps.last().Chart, ShouldEqual, "activity")
				So(deps.last().Width, ShouldEqual, 640)
				So(deps.last().Height, ShouldEqual, 240)
			})

			Convey("And a missing size is rejected", func() {
				w := do(h, http.MethodPut, "/api/v1/charts/activity/size")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And unknown charts are not found", func() {
				deps.err = fmt.Errorf("%w: %q", service.ErrUnknownChart, "funnel")
				w := do(h, http.MethodPut, "/api/v1/charts/funnel/size?width=10&height=10")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When using the wrong method", func() {
			w := do(h, http.MethodGet, "/api/v1/dashboard/refresh")

			Convey("Then the router rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRefreshRateLimit(t *testing.T) {
	Convey("Given a refresh limit with a burst of two", t, func() {
		deps := newMockDeps()
		h := newRouter(deps, api.WithRefreshLimit(1, 2))

		Convey("When refreshing three times at once", func() {
			codes := []int{
				do(h, http.MethodPost, "/api/v1/dashboard/refresh").Code,
				do(h, http.MethodPost, "/api/v1/dashboard/refresh").Code,
			}
			third := do(h, http.MethodPost, "/api/v1/dashboard/refresh")

			Convey("Then the third is rate limited", func() {
				So(codes, ShouldResemble, []int{http.StatusAccepted, http.StatusAccepted})
				So(third.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(third)["code"], ShouldEqual, "rate_limited")
				So(len(deps.triggers), ShouldEqual, 2)
			})
		})
	})
}

func TestOpErrors(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes are both matchable", func() {
			err := api.WrapKind("api.test", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: bad request: boom")
		})

		Convey("Then NewKind and Wrap render their parts", func() {
			So(api.NewKind("api.test", api.ErrRateLimited).Error(), ShouldEqual, "api.test: rate limited")
			So(api.Wrap("api.test", cause).Error(), ShouldEqual, "api.test: boom")
			So(api.Wrap("api.test", nil), ShouldBeNil)
		})
	})
}
