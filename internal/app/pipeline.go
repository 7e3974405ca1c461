package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ismail26477/crm-main/internal/adapters/repository"
	"github.com/Ismail26477/crm-main/internal/domain/aggregate"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/timeseries"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/domain/window"
	"github.com/Ismail26477/crm-main/internal/render"
	"github.com/Ismail26477/crm-main/pkg/logger"
	"github.com/Ismail26477/crm-main/pkg/metrics"
)

const day = 24 * time.Hour

// Handle applies one trigger. The loop is its only caller once the service
// is started.
func (s *Service) Handle(ctx context.Context, t model.Trigger) error { //nolint:gocritic // hugeParam
	// Clear the pending key first so a trigger queued while this one runs
	// is not coalesced into work that already started.
	t = s.take(ctx, t)

	start := time.Now()
	var err error
	switch t.Kind {
	case model.TriggerReload:
		err = s.Reload(ctx)
	case model.TriggerRecompute:
		err = s.locked(s.recompute)
	case model.TriggerRealtime:
		err = s.refreshLive(ctx)
	case model.TriggerScores:
		err = s.refreshScores(ctx)
	case model.TriggerTeam:
		err = s.refreshTeam(ctx)
	case model.TriggerSetWindow, model.TriggerSetPeriod, model.TriggerResize:
		err = s.applySetting(t)
	default:
		err = fmt.Errorf("%w: kind %q", ErrInvalidTrigger, t.Kind)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, ErrStale) {
			outcome = "stale"
		}
	}
	metrics.RecordPipelineRun(string(t.Kind), outcome)
	metrics.RecordPipelineDuration(float64(time.Since(start).Milliseconds()))
	return err
}

func (s *Service) locked(f func() error) error {
	s.run.Lock()
	defer s.run.Unlock()
	return f()
}

func (s *Service) applySetting(t model.Trigger) error { //nolint:gocritic // hugeParam
	if err := validate(t); err != nil {
		return err
	}
	return s.locked(func() error {
		switch t.Kind {
		case model.TriggerSetWindow:
			s.state.WindowDays = t.Days
		case model.TriggerSetPeriod:
			s.state.Period, _ = types.ParseGranularity(t.Period)
		case model.TriggerResize:
			s.state.Sizes[t.Chart] = Size{Width: t.Width, Height: t.Height}
		}
		return s.recompute()
	})
}

// fetched is the joined result of one reload.
type fetched struct {
	leads     []model.Lead
	upcoming  []model.Lead
	analytics *model.Analytics
}

// Reload fetches leads, upcoming follow-ups and analytics concurrently,
// replaces the store and recomputes the dashboard. A reload that finishes
// after a newer one has been stored is discarded and returns ErrStale.
//
// Per-endpoint failures are reported in the returned error, but the store
// is still replaced and the dashboard recomputed with the fallbacks the
// failure policy prescribes.
func (s *Service) Reload(ctx context.Context) error {
	gen := s.generation.Add(1)
	now := s.now()

	data, fetchErr := s.fetch(ctx, now)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return s.locked(func() error {
		err := s.store.Replace(ctx, repository.Dataset{
			Generation: gen,
			LoadedAt:   now,
			Leads:      data.leads,
			Upcoming:   data.upcoming,
			Analytics:  data.analytics,
		})
		if errors.Is(err, repository.ErrStaleGeneration) {
			metrics.RecordStaleReload()
			s.logger.Debug(ctx, "stale reload discarded", logger.Int64("generation", int64(gen)))
			return fmt.Errorf("%w: generation %d", ErrStale, gen)
		}
		if err != nil {
			return err
		}
		s.logger.Info(ctx, "leads reloaded",
			logger.Int64("generation", int64(gen)),
			logger.Int("leads", len(data.leads)),
			logger.Int("upcoming", len(data.upcoming)),
			logger.Bool("analytics", data.analytics != nil),
		)
		return errors.Join(fetchErr, s.recompute())
	})
}

func (s *Service) fetch(ctx context.Context, now time.Time) (fetched, error) {
	var (
		out                                fetched
		leadsErr, upcomingErr, analyticErr error
	)
	from := now.Add(-time.Duration(s.analyticsDays) * day)

	// reset_all cancels the siblings on the first failure; isolate lets each
	// endpoint run to completion on its own.
	g, gctx := &errgroup.Group{}, ctx
	if s.policy == PolicyResetAll {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.Go(func() error {
		out.leads, leadsErr = s.collab.Leads(gctx)
		return leadsErr
	})
	g.Go(func() error {
		out.upcoming, upcomingErr = s.collab.UpcomingFollowups(gctx)
		return upcomingErr
	})
	g.Go(func() error {
		out.analytics, analyticErr = s.collab.Analytics(gctx, from, now)
		return analyticErr
	})
	joinErr := g.Wait()

	if s.policy == PolicyResetAll {
		if joinErr != nil {
			metrics.RecordErrorByComponent("reload", "reset_all")
			s.logger.Warn(ctx, "reload failed, clearing leads, follow-ups and analytics", logger.Error(joinErr))
			return fetched{}, joinErr
		}
		return out, nil
	}

	for _, e := range []struct {
		name string
		err  error
	}{{"leads", leadsErr}, {"upcoming", upcomingErr}, {"analytics", analyticErr}} {
		if e.err != nil {
			metrics.RecordErrorByComponent("reload", e.name)
			s.logger.Warn(ctx, "collaborator fetch failed, using empty fallback",
				logger.String("endpoint", e.name), logger.Error(e.err))
		}
	}
	if leadsErr != nil {
		out.leads = nil
	}
	if upcomingErr != nil {
		out.upcoming = nil
	}
	if analyticErr != nil {
		out.analytics = nil
	}
	return out, errors.Join(leadsErr, upcomingErr, analyticErr)
}

// recompute rebuilds the snapshot and the charts from the stored dataset.
// Callers hold s.run.
func (s *Service) recompute() error {
	ctx := context.Background()
	ds := s.store.Current(ctx)
	now := s.now()
	cal := aggregate.Calendar{Now: now, Location: s.loc, MatchYear: s.matchYear}
	st := s.state

	w := window.Split(ds.Leads, st.WindowDays, now, s.loc)
	slices, total := aggregate.Pipeline(ds.Leads)

	snap := types.Snapshot{
		Generation:        ds.Generation,
		ComputedAt:        now,
		WindowDays:        st.WindowDays,
		Period:            st.Period,
		LeadCount:         len(ds.Leads),
		UndatedLead:       w.Undated,
		Headline:          aggregate.Headline(ds.Leads, w, cal),
		Activity:          timeseries.Buckets(ds.Leads, st.Period, now, timeseries.Options{Location: s.loc, MatchYear: s.matchYear}),
		Pipeline:          slices,
		PipelineTotal:     total,
		SourceMix:         aggregate.SourceMix(ds.Leads),
		SourcePerformance: aggregate.SourcePerformance(ds.Leads, ds.Analytics),
		TopAgents:         aggregate.TopAgents(ds.Leads),
		ResponseBands:     aggregate.ResponseBands(ds.Leads, s.estimator),
		Followups:         aggregate.UpcomingFollowups(ds.Upcoming, cal),
		Timeline:          aggregate.ActivityTimeline(ds.Leads, cal),
		Tasks:             aggregate.TodayTasks(ds.Leads, cal),
		Scores:            st.Scores,
		Team:              st.Team,
		Live:              st.Live,
	}
	metrics.UpdateUndatedLeads(w.Undated)

	activity, err := renderActivity(snap.Activity, st.Sizes[ChartActivity])
	if err != nil {
		return err
	}
	pipeline, legend, err := renderPipeline(snap.Pipeline, st.Sizes[ChartPipeline])
	if err != nil {
		return err
	}

	s.publish(&view{
		snapshot: snap,
		charts:   map[string][]byte{ChartActivity: activity, ChartPipeline: pipeline},
		legend:   legend,
		sizes:    map[string]Size{ChartActivity: st.Sizes[ChartActivity], ChartPipeline: st.Sizes[ChartPipeline]},
	})
	return nil
}

func renderActivity(buckets []types.TimeBucket, size Size) ([]byte, error) {
	start := time.Now()
	r := render.NewRaster(size.Width, size.Height)
	render.BarChart(r, buckets)
	png, err := encode(r)
	metrics.RecordRenderDuration(ChartActivity, float64(time.Since(start).Milliseconds()))
	return png, err
}

func renderPipeline(slices []types.StageSlice, size Size) ([]byte, []types.LegendEntry, error) {
	start := time.Now()
	var legend []types.LegendEntry
	r := render.NewRaster(size.Width, size.Height)
	render.DonutChart(r, slices, render.LegendFunc(func(entries []types.LegendEntry) {
		legend = entries
	}))
	png, err := encode(r)
	metrics.RecordRenderDuration(ChartPipeline, float64(time.Since(start).Milliseconds()))
	return png, legend, err
}

func encode(r *render.Raster) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderChart draws chart ad hoc at size, without touching the published
// state. A zero size uses the current display size; an empty period uses the
// current granularity. The pipeline chart ignores period.
func (s *Service) RenderChart(ctx context.Context, chart string, size Size, period types.Granularity) ([]byte, error) {
	s.mu.RLock()
	snap := s.view.snapshot
	if !size.Valid() {
		size = s.view.sizes[chart]
	}
	s.mu.RUnlock()
	if !size.Valid() {
		size = defaultSizes[chart]
	}

	switch chart {
	case ChartActivity:
		buckets := snap.Activity
		if period != "" && period != snap.Period {
			buckets = timeseries.Buckets(s.store.Current(ctx).Leads, period, s.now(),
				timeseries.Options{Location: s.loc, MatchYear: s.matchYear})
		}
		return renderActivity(buckets, size)
	case ChartPipeline:
		png, _, err := renderPipeline(snap.Pipeline, size)
		return png, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}
}

// refreshLive patches the live counters only.
func (s *Service) refreshLive(ctx context.Context) error {
	m, err := s.collab.RealtimeMetrics(ctx)
	if err != nil {
		s.logger.Debug(ctx, "realtime metrics unavailable", logger.Error(err))
		return err
	}
	if m == nil || !m.Success || m.SystemMetrics == nil {
		return nil
	}

	live := types.Live{
		HotLeads:  m.SystemMetrics.HotLeads.Int(),
		UpdatedAt: s.now(),
		Available: true,
	}
	metrics.UpdateLiveHotLeads(live.HotLeads)
	return s.locked(func() error {
		s.state.Live = live
		s.patch(func(snap *types.Snapshot) { snap.Live = live })
		return nil
	})
}

// refreshScores reloads the lead scoring insight. A failure clears it.
func (s *Service) refreshScores(ctx context.Context) error {
	scores, err := s.collab.LeadScores(ctx)
	if err != nil {
		s.logger.Warn(ctx, "lead scores unavailable", logger.Error(err))
		scores = nil
	}
	insight := aggregate.LeadScoreInsight(scores)
	return errors.Join(err, s.locked(func() error {
		s.state.Scores = insight
		s.patch(func(snap *types.Snapshot) { snap.Scores = insight })
		return nil
	}))
}

// refreshTeam reloads the team leaderboard. A failure clears it.
func (s *Service) refreshTeam(ctx context.Context) error {
	team, err := s.collab.TeamPerformance(ctx)
	if err != nil {
		s.logger.Warn(ctx, "team performance unavailable", logger.Error(err))
		team = nil
	}
	board := aggregate.TeamLeaderboard(team)
	return errors.Join(err, s.locked(func() error {
		s.state.Team = board
		s.patch(func(snap *types.Snapshot) { snap.Team = board })
		return nil
	}))
}
