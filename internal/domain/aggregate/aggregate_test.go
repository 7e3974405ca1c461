package aggregate_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/aggregate"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func cal() aggregate.Calendar {
	return aggregate.Calendar{Now: now, Location: time.UTC, MatchYear: true}
}

func created(t time.Time, stage model.Stage) model.Lead {
	return model.Lead{CreatedAt: model.At(t), Stage: stage}
}

type fixedEstimator float64

func (f fixedEstimator) AverageMinutes(model.Priority, []model.Lead) (float64, bool) {
	return float64(f), false
}

func TestChange(t *testing.T) {
	Convey("Given period over period changes", t, func() {
		So(aggregate.Change(5, 0), ShouldEqual, 100)
		So(aggregate.Change(0, 0), ShouldEqual, 0)
		So(aggregate.Change(15, 10), ShouldEqual, 50)
		So(aggregate.Change(5, 10), ShouldEqual, -50)

		Convey("Then labels carry a sign only when non-negative", func() {
			So(aggregate.FormatChange(12.5), ShouldEqual, "+12.5%")
			So(aggregate.FormatChange(0), ShouldEqual, "+0.0%")
			So(aggregate.FormatChange(-3.26), ShouldEqual, "-3.3%")
		})
	})
}

func TestHeadline(t *testing.T) {
	Convey("Given a new lead today and a deal won forty days ago", t, func() {
		leads := []model.Lead{
			created(now, model.StageNewLead),
			created(now.AddDate(0, 0, -40), model.StageClosedWon),
		}
		w := window.Split(leads, 30, now, time.UTC)
		h := aggregate.Headline(leads, w, cal())

		Convey("Then only the recent lead counts towards the window", func() {
			So(h.TotalLeads, ShouldEqual, 1)
			So(h.ClosedDeals, ShouldEqual, 0)
			So(h.ActiveListings, ShouldEqual, 1)
			So(h.NewLeadsToday, ShouldEqual, 1)
			So(h.LeadsChange, ShouldEqual, 0)
		})

		Convey("Then the old deal is outside this calendar month", func() {
			So(h.ThisMonthDeals, ShouldEqual, 0)
		})
	})

	Convey("Given assigned and converted leads in the window", t, func() {
		leads := []model.Lead{
			{CreatedAt: model.At(now), Stage: model.StageWon, AssignedCallerName: "Ana"},
			{CreatedAt: model.At(now.Add(-time.Hour)), Stage: model.StageClosedWon, AssignedCaller: json.RawMessage(`"c1"`)},
			{CreatedAt: model.At(now.AddDate(0, 0, -3)), Stage: model.StageClosedLost, AssignedCaller: json.RawMessage(`null`)},
			{CreatedAt: model.At(now.AddDate(0, 0, -45)), Stage: model.StageContacted},
			{CreatedAt: model.RawTimestamp("not-a-date"), Stage: model.StageWon},
		}
		w := window.Split(leads, 30, now, time.UTC)
		h := aggregate.Headline(leads, w, cal())

		So(h.TotalLeads, ShouldEqual, 3)
		So(h.LeadsChange, ShouldEqual, 200)
		So(h.LeadsChangeLabel, ShouldEqual, "+200.0%")
		So(h.ClosedDeals, ShouldEqual, 2)
		So(h.ActiveListings, ShouldEqual, 0)
		So(h.ScheduledViewings, ShouldEqual, 2)
		So(h.TodayViewings, ShouldEqual, 2)
		So(h.ThisMonthDeals, ShouldEqual, 2)
	})
}

func TestMalformedRecords(t *testing.T) {
	Convey("Given one unparseable date among ten valid leads", t, func() {
		var leads []model.Lead
		for i := 0; i < 10; i++ {
			leads = append(leads, model.Lead{
				CreatedAt: model.At(now.AddDate(0, 0, -i)),
				Stage:     model.StageNewLead,
				Priority:  model.PriorityHot,
			})
		}
		leads = append(leads, model.Lead{
			CreatedAt:        model.RawTimestamp("not-a-date"),
			NextFollowUpDate: model.RawTimestamp("garbage"),
			CallbackDateTime: model.RawTimestamp("also garbage"),
			Priority:         model.PriorityHot,
		})

		Convey("Then no aggregator panics", func() {
			So(func() {
				w := window.Split(leads, 30, now, time.UTC)
				aggregate.Headline(leads, w, cal())
				aggregate.SourceMix(leads)
				aggregate.SourcePerformance(leads, nil)
				aggregate.TopAgents(leads)
				aggregate.Pipeline(leads)
				aggregate.ResponseBands(leads, fixedEstimator(90))
				aggregate.UpcomingFollowups(leads, cal())
				aggregate.ActivityTimeline(leads, cal())
				aggregate.TodayTasks(leads, cal())
			}, ShouldNotPanic)
		})

		Convey("Then the broken lead sorts last in the timeline", func() {
			items := aggregate.ActivityTimeline(leads, cal())
			So(len(items), ShouldEqual, aggregate.TimelineLength)
			So(items[0].Ago, ShouldEqual, "Just now")
			So(items[1].Ago, ShouldEqual, "1 day ago")
		})
	})
}

func TestSourceRankings(t *testing.T) {
	Convey("Given leads from several sources", t, func() {
		leads := []model.Lead{
			{Source: "Web", Stage: model.StageWon},
			{Source: "Referral"},
			{Source: "Web"},
			{Source: "Referral", Stage: model.StageClosedWon},
			{Source: "Ads"},
			{Source: ""},
		}

		Convey("Then ties keep first-seen order", func() {
			mix := aggregate.SourceMix(leads)
			So(len(mix), ShouldEqual, 4)
			So(mix[0].Name, ShouldEqual, "Web")
			So(mix[1].Name, ShouldEqual, "Referral")
			So(mix[2].Name, ShouldEqual, "Ads")
			So(mix[3].Name, ShouldEqual, "Unknown")
			So(mix[0].BarPercent, ShouldEqual, 100)
			So(mix[2].BarPercent, ShouldEqual, 50)
			So(mix[1].Color, ShouldEqual, aggregate.Palette[1])
		})

		Convey("Then performance ranks by conversion rate", func() {
			perf := aggregate.SourcePerformance(leads, nil)
			So(perf[0].Name, ShouldEqual, "Web")
			So(perf[0].Rate, ShouldEqual, 50)
			So(perf[0].Class, ShouldEqual, types.RateGood)
			So(perf[2].Class, ShouldEqual, types.RatePoor)
			So(perf[0].FromAnalytics, ShouldBeFalse)
		})

		Convey("Then analytics rows win when present", func() {
			analytics := &model.Analytics{Success: true}
			for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
				analytics.SourcePerformance = append(analytics.SourcePerformance,
					model.SourcePerformance{Source: s, TotalLeads: 10, Converted: 3, ConversionRate: 30})
			}
			perf := aggregate.SourcePerformance(leads, analytics)
			So(len(perf), ShouldEqual, 5)
			So(perf[0].Name, ShouldEqual, "a")
			So(perf[0].Class, ShouldEqual, types.RateAverage)
			So(perf[0].FromAnalytics, ShouldBeTrue)
		})
	})

	Convey("Given more than five sources", t, func() {
		var leads []model.Lead
		for _, s := range []string{"a", "b", "c", "d", "e", "f", "f"} {
			leads = append(leads, model.Lead{Source: s})
		}
		mix := aggregate.SourceMix(leads)
		So(len(mix), ShouldEqual, aggregate.TopN)
		So(mix[0].Name, ShouldEqual, "f")
		So(mix[4].Name, ShouldEqual, "d")
	})
}

func TestTopAgents(t *testing.T) {
	Convey("Given two agents with equal closed deals", t, func() {
		var leads []model.Lead
		add := func(name string, total, won int) {
			for i := 0; i < total; i++ {
				stage := model.StageContacted
				if i < won {
					stage = model.StageClosedWon
				}
				leads = append(leads, model.Lead{AssignedCallerName: name, Stage: stage})
			}
		}
		add("Anna Bell", 5, 3)
		add("bob", 4, 3)
		leads = append(leads, model.Lead{})

		agents := aggregate.TopAgents(leads)

		Convey("Then the first seen agent ranks first", func() {
			So(agents[0].Name, ShouldEqual, "Anna Bell")
			So(agents[0].Rate, ShouldEqual, 60)
			So(agents[0].Initials, ShouldEqual, "AB")
			So(agents[1].Name, ShouldEqual, "bob")
			So(agents[1].Rate, ShouldEqual, 75)
			So(agents[1].Initials, ShouldEqual, "B")
			So(agents[2].Name, ShouldEqual, "Unassigned")
		})
	})
}

func TestPipeline(t *testing.T) {
	Convey("Given leads in known and unknown stages", t, func() {
		leads := []model.Lead{
			{Stage: model.StageNewLead},
			{Stage: model.StageNewLead},
			{Stage: model.StageWon},
			{Stage: model.StageClosedWon},
			{Stage: "Archived"},
			{},
		}
		slices, total := aggregate.Pipeline(leads)

		Convey("Then empty and unknown stages are dropped", func() {
			So(len(slices), ShouldEqual, 2)
			So(slices[0].Stage, ShouldEqual, "New Lead")
			So(slices[1].Stage, ShouldEqual, "Closed Won")
			So(slices[1].Count, ShouldEqual, 2)
			So(slices[1].Color, ShouldEqual, "#38f9d7")
		})

		Convey("Then the total is the sum of the slices", func() {
			sum := 0
			for _, s := range slices {
				sum += s.Count
			}
			So(total, ShouldEqual, sum)
			So(total, ShouldEqual, 4)
		})
	})
}

func TestResponseBands(t *testing.T) {
	Convey("Given leads across priorities", t, func() {
		leads := []model.Lead{
			{Priority: model.PriorityHot, AssignedCaller: json.RawMessage(`"c1"`)},
			{Priority: model.PriorityHot, AssignedCallerName: "only a name"},
			{Priority: model.PriorityWarm},
		}
		bands := aggregate.ResponseBands(leads, fixedEstimator(90.4))

		So(len(bands), ShouldEqual, 3)
		So(bands[0].Priority, ShouldEqual, "Hot")
		So(bands[0].Count, ShouldEqual, 2)
		So(bands[0].Assigned, ShouldEqual, 1)
		So(bands[0].AvgMinutes, ShouldEqual, 90)
		So(bands[0].Class, ShouldEqual, types.SpeedAverage)

		Convey("Then empty bands report zero and fast", func() {
			So(bands[2].Count, ShouldEqual, 0)
			So(bands[2].AvgMinutes, ShouldEqual, 0)
			So(bands[2].Class, ShouldEqual, types.SpeedFast)
		})
	})

	Convey("Given speed thresholds", t, func() {
		So(aggregate.ClassifySpeed(60), ShouldEqual, types.SpeedFast)
		So(aggregate.ClassifySpeed(61), ShouldEqual, types.SpeedAverage)
		So(aggregate.ClassifySpeed(121), ShouldEqual, types.SpeedSlow)
	})
}

func TestUpcomingFollowups(t *testing.T) {
	Convey("Given callbacks around the seven day horizon", t, func() {
		upcoming := []model.Lead{
			{ID: "late", Name: "Late", CallbackDateTime: model.At(now.Add(8 * 24 * time.Hour))},
			{ID: "two", LeadName: "Two Days", Name: "ignored", NextFollowDate: model.At(now.Add(36 * time.Hour))},
			{ID: "past", CallbackDateTime: model.At(now.Add(-time.Hour))},
			{ID: "soon", Name: "Soon", NextFollowUpDate: model.At(now.Add(time.Hour)), NotInterestedReason: "Price"},
			{ID: "now", CallbackDateTime: model.At(now), CallbackReason: "Site visit"},
			{ID: "broken", CallbackDateTime: model.RawTimestamp("nope"), NextFollowUpDate: model.At(now.Add(time.Hour))},
		}
		out := aggregate.UpcomingFollowups(upcoming, cal())

		Convey("Then only the window is kept, soonest first", func() {
			So(len(out), ShouldEqual, 3)
			So(out[0].LeadID, ShouldEqual, "now")
			So(out[1].LeadID, ShouldEqual, "soon")
			So(out[2].LeadID, ShouldEqual, "two")
		})

		Convey("Then labels and fallbacks follow the accessor chains", func() {
			So(out[0].DueLabel, ShouldEqual, "Today")
			So(out[0].Name, ShouldEqual, "Unknown")
			So(out[0].Reason, ShouldEqual, "Site visit")
			So(out[1].DueLabel, ShouldEqual, "Tomorrow")
			So(out[1].Reason, ShouldEqual, "Price")
			So(out[2].DueLabel, ShouldEqual, "2 days")
			So(out[2].Name, ShouldEqual, "Two Days")
			So(out[2].Reason, ShouldEqual, "Follow-up")
		})
	})
}

func TestTodayTasks(t *testing.T) {
	Convey("Given no due or hot leads", t, func() {
		tasks := aggregate.TodayTasks([]model.Lead{{Name: "x"}}, cal())
		So(len(tasks), ShouldEqual, 2)
		So(tasks[0].Title, ShouldEqual, "Review pending leads")
		So(tasks[1].Priority, ShouldEqual, aggregate.TaskPriorityNormal)
	})

	Convey("Given due follow-ups and hot leads", t, func() {
		leads := []model.Lead{
			{Name: "A", NextFollowUpDate: model.At(now.Add(2 * time.Hour)), CallbackReason: "Docs"},
			{Name: "B", NextFollowUp: model.At(now.Add(-2 * time.Hour))},
			{Name: "C", NextFollowUpDate: model.At(now), Stage: model.StageClosedLost},
			{Name: "W", NextFollowUpDate: model.At(now), Stage: model.StageWon},
			{Name: "D", NextFollowUpDate: model.At(now)},
			{Name: "H1", Priority: model.PriorityHot, Source: "Web"},
			{Name: "H2", Priority: model.PriorityHot},
			{Name: "H3", Priority: model.PriorityHot},
			{Name: "H4", Priority: model.PriorityHot},
		}
		tasks := aggregate.TodayTasks(leads, cal())

		So(len(tasks), ShouldEqual, 5)
		So(tasks[0].Title, ShouldEqual, "Follow up with A (Docs)")
		So(tasks[1].Title, ShouldEqual, "Follow up with B (Callback)")
		So(tasks[2].Title, ShouldEqual, "Contact H1 - Hot lead from Web")
		So(tasks[3].Title, ShouldEqual, "Contact H2 - Hot lead from Unknown")
		So(tasks[4].Kind, ShouldEqual, aggregate.TaskHotLead)
	})

	Convey("Given a won lead and an open lead due today", t, func() {
		leads := []model.Lead{
			{Name: "W", NextFollowUpDate: model.At(now), Stage: model.StageWon},
			{Name: "O", NextFollowUpDate: model.At(now), Stage: model.StageContacted},
		}
		tasks := aggregate.TodayTasks(leads, cal())

		So(len(tasks), ShouldEqual, 1)
		So(tasks[0].Title, ShouldEqual, "Follow up with O (Callback)")
	})
}

func TestTimeAgo(t *testing.T) {
	Convey("Given elapsed durations", t, func() {
		So(aggregate.TimeAgo(-time.Minute), ShouldEqual, "Just now")
		So(aggregate.TimeAgo(59*time.Second), ShouldEqual, "Just now")
		So(aggregate.TimeAgo(5*time.Minute), ShouldEqual, "5 minutes ago")
		So(aggregate.TimeAgo(time.Hour), ShouldEqual, "1 hour ago")
		So(aggregate.TimeAgo(3*24*time.Hour), ShouldEqual, "3 days ago")
		So(aggregate.TimeAgo(15*24*time.Hour), ShouldEqual, "2 weeks ago")
	})
}

func TestInsights(t *testing.T) {
	Convey("Given a scoring payload", t, func() {
		scores := &model.LeadScores{ScoredLeads: []model.ScoredLead{
			{Name: "A", Stage: model.StageContacted, Score: 91, ScoreLevel: model.PriorityHot},
			{ScoreLevel: model.PriorityWarm},
			{Name: "C", ScoreLevel: model.PriorityCold},
			{Name: "D", ScoreLevel: model.PriorityHot},
			{Name: "E", ScoreLevel: "Lukewarm"},
			{Name: "F", ScoreLevel: model.PriorityCold},
		}}
		in := aggregate.LeadScoreInsight(scores)

		So(in.Hot, ShouldEqual, 2)
		So(in.Warm, ShouldEqual, 1)
		So(in.Cold, ShouldEqual, 2)
		So(len(in.Top), ShouldEqual, 5)
		So(in.Top[0].Color, ShouldEqual, "#dc2626")
		So(in.Top[1].Name, ShouldEqual, "Unknown")
		So(in.Top[1].Stage, ShouldEqual, "N/A")
		So(in.Top[4].Color, ShouldEqual, "#6b7280")
		So(aggregate.LeadScoreInsight(nil), ShouldBeNil)
	})

	Convey("Given a team payload", t, func() {
		team := &model.TeamPerformance{}
		for i := 0; i < 6; i++ {
			team.TeamPerformance = append(team.TeamPerformance,
				model.TeamMember{Name: string(rune('A' + i)), ClosedDeals: 3, PerformanceRating: 4.6})
		}
		team.TeamPerformance[1].PerformanceRating = 9

		board := aggregate.TeamLeaderboard(team)
		So(len(board), ShouldEqual, 5)
		So(board[0].Medal, ShouldEqual, "🥇")
		So(board[0].Stars, ShouldEqual, 5)
		So(board[1].Stars, ShouldEqual, 5)
		So(board[4].Rank, ShouldEqual, 5)
		So(aggregate.TeamLeaderboard(nil), ShouldBeNil)
	})
}
