package demodata

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
)

// Book is a generated lead set plus the derived collaborator payloads.
type Book struct {
	Leads []model.Lead
	now   func() time.Time
}

// NewBook wraps leads. now is the reference time of the follow-up filter.
func NewBook(leads []model.Lead, now func() time.Time) *Book {
	if now == nil {
		now = time.Now
	}
	return &Book{Leads: leads, now: now}
}

// Upcoming returns the leads with a follow-up due from now on.
func (b *Book) Upcoming() []model.Lead {
	now := b.now()
	var out []model.Lead
	for _, l := range b.Leads {
		if due, ok := model.FirstTime(l, time.UTC, model.NextContactDate); ok && !due.Before(now) {
			out = append(out, l)
		}
	}
	return out
}

// Analytics aggregates per-source conversions of the leads created in [from, to].
func (b *Book) Analytics(from, to time.Time) model.Analytics {
	type acc struct{ total, won int }
	by := map[string]*acc{}
	for _, l := range b.Leads {
		t, ok := l.CreatedAt.Time(time.UTC)
		if !ok || t.Before(from) || t.After(to) {
			continue
		}
		a := by[l.SourceOrUnknown()]
		if a == nil {
			a = &acc{}
			by[l.SourceOrUnknown()] = a
		}
		a.total++
		if l.Stage.IsConverted() {
			a.won++
		}
	}
	out := model.Analytics{Success: true}
	for src, a := range by {
		out.SourcePerformance = append(out.SourcePerformance, model.SourcePerformance{
			Source:         src,
			TotalLeads:     model.Number(a.total),
			Converted:      model.Number(a.won),
			ConversionRate: model.Number(rate(a.won, a.total)),
		})
	}
	sort.Slice(out.SourcePerformance, func(i, j int) bool {
		return out.SourcePerformance[i].Source < out.SourcePerformance[j].Source
	})
	return out
}

// Scores rates every open lead and returns them best first.
func (b *Book) Scores() model.LeadScores {
	var out model.LeadScores
	for _, l := range b.Leads {
		if l.Stage.IsTerminal() {
			continue
		}
		score := scoreOf(l)
		out.ScoredLeads = append(out.ScoredLeads, model.ScoredLead{
			ID:         l.ID,
			Name:       model.NameOf(l),
			Stage:      l.Stage,
			Score:      model.Number(score),
			ScoreLevel: levelOf(score),
		})
	}
	sort.SliceStable(out.ScoredLeads, func(i, j int) bool {
		return out.ScoredLeads[i].Score > out.ScoredLeads[j].Score
	})
	return out
}

// Team ranks assigned callers by closed deals.
func (b *Book) Team() model.TeamPerformance {
	type acc struct{ total, won int }
	by := map[string]*acc{}
	for _, l := range b.Leads {
		if l.AssignedCallerName == "" {
			continue
		}
		a := by[l.AssignedCallerName]
		if a == nil {
			a = &acc{}
			by[l.AssignedCallerName] = a
		}
		a.total++
		if l.Stage.IsConverted() {
			a.won++
		}
	}
	var out model.TeamPerformance
	for name, a := range by {
		r := rate(a.won, a.total)
		out.TeamPerformance = append(out.TeamPerformance, model.TeamMember{
			Name:              name,
			ClosedDeals:       model.Number(a.won),
			ConversionRate:    model.Number(r),
			PerformanceRating: model.Number(math.Min(5, 1+r/10)),
		})
	}
	sort.Slice(out.TeamPerformance, func(i, j int) bool {
		x, y := out.TeamPerformance[i], out.TeamPerformance[j]
		if x.ClosedDeals != y.ClosedDeals {
			return x.ClosedDeals > y.ClosedDeals
		}
		return x.Name < y.Name
	})
	return out
}

// Realtime counts the open hot leads.
func (b *Book) Realtime() model.RealtimeMetrics {
	hot := 0
	for _, l := range b.Leads {
		if l.Priority == model.PriorityHot && !l.Stage.IsTerminal() {
			hot++
		}
	}
	return model.RealtimeMetrics{
		Success: true,
		SystemMetrics: &model.SystemMetrics{
			HotLeads:   model.Number(hot),
			TotalLeads: model.Number(len(b.Leads)),
		},
	}
}

func scoreOf(l model.Lead) float64 {
	score := 20.0
	switch l.Priority {
	case model.PriorityHot:
		score += 40
	case model.PriorityWarm:
		score += 20
	}
	switch l.Stage {
	case model.StageNegotiation:
		score += 30
	case model.StageContacted:
		score += 15
	}
	if l.IsAssigned() {
		score += 5
	}
	// Stable per-lead spread so equal profiles do not tie.
	if len(l.ID) > 0 {
		if n, err := strconv.ParseUint(l.ID[:2], 16, 8); err == nil {
			score += float64(n % 5)
		}
	}
	return math.Min(score, 100)
}

func levelOf(score float64) model.Priority {
	switch {
	case score >= 70:
		return model.PriorityHot
	case score >= 40:
		return model.PriorityWarm
	default:
		return model.PriorityCold
	}
}

func rate(won, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(total)*1000) / 10
}
