package aggregate

import (
	"math"
	"strings"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// Medals decorate the team leaderboard ranks.
var Medals = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

const maxStars = 5

// LevelColor is the badge color of a score level.
func LevelColor(p model.Priority) string {
	switch p {
	case model.PriorityHot:
		return "#dc2626"
	case model.PriorityWarm:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

// LeadScoreInsight counts scored leads per level and keeps the first five
// in the order the scoring service returned them. A nil payload yields nil.
func LeadScoreInsight(scores *model.LeadScores) *types.ScoreInsight {
	if scores == nil {
		return nil
	}
	in := &types.ScoreInsight{}
	for _, s := range scores.ScoredLeads {
		switch s.ScoreLevel {
		case model.PriorityHot:
			in.Hot++
		case model.PriorityWarm:
			in.Warm++
		case model.PriorityCold:
			in.Cold++
		}
	}
	for _, s := range top(scores.ScoredLeads) {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = model.UnknownName
		}
		stage := string(s.Stage)
		if stage == "" {
			stage = "N/A"
		}
		in.Top = append(in.Top, types.ScoredLead{
			Name:  name,
			Stage: stage,
			Score: s.Score.Float(),
			Level: string(s.ScoreLevel),
			Color: LevelColor(s.ScoreLevel),
		})
	}
	return in
}

// TeamLeaderboard ranks the first five members as served.
func TeamLeaderboard(team *model.TeamPerformance) []types.TeamEntry {
	if team == nil {
		return nil
	}
	members := top(team.TeamPerformance)
	out := make([]types.TeamEntry, 0, len(members))
	for i, m := range members {
		stars := int(math.Round(m.PerformanceRating.Float()))
		stars = min(max(stars, 0), maxStars)
		out = append(out, types.TeamEntry{
			Rank:           i + 1,
			Medal:          Medals[i],
			Name:           m.Name,
			ClosedDeals:    m.ClosedDeals.Int(),
			ConversionRate: m.ConversionRate.Float(),
			Stars:          stars,
		})
	}
	return out
}
