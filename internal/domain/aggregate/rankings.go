package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// TopN is the length of every ranked list.
const TopN = 5

// Palette used by ranked lists, in rank order.
var Palette = []string{"#667eea", "#4facfe", "#43e97b", "#f093fb", "#fa709a"}

// group counts leads per key, keeping keys in first-seen order so a stable
// sort leaves ties in that order.
func group(leads []model.Lead, key func(model.Lead) string) []types.RankedEntity {
	index := make(map[string]int)
	var out []types.RankedEntity
	for _, l := range leads {
		k := key(l)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, types.RankedEntity{Name: k})
		}
		out[i].Total++
		if l.Stage.IsConverted() {
			out[i].Converted++
		}
	}
	for i := range out {
		out[i].Rate = rate(out[i].Converted, out[i].Total)
	}
	return out
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func top[T any](s []T) []T {
	if len(s) > TopN {
		return s[:TopN]
	}
	return s
}

// SourceMix ranks sources by lead count. BarPercent is relative to the
// largest of the five.
func SourceMix(leads []model.Lead) []types.SourceShare {
	groups := group(leads, model.Lead.SourceOrUnknown)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
	groups = top(groups)

	maxCount := 1
	if len(groups) > 0 && groups[0].Total > 0 {
		maxCount = groups[0].Total
	}
	out := make([]types.SourceShare, 0, len(groups))
	for i, g := range groups {
		out = append(out, types.SourceShare{
			Name:       g.Name,
			Count:      g.Total,
			BarPercent: float64(g.Total) / float64(maxCount) * 100,
			Color:      Palette[i%len(Palette)],
		})
	}
	return out
}

// ClassifyRate buckets a conversion rate: below 20 is poor, below 40 average.
func ClassifyRate(r float64) types.RateClass {
	switch {
	case r < 20:
		return types.RatePoor
	case r < 40:
		return types.RateAverage
	default:
		return types.RateGood
	}
}

// SourcePerformance prefers precomputed analytics rows when the analytics
// collaborator supplied any; otherwise it ranks local sources by rate.
func SourcePerformance(leads []model.Lead, analytics *model.Analytics) []types.SourcePerformance {
	if analytics != nil && len(analytics.SourcePerformance) > 0 {
		rows := top(analytics.SourcePerformance)
		out := make([]types.SourcePerformance, 0, len(rows))
		for _, r := range rows {
			e := types.RankedEntity{
				Name:      r.Source,
				Total:     r.TotalLeads.Int(),
				Converted: r.Converted.Int(),
				Rate:      r.ConversionRate.Float(),
			}
			out = append(out, types.SourcePerformance{RankedEntity: e, Class: ClassifyRate(e.Rate), FromAnalytics: true})
		}
		return out
	}

	groups := group(leads, model.Lead.SourceOrUnknown)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Rate > groups[j].Rate })
	groups = top(groups)
	out := make([]types.SourcePerformance, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.SourcePerformance{RankedEntity: g, Class: ClassifyRate(g.Rate)})
	}
	return out
}

// TopAgents ranks callers by closed deals.
func TopAgents(leads []model.Lead) []types.Agent {
	groups := group(leads, model.Lead.CallerOrUnassigned)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Converted > groups[j].Converted })
	groups = top(groups)
	out := make([]types.Agent, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.Agent{RankedEntity: g, Initials: Initials(g.Name)})
	}
	return out
}

// Initials takes the first letter of each space separated word, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
