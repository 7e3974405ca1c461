package aggregate

import (
	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// StageColor pairs a donut stage with its fill.
type StageColor struct {
	Stage model.Stage
	Color string
}

// PipelineStages is the donut slice order.
var PipelineStages = []StageColor{
	{model.StageNewLead, "#667eea"},
	{model.StageContacted, "#4facfe"},
	{model.StageNegotiation, "#43e97b"},
	{model.StageClosedWon, "#38f9d7"},
	{model.StageClosedLost, "#fa709a"},
}

// Pipeline counts leads per recognised stage and drops empty slices. "Won"
// is folded into "Closed Won". Leads with any other stage are left out, so
// the returned total is the sum of the returned slices.
func Pipeline(leads []model.Lead) ([]types.StageSlice, int) {
	counts := make(map[model.Stage]int, len(PipelineStages))
	for _, l := range leads {
		s := l.Stage
		if s == model.StageWon {
			s = model.StageClosedWon
		}
		counts[s]++
	}

	var (
		out   []types.StageSlice
		total int
	)
	for _, sc := range PipelineStages {
		n := counts[sc.Stage]
		if n == 0 {
			continue
		}
		out = append(out, types.StageSlice{Stage: string(sc.Stage), Count: n, Color: sc.Color})
		total += n
	}
	return out, total
}
