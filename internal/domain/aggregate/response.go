package aggregate

import (
	"math"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
)

// ResponseEstimator supplies the average response time of a priority band.
// synthetic is true when the value was not measured from lead history.
type ResponseEstimator interface {
	AverageMinutes(p model.Priority, leads []model.Lead) (minutes float64, synthetic bool)
}

// ResponsePriorities is the band order.
var ResponsePriorities = []model.Priority{model.PriorityHot, model.PriorityWarm, model.PriorityCold}

// ClassifySpeed buckets an average: above 120 minutes is slow, above 60 average.
func ClassifySpeed(minutes float64) types.SpeedClass {
	switch {
	case minutes > 120:
		return types.SpeedSlow
	case minutes > 60:
		return types.SpeedAverage
	default:
		return types.SpeedFast
	}
}

// ResponseBands summarises each priority band. Assigned counts only leads
// carrying a caller id. A nil estimator reports 0 for every band.
func ResponseBands(leads []model.Lead, est ResponseEstimator) []types.ResponseBand {
	out := make([]types.ResponseBand, 0, len(ResponsePriorities))
	for _, p := range ResponsePriorities {
		var band []model.Lead
		assigned := 0
		for _, l := range leads {
			if l.Priority != p {
				continue
			}
			band = append(band, l)
			if l.HasCallerID() {
				assigned++
			}
		}

		var (
			avg       float64
			synthetic bool
		)
		if len(band) > 0 && est != nil {
			avg, synthetic = est.AverageMinutes(p, band)
		}
		out = append(out, types.ResponseBand{
			Priority:   string(p),
			Count:      len(band),
			Assigned:   assigned,
			AvgMinutes: int(math.Round(avg)),
			Class:      ClassifySpeed(avg),
			Synthetic:  synthetic,
		})
	}
	return out
}
