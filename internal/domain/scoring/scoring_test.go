package scoring_test

import (
	"testing"

	"github.com/Ismail26477/crm-main/internal/domain/aggregate"
	"github.com/Ismail26477/crm-main/internal/domain/model"
	scoring "github.com/Ismail26477/crm-main/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func band(n int) []model.Lead {
	return make([]model.Lead, n)
}

func TestSyntheticEstimator_AverageMinutes(t *testing.T) {
	Convey("Given a new synthetic estimator", t, func() {
		est := scoring.NewSyntheticEstimator()

		Convey("When estimating a non-empty band", func() {
			Convey("Then values stay within the floor and the ceiling", func() {
				for i := 0; i < 200; i++ {
					v, synthetic := est.AverageMinutes(model.PriorityHot, band(3))
					So(synthetic, ShouldBeTrue)
					So(v, ShouldBeGreaterThanOrEqualTo, 60)
					So(v, ShouldBeLessThan, 300)
				}
			})
		})

		Convey("When estimating an empty band", func() {
			v, synthetic := est.AverageMinutes(model.PriorityCold, nil)

			Convey("Then it reports zero", func() {
				So(v, ShouldEqual, 0)
				So(synthetic, ShouldBeTrue)
			})
		})
	})

	Convey("Given two estimators with the same seed", t, func() {
		a := scoring.NewSyntheticEstimator(scoring.WithSeed(7))
		b := scoring.NewSyntheticEstimator(scoring.WithSeed(7))

		Convey("Then they produce the same sequence", func() {
			for i := 0; i < 10; i++ {
				va, _ := a.AverageMinutes(model.PriorityWarm, band(1))
				vb, _ := b.AverageMinutes(model.PriorityWarm, band(1))
				So(va, ShouldEqual, vb)
			}
		})
	})

	Convey("Given custom ranges", t, func() {
		Convey("When the range is valid", func() {
			est := scoring.NewSyntheticEstimator(scoring.WithRange(10, 20))
			v, _ := est.AverageMinutes(model.PriorityHot, band(1))
			So(v, ShouldBeGreaterThanOrEqualTo, 10)
			So(v, ShouldBeLessThan, 20)
		})

		Convey("When the range is inverted it is ignored", func() {
			est := scoring.NewSyntheticEstimator(scoring.WithRange(50, 5))
			v, _ := est.AverageMinutes(model.PriorityHot, band(1))
			So(v, ShouldBeGreaterThanOrEqualTo, 60)
		})

		Convey("When a priority has its own ceiling", func() {
			est := scoring.NewSyntheticEstimator(
				scoring.WithRange(0, 300),
				scoring.WithPriorityCeilings(map[string]float64{"Hot": 30, "Warm": -1}),
			)
			for i := 0; i < 50; i++ {
				v, _ := est.AverageMinutes(model.PriorityHot, band(1))
				So(v, ShouldBeLessThan, 30)
			}
		})
	})
}

func TestSyntheticEstimator_ResponseBands(t *testing.T) {
	Convey("Given the estimator wired into response bands", t, func() {
		leads := []model.Lead{{Priority: model.PriorityHot}, {Priority: model.PriorityWarm}}
		bands := aggregate.ResponseBands(leads, scoring.NewSyntheticEstimator())

		Convey("Then non-empty bands are flagged synthetic", func() {
			So(bands[0].Synthetic, ShouldBeTrue)
			So(bands[0].AvgMinutes, ShouldBeGreaterThanOrEqualTo, 60)
			So(bands[1].Synthetic, ShouldBeTrue)
		})

		Convey("Then the empty band is not", func() {
			So(bands[2].Count, ShouldEqual, 0)
			So(bands[2].Synthetic, ShouldBeFalse)
			So(bands[2].AvgMinutes, ShouldEqual, 0)
		})
	})
}
