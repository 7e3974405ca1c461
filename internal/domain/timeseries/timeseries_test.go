package timeseries_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/timeseries"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func lead(t time.Time, stage model.Stage) model.Lead {
	return model.Lead{CreatedAt: model.At(t), Stage: stage}
}

func sumNew(buckets []types.TimeBucket) int {
	n := 0
	for _, b := range buckets {
		n += b.New
	}
	return n
}

func TestDailyBuckets(t *testing.T) {
	Convey("Given leads over the last ten days", t, func() {
		// Saturday
		now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
		var leads []model.Lead
		for i := 0; i < 10; i++ {
			leads = append(leads, lead(now.AddDate(0, 0, -i), model.StageNewLead))
		}
		leads = append(leads,
			lead(now.Add(-2*time.Hour), model.StageWon),
			lead(now.Add(-3*time.Hour), model.StageClosedWon),
			model.Lead{CreatedAt: model.RawTimestamp("not-a-date")},
		)

		buckets := timeseries.Buckets(leads, types.Daily, now, timeseries.Options{Location: time.UTC})

		Convey("Then there are seven buckets labelled by weekday, oldest first", func() {
			So(len(buckets), ShouldEqual, 7)
			So(buckets[0].Label, ShouldEqual, "Sun")
			So(buckets[6].Label, ShouldEqual, "Sat")
		})

		Convey("Then the sum of new equals leads in the trailing seven calendar days", func() {
			So(sumNew(buckets), ShouldEqual, 7+2)
		})

		Convey("Then Won and Closed Won both count as converted", func() {
			So(buckets[6].New, ShouldEqual, 3)
			So(buckets[6].Converted, ShouldEqual, 2)
		})
	})

	Convey("Given an unknown granularity", t, func() {
		now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
		buckets := timeseries.Buckets(nil, types.Granularity("hourly"), now, timeseries.Options{})

		Convey("Then it falls back to daily", func() {
			So(len(buckets), ShouldEqual, timeseries.DailyBuckets)
			So(sumNew(buckets), ShouldEqual, 0)
		})
	})
}

func TestWeeklyBuckets(t *testing.T) {
	Convey("Given leads on week boundaries", t, func() {
		now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		leads := []model.Lead{
			lead(now, model.StageNewLead),                                 // end of newest bucket is exclusive
			lead(now.Add(-time.Minute), model.StageNewLead),               // newest bucket
			lead(now.AddDate(0, 0, -7), model.StageWon),                   // start of newest bucket is inclusive
			lead(now.AddDate(0, 0, -7).Add(-time.Minute), model.StageWon), // previous bucket
			lead(now.AddDate(0, 0, -42), model.StageNewLead),              // start of oldest bucket
			lead(now.AddDate(0, 0, -43), model.StageNewLead),              // outside
		}

		buckets := timeseries.Buckets(leads, types.Weekly, now, timeseries.Options{Location: time.UTC})

		Convey("Then six half-open buckets never double count", func() {
			So(len(buckets), ShouldEqual, 6)
			So(buckets[5].New, ShouldEqual, 2)
			So(buckets[5].Converted, ShouldEqual, 1)
			So(buckets[4].New, ShouldEqual, 1)
			So(buckets[0].New, ShouldEqual, 1)
			So(sumNew(buckets), ShouldEqual, 4)
		})

		Convey("Then labels carry the ISO week of each bucket start", func() {
			_, w := now.AddDate(0, 0, -7).ISOWeek()
			So(buckets[5].Label, ShouldEqual, "W"+strconv.Itoa(w))
		})
	})
}

func TestMonthlyBuckets(t *testing.T) {
	Convey("Given leads across a year boundary", t, func() {
		now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
		leads := []model.Lead{
			lead(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), model.StageWon),
			lead(time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), model.StageNewLead),
			lead(time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC), model.StageNewLead), // same month last year
			lead(time.Date(2023, 9, 3, 0, 0, 0, 0, time.UTC), model.StageNewLead), // oldest bucket
		}

		Convey("When year matching is on", func() {
			buckets := timeseries.Buckets(leads, types.Monthly, now, timeseries.Options{Location: time.UTC, MatchYear: true})

			So(len(buckets), ShouldEqual, 6)
			So(buckets[0].Label, ShouldEqual, "Sep")
			So(buckets[5].Label, ShouldEqual, "Feb")
			So(buckets[0].Start.Year(), ShouldEqual, 2023)
			So(buckets[5].New, ShouldEqual, 1)
			So(buckets[5].Converted, ShouldEqual, 1)
			So(buckets[3].New, ShouldEqual, 1)
		})

		Convey("When only the month index is compared", func() {
			buckets := timeseries.Buckets(leads, types.Monthly, now, timeseries.Options{Location: time.UTC, MatchYear: false})

			So(buckets[5].New, ShouldEqual, 2)
		})
	})
}
