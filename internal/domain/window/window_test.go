package window_test

import (
	"testing"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func leadAt(id string, t time.Time) model.Lead {
	return model.Lead{ID: id, CreatedAt: model.At(t)}
}

func TestSplit(t *testing.T) {
	Convey("Given leads around a 30 day window", t, func() {
		now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		leads := []model.Lead{
			leadAt("today", now),
			leadAt("edge", now.Add(-30*24*time.Hour)),
			leadAt("just-out", now.Add(-30*24*time.Hour-time.Second)),
			leadAt("prev-edge", now.Add(-60*24*time.Hour)),
			leadAt("ancient", now.Add(-61*24*time.Hour)),
			leadAt("future", now.Add(48*time.Hour)),
			{ID: "broken", CreatedAt: model.RawTimestamp("not-a-date")},
			{ID: "missing"},
		}

		w := window.Split(leads, 30, now, time.UTC)

		Convey("Then the current window includes the boundary and future dates", func() {
			ids := idsOf(w.Current)
			So(ids, ShouldResemble, []string{"today", "edge", "future"})
		})

		Convey("Then the previous window is (W, 2W]", func() {
			So(idsOf(w.Previous), ShouldResemble, []string{"just-out", "prev-edge"})
		})

		Convey("Then undated leads are in neither window", func() {
			So(w.Undated, ShouldEqual, 2)
		})
	})
}

func TestCalendarHelpers(t *testing.T) {
	Convey("Given calendar comparisons", t, func() {
		loc := time.FixedZone("UTC-5", -5*3600)
		a := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC) // June 14 in UTC-5
		b := time.Date(2024, 6, 14, 10, 0, 0, 0, loc)

		Convey("Then same day is evaluated in the given location", func() {
			So(window.SameDay(a, b, loc), ShouldBeTrue)
			So(window.SameDay(a, b, time.UTC), ShouldBeFalse)
		})

		Convey("Then month matching can ignore the year", func() {
			x := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
			y := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			So(window.SameMonth(x, y, time.UTC, true), ShouldBeFalse)
			So(window.SameMonth(x, y, time.UTC, false), ShouldBeTrue)
		})
	})
}

func idsOf(leads []model.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.ID)
	}
	return out
}
