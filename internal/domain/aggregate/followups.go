package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Ismail26477/crm-main/internal/domain/model"
	"github.com/Ismail26477/crm-main/internal/domain/types"
	"github.com/Ismail26477/crm-main/internal/domain/window"
)

const (
	day             = 24 * time.Hour
	followUpHorizon = 7 * day

	maxDueTasks = 2
	maxHotTasks = 3
)

// Task kinds and priorities.
const (
	TaskFollowUp = "followup"
	TaskHotLead  = "hot"
	TaskReview   = "review"

	TaskPriorityHigh   = "high"
	TaskPriorityNormal = "normal"
)

// UpcomingFollowups lists callbacks due within the next seven days, soonest
// first.
func UpcomingFollowups(upcoming []model.Lead, cal Calendar) []types.FollowUp {
	loc := cal.loc()
	horizon := cal.Now.Add(followUpHorizon)

	var out []types.FollowUp
	for _, l := range upcoming {
		due, ok := model.FirstTime(l, loc, model.NextContactDate)
		if !ok || due.Before(cal.Now) || due.After(horizon) {
			continue
		}
		days := int(math.Ceil(float64(due.Sub(cal.Now)) / float64(day)))
		out = append(out, types.FollowUp{
			LeadID:    l.ID,
			Name:      model.NameOf(l),
			Reason:    model.FirstText(l, model.FollowUpReason, model.DefaultFollowUp),
			Due:       due,
			DaysUntil: days,
			DueLabel:  DueLabel(days),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return top(out)
}

// DueLabel renders a day distance as "Today", "Tomorrow" or "N days".
func DueLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// TodayTasks builds the task list: follow-ups due today on open leads, then
// hot leads, or two review reminders when there is nothing else.
func TodayTasks(leads []model.Lead, cal Calendar) []types.Task {
	loc := cal.loc()
	var tasks []types.Task

	due := 0
	for _, l := range leads {
		if due == maxDueTasks {
			break
		}
		if l.Stage.IsTerminal() {
			continue
		}
		at, ok := model.FirstTime(l, loc, model.DueDate)
		if !ok || !window.SameDay(at, cal.Now, loc) {
			continue
		}
		reason := l.CallbackReason
		if reason == "" {
			reason = "Callback"
		}
		tasks = append(tasks, types.Task{
			Title:    fmt.Sprintf("Follow up with %s (%s)", model.NameOf(l), reason),
			Kind:     TaskFollowUp,
			Priority: TaskPriorityHigh,
		})
		due++
	}

	hot := 0
	for _, l := range leads {
		if hot == maxHotTasks {
			break
		}
		if l.Priority != model.PriorityHot {
			continue
		}
		tasks = append(tasks, types.Task{
			Title:    fmt.Sprintf("Contact %s - Hot lead from %s", model.NameOf(l), l.SourceOrUnknown()),
			Kind:     TaskHotLead,
			Priority: TaskPriorityHigh,
		})
		hot++
	}

	if len(tasks) == 0 {
		tasks = []types.Task{
			{Title: "Review pending leads", Kind: TaskReview, Priority: TaskPriorityNormal},
			{Title: "Check scheduled viewings", Kind: TaskReview, Priority: TaskPriorityNormal},
		}
	}
	return top(tasks)
}
