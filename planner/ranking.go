package planner

import (
	"sort"
	"time"

	"github.com/kvit-dev/caleoban/models"
)

// IsOverdue is the ranking predicate: the task has an endDateTime strictly
// before now and is not done.
func IsOverdue(task models.Task, now time.Time) bool {
	return pastAndOpen(task, task.EndDateTime, now)
}

// IsDueOverdue is the kanban card badge predicate. It looks at dueDate, not
// endDateTime, so a card can carry the badge without ranking as overdue.
func IsDueOverdue(task models.Task, now time.Time) bool {
	return pastAndOpen(task, task.DueDate, now)
}

func pastAndOpen(task models.Task, instant string, now time.Time) bool {
	if task.Status == models.StatusDone {
		return false
	}
	at, ok := ParseInstant(instant)
	if !ok {
		return false
	}
	return at.Before(now)
}

// Rank returns a sorted copy of tasks: overdue first, then priority weight
// descending, then id ascending. Equal keys keep their input order.
func Rank(tasks []models.Task, now time.Time) []models.Task {
	ranked := append([]models.Task(nil), tasks...)
	overdue := make([]bool, len(ranked))
	idx := make([]int, len(ranked))
	for i, t := range ranked {
		idx[i] = i
		overdue[i] = IsOverdue(t, now)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := ranked[idx[a]], ranked[idx[b]]
		oa, ob := overdue[idx[a]], overdue[idx[b]]
		if oa != ob {
			return oa
		}
		if wa, wb := ta.Priority.Weight(), tb.Priority.Weight(); wa != wb {
			return wa > wb
		}
		return ta.ID < tb.ID
	})

	out := make([]models.Task, len(ranked))
	for i, j := range idx {
		out[i] = ranked[j]
	}
	return out
}

// TimeLabel is the short time shown next to a task inside a day cell:
// the start time on the dueDate day, "until HH:mm" on the endDateTime day.
func TimeLabel(task models.Task, day string) string {
	if start, ok := ParseInstant(task.DueDate); ok && FormatDay(start) == day {
		return start.Format(clockLayout)
	}
	if end, ok := ParseInstant(task.EndDateTime); ok && FormatDay(end) == day {
		return "until " + end.Format(clockLayout)
	}
	return ""
}
