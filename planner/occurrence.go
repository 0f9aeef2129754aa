package planner

import "github.com/kvit-dev/caleoban/models"

// OccursOn reports whether task is visible on day (YYYY-MM-DD).
//
// A task occurs on its anchor Date, and, when both dueDate and endDateTime
// parse, on every day of the closed range [day(dueDate), day(endDateTime)].
// A malformed span end degrades to anchor-day only.
func OccursOn(task models.Task, day string) bool {
	if task.Date == day {
		return true
	}
	start, end, ok := spanDays(task)
	if !ok {
		return false
	}
	return start <= day && day <= end
}

func spanDays(task models.Task) (string, string, bool) {
	if task.DueDate == "" || task.EndDateTime == "" {
		return "", "", false
	}
	start, ok := DayOf(task.DueDate)
	if !ok {
		return "", "", false
	}
	end, ok := DayOf(task.EndDateTime)
	if !ok {
		return "", "", false
	}
	return start, end, true
}

// TasksOn filters tasks down to the ones occurring on day, keeping input order.
// A task id appears at most once; tasks without an id are never merged.
func TasksOn(tasks []models.Task, day string) []models.Task {
	out := make([]models.Task, 0)
	seen := make(map[string]bool)
	for _, t := range tasks {
		if !OccursOn(t, day) {
			continue
		}
		if t.ID != "" {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
		}
		out = append(out, t)
	}
	return out
}
