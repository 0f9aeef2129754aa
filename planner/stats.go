package planner

import (
	"math"
	"time"

	"github.com/kvit-dev/caleoban/models"
)

// Stats is the progress summary shown in the profile menu.
type Stats struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Percent int `json:"percent"`
	// Overdue counts open tasks whose dueDate has passed.
	Overdue int `json:"overdue"`
	// HighDoneThisWeek counts done high-priority tasks anchored in the
	// current Monday to Sunday week.
	HighDoneThisWeek int `json:"highDoneThisWeek"`
}

func ComputeStats(tasks []models.Task, now time.Time) Stats {
	weekStart, weekEnd := FormatDay(startOfWeek(now)), FormatDay(endOfWeek(now))

	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Status == models.StatusDone {
			s.Done++
			if t.Priority == models.PriorityHigh && ValidDay(t.Date) && weekStart <= t.Date && t.Date <= weekEnd {
				s.HighDoneThisWeek++
			}
		}
		if IsDueOverdue(t, now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Done) * 100 / float64(s.Total)))
	}
	return s
}
