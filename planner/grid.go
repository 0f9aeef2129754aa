package planner

import (
	"time"

	"github.com/kvit-dev/caleoban/models"
)

// How many tasks a day cell shows before collapsing the rest into a count.
const (
	MonthCellLimit = 2
	WeekCellLimit  = 7
)

type Entry struct {
	Task      models.Task `json:"task"`
	TimeLabel string      `json:"timeLabel,omitempty"`
	Overdue   bool        `json:"overdue"`
}

type DayCell struct {
	Date    string  `json:"date"`
	InMonth bool    `json:"inMonth"`
	Today   bool    `json:"today"`
	Entries []Entry `json:"entries"`
	More    int     `json:"more"`
}

// BuildDayCell selects the tasks occurring on day, ranks them and keeps the
// first limit of them. A limit <= 0 keeps everything.
func BuildDayCell(tasks []models.Task, day string, now time.Time, limit int) DayCell {
	ranked := Rank(TasksOn(tasks, day), now)

	cell := DayCell{
		Date:    day,
		InMonth: true,
		Today:   day == FormatDay(now),
		Entries: make([]Entry, 0, min(len(ranked), max(limit, 0))),
	}
	shown := ranked
	if limit > 0 && len(ranked) > limit {
		shown = ranked[:limit]
		cell.More = len(ranked) - limit
	}
	for _, t := range shown {
		cell.Entries = append(cell.Entries, Entry{
			Task:      t,
			TimeLabel: TimeLabel(t, day),
			Overdue:   IsOverdue(t, now),
		})
	}
	return cell
}

type MonthGrid struct {
	Month string      `json:"month"` // YYYY-MM
	Weeks [][]DayCell `json:"weeks"`
}

// BuildMonthGrid lays out the month containing ref as Monday-first weeks,
// padded with the neighbouring months' days to full weeks.
func BuildMonthGrid(tasks []models.Task, ref, now time.Time) MonthGrid {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	grid := MonthGrid{Month: first.Format("2006-01")}
	var week []DayCell
	for d := startOfWeek(first); !d.After(endOfWeek(last)); d = d.AddDate(0, 0, 1) {
		cell := BuildDayCell(tasks, FormatDay(d), now, MonthCellLimit)
		cell.InMonth = d.Month() == first.Month()
		week = append(week, cell)
		if len(week) == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = nil
		}
	}
	return grid
}

type WeekGrid struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Days  []DayCell `json:"days"`
}

// BuildWeekGrid lays out Monday to Sunday of the week containing ref.
func BuildWeekGrid(tasks []models.Task, ref, now time.Time) WeekGrid {
	start := startOfWeek(ref)
	grid := WeekGrid{
		Start: FormatDay(start),
		End:   FormatDay(endOfWeek(ref)),
		Days:  make([]DayCell, 0, 7),
	}
	for i := 0; i < 7; i++ {
		grid.Days = append(grid.Days, BuildDayCell(tasks, FormatDay(start.AddDate(0, 0, i)), now, WeekCellLimit))
	}
	return grid
}
