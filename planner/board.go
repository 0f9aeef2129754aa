package planner

import (
	"time"

	"github.com/kvit-dev/caleoban/models"
)

// PriorityFilter narrows the board to one priority. The zero value shows all.
type PriorityFilter string

const PriorityAll PriorityFilter = "all"

// ParsePriorityFilter accepts "", "all" or a priority name.
func ParsePriorityFilter(s string) (PriorityFilter, bool) {
	if s == "" || s == string(PriorityAll) {
		return PriorityAll, true
	}
	if !models.Priority(s).Valid() {
		return "", false
	}
	return PriorityFilter(s), true
}

func (f PriorityFilter) Match(t models.Task) bool {
	return f == "" || f == PriorityAll || models.Priority(f) == t.Priority
}

type Card struct {
	Task models.Task `json:"task"`
	// Blocked cards cannot be dropped on done.
	Blocked bool `json:"blocked"`
	// DueOverdue drives the warning badge and is keyed off dueDate.
	DueOverdue bool `json:"dueOverdue"`
	// Overdue is the ranking predicate, keyed off endDateTime.
	Overdue bool `json:"overdue"`
}

type Column struct {
	Status models.Status `json:"status"`
	Cards  []Card        `json:"cards"`
}

type Board struct {
	Date    string         `json:"date"`
	Filter  PriorityFilter `json:"filter"`
	Columns []Column       `json:"columns"`
}

// BuildBoard builds the kanban board of one day. all is the owner's full
// snapshot: it supplies both the day's tasks and the dependency lookups.
func BuildBoard(all []models.Task, day string, filter PriorityFilter, now time.Time) Board {
	if filter == "" {
		filter = PriorityAll
	}

	var visible []models.Task
	for _, t := range TasksOn(all, day) {
		if filter.Match(t) {
			visible = append(visible, t)
		}
	}
	ranked := Rank(visible, now)

	board := Board{Date: day, Filter: filter, Columns: make([]Column, 0, len(models.Statuses))}
	for _, status := range models.Statuses {
		col := Column{Status: status, Cards: []Card{}}
		for _, t := range ranked {
			if t.Status != status {
				continue
			}
			col.Cards = append(col.Cards, Card{
				Task:       t,
				Blocked:    IsBlocked(t, all),
				DueOverdue: IsDueOverdue(t, now),
				Overdue:    IsOverdue(t, now),
			})
		}
		board.Columns = append(board.Columns, col)
	}
	return board
}
