package models

import (
	"errors"
	"time"
)

// ErrTaskNotFound is returned by the task stores when an id does not resolve.
var ErrTaskNotFound = errors.New("task not found")

// Status is the column a task lives in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in board order (left to right, top to bottom).
// Drop-target resolution and the board builder both index into it.
var Statuses = [...]Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is only used for ranking, it never blocks a transition.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = [...]Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p.Weight() > 0
}

// Weight returns the ranking weight of the priority, 0 for unknown values.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is the document stored in the "tasks" collection.
// Field names match the documents already written by the web client.
type Task struct {
	ID          string    `json:"id,omitempty" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Status      Status    `json:"status" firestore:"status"`
	Priority    Priority  `json:"priority" firestore:"priority"`
	Date        string    `json:"date" firestore:"date"`
	DueDate     string    `json:"dueDate,omitempty" firestore:"dueDate,omitempty"`
	EndDateTime string    `json:"endDateTime,omitempty" firestore:"endDateTime,omitempty"`
	UserID      string    `json:"userId" firestore:"userId"`
	DependsOn   []string  `json:"dependsOn,omitempty" firestore:"dependsOn,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

// DependsOnTask reports whether id is one of the task's dependencies.
func (t Task) DependsOnTask(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// TaskPatch is a partial update. A nil field means "leave unchanged".
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Date        *string   `json:"date,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	EndDateTime *string   `json:"endDateTime,omitempty"`
	DependsOn   *[]string `json:"dependsOn,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Date == nil && p.DueDate == nil && p.EndDateTime == nil && p.DependsOn == nil
}

// Apply returns a copy of t with the patch fields applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.EndDateTime != nil {
		t.EndDateTime = *p.EndDateTime
	}
	if p.DependsOn != nil {
		t.DependsOn = append([]string(nil), (*p.DependsOn)...)
	}
	return t
}
