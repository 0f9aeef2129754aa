package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatuses_AllValid(t *testing.T) {
	seen := map[Status]bool{}
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
		seen[s] = true
	}
	assert.Len(t, seen, 3)
	assert.False(t, Status("archived").Valid())
}

func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, 3, PriorityHigh.Weight())
	assert.Equal(t, 2, PriorityMedium.Weight())
	assert.Equal(t, 1, PriorityLow.Weight())
	assert.Equal(t, 0, Priority("urgent").Weight())
	for _, p := range Priorities {
		assert.True(t, p.Valid(), p)
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	deps := []string{"a"}
	title := "new"
	done := StatusDone
	original := Task{ID: "x", Title: "old", Description: "keep", Status: StatusTodo}

	patched := TaskPatch{Title: &title, Status: &done, DependsOn: &deps}.Apply(original)
	deps[0] = "mutated"

	assert.Equal(t, "new", patched.Title)
	assert.Equal(t, "keep", patched.Description)
	assert.Equal(t, StatusDone, patched.Status)
	assert.Equal(t, []string{"a"}, patched.DependsOn)
	assert.Equal(t, "old", original.Title)
}

func TestTaskPatch_Empty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	d := ""
	assert.False(t, TaskPatch{DueDate: &d}.Empty())
}

func TestTask_DependsOnTask(t *testing.T) {
	task := Task{DependsOn: []string{"a", "b"}}
	assert.True(t, task.DependsOnTask("b"))
	assert.False(t, task.DependsOnTask("c"))
}
