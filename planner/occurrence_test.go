package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvit-dev/caleoban/models"
)

func TestOccursOn_DateOnlyTask(t *testing.T) {
	task := models.Task{ID: "a", Date: "2025-03-10"}

	assert.True(t, OccursOn(task, "2025-03-10"))
	assert.False(t, OccursOn(task, "2025-03-09"))
	assert.False(t, OccursOn(task, "2025-03-11"))
	assert.False(t, OccursOn(task, "2025-04-10"))
}

func TestOccursOn_SpanCoversEveryDayInclusive(t *testing.T) {
	task := models.Task{
		ID:          "span",
		Date:        "2025-03-10",
		DueDate:     "2025-03-10T08:00",
		EndDateTime: "2025-03-12T18:00",
	}

	for _, day := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		assert.True(t, OccursOn(task, day), day)
	}
	for _, day := range []string{"2025-03-09", "2025-03-13", "2025-02-11"} {
		assert.False(t, OccursOn(task, day), day)
	}
}

func TestOccursOn_SpanAcrossMonthBoundary(t *testing.T) {
	task := models.Task{
		ID:          "x",
		Date:        "2025-01-30",
		DueDate:     "2025-01-30T22:00",
		EndDateTime: "2025-02-02T01:00",
	}

	assert.True(t, OccursOn(task, "2025-01-31"))
	assert.True(t, OccursOn(task, "2025-02-01"))
	assert.True(t, OccursOn(task, "2025-02-02"))
	assert.False(t, OccursOn(task, "2025-02-03"))
}

func TestOccursOn_NeedsBothSpanEnds(t *testing.T) {
	onlyStart := models.Task{ID: "s", Date: "2025-03-01", DueDate: "2025-03-10T08:00"}
	onlyEnd := models.Task{ID: "e", Date: "2025-03-01", EndDateTime: "2025-03-12T08:00"}

	assert.False(t, OccursOn(onlyStart, "2025-03-10"))
	assert.False(t, OccursOn(onlyEnd, "2025-03-11"))
	assert.True(t, OccursOn(onlyStart, "2025-03-01"))
}

func TestOccursOn_MalformedSpanFallsBackToDate(t *testing.T) {
	task := models.Task{
		ID:          "m",
		Date:        "2025-03-10",
		DueDate:     "tomorrow-ish",
		EndDateTime: "2025-03-12T18:00",
	}

	assert.True(t, OccursOn(task, "2025-03-10"))
	assert.False(t, OccursOn(task, "2025-03-11"))
}

func TestOccursOn_ReversedSpanMatchesNothingButDate(t *testing.T) {
	task := models.Task{
		ID:          "r",
		Date:        "2025-03-05",
		DueDate:     "2025-03-12T08:00",
		EndDateTime: "2025-03-10T08:00",
	}

	assert.True(t, OccursOn(task, "2025-03-05"))
	assert.False(t, OccursOn(task, "2025-03-11"))
}

func TestTasksOn_DeduplicatesByID(t *testing.T) {
	span := models.Task{
		ID:          "span",
		Date:        "2025-03-11",
		DueDate:     "2025-03-10T08:00",
		EndDateTime: "2025-03-12T18:00",
	}
	tasks := []models.Task{span, span, {ID: "other", Date: "2025-03-11"}}

	got := TasksOn(tasks, "2025-03-11")

	require.Len(t, got, 2)
	assert.Equal(t, "span", got[0].ID)
	assert.Equal(t, "other", got[1].ID)
}

func TestTasksOn_KeepsUnsavedTasksApart(t *testing.T) {
	tasks := []models.Task{
		{Title: "draft one", Date: "2025-03-11"},
		{Title: "draft two", Date: "2025-03-11"},
	}

	got := TasksOn(tasks, "2025-03-11")

	assert.Len(t, got, 2)
}

func TestTasksOn_EmptyResultIsNotNil(t *testing.T) {
	got := TasksOn(nil, "2025-03-11")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDayOf(t *testing.T) {
	cases := map[string]string{
		"2025-03-10T08:00":        "2025-03-10",
		"2025-03-10T23:59:59":     "2025-03-10",
		"2025-03-10T23:59:59.500": "2025-03-10",
		"2025-03-10":              "2025-03-10",
	}
	for in, want := range cases {
		got, ok := DayOf(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "  ", "10/03/2025", "2025-13-01T10:00", "soon"} {
		_, ok := DayOf(in)
		assert.False(t, ok, in)
	}
}

func TestAnchorDay(t *testing.T) {
	assert.Equal(t, "2025-03-12", AnchorDay("2025-03-01", "2025-03-12T09:30"))
	assert.Equal(t, "2025-03-01", AnchorDay("2025-03-01", ""))
	assert.Equal(t, "2025-03-01", AnchorDay("2025-03-01", "not a date"))
}

func TestValidDay(t *testing.T) {
	assert.True(t, ValidDay("2024-02-29"))
	assert.False(t, ValidDay("2025-02-29"))
	assert.False(t, ValidDay("2025-3-1"))
	assert.False(t, ValidDay(""))
}
