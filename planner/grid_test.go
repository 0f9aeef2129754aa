package planner

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvit-dev/caleoban/models"
)

func TestBuildDayCell_LimitsAndCounts(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 5; i++ {
		tasks = append(tasks, models.Task{ID: fmt.Sprintf("t%d", i), Date: "2025-03-10", Priority: models.PriorityLow})
	}
	tasks[3].Priority = models.PriorityHigh

	cell := BuildDayCell(tasks, "2025-03-10", rankNow, MonthCellLimit)

	require.Len(t, cell.Entries, 2)
	assert.Equal(t, "t3", cell.Entries[0].Task.ID)
	assert.Equal(t, 3, cell.More)
}

func TestBuildDayCell_NoLimit(t *testing.T) {
	tasks := []models.Task{{ID: "a", Date: "2025-03-10"}, {ID: "b", Date: "2025-03-10"}}

	cell := BuildDayCell(tasks, "2025-03-10", rankNow, 0)

	assert.Len(t, cell.Entries, 2)
	assert.Zero(t, cell.More)
}

func TestBuildDayCell_EntryDetails(t *testing.T) {
	tasks := []models.Task{{
		ID:          "span",
		Date:        "2025-03-09",
		Status:      models.StatusTodo,
		DueDate:     "2025-03-09T08:00",
		EndDateTime: "2025-03-10T18:45",
	}}

	cell := BuildDayCell(tasks, "2025-03-10", rankNow, WeekCellLimit)

	require.Len(t, cell.Entries, 1)
	assert.Equal(t, "until 18:45", cell.Entries[0].TimeLabel)
	assert.True(t, cell.Entries[0].Overdue)
	assert.False(t, cell.Today)
}

func TestBuildDayCell_Today(t *testing.T) {
	cell := BuildDayCell(nil, "2025-03-11", rankNow, MonthCellLimit)

	assert.True(t, cell.Today)
	assert.NotNil(t, cell.Entries)
}

func TestBuildMonthGrid_MondayFirstFullWeeks(t *testing.T) {
	// March 2025 starts on a Saturday and ends on a Monday
	ref := time.Date(2025, 3, 18, 15, 0, 0, 0, time.Local)

	grid := BuildMonthGrid(nil, ref, rankNow)

	assert.Equal(t, "2025-03", grid.Month)
	require.Len(t, grid.Weeks, 6)
	for _, w := range grid.Weeks {
		assert.Len(t, w, 7)
	}
	assert.Equal(t, "2025-02-24", grid.Weeks[0][0].Date)
	assert.False(t, grid.Weeks[0][0].InMonth)
	assert.Equal(t, "2025-03-01", grid.Weeks[0][5].Date)
	assert.True(t, grid.Weeks[0][5].InMonth)
	assert.Equal(t, "2025-03-31", grid.Weeks[5][0].Date)
	assert.Equal(t, "2025-04-06", grid.Weeks[5][6].Date)
	assert.False(t, grid.Weeks[5][6].InMonth)
}

func TestBuildMonthGrid_SpanShowsOnEveryDay(t *testing.T) {
	tasks := []models.Task{{
		ID:          "trip",
		Date:        "2025-03-10",
		DueDate:     "2025-03-10T08:00",
		EndDateTime: "2025-03-12T18:00",
	}}
	ref := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)

	grid := BuildMonthGrid(tasks, ref, rankNow)

	var days []string
	for _, w := range grid.Weeks {
		for _, c := range w {
			if len(c.Entries) > 0 {
				days = append(days, c.Date)
				assert.Len(t, c.Entries, 1)
			}
		}
	}
	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-12"}, days)
}

func TestBuildWeekGrid(t *testing.T) {
	// Sunday belongs to the week that started the Monday before
	ref := time.Date(2025, 3, 16, 10, 0, 0, 0, time.Local)
	tasks := []models.Task{{ID: "a", Date: "2025-03-12"}}

	grid := BuildWeekGrid(tasks, ref, rankNow)

	assert.Equal(t, "2025-03-10", grid.Start)
	assert.Equal(t, "2025-03-16", grid.End)
	require.Len(t, grid.Days, 7)
	assert.Equal(t, "2025-03-12", grid.Days[2].Date)
	assert.Len(t, grid.Days[2].Entries, 1)
	assert.True(t, grid.Days[1].Today)
}

func TestBuildWeekGrid_SevenPerCell(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 9; i++ {
		tasks = append(tasks, models.Task{ID: fmt.Sprintf("t%d", i), Date: "2025-03-12"})
	}
	ref := time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local)

	grid := BuildWeekGrid(tasks, ref, rankNow)

	assert.Len(t, grid.Days[2].Entries, WeekCellLimit)
	assert.Equal(t, 2, grid.Days[2].More)
}
