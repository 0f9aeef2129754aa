package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/planner"
)

// referenceDate reads ?date= as a local calendar day, defaulting to today.
// Month views also accept YYYY-MM.
func (h *TaskHandler) referenceDate(r *http.Request, layouts ...string) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.now(), nil
	}
	for _, layout := range append([]string{planner.DayLayout}, layouts...) {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func (h *TaskHandler) snapshot(w http.ResponseWriter, r *http.Request) ([]models.Task, bool) {
	uid := UserUID(r.Context())
	tasks, err := h.Store.List(r.Context(), uid)
	if err != nil {
		storeError(w, err, fmt.Sprintf("Error listing tasks of user %s", uid))
		return nil, false
	}
	return tasks, true
}

// MonthGridHandler returns the month view around ?date=.
func (h *TaskHandler) MonthGridHandler(w http.ResponseWriter, r *http.Request) {
	ref, err := h.referenceDate(r, "2006-01")
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD or YYYY-MM", http.StatusBadRequest)
		return
	}
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, planner.BuildMonthGrid(tasks, ref, h.now()))
}

func (h *TaskHandler) WeekGridHandler(w http.ResponseWriter, r *http.Request) {
	ref, err := h.referenceDate(r)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, planner.BuildWeekGrid(tasks, ref, h.now()))
}

// DayBoardHandler returns the kanban board of one day, optionally narrowed
// with ?priority=.
func (h *TaskHandler) DayBoardHandler(w http.ResponseWriter, r *http.Request) {
	day := mux.Vars(r)["date"]
	if !planner.ValidDay(day) {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	filter, ok := planner.ParsePriorityFilter(r.URL.Query().Get("priority"))
	if !ok {
		http.Error(w, "priority must be one of all, high, medium, low", http.StatusBadRequest)
		return
	}
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, planner.BuildBoard(tasks, day, filter, h.now()))
}

func (h *TaskHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, planner.ComputeStats(tasks, h.now()))
}
