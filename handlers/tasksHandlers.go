package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/planner"
	"github.com/kvit-dev/caleoban/utilities"
)

// TaskStore is the persistence the handlers work against. Both
// firebase.TaskStore and taskstore.MemoryStore implement it.
type TaskStore interface {
	Create(ctx context.Context, t models.Task) (string, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string) ([]models.Task, error)
	// Subscribe pushes snapshots to fn; onErr reports a feed that died on
	// its own.
	Subscribe(ctx context.Context, userID string, fn func([]models.Task), onErr func(error)) (func(), error)
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}

// HistoryReader reads the transition journal.
type HistoryReader interface {
	ListForTask(ctx context.Context, userID, taskID string) ([]models.StatusChange, error)
}

// TaskHandler serves the task, board and calendar routes.
type TaskHandler struct {
	Store   TaskStore
	Gate    *planner.Gate
	History HistoryReader // nil when no journal is configured

	MobileBreakpoint float64
	WarningDismiss   time.Duration
	AllowedOrigins   []string
	Now              func() time.Time

	validate *validator.Validate
}

func NewTaskHandler(store TaskStore, gate *planner.Gate, history HistoryReader) *TaskHandler {
	return &TaskHandler{
		Store:            store,
		Gate:             gate,
		History:          history,
		MobileBreakpoint: planner.DefaultMobileBreakpoint,
		WarningDismiss:   3 * time.Second,
		AllowedOrigins:   []string{"*"},
		Now:              time.Now,
		validate:         newValidator(),
	}
}

func (h *TaskHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// decode reads the JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (h *TaskHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utilities.LogError(err, "Error decoding request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		utilities.LogDebug("Validation failed: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Validation failed", Fields: validationFields(err)})
		return false
	}
	return true
}

// loadTask returns the caller's snapshot and the task with the route id in it.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (models.Task, []models.Task, bool) {
	uid := UserUID(r.Context())
	id := mux.Vars(r)["id"]

	snapshot, err := h.Store.List(r.Context(), uid)
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Error listing tasks of user %s", uid))
		http.Error(w, "Error loading tasks", http.StatusBadGateway)
		return models.Task{}, nil, false
	}
	for _, t := range snapshot {
		if t.ID == id {
			return t, snapshot, true
		}
	}
	http.Error(w, "Task not found", http.StatusNotFound)
	return models.Task{}, nil, false
}

// storeError maps a persistence error to a response.
func storeError(w http.ResponseWriter, err error, context string) {
	if errors.Is(err, models.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	utilities.LogError(err, context)
	http.Error(w, "Error talking to the task store", http.StatusBadGateway)
}

// transitionError answers a failed gate transition.
func (h *TaskHandler) transitionError(w http.ResponseWriter, err error) {
	var blocked *planner.BlockedError
	switch {
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusConflict, blockedWarning{
			Message:        blockedMessage,
			TaskID:         blocked.TaskID,
			BlockedBy:      blocked.BlockedBy,
			DismissAfterMs: h.WarningDismiss.Milliseconds(),
		})
	case errors.Is(err, planner.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, planner.ErrUnsaved):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	default:
		storeError(w, err, "Error applying status transition")
	}
}

// CreateTaskHandler creates a task for the caller. The anchor day follows
// dueDate when one is given; priority and status get their defaults.
func (h *TaskHandler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid := UserUID(r.Context())

	var req createTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Date:        planner.AnchorDay(req.Date, req.DueDate),
		DueDate:     req.DueDate,
		EndDateTime: req.EndDateTime,
		UserID:      uid,
		DependsOn:   req.DependsOn,
	}
	if task.Date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Validation failed",
			Fields:  map[string]string{"date": "required"},
		})
		return
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}

	// a task created straight into done still has to respect its dependencies
	if task.Status == models.StatusDone && len(task.DependsOn) > 0 {
		snapshot, err := h.Store.List(r.Context(), uid)
		if err != nil {
			storeError(w, err, fmt.Sprintf("Error listing tasks of user %s", uid))
			return
		}
		if blockers := planner.BlockingDependencies(task, snapshot); len(blockers) > 0 {
			h.transitionError(w, &planner.BlockedError{BlockedBy: blockers})
			return
		}
	}

	id, err := h.Store.Create(r.Context(), task)
	if err != nil {
		storeError(w, err, "Error creating task")
		return
	}
	task.ID = id

	utilities.LogInfo("Task created: %s (ID: %s)", task.Title, id)
	writeJSON(w, http.StatusCreated, task)
}

// ListTasksHandler returns the caller's tasks, newest first. With ?date= it
// returns the ranked tasks occurring on that day instead.
func (h *TaskHandler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid := UserUID(r.Context())

	tasks, err := h.Store.List(r.Context(), uid)
	if err != nil {
		storeError(w, err, fmt.Sprintf("Error listing tasks of user %s", uid))
		return
	}

	if day := r.URL.Query().Get("date"); day != "" {
		if !planner.ValidDay(day) {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		tasks = planner.Rank(planner.TasksOn(tasks, day), h.now())
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, _, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTaskHandler applies a partial update in a single store write. A
// status change goes through the gate with the other fields; if it is
// blocked nothing is written.
func (h *TaskHandler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, snapshot, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req patchTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	patch := req.patch()
	if patch.DependsOn != nil && patch.Apply(task).DependsOnTask(task.ID) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "A task cannot depend on itself",
			Fields:  map[string]string{"dependsOn": "self"},
		})
		return
	}
	if patch.DueDate != nil {
		if day, ok := planner.DayOf(*patch.DueDate); ok {
			patch.Date = &day
		}
	}

	rest := patch
	rest.Status = nil
	updated := rest.Apply(task)

	switch {
	case patch.Status != nil && *patch.Status != task.Status:
		if _, err := h.Gate.TransitionWith(r.Context(), updated, *patch.Status, snapshot, rest); err != nil {
			h.transitionError(w, err)
			return
		}
		updated.Status = *patch.Status
	case !rest.Empty():
		if err := h.Store.Update(r.Context(), task.ID, rest); err != nil {
			storeError(w, err, fmt.Sprintf("Error updating task %s", task.ID))
			return
		}
	}

	utilities.LogInfo("Task updated: %s", task.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, _, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), task.ID); err != nil {
		storeError(w, err, fmt.Sprintf("Error deleting task %s", task.ID))
		return
	}
	utilities.LogInfo("Task deleted: %s", task.ID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllTasksHandler removes every task of the caller.
func (h *TaskHandler) DeleteAllTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid := UserUID(r.Context())
	n, err := h.Store.DeleteAllForUser(r.Context(), uid)
	if err != nil {
		storeError(w, err, fmt.Sprintf("Error deleting tasks of user %s", uid))
		return
	}
	utilities.LogInfo("Deleted %d tasks of user %s", n, uid)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// ChangeStatusHandler moves a task to another column.
func (h *TaskHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
	task, snapshot, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.Gate.Transition(r.Context(), task, req.Status, snapshot)
	if err != nil {
		h.transitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DropTaskHandler commits a drag release: the pointer position picks the
// column, and the move goes through the gate like any status change.
func (h *TaskHandler) DropTaskHandler(w http.ResponseWriter, r *http.Request) {
	task, snapshot, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	var req dropRequest
	if !h.decode(w, r, &req) {
		return
	}

	drag := planner.NewDragSession(task, req.Container, planner.LayoutForViewport(req.ViewportWidth, h.MobileBreakpoint))
	target, changed := drag.End(req.Point)
	if !changed {
		writeJSON(w, http.StatusOK, planner.Transition{
			TaskID:  task.ID,
			From:    task.Status,
			To:      target,
			Outcome: planner.OutcomeNoop,
		})
		return
	}

	result, err := h.Gate.Transition(r.Context(), task, target, snapshot)
	if err != nil {
		h.transitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type dropPreview struct {
	Target  models.Status  `json:"target"`
	Layout  planner.Layout `json:"layout"`
	Changed bool           `json:"changed"`
}

// DropTargetHandler previews which column a pointer position resolves to.
// Nothing is written.
func (h *TaskHandler) DropTargetHandler(w http.ResponseWriter, r *http.Request) {
	var req dropPreviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	layout := planner.LayoutForViewport(req.ViewportWidth, h.MobileBreakpoint)
	target := planner.ResolveDropTarget(req.Point, req.Container, layout)
	writeJSON(w, http.StatusOK, dropPreview{
		Target:  target,
		Layout:  layout,
		Changed: req.Status != "" && target != req.Status,
	})
}

// TaskHistoryHandler lists the journaled status decisions of a task.
func (h *TaskHandler) TaskHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		http.Error(w, "Transition history is not enabled", http.StatusNotImplemented)
		return
	}
	uid := UserUID(r.Context())
	id := mux.Vars(r)["id"]

	changes, err := h.History.ListForTask(r.Context(), uid, id)
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Error reading history of task %s", id))
		http.Error(w, "Error reading history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
