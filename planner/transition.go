package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/utilities"
)

var (
	// ErrBlocked is returned when a task cannot move to done because one of
	// its dependencies is still open. Use errors.As with *BlockedError to get
	// the blocking ids.
	ErrBlocked       = errors.New("task is blocked by unfinished dependencies")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrUnsaved       = errors.New("task has not been saved yet")
)

type BlockedError struct {
	TaskID    string
	BlockedBy []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("task %s is blocked by unfinished dependencies: %s", e.TaskID, strings.Join(e.BlockedBy, ", "))
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// Updater is the write side of the task store the gate needs.
type Updater interface {
	Update(ctx context.Context, id string, patch models.TaskPatch) error
}

// Journal keeps a record of every gate decision.
type Journal interface {
	Record(ctx context.Context, change models.StatusChange) error
}

// Notifier is told about accepted status changes.
type Notifier interface {
	StatusChanged(ctx context.Context, change models.StatusChange) error
}

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoop    Outcome = "noop"
	OutcomeBlocked Outcome = "blocked"
)

type Transition struct {
	TaskID    string        `json:"taskId"`
	From      models.Status `json:"from"`
	To        models.Status `json:"to"`
	Outcome   Outcome       `json:"outcome"`
	BlockedBy []string      `json:"blockedBy,omitempty"`
}

// Gate guards task status changes. Any status may move to any other, except
// that entering done requires every existing dependency to be done.
// Journal and Notifier are optional.
type Gate struct {
	Store    Updater
	Journal  Journal
	Notifier Notifier
	Now      func() time.Time
}

func NewGate(store Updater, journal Journal, notifier Notifier) *Gate {
	return &Gate{Store: store, Journal: journal, Notifier: notifier, Now: time.Now}
}

// Transition moves task to target, consulting snapshot for dependencies.
// A no-op transition succeeds without touching the store. A blocked one
// returns a *BlockedError and writes nothing. Store errors are returned
// wrapped and are not retried.
func (g *Gate) Transition(ctx context.Context, task models.Task, target models.Status, snapshot []models.Task) (Transition, error) {
	return g.TransitionWith(ctx, task, target, snapshot, models.TaskPatch{})
}

// TransitionWith is Transition with extra fields saved in the same store
// update as the status. task should already carry extra, so dependency
// edits in it are what the check sees. extra.Status is ignored. When the
// move is blocked or invalid nothing is written, extra included.
func (g *Gate) TransitionWith(ctx context.Context, task models.Task, target models.Status, snapshot []models.Task, extra models.TaskPatch) (Transition, error) {
	result := Transition{TaskID: task.ID, From: task.Status, To: target}
	extra.Status = nil

	if !target.Valid() {
		return result, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	if target == task.Status {
		result.Outcome = OutcomeNoop
		if extra.Empty() {
			return result, nil
		}
		if err := g.Store.Update(ctx, task.ID, extra); err != nil {
			return result, fmt.Errorf("update task %s: %w", task.ID, err)
		}
		return result, nil
	}
	if task.ID == "" {
		return result, ErrUnsaved
	}

	change := models.StatusChange{
		TaskID: task.ID,
		UserID: task.UserID,
		From:   task.Status,
		To:     target,
		At:     g.now(),
	}

	if target == models.StatusDone {
		if blockers := BlockingDependencies(task, snapshot); len(blockers) > 0 {
			result.Outcome = OutcomeBlocked
			result.BlockedBy = blockers

			change.Reason = "blocked"
			change.BlockedBy = blockers
			g.record(ctx, change)

			utilities.LogDebug("Transition of task %s to %s blocked by %v", task.ID, target, blockers)
			return result, &BlockedError{TaskID: task.ID, BlockedBy: blockers}
		}
	}

	status := target
	patch := extra
	patch.Status = &status
	if err := g.Store.Update(ctx, task.ID, patch); err != nil {
		return result, fmt.Errorf("update status of task %s: %w", task.ID, err)
	}

	result.Outcome = OutcomeApplied
	change.Accepted = true
	g.record(ctx, change)
	if g.Notifier != nil {
		if err := g.Notifier.StatusChanged(ctx, change); err != nil {
			utilities.LogError(err, fmt.Sprintf("Failed to publish status change of task %s", task.ID))
		}
	}

	utilities.LogInfo("Task %s moved from %s to %s", task.ID, task.Status, target)
	return result, nil
}

func (g *Gate) record(ctx context.Context, change models.StatusChange) {
	if g.Journal == nil {
		return
	}
	if err := g.Journal.Record(ctx, change); err != nil {
		utilities.LogError(err, fmt.Sprintf("Failed to journal status change of task %s", change.TaskID))
	}
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}
