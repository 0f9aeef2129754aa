package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/kvit-dev/caleoban/models"
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS status_history (
	id          BIGSERIAL PRIMARY KEY,
	task_id     TEXT        NOT NULL,
	user_id     TEXT        NOT NULL,
	from_status TEXT        NOT NULL,
	to_status   TEXT        NOT NULL,
	accepted    BOOLEAN     NOT NULL,
	reason      TEXT        NOT NULL DEFAULT '',
	blocked_by  TEXT[]      NOT NULL DEFAULT '{}',
	changed_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS status_history_task_idx ON status_history (task_id, changed_at);
`

// HistoryRepo journals status transitions, accepted and rejected, in Postgres.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("error creating status_history table: %w", err)
	}
	return nil
}

func (r *HistoryRepo) Record(ctx context.Context, change models.StatusChange) error {
	blockedBy := change.BlockedBy
	if blockedBy == nil {
		blockedBy = []string{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_history (task_id, user_id, from_status, to_status, accepted, reason, blocked_by, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		change.TaskID, change.UserID, string(change.From), string(change.To),
		change.Accepted, change.Reason, pq.Array(blockedBy), change.At,
	)
	if err != nil {
		return fmt.Errorf("error recording status change of task %s: %w", change.TaskID, err)
	}
	return nil
}

// ListForTask returns the journal of one task, oldest first, restricted to
// the given owner.
func (r *HistoryRepo) ListForTask(ctx context.Context, userID, taskID string) ([]models.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, user_id, from_status, to_status, accepted, reason, blocked_by, changed_at
		 FROM status_history
		 WHERE task_id = $1 AND user_id = $2
		 ORDER BY changed_at, id`,
		taskID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying history of task %s: %w", taskID, err)
	}
	defer rows.Close()

	changes := []models.StatusChange{}
	for rows.Next() {
		var c models.StatusChange
		var from, to string
		var blockedBy []string
		if err := rows.Scan(&c.TaskID, &c.UserID, &from, &to, &c.Accepted, &c.Reason, pq.Array(&blockedBy), &c.At); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		c.From = models.Status(from)
		c.To = models.Status(to)
		if len(blockedBy) > 0 {
			c.BlockedBy = blockedBy
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading history rows: %w", err)
	}
	return changes, nil
}
