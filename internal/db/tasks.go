package db

import (
	"context"
	"database/sql"

	"github.com/tgienger/double/internal/models"
)

// taskRow is one task plus its position in each session collection
type taskRow struct {
	task         models.Task
	allSeq       sql.NullInt64
	activeSeq    sql.NullInt64
	completedSeq sql.NullInt64
}

// collectTasks merges the three task collections into one row per id. A
// task stored in several collections keeps the most advanced copy.
func collectTasks(active, completed, all []models.Task) []*taskRow {
	var rows []*taskRow
	byID := map[string]*taskRow{}
	row := func(t models.Task) *taskRow {
		r, ok := byID[t.ID]
		if !ok {
			r = &taskRow{}
			byID[t.ID] = r
			rows = append(rows, r)
		}
		r.task = t
		return r
	}

	for i, t := range active {
		row(t).activeSeq = sql.NullInt64{Int64: int64(i), Valid: true}
	}
	for i, t := range all {
		row(t).allSeq = sql.NullInt64{Int64: int64(i), Valid: true}
	}
	for i, t := range completed {
		row(t).completedSeq = sql.NullInt64{Int64: int64(i), Valid: true}
	}
	return rows
}

// replaceTasks rewrites the tasks table
func replaceTasks(ctx context.Context, q querier, active, completed, all []models.Task) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return err
	}
	for _, r := range collectTasks(active, completed, all) {
		var completedAt sql.NullTime
		if r.task.CompletedAt != nil {
			completedAt = sql.NullTime{Time: *r.task.CompletedAt, Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO tasks (id, text, completed, created_at, due_date, priority, completed_at, all_seq, active_seq, completed_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.task.ID, r.task.Text, r.task.Completed, r.task.CreatedAt, r.task.DueDate, string(r.task.Priority),
			completedAt, r.allSeq, r.activeSeq, r.completedSeq)
		if err != nil {
			return err
		}
	}
	return nil
}

// listTasks returns the tasks whose seqColumn is set, in that order
func listTasks(ctx context.Context, q querier, seqColumn string) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, text, completed, created_at, due_date, priority, completed_at
		FROM tasks
		WHERE `+seqColumn+` IS NOT NULL
		ORDER BY `+seqColumn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t           models.Task
			priority    string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt, &t.DueDate, &priority, &completedAt); err != nil {
			return nil, err
		}
		t.Priority = models.Priority(priority)
		if completedAt.Valid {
			at := completedAt.Time
			t.CompletedAt = &at
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
