package repository

import (
	"context"

	"todo_bot/internal/db"
	"todo_bot/internal/domain"
)

type TaskRepository struct {
	provider *db.Provider
}

func NewTaskRepository(provider *db.Provider) *TaskRepository {
	return &TaskRepository{provider: provider}
}

// Add inserts a task and returns its per-user id. The id is
// max(id)+1 for that user, computed inside a transaction that holds an
// advisory lock on the user id, so concurrent adds by one user
// serialize and ids stay monotonic even after deletions.
func (r *TaskRepository) Add(ctx context.Context, userID int64, description string) (int, error) {
	q, release, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	tx, err := q.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return 0, err
	}

	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO tasks (user_id, id, description)
		 SELECT $1, COALESCE(MAX(id), 0) + 1, $2 FROM tasks WHERE user_id = $1
		 RETURNING id`,
		userID, description,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// List returns the user's tasks, most recent first. Done tasks are
// filtered out unless includeDone is set.
func (r *TaskRepository) List(ctx context.Context, userID int64, includeDone bool) ([]domain.Task, error) {
	q, release, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := `SELECT user_id, id, description, done, created_at
	          FROM tasks WHERE user_id = $1 AND done = FALSE
	          ORDER BY created_at DESC`
	if includeDone {
		query = `SELECT user_id, id, description, done, created_at
		         FROM tasks WHERE user_id = $1
		         ORDER BY created_at DESC`
	}

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.UserID, &t.ID, &t.Description, &t.Done, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// MarkDone sets done on the task owned by userID. Returns the number of
// rows affected: 0 means not found or not owned by this user, and the
// caller must not distinguish the two.
func (r *TaskRepository) MarkDone(ctx context.Context, id int, userID int64) (int64, error) {
	q, release, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	tag, err := q.Exec(ctx,
		`UPDATE tasks SET done = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes the task owned by userID. Same affected-rows contract
// as MarkDone.
func (r *TaskRepository) Delete(ctx context.Context, id int, userID int64) (int64, error) {
	q, release, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	tag, err := q.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
