package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

const taskColumns = `id, title, description, status, priority, COALESCE(assignee_id, ''), due_date, created_at, updated_at`

// clearAssigneeSQL never moves updated_at backwards.
const clearAssigneeSQL = `
	UPDATE tasks SET assignee_id = NULL, updated_at = GREATEST($2, updated_at + interval '1 microsecond')
	WHERE assignee_id = $1
`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, assignee_id, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
		t.AssigneeID, nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt,
	)
	created, err := scanTask(row)
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR priority = $2)
		  AND ($3::text IS NULL OR COALESCE(assignee_id, '') = $3)
		  AND ($4::text = '' OR strpos(lower(title), lower($4)) > 0 OR strpos(lower(description), lower($4)) > 0)
		ORDER BY seq DESC
	`

	var status, priority *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	if filter.Priority != nil {
		p := string(*filter.Priority)
		priority = &p
	}

	rows, err := r.pool.Query(ctx, query, status, priority, filter.AssigneeID, filter.Search)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, mapError(rows.Err())
}

func (r *TaskRepo) Update(ctx context.Context, id string, fn func(*model.Task) error) (model.Task, error) {
	var updated model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE id = $1
			FOR UPDATE
		`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrorNotFound
		}
		if err != nil {
			return err
		}

		if err := fn(&t); err != nil {
			return err
		}

		updated, err = scanTask(tx.QueryRow(ctx, `
			UPDATE tasks
			SET title = $2, description = $3, status = $4, priority = $5,
			    assignee_id = NULLIF($6, ''), due_date = $7, updated_at = $8
			WHERE id = $1
			RETURNING `+taskColumns,
			id, t.Title, t.Description, string(t.Status), string(t.Priority),
			t.AssigneeID, nullTime(t.DueDate), t.UpdatedAt,
		))
		return err
	})
	if errors.Is(err, ErrorNotFound) {
		return model.Task{}, ErrorNotFound
	}
	return updated, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *TaskRepo) ClearAssignee(ctx context.Context, employeeID string, at time.Time) (int, error) {
	cmd, err := r.pool.Exec(ctx, clearAssigneeSQL, employeeID, at)
	if err != nil {
		return 0, mapError(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *TaskRepo) GetStats(ctx context.Context) (model.TaskStats, error) {
	var s model.TaskStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'in-progress')
		FROM tasks
	`).Scan(&s.Total, &s.Completed, &s.Pending, &s.InProgress)
	return s, mapError(err)
}

// SeedTasks вставляет задачи в обратном порядке, чтобы seq DESC совпал с
// порядком файла. Существующие id не перезаписываются.
func (r *TaskRepo) SeedTasks(ctx context.Context, tasks []model.Task) error {
	batch := &pgx.Batch{}
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		batch.Queue(`
			INSERT INTO tasks (id, title, description, status, priority, assignee_id, due_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
			t.AssigneeID, nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
	}
	return mapError(r.pool.SendBatch(ctx, batch).Close())
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                model.Task
		status, priority string
		due              *time.Time
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.AssigneeID, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	if due != nil {
		t.DueDate = due.UTC()
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
