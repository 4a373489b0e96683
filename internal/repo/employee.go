package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

const employeeColumns = `id, name, email, department, position, COALESCE(avatar, ''), joined_at`

type EmployeeRepo struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepo(pool *pgxpool.Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

func (r *EmployeeRepo) Create(ctx context.Context, e model.Employee) (model.Employee, error) {
	created, err := scanEmployee(r.pool.QueryRow(ctx, `
		INSERT INTO employees (id, name, email, department, position, avatar, joined_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING `+employeeColumns,
		e.ID, e.Name, e.Email, e.Department, e.Position, e.Avatar, e.JoinedAt,
	))
	return created, mapError(err)
}

func (r *EmployeeRepo) Get(ctx context.Context, id string) (model.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return e, ErrorNotFound
	}
	return e, mapError(err)
}

func (r *EmployeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	employees := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, mapError(rows.Err())
}

func (r *EmployeeRepo) Update(ctx context.Context, id string, fn func(*model.Employee) error) (model.Employee, error) {
	var updated model.Employee
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		e, err := scanEmployee(tx.QueryRow(ctx, `
			SELECT `+employeeColumns+`
			FROM employees
			WHERE id = $1
			FOR UPDATE
		`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrorNotFound
		}
		if err != nil {
			return err
		}

		if err := fn(&e); err != nil {
			return err
		}

		updated, err = scanEmployee(tx.QueryRow(ctx, `
			UPDATE employees
			SET name = $2, email = $3, department = $4, position = $5,
			    avatar = NULLIF($6, ''), joined_at = $7
			WHERE id = $1
			RETURNING `+employeeColumns,
			id, e.Name, e.Email, e.Department, e.Position, e.Avatar, e.JoinedAt,
		))
		return err
	})
	if errors.Is(err, ErrorNotFound) {
		return model.Employee{}, ErrorNotFound
	}
	return updated, mapError(err)
}

// Delete удаляет сотрудника и снимает его с задач в одной транзакции.
func (r *EmployeeRepo) Delete(ctx context.Context, id string, at time.Time) (bool, int, error) {
	var (
		deleted    bool
		unassigned int
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		deleted = true

		cmd, err = tx.Exec(ctx, clearAssigneeSQL, id, at)
		if err != nil {
			return err
		}
		unassigned = int(cmd.RowsAffected())
		return nil
	})
	if err != nil {
		return false, 0, mapError(err)
	}
	return deleted, unassigned, nil
}

func (r *EmployeeRepo) SeedEmployees(ctx context.Context, employees []model.Employee) error {
	batch := &pgx.Batch{}
	for i := len(employees) - 1; i >= 0; i-- {
		e := employees[i]
		batch.Queue(`
			INSERT INTO employees (id, name, email, department, position, avatar, joined_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
			ON CONFLICT DO NOTHING
		`, e.ID, e.Name, e.Email, e.Department, e.Position, e.Avatar, e.JoinedAt)
	}
	return mapError(r.pool.SendBatch(ctx, batch).Close())
}

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.Position, &e.Avatar, &e.JoinedAt); err != nil {
		return model.Employee{}, err
	}
	e.JoinedAt = e.JoinedAt.UTC()
	return e, nil
}
