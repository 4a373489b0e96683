package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами.
// List отдает задачи в порядке хранилища, самая новая первая.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	// Update applies fn to the stored record under the store's write lock
	// (or row lock) and persists the result. ErrorNotFound if id is absent.
	Update(ctx context.Context, id string, fn func(*model.Task) error) (model.Task, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// ClearAssignee unassigns every task of employeeID and stamps updatedAt.
	ClearAssignee(ctx context.Context, employeeID string, at time.Time) (int, error)
	GetStats(ctx context.Context) (model.TaskStats, error)
}

type EmployeeRepository interface {
	Create(ctx context.Context, e model.Employee) (model.Employee, error)
	Get(ctx context.Context, id string) (model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Update(ctx context.Context, id string, fn func(*model.Employee) error) (model.Employee, error)
	// Delete removes the employee and unassigns their tasks, stamping them
	// with at, as one unit: on error neither step is applied. It reports
	// whether the employee existed and how many tasks were unassigned.
	Delete(ctx context.Context, id string, at time.Time) (deleted bool, unassigned int, err error)
}

// TaskUnassigner is the part of a task store an employee store needs to
// cascade a delete.
type TaskUnassigner interface {
	ClearAssignee(ctx context.Context, employeeID string, at time.Time) (int, error)
}

// TaskSeeder loads fixtures; the given order becomes store order.
type TaskSeeder interface {
	SeedTasks(ctx context.Context, tasks []model.Task) error
}

type EmployeeSeeder interface {
	SeedEmployees(ctx context.Context, employees []model.Employee) error
}
