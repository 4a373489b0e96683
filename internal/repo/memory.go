package repo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

// MemoryTaskRepo хранит задачи в памяти процесса, самая новая задача первая.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{}
}

func (r *MemoryTaskRepo) Create(_ context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(t.ID) >= 0 {
		return model.Task{}, ErrorConflict
	}
	r.tasks = slices.Insert(r.tasks, 0, t)
	return t, nil
}

func (r *MemoryTaskRepo) Get(_ context.Context, id string) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	return r.tasks[i], nil
}

func (r *MemoryTaskRepo) List(_ context.Context, filter model.TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, id string, fn func(*model.Task) error) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	t := r.tasks[i]
	if err := fn(&t); err != nil {
		return model.Task{}, err
	}
	r.tasks[i] = t
	return t, nil
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return true, nil
}

func (r *MemoryTaskRepo) ClearAssignee(_ context.Context, employeeID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.tasks {
		if r.tasks[i].AssigneeID == employeeID {
			r.tasks[i].AssigneeID = ""
			if at.After(r.tasks[i].UpdatedAt) {
				r.tasks[i].UpdatedAt = at
			} else {
				r.tasks[i].UpdatedAt = r.tasks[i].UpdatedAt.Add(time.Microsecond)
			}
			n++
		}
	}
	return n, nil
}

func (r *MemoryTaskRepo) GetStats(_ context.Context) (model.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s model.TaskStats
	for _, t := range r.tasks {
		s.Count(t.Status)
	}
	return s, nil
}

func (r *MemoryTaskRepo) SeedTasks(_ context.Context, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tasks {
		if r.indexOf(t.ID) < 0 {
			r.tasks = append(r.tasks, t)
		}
	}
	return nil
}

func (r *MemoryTaskRepo) indexOf(id string) int {
	return slices.IndexFunc(r.tasks, func(t model.Task) bool { return t.ID == id })
}

// MemoryEmployeeRepo хранит сотрудников в памяти. Email уникален без учета
// регистра.
type MemoryEmployeeRepo struct {
	mu        sync.RWMutex
	employees []model.Employee
	tasks     TaskUnassigner
}

// NewMemoryEmployeeRepo cascades deletes to tasks; nil tasks disables the
// cascade.
func NewMemoryEmployeeRepo(tasks TaskUnassigner) *MemoryEmployeeRepo {
	return &MemoryEmployeeRepo{tasks: tasks}
}

func (r *MemoryEmployeeRepo) Create(_ context.Context, e model.Employee) (model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(e.ID) >= 0 || r.emailTaken(e.Email, "") {
		return model.Employee{}, ErrorConflict
	}
	r.employees = slices.Insert(r.employees, 0, e)
	return e, nil
}

func (r *MemoryEmployeeRepo) Get(_ context.Context, id string) (model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Employee{}, ErrorNotFound
	}
	return r.employees[i], nil
}

func (r *MemoryEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.employees), nil
}

func (r *MemoryEmployeeRepo) Update(_ context.Context, id string, fn func(*model.Employee) error) (model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Employee{}, ErrorNotFound
	}
	e := r.employees[i]
	if err := fn(&e); err != nil {
		return model.Employee{}, err
	}
	if r.emailTaken(e.Email, id) {
		return model.Employee{}, ErrorConflict
	}
	r.employees[i] = e
	return e, nil
}

// Delete holds the employee lock across both steps. Tasks are unassigned
// first, so a failed unassign leaves the employee in place.
func (r *MemoryEmployeeRepo) Delete(ctx context.Context, id string, at time.Time) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(id) < 0 {
		return false, 0, nil
	}

	n := 0
	if r.tasks != nil {
		var err error
		if n, err = r.tasks.ClearAssignee(ctx, id, at); err != nil {
			return false, 0, err
		}
	}

	i := r.indexOf(id)
	r.employees = slices.Delete(r.employees, i, i+1)
	return true, n, nil
}

func (r *MemoryEmployeeRepo) SeedEmployees(_ context.Context, employees []model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range employees {
		if r.indexOf(e.ID) < 0 {
			r.employees = append(r.employees, e)
		}
	}
	return nil
}

func (r *MemoryEmployeeRepo) indexOf(id string) int {
	return slices.IndexFunc(r.employees, func(e model.Employee) bool { return e.ID == id })
}

func (r *MemoryEmployeeRepo) emailTaken(email, exceptID string) bool {
	if email == "" {
		return false
	}
	return slices.ContainsFunc(r.employees, func(e model.Employee) bool {
		return e.ID != exceptID && strings.EqualFold(e.Email, email)
	})
}
