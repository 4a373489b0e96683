package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

// UnavailableTaskRepo stands in when no database is configured: every call
// fails with ErrorUnavailable.
type UnavailableTaskRepo struct{}

func (UnavailableTaskRepo) Create(context.Context, model.Task) (model.Task, error) {
	return model.Task{}, ErrorUnavailable
}

func (UnavailableTaskRepo) Get(context.Context, string) (model.Task, error) {
	return model.Task{}, ErrorUnavailable
}

func (UnavailableTaskRepo) List(context.Context, model.TaskFilter) ([]model.Task, error) {
	return nil, ErrorUnavailable
}

func (UnavailableTaskRepo) Update(context.Context, string, func(*model.Task) error) (model.Task, error) {
	return model.Task{}, ErrorUnavailable
}

func (UnavailableTaskRepo) Delete(context.Context, string) (bool, error) {
	return false, ErrorUnavailable
}

func (UnavailableTaskRepo) ClearAssignee(context.Context, string, time.Time) (int, error) {
	return 0, ErrorUnavailable
}

func (UnavailableTaskRepo) GetStats(context.Context) (model.TaskStats, error) {
	return model.TaskStats{}, ErrorUnavailable
}

type UnavailableEmployeeRepo struct{}

func (UnavailableEmployeeRepo) Create(context.Context, model.Employee) (model.Employee, error) {
	return model.Employee{}, ErrorUnavailable
}

func (UnavailableEmployeeRepo) Get(context.Context, string) (model.Employee, error) {
	return model.Employee{}, ErrorUnavailable
}

func (UnavailableEmployeeRepo) List(context.Context) ([]model.Employee, error) {
	return nil, ErrorUnavailable
}

func (UnavailableEmployeeRepo) Update(context.Context, string, func(*model.Employee) error) (model.Employee, error) {
	return model.Employee{}, ErrorUnavailable
}

func (UnavailableEmployeeRepo) Delete(context.Context, string, time.Time) (bool, int, error) {
	return false, 0, ErrorUnavailable
}
