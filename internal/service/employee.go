package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
)

type EmployeeService struct {
	repo   repo.EmployeeRepository
	logger *zap.Logger
	opts   Options
	clock  clock
}

func NewEmployeeService(employees repo.EmployeeRepository, logger *zap.Logger, opts Options) *EmployeeService {
	return &EmployeeService{
		repo:   employees,
		logger: logger,
		opts:   opts,
		clock:  newClock(opts.Clock),
	}
}

// List returns every employee; search filtering is left to the caller.
func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return guard("list employees", func() ([]model.Employee, error) {
		pause(s.opts.Latency.List)
		employees, err := s.repo.List(ctx)
		if err != nil {
			logFailure(s.logger, "failed to list employees", err)
			return []model.Employee{}, fmt.Errorf("list employees: %w", err)
		}
		return employees, nil
	})
}

// Get returns (nil, nil) when the employee does not exist.
func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	return guard("get employee", func() (*model.Employee, error) {
		pause(s.opts.Latency.Read)
		e, err := s.repo.Get(ctx, id)
		if errors.Is(err, repo.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			logFailure(s.logger, "failed to get employee", err, zap.String("id", id))
			return nil, fmt.Errorf("get employee %s: %w", id, err)
		}
		return &e, nil
	})
}

func (s *EmployeeService) Create(ctx context.Context, f model.EmployeeFields) (*model.Employee, error) {
	return guard("create employee", func() (*model.Employee, error) {
		if err := s.validate(f.Name, f.Email); err != nil {
			return nil, err
		}

		pause(s.opts.Latency.Mutation)
		joined := f.JoinedAt.UTC().Truncate(time.Microsecond)
		if joined.IsZero() {
			joined = s.clock.stamp(zeroTime)
		}
		e := model.Employee{
			ID:         uuid.NewString(),
			Name:       f.Name,
			Email:      f.Email,
			Department: f.Department,
			Position:   f.Position,
			Avatar:     f.Avatar,
			JoinedAt:   joined,
		}
		created, err := s.repo.Create(ctx, e)
		if err != nil {
			err = duplicateEmail(err)
			logFailure(s.logger, "failed to create employee", err)
			return nil, fmt.Errorf("create employee: %w", err)
		}
		return &created, nil
	})
}

func (s *EmployeeService) Update(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error) {
	return guard("update employee", func() (*model.Employee, error) {
		pause(s.opts.Latency.Mutation)
		updated, err := s.repo.Update(ctx, id, func(e *model.Employee) error {
			patch.Apply(e)
			e.JoinedAt = e.JoinedAt.UTC().Truncate(time.Microsecond)
			return s.validate(e.Name, e.Email)
		})
		if err != nil {
			err = duplicateEmail(err)
			logFailure(s.logger, "failed to update employee", err, zap.String("id", id))
			return nil, fmt.Errorf("update employee %s: %w", id, err)
		}
		return &updated, nil
	})
}

// Delete удаляет сотрудника и снимает его со всех задач.
// Хранилище выполняет оба шага атомарно.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	_, err := guard("delete employee", func() (struct{}, error) {
		pause(s.opts.Latency.Mutation)
		deleted, n, err := s.repo.Delete(ctx, id, s.clock.stamp(zeroTime))
		if err != nil {
			logFailure(s.logger, "failed to delete employee", err, zap.String("id", id))
			return struct{}{}, fmt.Errorf("delete employee %s: %w", id, err)
		}
		if n > 0 {
			s.logger.Info("unassigned tasks of deleted employee", zap.String("employee_id", id), zap.Int("tasks", n))
		}

		if !deleted && s.opts.StrictDelete {
			return struct{}{}, fmt.Errorf("delete employee %s: %w", id, repo.ErrorNotFound)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *EmployeeService) validate(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return validationf("name is required")
	}
	if !strings.Contains(email, "@") {
		return validationf("invalid email %q", email)
	}
	return nil
}

func duplicateEmail(err error) error {
	if errors.Is(err, repo.ErrorConflict) {
		return fmt.Errorf("%w: email already in use: %w", ErrValidation, err)
	}
	return err
}
