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

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
	opts   Options
	clock  clock
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger, opts Options) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
		opts:   opts,
		clock:  newClock(opts.Clock),
	}
}

// List возвращает задачи, удовлетворяющие всем заданным фильтрам, в порядке
// хранилища.
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return guard("list tasks", func() ([]model.Task, error) {
		pause(s.opts.Latency.List)
		tasks, err := s.repo.List(ctx, filter)
		if err != nil {
			logFailure(s.logger, "failed to list tasks", err)
			return []model.Task{}, fmt.Errorf("list tasks: %w", err)
		}
		return tasks, nil
	})
}

// Get returns (nil, nil) when the task does not exist.
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return guard("get task", func() (*model.Task, error) {
		pause(s.opts.Latency.Read)
		t, err := s.repo.Get(ctx, id)
		if errors.Is(err, repo.ErrorNotFound) {
			return nil, nil
		}
		if err != nil {
			logFailure(s.logger, "failed to get task", err, zap.String("id", id))
			return nil, fmt.Errorf("get task %s: %w", id, err)
		}
		return &t, nil
	})
}

func (s *TaskService) ListByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error) {
	return guard("list tasks by assignee", func() ([]model.Task, error) {
		pause(s.opts.Latency.Read)
		tasks, err := s.repo.List(ctx, model.TaskFilter{AssigneeID: &assigneeID})
		if err != nil {
			logFailure(s.logger, "failed to list tasks by assignee", err, zap.String("assignee_id", assigneeID))
			return []model.Task{}, fmt.Errorf("list tasks of %s: %w", assigneeID, err)
		}
		return tasks, nil
	})
}

func (s *TaskService) Create(ctx context.Context, f model.TaskFields) (*model.Task, error) {
	return guard("create task", func() (*model.Task, error) {
		if f.Status == "" {
			f.Status = model.StatusPending
		}
		if f.Priority == "" {
			f.Priority = model.PriorityMedium
		}
		if err := s.validate(f.Title, f.Status, f.Priority); err != nil {
			return nil, err
		}

		pause(s.opts.Latency.Mutation)
		now := s.clock.stamp(zeroTime)
		t := model.Task{
			ID:          uuid.NewString(),
			Title:       f.Title,
			Description: f.Description,
			Status:      f.Status,
			Priority:    f.Priority,
			AssigneeID:  f.AssigneeID,
			DueDate:     f.DueDate.UTC().Truncate(time.Microsecond),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := s.repo.Create(ctx, t)
		if err != nil {
			logFailure(s.logger, "failed to create task", err)
			return nil, fmt.Errorf("create task: %w", err)
		}
		return &created, nil
	})
}

// Update накладывает patch на существующую задачу. id и createdAt не
// меняются, updatedAt обновляется всегда.
func (s *TaskService) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	return guard("update task", func() (*model.Task, error) {
		pause(s.opts.Latency.Mutation)
		updated, err := s.repo.Update(ctx, id, func(t *model.Task) error {
			patch.Apply(t)
			if err := s.validate(t.Title, t.Status, t.Priority); err != nil {
				return err
			}
			t.DueDate = t.DueDate.UTC().Truncate(time.Microsecond)
			t.UpdatedAt = s.clock.stamp(t.UpdatedAt)
			return nil
		})
		if err != nil {
			logFailure(s.logger, "failed to update task", err, zap.String("id", id))
			return nil, fmt.Errorf("update task %s: %w", id, err)
		}
		return &updated, nil
	})
}

func (s *TaskService) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Task, error) {
	return s.Update(ctx, id, model.TaskPatch{Status: &status})
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := guard("delete task", func() (struct{}, error) {
		pause(s.opts.Latency.Mutation)
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			logFailure(s.logger, "failed to delete task", err, zap.String("id", id))
			return struct{}{}, fmt.Errorf("delete task %s: %w", id, err)
		}
		if !deleted {
			if s.opts.StrictDelete {
				return struct{}{}, fmt.Errorf("delete task %s: %w", id, repo.ErrorNotFound)
			}
			s.logger.Debug("delete of unknown task", zap.String("id", id))
		}
		return struct{}{}, nil
	})
	return err
}

// Stats считается заново при каждом вызове.
func (s *TaskService) Stats(ctx context.Context) (model.TaskStats, error) {
	return guard("task stats", func() (model.TaskStats, error) {
		pause(s.opts.Latency.Read)
		stats, err := s.repo.GetStats(ctx)
		if err != nil {
			logFailure(s.logger, "failed to get task stats", err)
			return model.TaskStats{}, fmt.Errorf("task stats: %w", err)
		}
		return stats, nil
	})
}

func (s *TaskService) validate(title string, status model.Status, priority model.Priority) error {
	if strings.TrimSpace(title) == "" {
		return validationf("title is required")
	}
	if !status.Valid() {
		return validationf("unknown status %q", status)
	}
	if !priority.Valid() {
		return validationf("unknown priority %q", priority)
	}
	return nil
}
