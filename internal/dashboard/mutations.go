package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/cache"
	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

// Every mutation invalidates after the service confirmed it. Invalidation is
// per entity type, never per filter.

func (c *Client) CreateTask(ctx context.Context, f model.TaskFields) (*model.Task, error) {
	t, err := c.tasks.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	c.invalidate(cache.Tasks)
	return t, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	t, err := c.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(cache.Tasks)
	c.cache.InvalidateKey(taskKey("id:" + id))
	return t, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status model.Status) (*model.Task, error) {
	t, err := c.tasks.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.invalidate(cache.Tasks)
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.tasks.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(cache.Tasks)
	return nil
}

func (c *Client) CreateEmployee(ctx context.Context, f model.EmployeeFields) (*model.Employee, error) {
	e, err := c.employees.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	c.invalidate(cache.Employees)
	return e, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error) {
	e, err := c.employees.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.invalidate(cache.Employees)
	c.cache.InvalidateKey(employeeKey("id:" + id))
	return e, nil
}

// DeleteEmployee also drops task queries: the delete unassigns the
// employee's tasks.
func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	if err := c.employees.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(cache.Employees)
	c.invalidate(cache.Tasks)
	return nil
}

func (c *Client) invalidate(entity string) {
	n := c.cache.InvalidateEntity(entity)
	c.logger.Debug("invalidated queries", zap.String("entity", entity), zap.Int("entries", n), zap.Int("remaining", c.cache.Len()))
}
