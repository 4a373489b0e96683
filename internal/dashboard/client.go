package dashboard

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/team-dashboard-api/internal/cache"
	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

type TaskAPI interface {
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error)
	Stats(ctx context.Context) (model.TaskStats, error)
	Create(ctx context.Context, f model.TaskFields) (*model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

type EmployeeAPI interface {
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id string) (*model.Employee, error)
	Create(ctx context.Context, f model.EmployeeFields) (*model.Employee, error)
	Update(ctx context.Context, id string, patch model.EmployeePatch) (*model.Employee, error)
	Delete(ctx context.Context, id string) error
}

// Client is what the dashboard talks to: reads go through the query cache,
// mutations go straight to the services and invalidate on success.
type Client struct {
	tasks     TaskAPI
	employees EmployeeAPI
	cache     *cache.QueryCache
	logger    *zap.Logger
}

func NewClient(tasks TaskAPI, employees EmployeeAPI, c *cache.QueryCache, logger *zap.Logger) *Client {
	return &Client{
		tasks:     tasks,
		employees: employees,
		cache:     c,
		logger:    logger,
	}
}

func taskKey(params string) cache.Key     { return cache.Key{Entity: cache.Tasks, Params: params} }
func employeeKey(params string) cache.Key { return cache.Key{Entity: cache.Employees, Params: params} }

// cached is a read-through lookup. Failed loads are not stored. clone keeps
// the cached value private to the cache.
func cached[T any](ctx context.Context, c *Client, key cache.Key, clone func(T) T, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return clone(t), nil
		}
	}

	gen := c.cache.Generation(key.Entity)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if !c.cache.SetAt(key, clone(v), gen) {
		c.logger.Debug("dropped stale query result", zap.Stringer("key", key))
	}
	return v, nil
}

func same[T any](v T) T { return v }

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (c *Client) Tasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return cached(ctx, c, taskKey(filter.Key()), slices.Clone[[]model.Task, model.Task], func(ctx context.Context) ([]model.Task, error) {
		return c.tasks.List(ctx, filter)
	})
}

// Task returns (nil, nil) when the task does not exist.
func (c *Client) Task(ctx context.Context, id string) (*model.Task, error) {
	return cached(ctx, c, taskKey("id:"+id), clonePtr[model.Task], func(ctx context.Context) (*model.Task, error) {
		return c.tasks.Get(ctx, id)
	})
}

func (c *Client) TasksByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error) {
	return cached(ctx, c, taskKey("assignee:"+assigneeID), slices.Clone[[]model.Task, model.Task], func(ctx context.Context) ([]model.Task, error) {
		return c.tasks.ListByAssignee(ctx, assigneeID)
	})
}

func (c *Client) TaskStats(ctx context.Context) (model.TaskStats, error) {
	return cached(ctx, c, taskKey("stats"), same[model.TaskStats], c.tasks.Stats)
}

func (c *Client) Employees(ctx context.Context) ([]model.Employee, error) {
	return cached(ctx, c, employeeKey(""), slices.Clone[[]model.Employee, model.Employee], c.employees.List)
}

// Employee returns (nil, nil) when the employee does not exist.
func (c *Client) Employee(ctx context.Context, id string) (*model.Employee, error) {
	return cached(ctx, c, employeeKey("id:"+id), clonePtr[model.Employee], func(ctx context.Context) (*model.Employee, error) {
		return c.employees.Get(ctx, id)
	})
}

// FilterEmployees applies the dashboard's employee search to a listing.
func FilterEmployees(employees []model.Employee, q string) []model.Employee {
	out := make([]model.Employee, 0, len(employees))
	for _, e := range employees {
		if e.MatchesSearch(q) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Client) SearchEmployees(ctx context.Context, q string) ([]model.Employee, error) {
	employees, err := c.Employees(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEmployees(employees, q), nil
}
