package dashboard

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BuzzLyutic/team-dashboard-api/internal/cache"
	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
	"github.com/BuzzLyutic/team-dashboard-api/internal/service"
)

// countingTasks считает обращения к сервису, чтобы видеть попадания в кэш.
type countingTasks struct {
	*service.TaskService
	lists, gets, stats atomic.Int32
}

func (c *countingTasks) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	c.lists.Add(1)
	return c.TaskService.List(ctx, filter)
}

func (c *countingTasks) Get(ctx context.Context, id string) (*model.Task, error) {
	c.gets.Add(1)
	return c.TaskService.Get(ctx, id)
}

func (c *countingTasks) Stats(ctx context.Context) (model.TaskStats, error) {
	c.stats.Add(1)
	return c.TaskService.Stats(ctx)
}

type countingEmployees struct {
	*service.EmployeeService
	lists, gets atomic.Int32
}

func (c *countingEmployees) List(ctx context.Context) ([]model.Employee, error) {
	c.lists.Add(1)
	return c.EmployeeService.List(ctx)
}

func (c *countingEmployees) Get(ctx context.Context, id string) (*model.Employee, error) {
	c.gets.Add(1)
	return c.EmployeeService.Get(ctx, id)
}

type env struct {
	client    *Client
	tasks     *countingTasks
	employees *countingEmployees
	taskStore *repo.MemoryTaskRepo
}

func newEnv(t *testing.T) env {
	t.Helper()
	logger := zaptest.NewLogger(t)

	taskStore := repo.NewMemoryTaskRepo()
	tasks := &countingTasks{TaskService: service.NewTaskService(taskStore, logger, service.Options{})}
	employees := &countingEmployees{EmployeeService: service.NewEmployeeService(repo.NewMemoryEmployeeRepo(taskStore), logger, service.Options{})}

	qc, err := cache.New(cache.DefaultSize)
	require.NoError(t, err)

	return env{
		client:    NewClient(tasks, employees, qc, logger),
		tasks:     tasks,
		employees: employees,
		taskStore: taskStore,
	}
}

func TestClient_TasksAreCachedPerFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.CreateTask(ctx, model.TaskFields{Title: "a"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		list, err := e.client.Tasks(ctx, model.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	assert.Equal(t, int32(1), e.tasks.lists.Load())

	pending := model.StatusPending
	_, err = e.client.Tasks(ctx, model.TaskFilter{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int32(2), e.tasks.lists.Load())
}

func TestClient_DistinctFiltersDoNotShareCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.CreateTask(ctx, model.TaskFields{Title: "y", AssigneeID: "x"})
	require.NoError(t, err)

	list, err := e.client.Tasks(ctx, model.TaskFilter{AssigneeID: ptr("x"), Search: "y"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = e.client.Tasks(ctx, model.TaskFilter{AssigneeID: ptr("x;search=y")})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int32(2), e.tasks.lists.Load())
}

func TestClient_CachedValueIsACopy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.CreateTask(ctx, model.TaskFields{Title: "original"})
	require.NoError(t, err)

	list, err := e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	list[0].Title = "mutated by caller"

	again, err := e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Title)
}

func TestClient_TaskMutationInvalidatesAllTaskQueries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	task, err := e.client.CreateTask(ctx, model.TaskFields{Title: "a"})
	require.NoError(t, err)

	high := model.PriorityHigh
	_, err = e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	_, err = e.client.Tasks(ctx, model.TaskFilter{Priority: &high})
	require.NoError(t, err)
	_, err = e.client.Task(ctx, task.ID)
	require.NoError(t, err)
	stats, err := e.client.TaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	_, err = e.client.Employees(ctx)
	require.NoError(t, err)

	_, err = e.client.UpdateTaskStatus(ctx, task.ID, model.StatusCompleted)
	require.NoError(t, err)

	list, err := e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, list[0].Status)
	_, err = e.client.Tasks(ctx, model.TaskFilter{Priority: &high})
	require.NoError(t, err)
	got, err := e.client.Task(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	stats, err = e.client.TaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)

	assert.Equal(t, int32(4), e.tasks.lists.Load())
	assert.Equal(t, int32(2), e.tasks.gets.Load())
	assert.Equal(t, int32(2), e.tasks.stats.Load())

	// задачи не трогают кэш сотрудников
	_, err = e.client.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), e.employees.lists.Load())
}

func TestClient_DeleteTaskInvalidates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	task, err := e.client.CreateTask(ctx, model.TaskFields{Title: "a"})
	require.NoError(t, err)
	_, err = e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)

	require.NoError(t, e.client.DeleteTask(ctx, task.ID))

	list, err := e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)

	_, err = e.client.UpdateTask(ctx, "missing", model.TaskPatch{})
	assert.ErrorIs(t, err, repo.ErrorNotFound)

	_, err = e.client.Tasks(ctx, model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), e.tasks.lists.Load())
}

func TestClient_FailuresAreNotCached(t *testing.T) {
	logger := zaptest.NewLogger(t)
	qc, err := cache.New(8)
	require.NoError(t, err)

	tasks := &countingTasks{TaskService: service.NewTaskService(repo.UnavailableTaskRepo{}, logger, service.Options{})}
	employees := &countingEmployees{EmployeeService: service.NewEmployeeService(repo.UnavailableEmployeeRepo{}, logger, service.Options{})}
	client := NewClient(tasks, employees, qc, logger)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Tasks(ctx, model.TaskFilter{})
		assert.ErrorIs(t, err, repo.ErrorUnavailable)
	}
	assert.Equal(t, int32(2), tasks.lists.Load())
	assert.Equal(t, 0, qc.Len())

	_, err = client.Summary(ctx)
	assert.ErrorIs(t, err, repo.ErrorUnavailable)
}

func TestClient_EmployeeMutations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ann, err := e.client.CreateEmployee(ctx, model.EmployeeFields{Name: "Ann", Email: "ann@example.com", Department: "Ops"})
	require.NoError(t, err)

	_, err = e.client.Employee(ctx, ann.ID)
	require.NoError(t, err)
	_, err = e.client.Employees(ctx)
	require.NoError(t, err)

	_, err = e.client.UpdateEmployee(ctx, ann.ID, model.EmployeePatch{Department: ptr("Sales")})
	require.NoError(t, err)

	got, err := e.client.Employee(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sales", got.Department)

	found, err := e.client.SearchEmployees(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int32(2), e.employees.gets.Load())
	assert.Equal(t, int32(2), e.employees.lists.Load())

	// поиск фильтрует закэшированный список
	none, err := e.client.SearchEmployees(ctx, "ops")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, int32(2), e.employees.lists.Load())
}

func TestClient_DeleteEmployeeInvalidatesTasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ann, err := e.client.CreateEmployee(ctx, model.EmployeeFields{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = e.client.CreateTask(ctx, model.TaskFields{Title: "owned", AssigneeID: ann.ID})
	require.NoError(t, err)

	owned, err := e.client.TasksByAssignee(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	require.NoError(t, e.client.DeleteEmployee(ctx, ann.ID))

	owned, err = e.client.TasksByAssignee(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	got, err := e.client.Employee(ctx, ann.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_MissingRecordIsCachedAsNil(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := e.client.Task(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, int32(1), e.tasks.gets.Load())
}

func TestFilterEmployees(t *testing.T) {
	staff := []model.Employee{
		{ID: "1", Name: "Sarah Johnson", Email: "sarah@company.com", Department: "Engineering"},
		{ID: "2", Name: "Michael Chen", Email: "michael@company.com", Department: "Design"},
	}

	assert.Len(t, FilterEmployees(staff, ""), 2)
	assert.Equal(t, "2", FilterEmployees(staff, "DESIGN")[0].ID)
	assert.Empty(t, FilterEmployees(staff, "finance"))
	assert.NotNil(t, FilterEmployees(nil, "x"))
}

func ptr[T any](v T) *T { return &v }
