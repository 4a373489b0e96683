package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
	"github.com/BuzzLyutic/team-dashboard-api/internal/testutil"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTask(id, assignee string, status model.Status, offset int) model.Task {
	at := base.Add(time.Duration(offset) * time.Minute)
	return model.Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "description of " + id,
		Status:      status,
		Priority:    model.PriorityMedium,
		AssigneeID:  assignee,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestTaskRepo_Postgres(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()
	testutil.TruncateTables(t, pool)

	r := repo.NewTaskRepo(pool)
	ctx := context.Background()

	due := base.Add(72 * time.Hour)
	first := newTask("t1", "e1", model.StatusPending, 0)
	first.DueDate = due
	_, err := r.Create(ctx, first)
	require.NoError(t, err)
	_, err = r.Create(ctx, newTask("t2", "", model.StatusCompleted, 1))
	require.NoError(t, err)

	t.Run("get round trips optional fields", func(t *testing.T) {
		got, err := r.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "e1", got.AssigneeID)
		assert.True(t, due.Equal(got.DueDate))
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

		got, err = r.Get(ctx, "t2")
		require.NoError(t, err)
		assert.Empty(t, got.AssigneeID)
		assert.True(t, got.DueDate.IsZero())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := r.Get(ctx, "nope")
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		_, err := r.Create(ctx, newTask("t1", "", model.StatusPending, 5))
		assert.ErrorIs(t, err, repo.ErrorConflict)
	})

	t.Run("list newest first with filters", func(t *testing.T) {
		all, err := r.List(ctx, model.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "t2", all[0].ID)
		assert.Equal(t, "t1", all[1].ID)

		completed := model.StatusCompleted
		done, err := r.List(ctx, model.TaskFilter{Status: &completed})
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, "t2", done[0].ID)

		found, err := r.List(ctx, model.TaskFilter{Search: "DESCRIPTION OF T1"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "t1", found[0].ID)

		unassigned := ""
		free, err := r.List(ctx, model.TaskFilter{AssigneeID: &unassigned})
		require.NoError(t, err)
		require.Len(t, free, 1)
		assert.Equal(t, "t2", free[0].ID)
	})

	t.Run("update applies fn atomically", func(t *testing.T) {
		updated, err := r.Update(ctx, "t1", func(task *model.Task) error {
			task.Status = model.StatusInProgress
			task.UpdatedAt = task.UpdatedAt.Add(time.Hour)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, updated.Status)

		_, err = r.Update(ctx, "nope", func(*model.Task) error { return nil })
		assert.ErrorIs(t, err, repo.ErrorNotFound)

		boom := fmt.Errorf("rejected")
		_, err = r.Update(ctx, "t1", func(*model.Task) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := r.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.TaskStats{Total: 2, Completed: 1, InProgress: 1}, stats)
	})

	t.Run("clear assignee moves updated_at forward", func(t *testing.T) {
		before, err := r.Get(ctx, "t1")
		require.NoError(t, err)

		n, err := r.ClearAssignee(ctx, "e1", base)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		after, err := r.Get(ctx, "t1")
		require.NoError(t, err)
		assert.Empty(t, after.AssigneeID)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("delete reports existence", func(t *testing.T) {
		ok, err := r.Delete(ctx, "t2")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Delete(ctx, "t2")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTaskRepo_PostgresSeedOrder(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()
	testutil.TruncateTables(t, pool)

	r := repo.NewTaskRepo(pool)
	ctx := context.Background()

	seed := []model.Task{
		newTask("s1", "", model.StatusPending, 3),
		newTask("s2", "", model.StatusPending, 2),
		newTask("s3", "", model.StatusPending, 1),
	}
	require.NoError(t, r.SeedTasks(ctx, seed))
	require.NoError(t, r.SeedTasks(ctx, seed))

	listed, err := r.List(ctx, model.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i := range seed {
		assert.Equal(t, seed[i].ID, listed[i].ID)
	}
}

func TestTaskRepo_PostgresConcurrentUpdates(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()
	testutil.TruncateTables(t, pool)

	r := repo.NewTaskRepo(pool)
	ctx := context.Background()

	_, err := r.Create(ctx, newTask("c1", "", model.StatusPending, 0))
	require.NoError(t, err)

	const goroutines = 10
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(ctx, "c1", func(task *model.Task) error {
				task.Description += "x"
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "description of c1"+"xxxxxxxxxx", got.Description)
}

func TestEmployeeRepo_Postgres(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()
	testutil.TruncateTables(t, pool)

	r := repo.NewEmployeeRepo(pool)
	ctx := context.Background()

	ann := model.Employee{ID: "e1", Name: "Ann", Email: "ann@example.com", Department: "Ops", Position: "Lead", JoinedAt: base}
	bob := model.Employee{ID: "e2", Name: "Bob", Email: "bob@example.com", Avatar: "https://example.com/bob.png", JoinedAt: base}

	_, err := r.Create(ctx, ann)
	require.NoError(t, err)
	_, err = r.Create(ctx, bob)
	require.NoError(t, err)

	_, err = r.Create(ctx, model.Employee{ID: "e3", Name: "Ann 2", Email: "ANN@example.com", JoinedAt: base})
	assert.ErrorIs(t, err, repo.ErrorConflict)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	assert.Equal(t, "https://example.com/bob.png", list[0].Avatar)
	assert.Empty(t, list[1].Avatar)

	_, err = r.Update(ctx, "e2", func(e *model.Employee) error {
		e.Email = "Ann@Example.com"
		return nil
	})
	assert.ErrorIs(t, err, repo.ErrorConflict)

	updated, err := r.Update(ctx, "e2", func(e *model.Employee) error {
		e.Position = "Manager"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Manager", updated.Position)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrorNotFound)

	ok, _, err := r.Delete(ctx, "e1", base)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _, err = r.Delete(ctx, "e1", base)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmployeeRepo_PostgresDeleteUnassignsTasks(t *testing.T) {
	pool, cleanup := testutil.SetupTestDB(t)
	defer cleanup()
	testutil.TruncateTables(t, pool)

	employees := repo.NewEmployeeRepo(pool)
	tasks := repo.NewTaskRepo(pool)
	ctx := context.Background()

	_, err := employees.Create(ctx, model.Employee{ID: "e1", Name: "Ann", Email: "ann@example.com", JoinedAt: base})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, newTask("t1", "e1", model.StatusPending, 0))
	require.NoError(t, err)
	_, err = tasks.Create(ctx, newTask("t2", "e9", model.StatusPending, 1))
	require.NoError(t, err)

	deleted, n, err := employees.Delete(ctx, "e1", base)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, n)

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, got.AssigneeID)
	assert.True(t, got.UpdatedAt.After(base))

	// удаление отсутствующего сотрудника не трогает задачи
	deleted, n, err = employees.Delete(ctx, "e9", base)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, n)
	got, err = tasks.Get(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "e9", got.AssigneeID)
}
