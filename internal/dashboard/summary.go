package dashboard

import (
	"context"
	"errors"
	"math"

	"github.com/sourcegraph/conc"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
)

// Summary собирает данные главной страницы. Сотрудники, задачи и статистика
// читаются параллельно через кэш.
func (c *Client) Summary(ctx context.Context) (model.DashboardStats, error) {
	var (
		wg        conc.WaitGroup
		employees []model.Employee
		tasks     []model.Task
		stats     model.TaskStats

		employeesErr, tasksErr, statsErr error
	)
	wg.Go(func() { employees, employeesErr = c.Employees(ctx) })
	wg.Go(func() { tasks, tasksErr = c.Tasks(ctx, model.TaskFilter{}) })
	wg.Go(func() { stats, statsErr = c.TaskStats(ctx) })
	wg.Wait()

	if err := errors.Join(employeesErr, tasksErr, statsErr); err != nil {
		return model.DashboardStats{}, err
	}
	return Summarize(employees, tasks, stats), nil
}

func Summarize(employees []model.Employee, tasks []model.Task, stats model.TaskStats) model.DashboardStats {
	out := model.DashboardStats{
		TotalEmployees:    len(employees),
		TotalTasks:        stats.Total,
		CompletedTasks:    stats.Completed,
		PendingTasks:      stats.Pending,
		InProgressTasks:   stats.InProgress,
		CompletedPercent:  percent(stats.Completed, stats.Total),
		InProgressPercent: percent(stats.InProgress, stats.Total),
		PendingPercent:    percent(stats.Pending, stats.Total),
		Workload:          make([]model.Workload, 0, len(employees)),
	}

	type counts struct{ all, done int }
	byAssignee := make(map[string]counts, len(employees))
	for _, t := range tasks {
		if t.AssigneeID == "" {
			continue
		}
		n := byAssignee[t.AssigneeID]
		n.all++
		if t.Status == model.StatusCompleted {
			n.done++
		}
		byAssignee[t.AssigneeID] = n
	}

	for _, e := range employees {
		n := byAssignee[e.ID]
		out.Workload = append(out.Workload, model.Workload{
			EmployeeID:     e.ID,
			Name:           e.Name,
			TaskCount:      n.all,
			CompletedCount: n.done,
		})
	}
	return out
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
