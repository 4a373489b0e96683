// Package seed loads employee and task fixtures into a store at start-up.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BuzzLyutic/team-dashboard-api/internal/model"
	"github.com/BuzzLyutic/team-dashboard-api/internal/repo"
)

//go:embed default.yaml
var defaultFixtures []byte

type File struct {
	Employees []model.Employee `yaml:"employees"`
	Tasks     []model.Task     `yaml:"tasks"`
}

// Default returns the built-in demo data set.
func Default() (File, error) {
	return Parse(defaultFixtures)
}

func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to unmarshal seed: %w", err)
	}
	if err := f.normalize(); err != nil {
		return File{}, err
	}
	return f, nil
}

// normalize fills the same defaults the services apply and rejects records
// the services would refuse.
func (f *File) normalize() error {
	seen := make(map[string]bool)
	for i := range f.Employees {
		e := &f.Employees[i]
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("seed employee #%d: id and name are required", i+1)
		}
		if seen["e:"+e.ID] {
			return fmt.Errorf("seed employee %s: duplicate id", e.ID)
		}
		seen["e:"+e.ID] = true
		if e.Email != "" {
			email := "m:" + strings.ToLower(e.Email)
			if seen[email] {
				return fmt.Errorf("seed employee %s: duplicate email %q", e.ID, e.Email)
			}
			seen[email] = true
		}
		e.JoinedAt = normalizeTime(e.JoinedAt)
	}

	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.ID == "" || strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("seed task #%d: id and title are required", i+1)
		}
		if seen["t:"+t.ID] {
			return fmt.Errorf("seed task %s: duplicate id", t.ID)
		}
		seen["t:"+t.ID] = true

		if t.Status == "" {
			t.Status = model.StatusPending
		}
		if t.Priority == "" {
			t.Priority = model.PriorityMedium
		}
		if !t.Status.Valid() || !t.Priority.Valid() {
			return fmt.Errorf("seed task %s: bad status %q or priority %q", t.ID, t.Status, t.Priority)
		}

		t.DueDate = normalizeTime(t.DueDate)
		t.CreatedAt = normalizeTime(t.CreatedAt)
		t.UpdatedAt = normalizeTime(t.UpdatedAt)
		if t.UpdatedAt.Before(t.CreatedAt) {
			t.UpdatedAt = t.CreatedAt
		}
	}
	return nil
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Apply writes f into the stores in file order.
func Apply(ctx context.Context, tasks repo.TaskSeeder, employees repo.EmployeeSeeder, f File) error {
	if err := employees.SeedEmployees(ctx, f.Employees); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}
	if err := tasks.SeedTasks(ctx, f.Tasks); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	return nil
}
