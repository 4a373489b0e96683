package model

import (
	"net/url"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	AssigneeID  string    `json:"assigneeId" yaml:"assignee_id"`
	DueDate     time.Time `json:"dueDate" yaml:"due_date"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

// TaskFields is the input of a create: everything except the id and the
// server-managed timestamps.
type TaskFields struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	AssigneeID  string    `json:"assigneeId"`
	DueDate     time.Time `json:"dueDate"`
}

// TaskPatch holds a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}

type TaskFilter struct {
	Status     *Status
	Priority   *Priority
	AssigneeID *string
	Search     string
}

// Match reports whether t satisfies every predicate set on f. The checks run
// in a fixed order: status, priority, assignee, free text.
func (f TaskFilter) Match(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && t.AssigneeID != *f.AssigneeID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Key renders the filter in a canonical form, used as a cache key.
// Values are query-escaped, so no field can spill into another.
func (f TaskFilter) Key() string {
	v := url.Values{}
	if f.Status != nil {
		v.Set("status", string(*f.Status))
	}
	if f.Priority != nil {
		v.Set("priority", string(*f.Priority))
	}
	if f.AssigneeID != nil {
		v.Set("assignee", *f.AssigneeID)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v.Encode()
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
}

func (s *TaskStats) Count(st Status) {
	s.Total++
	switch st {
	case StatusCompleted:
		s.Completed++
	case StatusPending:
		s.Pending++
	case StatusInProgress:
		s.InProgress++
	}
}
