package model

import (
	"strings"
	"time"
)

type Employee struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Email      string    `json:"email" yaml:"email"`
	Department string    `json:"department" yaml:"department"`
	Position   string    `json:"position" yaml:"position"`
	Avatar     string    `json:"avatar,omitempty" yaml:"avatar"`
	JoinedAt   time.Time `json:"joinedAt" yaml:"joined_at"`
}

type EmployeeFields struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Avatar     string    `json:"avatar,omitempty"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type EmployeePatch struct {
	Name       *string    `json:"name,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Department *string    `json:"department,omitempty"`
	Position   *string    `json:"position,omitempty"`
	Avatar     *string    `json:"avatar,omitempty"`
	JoinedAt   *time.Time `json:"joinedAt,omitempty"`
}

func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.Avatar != nil {
		e.Avatar = *p.Avatar
	}
	if p.JoinedAt != nil {
		e.JoinedAt = *p.JoinedAt
	}
}

// MatchesSearch is the dashboard's employee search: a case-insensitive
// substring of name, email or department.
func (e Employee) MatchesSearch(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Email), q) ||
		strings.Contains(strings.ToLower(e.Department), q)
}
