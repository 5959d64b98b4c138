package domain

import (
	"strings"
	"time"
)

// DefaultPassword is assigned to new employees and restored by password resets.
const DefaultPassword = "password123"

// Employee is a login-capable staff member managed by the directory.
type Employee struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Position        string     `json:"position"`
	Department      string     `json:"department"`
	Username        string     `json:"username"`
	DefaultPassword string     `json:"defaultPassword"`
	IsActive        bool       `json:"isActive"`
	JoinedDate      Date       `json:"joinedDate"`
	LastLogin       *time.Time `json:"lastLogin"`
	Skills          []string   `json:"skills"`
}

// Clone returns a copy that shares no mutable state with e.
func (e Employee) Clone() Employee {
	out := e
	out.Skills = append([]string(nil), e.Skills...)
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if e.LastLogin != nil {
		at := *e.LastLogin
		out.LastLogin = &at
	}
	return out
}

// HasSkill reports whether the employee lists skill exactly.
func (e Employee) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// EmployeeInput carries the caller-supplied fields of a new employee.
type EmployeeInput struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Position   string   `json:"position"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
}

// EmployeePatch lists the mutable employee fields; nil means unchanged.
type EmployeePatch struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Department *string   `json:"department,omitempty"`
	Skills     *[]string `json:"skills,omitempty"`
	IsActive   *bool     `json:"isActive,omitempty"`
}

// Apply merges the patch into e. ID and username are never touched.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.Skills != nil {
		e.Skills = NormalizeSkills(*p.Skills)
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
}

// EmployeeStatus narrows employee listings by activity.
type EmployeeStatus string

const (
	EmployeeStatusAll      EmployeeStatus = "all"
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// EmployeeFilter is a partial predicate over employees. Skills must all be present.
type EmployeeFilter struct {
	Search     string         `json:"search,omitempty"`
	Status     EmployeeStatus `json:"status,omitempty"`
	Department string         `json:"department,omitempty"`
	Skills     []string       `json:"skills,omitempty"`
}

// Matches reports whether e satisfies every predicate in f.
func (f EmployeeFilter) Matches(e Employee) bool {
	if term := strings.ToLower(f.Search); term != "" {
		hit := strings.Contains(strings.ToLower(e.Name), term) ||
			strings.Contains(strings.ToLower(e.Email), term) ||
			strings.Contains(strings.ToLower(e.Position), term) ||
			strings.Contains(strings.ToLower(e.Department), term)
		for _, s := range e.Skills {
			if hit {
				break
			}
			hit = strings.Contains(strings.ToLower(s), term)
		}
		if !hit {
			return false
		}
	}
	switch f.Status {
	case EmployeeStatusActive:
		if !e.IsActive {
			return false
		}
	case EmployeeStatusInactive:
		if e.IsActive {
			return false
		}
	}
	if f.Department != "" && f.Department != "all" && e.Department != f.Department {
		return false
	}
	for _, skill := range f.Skills {
		if !e.HasSkill(skill) {
			return false
		}
	}
	return true
}

// NormalizeSkills trims entries, drops empties and keeps the first occurrence of duplicates.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// PasswordReset is returned to the manager after a reset so credentials can be handed over.
type PasswordReset struct {
	Username    string `json:"username"`
	NewPassword string `json:"password"`
}
