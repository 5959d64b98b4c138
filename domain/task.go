package domain

import (
	"strings"
	"time"
)

// UnknownAssignee is cached when a task's assignee cannot be resolved.
const UnknownAssignee = "Unknown"

// TaskStatus is not a state machine: any status may be written at any time.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities low < medium < high; unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Task represents an assignable unit of work.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      Date       `json:"dueDate"`
	AssigneeID   string     `json:"assigneeId"`
	AssigneeName string     `json:"assigneeName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the due date has passed while the task is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && !t.IsCompleted() && t.DueDate.Before(now)
}

// TaskInput carries the caller-supplied fields of a new task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     Date       `json:"dueDate"`
	AssigneeID  string     `json:"assigneeId"`
}

// TaskPatch lists the mutable task fields; nil means unchanged.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	DueDate     *Date       `json:"dueDate,omitempty"`
	AssigneeID  *string     `json:"assigneeId,omitempty"`
}

// Apply merges the patch into t. AssigneeName is the caller's concern.
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
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
}

// TaskFilter is a partial predicate over tasks; empty fields are ignored.
type TaskFilter struct {
	Search     string     `json:"search,omitempty"`
	Status     TaskStatus `json:"status,omitempty"`
	Priority   Priority   `json:"priority,omitempty"`
	AssigneeID string     `json:"assigneeId,omitempty"`
}

// Matches reports whether t satisfies every non-empty predicate in f.
func (f TaskFilter) Matches(t Task) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
		return false
	}
	return true
}

// SortField names a sortable task attribute.
type SortField string

const (
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "createdAt"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec orders task listings. The zero value sorts by due date ascending.
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort is the ordering used when the caller does not pick one.
var DefaultSort = SortSpec{Field: SortByDueDate, Direction: SortAsc}

// Normalize fills the zero-value defaults.
func (s SortSpec) Normalize() SortSpec {
	if s.Field == "" {
		s.Field = DefaultSort.Field
	}
	if s.Direction != SortDesc {
		s.Direction = SortAsc
	}
	return s
}
