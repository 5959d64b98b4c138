package task

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
)

// SortTasks orders tasks in place. The sort is stable in both directions:
// desc inverts the comparison, not the result, so equal tasks keep input order.
// An unknown field leaves the order untouched.
func SortTasks(tasks []domain.Task, spec domain.SortSpec) {
	spec = spec.Normalize()
	cmp := comparator(spec.Field)
	if cmp == nil {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if spec.Direction == domain.SortDesc {
			return cmp(tasks[j], tasks[i]) < 0
		}
		return cmp(tasks[i], tasks[j]) < 0
	})
}

func comparator(field domain.SortField) func(a, b domain.Task) int {
	switch field {
	case domain.SortByPriority:
		return func(a, b domain.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case domain.SortByDueDate:
		return func(a, b domain.Task) int { return a.DueDate.Compare(b.DueDate.Time) }
	case domain.SortByCreatedAt:
		return func(a, b domain.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortByTitle:
		return func(a, b domain.Task) int { return strings.Compare(a.Title, b.Title) }
	case domain.SortByStatus:
		return func(a, b domain.Task) int { return strings.Compare(string(a.Status), string(b.Status)) }
	default:
		return nil
	}
}

// DashboardStats aggregates all tasks, or only those assigned to scopeUserID when it is set.
func (uc *UseCase) DashboardStats(ctx context.Context, scopeUserID string) (*domain.DashboardStats, error) {
	tasks, err := uc.matching(ctx, domain.TaskFilter{AssigneeID: scopeUserID})
	if err != nil {
		return nil, err
	}
	stats := Aggregate(tasks, uc.clock.Now())
	return &stats, nil
}

// Aggregate computes dashboard statistics over tasks as of now.
func Aggregate(tasks []domain.Task, now time.Time) domain.DashboardStats {
	stats := domain.DashboardStats{
		TotalTasks: len(tasks),
		TasksByPriority: map[domain.Priority]int{
			domain.PriorityLow:    0,
			domain.PriorityMedium: 0,
			domain.PriorityHigh:   0,
		},
		TasksByAssignee: make(map[string]int),
	}
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case domain.StatusCompleted:
			stats.CompletedTasks++
		case domain.StatusPending:
			stats.PendingTasks++
		case domain.StatusInProgress:
			stats.InProgressTasks++
		}
		if t.IsOverdue(now) {
			stats.OverdueTasks++
		}
		stats.TasksByPriority[t.Priority]++
		stats.TasksByAssignee[t.AssigneeName]++
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	return stats
}
