package directory

import (
	"context"
	"sort"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
)

// Employees returns every employee in insertion order.
func (uc *UseCase) Employees(ctx context.Context) ([]domain.Employee, error) {
	return uc.ListEmployees(ctx, domain.EmployeeFilter{})
}

// ListEmployees returns the employees matching filter in insertion order.
func (uc *UseCase) ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]domain.Employee, 0, len(uc.employees))
	for _, e := range uc.employees {
		if filter.Matches(e) {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// ActiveEmployees lists the employees allowed to log in.
func (uc *UseCase) ActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	return uc.ListEmployees(ctx, domain.EmployeeFilter{Status: domain.EmployeeStatusActive})
}

func (uc *UseCase) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	idx := uc.employeeIndex(id)
	if idx < 0 {
		return nil, domain.ErrEmployeeNotFound
	}
	out := uc.employees[idx].Clone()
	return &out, nil
}

// Stats counts employees by activity, department and skill.
func (uc *UseCase) Stats(ctx context.Context) domain.EmployeeStats {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	stats := domain.EmployeeStats{
		TotalEmployees:  len(uc.employees),
		DepartmentStats: make(map[string]int),
		SkillsStats:     make(map[string]int),
	}
	for _, e := range uc.employees {
		if e.IsActive {
			stats.ActiveEmployees++
		}
		stats.DepartmentStats[e.Department]++
		for _, skill := range e.Skills {
			stats.SkillsStats[skill]++
		}
	}
	stats.InactiveEmployees = stats.TotalEmployees - stats.ActiveEmployees
	return stats
}

// AvailableSkills is the fixed skill catalogue.
func (uc *UseCase) AvailableSkills() []string {
	return seed.AvailableSkills()
}

// UsedSkills lists the distinct skills held by at least one employee, sorted.
func (uc *UseCase) UsedSkills(ctx context.Context) []string {
	return sortedKeys(uc.Stats(ctx).SkillsStats)
}

// Departments lists the distinct departments, sorted.
func (uc *UseCase) Departments(ctx context.Context) []string {
	return sortedKeys(uc.Stats(ctx).DepartmentStats)
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
