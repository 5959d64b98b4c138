package transport

import (
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskflow/domain"
)

// TaskQuery reads the task filter and ordering from the query string:
// search, status, priority, assigneeId, sort and direction.
func TaskQuery(args *fasthttp.Args) (domain.TaskFilter, domain.SortSpec) {
	filter := domain.TaskFilter{
		Search:     string(args.Peek("search")),
		Status:     domain.TaskStatus(args.Peek("status")),
		Priority:   domain.Priority(args.Peek("priority")),
		AssigneeID: string(args.Peek("assigneeId")),
	}
	sort := domain.SortSpec{
		Field:     domain.SortField(args.Peek("sort")),
		Direction: domain.SortDirection(args.Peek("direction")),
	}
	return filter, sort
}

// EmployeeQuery reads the employee filter from the query string. Skills may
// repeat or be comma separated.
func EmployeeQuery(args *fasthttp.Args) domain.EmployeeFilter {
	filter := domain.EmployeeFilter{
		Search:     string(args.Peek("search")),
		Status:     domain.EmployeeStatus(args.Peek("status")),
		Department: string(args.Peek("department")),
	}
	for _, raw := range args.PeekMulti("skills") {
		for _, skill := range strings.Split(string(raw), ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				filter.Skills = append(filter.Skills, skill)
			}
		}
	}
	return filter
}

// SkillsResponse lists the skill catalogue next to what is in use.
type SkillsResponse struct {
	Available   []string `json:"available"`
	Used        []string `json:"used"`
	Departments []string `json:"departments"`
}
