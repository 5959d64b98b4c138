// Package seed holds the fixtures a fresh installation starts from.
package seed

import (
	"time"

	"github.com/fastygo/taskflow/domain"
)

// Directory is the initial content of the directory store.
type Directory struct {
	Employees   []domain.Employee
	Users       []domain.User
	Credentials map[string]string
}

// Account is a built-in, non-employee login.
type Account struct {
	User     domain.User
	Password string
}

// Clone returns a deep copy so stores never share fixture state.
func (d Directory) Clone() Directory {
	out := Directory{
		Employees:   make([]domain.Employee, 0, len(d.Employees)),
		Users:       append([]domain.User(nil), d.Users...),
		Credentials: make(map[string]string, len(d.Credentials)),
	}
	for _, e := range d.Employees {
		out.Employees = append(out.Employees, e.Clone())
	}
	for k, v := range d.Credentials {
		out.Credentials[k] = v
	}
	return out
}

// DefaultDirectory returns the stock manager and three employees.
func DefaultDirectory() Directory {
	return Directory{
		Employees: []domain.Employee{
			{
				ID: "2", Name: "Nidal", Email: "nidal@taskflow.com",
				Position: "Frontend Developer", Department: "Development",
				Username: "employee1", DefaultPassword: domain.DefaultPassword, IsActive: true,
				JoinedDate: domain.MustDate("2024-01-15"), LastLogin: at("2025-01-20T09:30:00Z"),
				Skills: []string{"React", "JavaScript", "CSS", "HTML", "TypeScript"},
			},
			{
				ID: "3", Name: "Wasim", Email: "wasim@taskflow.com",
				Position: "Backend Developer", Department: "Development",
				Username: "employee2", DefaultPassword: domain.DefaultPassword, IsActive: true,
				JoinedDate: domain.MustDate("2024-02-01"), LastLogin: at("2025-01-19T14:22:00Z"),
				Skills: []string{"Node.js", "Python", "MongoDB", "PostgreSQL", "API Development"},
			},
			{
				ID: "4", Name: "Sanin", Email: "sanin@taskflow.com",
				Position: "QA Engineer", Department: "Quality Assurance",
				Username: "employee3", DefaultPassword: domain.DefaultPassword, IsActive: false,
				JoinedDate: domain.MustDate("2024-03-10"), LastLogin: at("2025-01-10T11:15:00Z"),
				Skills: []string{"Testing", "Automation", "Selenium", "Quality Assurance", "Bug Tracking"},
			},
		},
		Users: []domain.User{
			{ID: "1", Username: "manager1", Role: domain.RoleManager, Name: "Irfan"},
			{ID: "2", Username: "employee1", Role: domain.RoleEmployee, Name: "Nidal"},
			{ID: "3", Username: "employee2", Role: domain.RoleEmployee, Name: "Wasim"},
			{ID: "4", Username: "employee3", Role: domain.RoleEmployee, Name: "Sanin"},
		},
		Credentials: map[string]string{
			"manager1":  domain.DefaultPassword,
			"employee1": domain.DefaultPassword,
			"employee2": domain.DefaultPassword,
			"employee3": domain.DefaultPassword,
		},
	}
}

// BuiltInAccounts are the logins that exist independently of the directory.
func BuiltInAccounts() []Account {
	return []Account{
		{
			User:     domain.User{ID: "1", Username: "manager1", Role: domain.RoleManager, Name: "Irfan"},
			Password: domain.DefaultPassword,
		},
	}
}

// Tasks is the collection written to an empty tasks slot.
func Tasks() []domain.Task {
	return []domain.Task{
		{
			ID: "1", Title: "Design Homepage Layout",
			Description: "Create wireframes and mockups for the new homepage design",
			Status:      domain.StatusInProgress, Priority: domain.PriorityHigh,
			DueDate:    domain.MustDate("2025-02-01"),
			AssigneeID: "2", AssigneeName: "Nidal",
			CreatedAt: *at("2025-01-15T10:00:00Z"), UpdatedAt: *at("2025-01-16T14:30:00Z"),
		},
		{
			ID: "2", Title: "API Documentation Update",
			Description: "Update the API documentation with latest endpoints",
			Status:      domain.StatusPending, Priority: domain.PriorityMedium,
			DueDate:    domain.MustDate("2025-01-28"),
			AssigneeID: "3", AssigneeName: "Wasim",
			CreatedAt: *at("2025-01-14T09:00:00Z"), UpdatedAt: *at("2025-01-14T09:00:00Z"),
		},
		{
			ID: "3", Title: "Database Migration Script",
			Description: "Create migration scripts for the new user roles table",
			Status:      domain.StatusCompleted, Priority: domain.PriorityHigh,
			DueDate:    domain.MustDate("2025-01-20"),
			AssigneeID: "4", AssigneeName: "Sanin",
			CreatedAt: *at("2025-01-12T11:00:00Z"), UpdatedAt: *at("2025-01-18T16:00:00Z"),
		},
		{
			ID: "4", Title: "User Testing Session",
			Description: "Conduct user testing for the new dashboard interface",
			Status:      domain.StatusPending, Priority: domain.PriorityMedium,
			DueDate:    domain.MustDate("2025-02-05"),
			AssigneeID: "2", AssigneeName: "Nidal",
			CreatedAt: *at("2025-01-16T13:00:00Z"), UpdatedAt: *at("2025-01-16T13:00:00Z"),
		},
		{
			ID: "5", Title: "Security Audit",
			Description: "Perform comprehensive security audit of the authentication system",
			Status:      domain.StatusInProgress, Priority: domain.PriorityHigh,
			DueDate:    domain.MustDate("2025-01-25"),
			AssigneeID: "3", AssigneeName: "Wasim",
			CreatedAt: *at("2025-01-13T15:00:00Z"), UpdatedAt: *at("2025-01-17T10:00:00Z"),
		},
		{
			ID: "6", Title: "Mobile App Testing",
			Description: "Test mobile responsiveness across different devices",
			Status:      domain.StatusCompleted, Priority: domain.PriorityLow,
			DueDate:    domain.MustDate("2025-01-22"),
			AssigneeID: "4", AssigneeName: "Sanin",
			CreatedAt: *at("2025-01-11T08:00:00Z"), UpdatedAt: *at("2025-01-19T12:00:00Z"),
		},
	}
}

// AvailableSkills is the catalogue offered when editing an employee.
func AvailableSkills() []string {
	return []string{
		"JavaScript", "TypeScript", "Python", "Java", "C#", "PHP", "Go", "Rust", "Swift", "Kotlin",
		"React", "Vue.js", "Angular", "HTML", "CSS", "SCSS", "Tailwind CSS", "Bootstrap",
		"Node.js", "Express.js", "Django", "Flask", "Spring Boot", "ASP.NET", "Laravel",
		"MongoDB", "PostgreSQL", "MySQL", "Redis", "SQLite", "Oracle", "SQL Server",
		"Docker", "Kubernetes", "AWS", "Azure", "GCP", "Jenkins", "Git", "CI/CD",
		"Testing", "Unit Testing", "Integration Testing", "Automation", "Selenium", "Jest", "Cypress",
		"API Development", "REST APIs", "GraphQL", "Microservices", "Quality Assurance", "Bug Tracking",
		"Project Management", "Agile", "Scrum", "UI/UX Design", "Mobile Development", "Machine Learning",
	}
}

func at(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}
