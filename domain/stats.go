package domain

// DashboardStats aggregates a (possibly scoped) task collection.
type DashboardStats struct {
	TotalTasks      int              `json:"totalTasks"`
	CompletedTasks  int              `json:"completedTasks"`
	PendingTasks    int              `json:"pendingTasks"`
	InProgressTasks int              `json:"inProgressTasks"`
	OverdueTasks    int              `json:"overdueTasks"`
	TasksByPriority map[Priority]int `json:"tasksByPriority"`
	TasksByAssignee map[string]int   `json:"tasksByAssignee"`
	CompletionRate  float64          `json:"completionRate"`
}

// EmployeeStats aggregates the directory.
type EmployeeStats struct {
	TotalEmployees    int            `json:"totalEmployees"`
	ActiveEmployees   int            `json:"activeEmployees"`
	InactiveEmployees int            `json:"inactiveEmployees"`
	DepartmentStats   map[string]int `json:"departmentStats"`
	SkillsStats       map[string]int `json:"skillsStats"`
}
