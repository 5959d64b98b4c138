package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskflow/api/handler"
	"github.com/fastygo/taskflow/internal/middleware"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Employee *apiHandler.EmployeeHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	manager := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return authMiddleware(middleware.RequireManager(h))
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.GET("/api/v1/auth/me", authMiddleware(handlers.Auth.Me))
	r.PUT("/api/v1/auth/password", authMiddleware(handlers.Auth.ChangePassword))

	// Dashboard
	r.GET("/api/v1/dashboard", authMiddleware(handlers.Task.Dashboard))
	r.GET("/api/v1/dashboard/stats", authMiddleware(handlers.Task.Stats))
	r.PUT("/api/v1/dashboard/filter", authMiddleware(handlers.Task.SetFilter))
	r.PUT("/api/v1/dashboard/sort", authMiddleware(handlers.Task.SetSort))

	// Tasks
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.PATCH("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.ChangeStatus))
	r.DELETE("/api/v1/tasks/{id}", manager(handlers.Task.DeleteTask))

	// Directory
	r.GET("/api/v1/directory/active", authMiddleware(handlers.Employee.GetActive))
	r.GET("/api/v1/directory/stats", manager(handlers.Employee.Stats))
	r.GET("/api/v1/directory/skills", manager(handlers.Employee.Skills))

	// Employees
	r.GET("/api/v1/employees", manager(handlers.Employee.GetEmployees))
	r.POST("/api/v1/employees", manager(handlers.Employee.CreateEmployee))
	r.GET("/api/v1/employees/{id}", manager(handlers.Employee.GetEmployee))
	r.PUT("/api/v1/employees/{id}", manager(handlers.Employee.UpdateEmployee))
	r.DELETE("/api/v1/employees/{id}", manager(handlers.Employee.DeleteEmployee))
	r.POST("/api/v1/employees/{id}/toggle", manager(handlers.Employee.ToggleStatus))
	r.POST("/api/v1/employees/{id}/reset-password", manager(handlers.Employee.ResetPassword))

	return r
}
