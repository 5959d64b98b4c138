package dashboard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/taskflow/domain"
)

// LoginForm is the payload of a login command.
type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TaskForm carries a complete task as entered by the user.
type TaskForm struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status" validate:"required,oneof=pending in-progress completed"`
	Priority    domain.Priority   `json:"priority" validate:"required,oneof=low medium high"`
	DueDate     string            `json:"dueDate" validate:"required,datetime=2006-01-02"`
	AssigneeID  string            `json:"assigneeId" validate:"required"`
}

func taskFormOf(t domain.Task) TaskForm {
	due := ""
	if !t.DueDate.IsZero() {
		due = t.DueDate.String()
	}
	return TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     due,
		AssigneeID:  t.AssigneeID,
	}
}

// EmployeeForm carries the editable employee fields.
type EmployeeForm struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Position   string   `json:"position" validate:"required"`
	Department string   `json:"department" validate:"required"`
	Skills     []string `json:"skills"`
}

func employeeFormOf(e domain.Employee) EmployeeForm {
	return EmployeeForm{
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		Skills:     e.Skills,
	}
}

// PasswordForm is the change-password dialog.
type PasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// StatusForm changes only the status of a task.
type StatusForm struct {
	Status domain.TaskStatus `json:"status" validate:"required,oneof=pending in-progress completed"`
}

type filterForm struct {
	Status   domain.TaskStatus `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority domain.Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type sortForm struct {
	Field     domain.SortField     `json:"field" validate:"omitempty,oneof=dueDate priority status title createdAt"`
	Direction domain.SortDirection `json:"direction" validate:"omitempty,oneof=asc desc"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// check validates form and reports every failing field as a validation error.
func check(v *validator.Validate, form interface{}) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return domain.WrapError(domain.ErrCodeInternal, "validate input", err)
	}
	fields := make(map[string]string, len(failures))
	for _, fe := range failures {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = describe(fe)
		}
	}
	return domain.ValidationError(fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "nefield":
		return "New password must be different from current password"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
