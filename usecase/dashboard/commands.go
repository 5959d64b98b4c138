package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/auth"
)

func (uc *UseCase) Login(ctx context.Context, form LoginForm) (*auth.LoginResult, error) {
	if err := check(uc.validate, form); err != nil {
		return nil, err
	}
	return uc.sessions.Login(ctx, form.Username, form.Password)
}

func (uc *UseCase) Logout(ctx context.Context) error {
	return uc.sessions.Logout(ctx)
}

// ChangePassword validates the dialog and changes the session user's password.
func (uc *UseCase) ChangePassword(ctx context.Context, form PasswordForm) error {
	if err := check(uc.validate, form); err != nil {
		return err
	}
	return uc.sessions.ChangePassword(ctx, form.CurrentPassword, form.NewPassword)
}

// CreateTask stores a new task. Employees can only assign tasks to themselves.
func (uc *UseCase) CreateTask(ctx context.Context, form TaskForm) (*domain.Task, error) {
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsManager() {
		form.AssigneeID = user.ID
	}
	if err := check(uc.validate, form); err != nil {
		return nil, err
	}
	if err := uc.checkAssignee(ctx, form.AssigneeID); err != nil {
		return nil, err
	}
	due, err := domain.ParseDate(form.DueDate)
	if err != nil {
		return nil, domain.ValidationError(map[string]string{"dueDate": err.Error()})
	}
	return uc.tasks.Create(ctx, domain.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		Status:      form.Status,
		Priority:    form.Priority,
		DueDate:     due,
		AssigneeID:  form.AssigneeID,
	})
}

// GetTask returns a task visible to the session user. Employees only see their own.
func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	t, err := uc.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsManager() && t.AssigneeID != user.ID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

// UpdateTask validates the task as it would look after patch, then applies it.
// Ownership and the merged validation run against the stored task inside the
// store's write, so a concurrent reassignment cannot slip between check and write.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsManager() && patch.AssigneeID != nil && *patch.AssigneeID != user.ID {
		return nil, domain.ErrForbidden
	}
	current, err := uc.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.AssigneeID != nil && *patch.AssigneeID != current.AssigneeID {
		if err := uc.checkAssignee(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
	}

	return uc.tasks.UpdateWhen(ctx, id, patch, func(stored domain.Task) error {
		if !user.IsManager() && stored.AssigneeID != user.ID {
			return domain.ErrForbidden
		}
		merged := stored
		patch.Apply(&merged)
		return check(uc.validate, taskFormOf(merged))
	})
}

// ChangeTaskStatus moves a task to any status; no transition order is enforced.
func (uc *UseCase) ChangeTaskStatus(ctx context.Context, id string, form StatusForm) (*domain.Task, error) {
	if err := check(uc.validate, form); err != nil {
		return nil, err
	}
	status := form.Status
	return uc.UpdateTask(ctx, id, domain.TaskPatch{Status: &status})
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	if _, err := uc.requireManager(ctx); err != nil {
		return err
	}
	return uc.tasks.Delete(ctx, id)
}

func (uc *UseCase) CreateEmployee(ctx context.Context, form EmployeeForm) (*domain.Employee, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return nil, err
	}
	if err := check(uc.validate, form); err != nil {
		return nil, err
	}
	return uc.directory.CreateEmployee(ctx, domain.EmployeeInput{
		Name:       form.Name,
		Email:      form.Email,
		Position:   form.Position,
		Department: form.Department,
		Skills:     form.Skills,
	})
}

// UpdateEmployee validates the employee as it would look after patch, then applies it.
func (uc *UseCase) UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return nil, err
	}
	current, err := uc.directory.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := current.Clone()
	patch.Apply(&merged)
	if err := check(uc.validate, employeeFormOf(merged)); err != nil {
		return nil, err
	}
	return uc.directory.UpdateEmployee(ctx, id, patch)
}

func (uc *UseCase) ToggleEmployeeStatus(ctx context.Context, id string) (*domain.Employee, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return nil, err
	}
	return uc.directory.ToggleEmployeeStatus(ctx, id)
}

// DeleteEmployee removes the employee. Their tasks keep the stale assignee.
func (uc *UseCase) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := uc.requireManager(ctx); err != nil {
		return err
	}
	if err := uc.directory.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("employee removed from dashboard", zap.String("employee_id", id))
	return nil
}

func (uc *UseCase) ResetEmployeePassword(ctx context.Context, id string) (*domain.PasswordReset, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return nil, err
	}
	return uc.directory.ResetPassword(ctx, id)
}

func (uc *UseCase) checkAssignee(ctx context.Context, id string) error {
	if _, err := uc.directory.GetEmployee(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.ValidationError(map[string]string{"assigneeId": "assignee is not a known employee"})
		}
		return err
	}
	return nil
}
