// Package directory owns employees, their mirrored users and the credentials behind them.
//
// Every exported operation runs as one critical section, so the two directory
// invariants hold between any two calls:
//
//   - each employee has exactly one employee-role user with the same ID and
//     no employee-role user exists without its employee;
//   - each user has a credential and no credential outlives its user.
package directory

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
	"github.com/fastygo/taskflow/pkg/notify"
)

// Snapshot is a defensive copy of the directory for other components.
type Snapshot struct {
	Employees   []domain.Employee
	Users       []domain.User
	Credentials map[string]string
}

// Employee finds an employee by username.
func (s Snapshot) Employee(username string) (domain.Employee, bool) {
	for _, e := range s.Employees {
		if e.Username == username {
			return e, true
		}
	}
	return domain.Employee{}, false
}

// UseCase is the directory store.
type UseCase struct {
	clock  clock.Clock
	logger *zap.Logger
	bus    *notify.Bus

	mu          sync.Mutex
	employees   []domain.Employee
	users       []domain.User
	credentials map[string]string
}

// New builds a directory from fixtures. The fixtures are copied.
func New(fixtures seed.Directory, clk clock.Clock, logger *zap.Logger) *UseCase {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	data := fixtures.Clone()
	return &UseCase{
		clock:       clk,
		logger:      logger,
		bus:         notify.New(),
		employees:   data.Employees,
		users:       data.Users,
		credentials: data.Credentials,
	}
}

// Subscribe registers a change listener.
func (uc *UseCase) Subscribe(fn notify.Listener) func() {
	return uc.bus.Subscribe(fn)
}

// CreateEmployee registers a new employee together with its user and default credential.
// Field validation is the caller's concern.
func (uc *UseCase) CreateEmployee(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error) {
	uc.mu.Lock()
	id, err := uc.nextID()
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	username := uc.uniqueUsername(input.Name)

	employee := domain.Employee{
		ID:              id,
		Name:            input.Name,
		Email:           input.Email,
		Position:        input.Position,
		Department:      input.Department,
		Username:        username,
		DefaultPassword: domain.DefaultPassword,
		IsActive:        true,
		JoinedDate:      domain.NewDate(uc.clock.Now()),
		Skills:          domain.NormalizeSkills(input.Skills),
	}
	uc.employees = append(uc.employees, employee)
	uc.users = append(uc.users, domain.User{
		ID:       id,
		Username: username,
		Role:     domain.RoleEmployee,
		Name:     input.Name,
	})
	uc.credentials[username] = domain.DefaultPassword
	out := employee.Clone()
	uc.mu.Unlock()

	uc.logger.Info("employee created", zap.String("employee_id", id), zap.String("username", username))
	uc.bus.Notify()
	return &out, nil
}

// UpdateEmployee merges patch into the employee; a new name is mirrored to its user.
func (uc *UseCase) UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	uc.mu.Lock()
	idx := uc.employeeIndex(id)
	if idx < 0 {
		uc.mu.Unlock()
		return nil, domain.ErrEmployeeNotFound
	}
	patch.Apply(&uc.employees[idx])
	if patch.Name != nil {
		if u := uc.userIndex(id); u >= 0 {
			uc.users[u].Name = *patch.Name
		}
	}
	out := uc.employees[idx].Clone()
	uc.mu.Unlock()

	uc.logger.Info("employee updated", zap.String("employee_id", id))
	uc.bus.Notify()
	return &out, nil
}

// ToggleEmployeeStatus flips the activity gate used at login.
func (uc *UseCase) ToggleEmployeeStatus(ctx context.Context, id string) (*domain.Employee, error) {
	uc.mu.Lock()
	idx := uc.employeeIndex(id)
	if idx < 0 {
		uc.mu.Unlock()
		return nil, domain.ErrEmployeeNotFound
	}
	uc.employees[idx].IsActive = !uc.employees[idx].IsActive
	out := uc.employees[idx].Clone()
	uc.mu.Unlock()

	uc.logger.Info("employee status toggled", zap.String("employee_id", id), zap.Bool("active", out.IsActive))
	uc.bus.Notify()
	return &out, nil
}

// DeleteEmployee removes the employee, its user and its credential in one step.
// Tasks referencing the employee are left untouched.
func (uc *UseCase) DeleteEmployee(ctx context.Context, id string) error {
	uc.mu.Lock()
	idx := uc.employeeIndex(id)
	if idx < 0 {
		uc.mu.Unlock()
		return domain.ErrEmployeeNotFound
	}
	username := uc.employees[idx].Username
	uc.employees = append(uc.employees[:idx:idx], uc.employees[idx+1:]...)
	if u := uc.userIndex(id); u >= 0 {
		uc.users = append(uc.users[:u:u], uc.users[u+1:]...)
	}
	delete(uc.credentials, username)
	uc.mu.Unlock()

	uc.logger.Info("employee deleted", zap.String("employee_id", id), zap.String("username", username))
	uc.bus.Notify()
	return nil
}

// ResetPassword restores the default password and returns the credentials to hand over.
func (uc *UseCase) ResetPassword(ctx context.Context, id string) (*domain.PasswordReset, error) {
	uc.mu.Lock()
	idx := uc.employeeIndex(id)
	if idx < 0 {
		uc.mu.Unlock()
		return nil, domain.ErrEmployeeNotFound
	}
	employee := &uc.employees[idx]
	employee.DefaultPassword = domain.DefaultPassword
	uc.credentials[employee.Username] = domain.DefaultPassword
	reset := &domain.PasswordReset{Username: employee.Username, NewPassword: domain.DefaultPassword}
	uc.mu.Unlock()

	uc.logger.Info("employee password reset", zap.String("employee_id", id))
	uc.bus.Notify()
	return reset, nil
}

// ChangePassword replaces the credential of a known username. Password policy is the caller's concern.
func (uc *UseCase) ChangePassword(ctx context.Context, username, newPassword string) error {
	uc.mu.Lock()
	if _, ok := uc.credentials[username]; !ok {
		uc.mu.Unlock()
		return domain.ErrUsernameNotFound
	}
	uc.credentials[username] = newPassword
	for i := range uc.employees {
		if uc.employees[i].Username == username {
			uc.employees[i].DefaultPassword = newPassword
			break
		}
	}
	uc.mu.Unlock()

	uc.logger.Info("password changed", zap.String("username", username))
	uc.bus.Notify()
	return nil
}

// RecordLogin stamps the employee's last login.
func (uc *UseCase) RecordLogin(ctx context.Context, username string, at time.Time) error {
	uc.mu.Lock()
	found := false
	for i := range uc.employees {
		if uc.employees[i].Username == username {
			stamp := at
			uc.employees[i].LastLogin = &stamp
			found = true
			break
		}
	}
	uc.mu.Unlock()

	if !found {
		return domain.ErrUsernameNotFound
	}
	uc.bus.Notify()
	return nil
}

// Snapshot returns copies of all three collections.
func (uc *UseCase) Snapshot(ctx context.Context) Snapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := Snapshot{
		Employees:   make([]domain.Employee, 0, len(uc.employees)),
		Users:       append([]domain.User(nil), uc.users...),
		Credentials: make(map[string]string, len(uc.credentials)),
	}
	for _, e := range uc.employees {
		snap.Employees = append(snap.Employees, e.Clone())
	}
	for k, v := range uc.credentials {
		snap.Credentials[k] = v
	}
	return snap
}

// nextID is one past the largest numeric id held by any employee or user.
func (uc *UseCase) nextID() (string, error) {
	var max int64
	consider := func(id string) {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > max {
			max = n
		}
	}
	for _, e := range uc.employees {
		consider(e.ID)
	}
	for _, u := range uc.users {
		consider(u.ID)
	}
	if max == math.MaxInt64 {
		return "", domain.ErrIDSpaceExhausted
	}
	return strconv.FormatInt(max+1, 10), nil
}

func (uc *UseCase) uniqueUsername(name string) string {
	base := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(name))

	taken := make(map[string]struct{}, len(uc.users)+len(uc.employees))
	for _, u := range uc.users {
		taken[u.Username] = struct{}{}
	}
	for _, e := range uc.employees {
		taken[e.Username] = struct{}{}
	}

	candidate := base
	for n := 1; ; n++ {
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
		candidate = base + strconv.Itoa(n)
	}
}

func (uc *UseCase) employeeIndex(id string) int {
	for i := range uc.employees {
		if uc.employees[i].ID == id {
			return i
		}
	}
	return -1
}

func (uc *UseCase) userIndex(id string) int {
	for i := range uc.users {
		if uc.users[i].ID == id && uc.users[i].Role == domain.RoleEmployee {
			return i
		}
	}
	return -1
}
