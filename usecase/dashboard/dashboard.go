// Package dashboard keeps the role-scoped view of the stores current and
// validates user commands before they reach a store.
package dashboard

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/notify"
	"github.com/fastygo/taskflow/usecase/auth"
)

// TaskStore is the task store as seen by the dashboard.
type TaskStore interface {
	List(ctx context.Context, filter domain.TaskFilter, sort domain.SortSpec) ([]domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	UpdateWhen(ctx context.Context, id string, patch domain.TaskPatch, guard func(current domain.Task) error) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	DashboardStats(ctx context.Context, scopeUserID string) (*domain.DashboardStats, error)
	Subscribe(fn notify.Listener) func()
}

// DirectoryStore is the directory store as seen by the dashboard.
type DirectoryStore interface {
	CreateEmployee(ctx context.Context, input domain.EmployeeInput) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error)
	ToggleEmployeeStatus(ctx context.Context, id string) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id string) (*domain.PasswordReset, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	Stats(ctx context.Context) domain.EmployeeStats
	Subscribe(fn notify.Listener) func()
}

// SessionGateway is the auth gateway as seen by the dashboard.
type SessionGateway interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	Subscribe(fn notify.Listener) func()
}

// View is the derived state rendered for the session user.
// Employee statistics are only filled for managers.
type View struct {
	User          *domain.User           `json:"user"`
	Filter        domain.TaskFilter      `json:"filter"`
	Sort          domain.SortSpec        `json:"sort"`
	Tasks         []domain.Task          `json:"tasks"`
	Stats         *domain.DashboardStats `json:"stats,omitempty"`
	EmployeeStats *domain.EmployeeStats  `json:"employeeStats,omitempty"`
}

type UseCase struct {
	tasks     TaskStore
	directory DirectoryStore
	sessions  SessionGateway
	validate  *validator.Validate
	logger    *zap.Logger
	watchers  *notify.Bus

	mu      sync.Mutex
	baseCtx context.Context
	unsubs  []func()
	filter  domain.TaskFilter
	sort    domain.SortSpec
	view    View
	seq     uint64
	applied uint64
}

func New(tasks TaskStore, directory DirectoryStore, sessions SessionGateway, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		directory: directory,
		sessions:  sessions,
		validate:  newValidator(),
		logger:    logger,
		watchers:  notify.New(),
		baseCtx:   context.Background(),
		sort:      domain.DefaultSort,
	}
}

// Start subscribes to the three stores and computes the first view.
// Store notifications refresh the view with a context detached from ctx.
func (uc *UseCase) Start(ctx context.Context) error {
	uc.mu.Lock()
	if uc.unsubs == nil {
		uc.baseCtx = context.WithoutCancel(ctx)
		uc.unsubs = []func(){
			uc.tasks.Subscribe(uc.onChange),
			uc.directory.Subscribe(uc.onChange),
			uc.sessions.Subscribe(uc.onChange),
		}
	}
	uc.mu.Unlock()

	_, err := uc.Refresh(ctx)
	return err
}

// Close drops the store subscriptions.
func (uc *UseCase) Close() {
	uc.mu.Lock()
	unsubs := uc.unsubs
	uc.unsubs = nil
	uc.mu.Unlock()

	for _, unsubscribe := range unsubs {
		unsubscribe()
	}
}

// Watch registers a listener called after every view recomputation.
func (uc *UseCase) Watch(fn notify.Listener) func() {
	return uc.watchers.Subscribe(fn)
}

// View returns the last computed view.
func (uc *UseCase) View() View {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return copyView(uc.view)
}

// SetFilter replaces the task filter and recomputes the view.
func (uc *UseCase) SetFilter(ctx context.Context, filter domain.TaskFilter) (View, error) {
	if err := check(uc.validate, filterForm{Status: filter.Status, Priority: filter.Priority}); err != nil {
		return View{}, err
	}
	uc.mu.Lock()
	uc.filter = filter
	uc.mu.Unlock()
	return uc.Refresh(ctx)
}

// SetSort replaces the task ordering and recomputes the view.
func (uc *UseCase) SetSort(ctx context.Context, sort domain.SortSpec) (View, error) {
	if err := check(uc.validate, sortForm{Field: sort.Field, Direction: sort.Direction}); err != nil {
		return View{}, err
	}
	uc.mu.Lock()
	uc.sort = sort.Normalize()
	uc.mu.Unlock()
	return uc.Refresh(ctx)
}

// Refresh re-queries the stores for the session user. Without a session the
// view is empty.
func (uc *UseCase) Refresh(ctx context.Context) (View, error) {
	uc.mu.Lock()
	uc.seq++
	seq := uc.seq
	filter, sort := uc.filter, uc.sort
	uc.mu.Unlock()

	next, err := uc.compute(ctx, filter, sort)
	if err != nil {
		return View{}, err
	}

	uc.mu.Lock()
	if seq > uc.applied {
		uc.applied = seq
		uc.view = next
	}
	out := copyView(uc.view)
	uc.mu.Unlock()

	uc.watchers.Notify()
	return out, nil
}

// ListTasks runs a one-off query scoped to the session user.
func (uc *UseCase) ListTasks(ctx context.Context, filter domain.TaskFilter, sort domain.SortSpec) ([]domain.Task, error) {
	if err := check(uc.validate, filterForm{Status: filter.Status, Priority: filter.Priority}); err != nil {
		return nil, err
	}
	if err := check(uc.validate, sortForm{Field: sort.Field, Direction: sort.Direction}); err != nil {
		return nil, err
	}
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return uc.tasks.List(ctx, scopeFilter(user, filter), sort)
}

// Stats returns the dashboard statistics visible to the session user.
func (uc *UseCase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return uc.tasks.DashboardStats(ctx, scopeID(user))
}

func (uc *UseCase) compute(ctx context.Context, filter domain.TaskFilter, sort domain.SortSpec) (View, error) {
	view := View{Filter: filter, Sort: sort}
	user, err := uc.sessions.CurrentUser(ctx)
	if err != nil {
		return View{}, err
	}
	if user == nil {
		return view, nil
	}
	view.User = user

	view.Tasks, err = uc.tasks.List(ctx, scopeFilter(user, filter), sort)
	if err != nil {
		return View{}, err
	}
	view.Stats, err = uc.tasks.DashboardStats(ctx, scopeID(user))
	if err != nil {
		return View{}, err
	}
	if user.IsManager() {
		stats := uc.directory.Stats(ctx)
		view.EmployeeStats = &stats
	}
	return view, nil
}

func (uc *UseCase) onChange() {
	uc.mu.Lock()
	ctx := uc.baseCtx
	uc.mu.Unlock()

	if _, err := uc.Refresh(ctx); err != nil {
		uc.logger.Warn("failed to refresh dashboard view", zap.Error(err))
	}
}

func (uc *UseCase) requireUser(ctx context.Context) (*domain.User, error) {
	user, err := uc.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

func (uc *UseCase) requireManager(ctx context.Context) (*domain.User, error) {
	user, err := uc.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsManager() {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// scopeFilter forces employees onto their own tasks.
func scopeFilter(user *domain.User, filter domain.TaskFilter) domain.TaskFilter {
	if !user.IsManager() {
		filter.AssigneeID = user.ID
	}
	return filter
}

func scopeID(user *domain.User) string {
	if user.IsManager() {
		return ""
	}
	return user.ID
}

func copyView(v View) View {
	out := v
	if v.User != nil {
		u := *v.User
		out.User = &u
	}
	out.Tasks = append([]domain.Task(nil), v.Tasks...)
	return out
}
