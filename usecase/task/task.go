package task

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/seed"
	"github.com/fastygo/taskflow/pkg/notify"
	"github.com/fastygo/taskflow/repository"
)

// Roster resolves assignees. The directory store satisfies it.
type Roster interface {
	Employees(ctx context.Context) ([]domain.Employee, error)
}

// Options tweaks construction. The zero value seeds the stock task set.
type Options struct {
	// Seed replaces the default collection written to an empty slot.
	Seed []domain.Task
	// SkipSeed leaves an empty slot empty.
	SkipSeed bool
}

// UseCase is the task store. The in-memory collection mirrors the tasks slot.
type UseCase struct {
	slots  repository.SlotStore
	roster Roster
	clock  clock.Clock
	logger *zap.Logger
	bus    *notify.Bus
	opts   Options

	mu     sync.Mutex
	loaded bool
	tasks  []domain.Task
}

func New(slots repository.SlotStore, roster Roster, clk clock.Clock, logger *zap.Logger, opts Options) *UseCase {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		slots:  slots,
		roster: roster,
		clock:  clk,
		logger: logger,
		bus:    notify.New(),
		opts:   opts,
	}
}

// Subscribe registers a change listener.
func (uc *UseCase) Subscribe(fn notify.Listener) func() {
	return uc.bus.Subscribe(fn)
}

// List returns the tasks matching filter ordered by sort.
func (uc *UseCase) List(ctx context.Context, filter domain.TaskFilter, sort domain.SortSpec) ([]domain.Task, error) {
	out, err := uc.matching(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortTasks(out, sort)
	return out, nil
}

// matching copies the tasks satisfying filter in stored order.
func (uc *UseCase) matching(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(uc.tasks))
	for _, t := range uc.tasks {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	idx := uc.index(id)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}
	out := uc.tasks[idx]
	return &out, nil
}

// Create stores a new task. An unresolvable assignee is cached as "Unknown".
func (uc *UseCase) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	uc.mu.Lock()
	if err := uc.ensureLoaded(ctx); err != nil {
		uc.mu.Unlock()
		return nil, err
	}

	now := uc.clock.Now().UTC()
	task := domain.Task{
		ID:           uc.nextID(now),
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		AssigneeID:   input.AssigneeID,
		AssigneeName: uc.assigneeName(ctx, input.AssigneeID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	next := make([]domain.Task, len(uc.tasks), len(uc.tasks)+1)
	copy(next, uc.tasks)
	next = append(next, task)
	if err := uc.commit(ctx, next); err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	uc.mu.Unlock()

	uc.logger.Info("task created", zap.String("task_id", task.ID), zap.String("assignee_id", task.AssigneeID))
	uc.bus.Notify()
	return &task, nil
}

// Update applies patch. A patched assignee re-resolves the cached name.
func (uc *UseCase) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return uc.UpdateWhen(ctx, id, patch, nil)
}

// UpdateWhen is Update with a precondition. guard sees the stored task inside
// the same critical section as the write; a non-nil error aborts the update and
// is returned as is. guard must not call back into the task store.
func (uc *UseCase) UpdateWhen(ctx context.Context, id string, patch domain.TaskPatch, guard func(current domain.Task) error) (*domain.Task, error) {
	uc.mu.Lock()
	if err := uc.ensureLoaded(ctx); err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	idx := uc.index(id)
	if idx < 0 {
		uc.mu.Unlock()
		return nil, domain.ErrTaskNotFound
	}

	task := uc.tasks[idx]
	if guard != nil {
		if err := guard(task); err != nil {
			uc.mu.Unlock()
			return nil, err
		}
	}
	patch.Apply(&task)
	if patch.AssigneeID != nil {
		task.AssigneeName = uc.assigneeName(ctx, task.AssigneeID)
	}
	task.UpdatedAt = uc.clock.Now().UTC()
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	next := append([]domain.Task(nil), uc.tasks...)
	next[idx] = task
	if err := uc.commit(ctx, next); err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	uc.mu.Unlock()

	uc.logger.Info("task updated", zap.String("task_id", id), zap.String("status", string(task.Status)))
	uc.bus.Notify()
	return &task, nil
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	if err := uc.ensureLoaded(ctx); err != nil {
		uc.mu.Unlock()
		return err
	}
	idx := uc.index(id)
	if idx < 0 {
		uc.mu.Unlock()
		return domain.ErrTaskNotFound
	}

	next := make([]domain.Task, 0, len(uc.tasks)-1)
	next = append(next, uc.tasks[:idx]...)
	next = append(next, uc.tasks[idx+1:]...)
	if err := uc.commit(ctx, next); err != nil {
		uc.mu.Unlock()
		return err
	}
	uc.mu.Unlock()

	uc.logger.Info("task deleted", zap.String("task_id", id))
	uc.bus.Notify()
	return nil
}

// ensureLoaded reads the slot once, seeding it when empty. Callers hold mu.
func (uc *UseCase) ensureLoaded(ctx context.Context) error {
	if uc.loaded {
		return nil
	}
	var tasks []domain.Task
	found, err := repository.LoadJSON(ctx, uc.slots, repository.SlotTasks, &tasks)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "load tasks", err)
	}
	if !found {
		tasks = []domain.Task{}
		if !uc.opts.SkipSeed {
			tasks = uc.opts.Seed
			if tasks == nil {
				tasks = seed.Tasks()
			}
			tasks = append([]domain.Task(nil), tasks...)
		}
		if err := uc.persist(ctx, tasks); err != nil {
			return err
		}
		uc.logger.Info("tasks slot seeded", zap.Int("count", len(tasks)))
	}
	uc.tasks = tasks
	uc.loaded = true
	return nil
}

// commit writes next to the slot and only then makes it visible.
func (uc *UseCase) commit(ctx context.Context, next []domain.Task) error {
	if err := uc.persist(ctx, next); err != nil {
		return err
	}
	uc.tasks = next
	return nil
}

func (uc *UseCase) persist(ctx context.Context, tasks []domain.Task) error {
	if err := repository.SaveJSON(context.WithoutCancel(ctx), uc.slots, repository.SlotTasks, tasks); err != nil {
		uc.logger.Error("failed to persist tasks", zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "persist tasks", err)
	}
	return nil
}

func (uc *UseCase) assigneeName(ctx context.Context, assigneeID string) string {
	if uc.roster == nil || assigneeID == "" {
		return domain.UnknownAssignee
	}
	employees, err := uc.roster.Employees(ctx)
	if err != nil {
		uc.logger.Warn("assignee lookup failed", zap.String("assignee_id", assigneeID), zap.Error(err))
		return domain.UnknownAssignee
	}
	for _, e := range employees {
		if e.ID == assigneeID {
			return e.Name
		}
	}
	return domain.UnknownAssignee
}

// nextID derives the id from the creation instant, bumped past any existing id.
func (uc *UseCase) nextID(now time.Time) string {
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if uc.index(id) < 0 {
			return id
		}
		n++
	}
}

func (uc *UseCase) index(id string) int {
	for i := range uc.tasks {
		if uc.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
