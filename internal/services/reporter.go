package services

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
)

// TaskSource is the read side of the task store used by the reporter.
type TaskSource interface {
	List(ctx context.Context, filter domain.TaskFilter, sort domain.SortSpec) ([]domain.Task, error)
	DashboardStats(ctx context.Context, scopeUserID string) (*domain.DashboardStats, error)
}

// Report is one run of the periodic task report.
type Report struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	Stats       domain.DashboardStats `json:"stats"`
	Overdue     []domain.Task         `json:"overdue"`
}

// Reporter logs dashboard statistics and the overdue tasks on a schedule.
type Reporter struct {
	tasks    TaskSource
	clock    clock.Clock
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
}

func NewReporter(tasks TaskSource, interval time.Duration, clk clock.Clock, logger *zap.Logger) (*Reporter, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("report interval %s is below one second", interval)
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reporter{
		tasks:    tasks,
		clock:    clk,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.interval)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("task report failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule task report: %w", err)
	}
	return r, nil
}

// Start launches the cron scheduler.
func (r *Reporter) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("task reporter started", zap.Duration("interval", r.interval))
}

// Stop waits for a running report or ctx, whichever ends first.
func (r *Reporter) Stop(ctx context.Context) error {
	if r == nil || r.cron == nil {
		return nil
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.logger.Info("task reporter stopped")
	return nil
}

// Run computes the report once.
func (r *Reporter) Run(ctx context.Context) (*Report, error) {
	stats, err := r.tasks.DashboardStats(ctx, "")
	if err != nil {
		return nil, err
	}
	open, err := r.tasks.List(ctx, domain.TaskFilter{}, domain.DefaultSort)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	report := &Report{GeneratedAt: now, Stats: *stats, Overdue: []domain.Task{}}
	for i := range open {
		if open[i].IsOverdue(now) {
			report.Overdue = append(report.Overdue, open[i])
		}
	}

	r.logger.Info("task report",
		zap.Int("total", stats.TotalTasks),
		zap.Int("completed", stats.CompletedTasks),
		zap.Int("overdue", stats.OverdueTasks),
		zap.Float64("completion_rate", stats.CompletionRate))
	for _, t := range report.Overdue {
		r.logger.Warn("task overdue",
			zap.String("task_id", t.ID),
			zap.String("assignee", t.AssigneeName),
			zap.String("due_date", t.DueDate.String()))
	}
	return report, nil
}
