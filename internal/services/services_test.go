package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/pkg/notify"
	"github.com/fastygo/taskflow/repository/memory"
	"github.com/fastygo/taskflow/usecase/task"
)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, message interface{}) *goRedis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, message.([]byte))
	return goRedis.NewIntResult(1, nil)
}

func TestNotifyBridgePublishesEveryChange(t *testing.T) {
	pub := &recordingPublisher{}
	mock := clock.NewMock()
	bridge := NewNotifyBridge(pub, "taskflow:changes", mock, nil)

	tasks := notify.New()
	directory := notify.New()
	bridge.Attach("tasks", tasks.Subscribe)
	bridge.Attach("directory", directory.Subscribe)

	tasks.Notify()
	directory.Notify()
	tasks.Notify()

	require.NoError(t, bridge.Close(context.Background()))
	assert.Zero(t, tasks.Len())
	tasks.Notify()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.payloads, 3)
	stores := make([]string, 0, 3)
	for i, raw := range pub.payloads {
		assert.Equal(t, "taskflow:changes", pub.channels[i])
		var event ChangeEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.True(t, event.At.Equal(mock.Now()))
		stores = append(stores, event.Store)
	}
	assert.Equal(t, []string{"tasks", "directory", "tasks"}, stores)
}

func TestNotifyBridgeCloseIsIdempotent(t *testing.T) {
	bridge := NewNotifyBridge(&recordingPublisher{}, "c", nil, nil)
	require.NoError(t, bridge.Close(context.Background()))
	require.NoError(t, bridge.Close(context.Background()))
	bridge.Attach("late", notify.New().Subscribe)
}

func TestReporterRun(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(time.Date(2025, 1, 26, 12, 0, 0, 0, time.UTC).Sub(mock.Now()))
	store := task.New(memory.NewSlotStore(), nil, mock, nil, task.Options{})

	reporter, err := NewReporter(store, time.Minute, mock, nil)
	require.NoError(t, err)

	report, err := reporter.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Stats.TotalTasks)
	assert.Equal(t, 1, report.Stats.OverdueTasks)
	require.Len(t, report.Overdue, 1)
	assert.Equal(t, "5", report.Overdue[0].ID)
	assert.Equal(t, mock.Now(), report.GeneratedAt)
}

func TestReporterStartStop(t *testing.T) {
	store := task.New(memory.NewSlotStore(), nil, nil, nil, task.Options{SkipSeed: true})
	reporter, err := NewReporter(store, time.Hour, nil, nil)
	require.NoError(t, err)

	reporter.Start()
	assert.NoError(t, reporter.Stop(context.Background()))
}

func TestReporterRejectsSubSecondInterval(t *testing.T) {
	_, err := NewReporter(nil, 0, nil, nil)
	assert.Error(t, err)
}
