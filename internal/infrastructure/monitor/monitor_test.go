package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/repository/bolt"
	"github.com/fastygo/taskflow/repository/memory"
)

type downStore struct {
	repository.SlotStore
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type countingStore struct {
	repository.SlotStore
	pings int32
}

func (c *countingStore) Ping(context.Context) error {
	atomic.AddInt32(&c.pings, 1)
	return nil
}

func TestCheckHealthyMemoryStore(t *testing.T) {
	mock := clock.NewMock()
	m := New("memory", memory.NewSlotStore(), nil, time.Second, mock, nil)

	status := m.Check(context.Background())
	assert.True(t, status.Storage)
	assert.Nil(t, status.Redis)
	assert.Equal(t, "memory", status.Driver)
	assert.Equal(t, mock.Now(), status.LastCheck)
	assert.True(t, m.IsHealthy())
}

func TestCheckReportsPingFailure(t *testing.T) {
	m := New("postgres", downStore{SlotStore: memory.NewSlotStore()}, nil, time.Second, clock.NewMock(), nil)

	status := m.Check(context.Background())
	assert.False(t, status.Storage)
	assert.Equal(t, "connection refused", status.Error)
	assert.False(t, m.IsHealthy())
	assert.Equal(t, status, m.GetStatus())
}

func TestStopIsIdempotent(t *testing.T) {
	m := New("memory", memory.NewSlotStore(), nil, time.Millisecond, nil, nil)
	m.Start()
	m.Stop()
	m.Stop()
}

func TestLoopFollowsInjectedClock(t *testing.T) {
	mock := clock.NewMock()
	store := &countingStore{SlotStore: memory.NewSlotStore()}
	m := New("postgres", store, nil, time.Hour, mock, nil)
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&store.pings) >= 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		mock.Add(time.Hour)
		return atomic.LoadInt32(&store.pings) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, m.IsHealthy())
}

func TestCheckReportsBoltDetails(t *testing.T) {
	ctx := context.Background()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "slots.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, repository.SaveJSON(ctx, store, repository.SlotTasks, []domain.Task{{ID: "1"}}))
	require.NoError(t, repository.SaveJSON(ctx, store, repository.SlotSession, domain.Session{Token: "t-1"}))

	m := New("bolt", store, nil, time.Second, clock.NewMock(), nil)
	status := m.Check(ctx)

	assert.True(t, status.Storage)
	assert.Equal(t, []string{repository.SlotSession, repository.SlotTasks}, status.Slots)
	require.NotNil(t, status.Bolt)
	assert.Positive(t, status.Bolt.TxN)
	assert.Zero(t, status.Bolt.OpenTxN)
}

func TestCheckOmitsBoltDetailsForOtherStores(t *testing.T) {
	status := New("memory", memory.NewSlotStore(), nil, time.Second, clock.NewMock(), nil).Check(context.Background())
	assert.Nil(t, status.Slots)
	assert.Nil(t, status.Bolt)
}
