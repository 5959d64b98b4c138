package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/pkg/notify"
)

const bridgeQueueSize = 64

// Publisher is the slice of the Redis client the bridge needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goRedis.IntCmd
}

// ChangeEvent is published for every store notification.
type ChangeEvent struct {
	Store string    `json:"store"`
	At    time.Time `json:"at"`
}

// NotifyBridge forwards store notifications to a Redis channel. Events are
// queued so a slow broker never blocks a store mutation; overflow is dropped.
type NotifyBridge struct {
	publisher Publisher
	channel   string
	clock     clock.Clock
	logger    *zap.Logger

	events chan ChangeEvent
	done   chan struct{}

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

func NewNotifyBridge(publisher Publisher, channel string, clk clock.Clock, logger *zap.Logger) *NotifyBridge {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &NotifyBridge{
		publisher: publisher,
		channel:   channel,
		clock:     clk,
		logger:    logger,
		events:    make(chan ChangeEvent, bridgeQueueSize),
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Attach forwards the notifications of one store under name.
func (b *NotifyBridge) Attach(name string, subscribe func(notify.Listener) func()) {
	unsubscribe := subscribe(func() { b.enqueue(name) })

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		unsubscribe()
		return
	}
	b.unsubs = append(b.unsubs, unsubscribe)
}

// Close detaches from every store and waits for queued events or ctx.
func (b *NotifyBridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()

	for _, unsubscribe := range unsubs {
		unsubscribe()
	}
	close(b.events)

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *NotifyBridge) enqueue(store string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ChangeEvent{Store: store, At: b.clock.Now().UTC()}:
	default:
		b.logger.Warn("change event dropped", zap.String("store", store))
	}
}

func (b *NotifyBridge) run() {
	defer close(b.done)
	for event := range b.events {
		payload, err := json.Marshal(event)
		if err != nil {
			b.logger.Error("failed to encode change event", zap.Error(err))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = b.publisher.Publish(ctx, b.channel, payload).Err()
		cancel()
		if err != nil {
			b.logger.Warn("failed to publish change event", zap.String("store", event.Store), zap.Error(err))
		}
	}
}
