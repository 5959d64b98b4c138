package redis

import (
	"context"
	"errors"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type slotStore struct {
	client *redislib.Client
	prefix string
}

// NewSlotStore creates a Redis-backed slot store. Slots never expire.
func NewSlotStore(client *redislib.Client, prefix string) repository.SlotStore {
	if prefix == "" {
		prefix = "taskflow:slot:"
	}
	return &slotStore{
		client: client,
		prefix: prefix,
	}
}

func (r *slotStore) Load(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, err
	}
	return result, nil
}

func (r *slotStore) Save(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *slotStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *slotStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *slotStore) key(key string) string {
	return fmt.Sprintf("%s%s", r.prefix, key)
}
