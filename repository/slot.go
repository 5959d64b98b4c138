package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastygo/taskflow/domain"
)

// Durable slot names.
const (
	SlotTasks             = "tasks"
	SlotSession           = "session"
	SlotCustomCredentials = "custom_credentials"
)

// SlotStore persists opaque values under well-known keys and survives restarts.
// Load returns domain.ErrSlotEmpty when nothing is stored under key.
type SlotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by slot stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoadJSON decodes the slot into v. It reports false when the slot is empty.
func LoadJSON(ctx context.Context, store SlotStore, key string, v interface{}) (bool, error) {
	raw, err := store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSlotEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("load slot %s: %w", key, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it to the slot.
func SaveJSON(ctx context.Context, store SlotStore, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	if err := store.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}
