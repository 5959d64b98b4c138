package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type slotStore struct {
	pool *pgxpool.Pool
}

// NewSlotStore returns a Postgres-backed slot store over the slots table.
func NewSlotStore(pool *pgxpool.Pool) repository.SlotStore {
	return &slotStore{pool: pool}
}

func (r *slotStore) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM slots WHERE key = $1`

	var value []byte
	if err := r.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, err
	}
	return value, nil
}

func (r *slotStore) Save(ctx context.Context, key string, value []byte) error {
	const query = `
	INSERT INTO slots (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, key, nonNil(value))
	return err
}

func (r *slotStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM slots WHERE key = $1`
	_, err := r.pool.Exec(ctx, query, key)
	return err
}

func (r *slotStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
