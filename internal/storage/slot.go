package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backend-mapty/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var ErrBackendUnavailable = errors.New("storage backend unavailable")

// Slot is one fixed key holding an opaque value.
type Slot interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// Open picks the slot implementation for backend. pg and rdb may be nil
// when the matching backend is not selected.
func Open(backend, key string, pg db.Querier, rdb *redis.Client) (Slot, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemorySlot(), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("%w: redis client not configured", ErrBackendUnavailable)
		}
		return NewRedisSlot(rdb, key), nil
	case BackendPostgres:
		if pg == nil {
			return nil, fmt.Errorf("%w: postgres pool not configured", ErrBackendUnavailable)
		}
		return NewPostgresSlot(pg, key), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrBackendUnavailable, backend)
}

type MemorySlot struct {
	mu      sync.Mutex
	data    []byte
	present bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Get(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MemorySlot) Set(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.present = true
	return nil
}

func (m *MemorySlot) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.present = false
	return nil
}

type RedisSlot struct {
	client *redis.Client
	key    string
}

func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key}
}

func (r *RedisSlot) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisSlot) Set(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisSlot) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// PostgresSlot keeps the value in the kv_slots table, one row per key.
type PostgresSlot struct {
	db  db.Querier
	key string
}

func NewPostgresSlot(db db.Querier, key string) *PostgresSlot {
	return &PostgresSlot{db: db, key: key}
}

func (p *PostgresSlot) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_slots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (p *PostgresSlot) Get(ctx context.Context) ([]byte, bool, error) {
	row := p.db.QueryRow(ctx, `SELECT value FROM kv_slots WHERE key=$1`, p.key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (p *PostgresSlot) Set(ctx context.Context, data []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, p.key, string(data))
	return err
}

func (p *PostgresSlot) Delete(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_slots WHERE key=$1`, p.key)
	return err
}
