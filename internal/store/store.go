// Package store bundles the Postgres and Redis connections and provides
// the night journal: a durable record of accepted reducer revisions kept
// outside the pure internal/night core, which itself never touches a
// database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nightloom/nightcore/internal/config"
)

type Store struct {
	PG    *pgxpool.Pool
	Redis *redis.Client
}

func NewStore(cfg *config.Config) (*Store, error) {
	pgConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pgConfig.MaxConns = 25
	pgConfig.MinConns = 5
	pgConfig.MaxConnLifetime = time.Hour
	pgConfig.MaxConnIdleTime = 30 * time.Minute
	pgConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgPool, err := pgxpool.NewWithConfig(ctx, pgConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{PG: pgPool, Redis: redisClient}, nil
}

func (s *Store) Close() {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.Redis != nil {
		s.Redis.Close()
	}
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.PG.Ping(ctx); err != nil {
		return fmt.Errorf("postgresql unhealthy: %w", err)
	}
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}
	return nil
}

// NightJournal appends one accepted revision's canonical snapshot per room,
// an observer outside the pure night core (spec.md §5's "no I/O in the
// core" is honored by keeping this call on the engine-wiring side, never
// inside internal/night itself).
type NightJournal struct {
	store *Store
}

func NewNightJournal(s *Store) *NightJournal {
	return &NightJournal{store: s}
}

// AppendRevision persists one BroadcastGameState snapshot, keyed by
// room code and revision, so a crashed process can replay the latest
// accepted state instead of the night core losing its in-memory history.
func (j *NightJournal) AppendRevision(ctx context.Context, roomCode string, revision uint64, snapshot any) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal night snapshot: %w", err)
	}
	_, err = j.store.PG.Exec(ctx, `
		INSERT INTO night_revisions (room_code, revision, snapshot, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_code, revision) DO UPDATE SET snapshot = EXCLUDED.snapshot
	`, roomCode, revision, payload, time.Now())
	if err != nil {
		return fmt.Errorf("append night revision: %w", err)
	}
	return nil
}

// LatestRevision loads the most recently journaled snapshot for a room,
// used to rehydrate an Engine after a restart.
func (j *NightJournal) LatestRevision(ctx context.Context, roomCode string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := j.store.PG.QueryRow(ctx, `
		SELECT snapshot FROM night_revisions
		WHERE room_code = $1
		ORDER BY revision DESC
		LIMIT 1
	`, roomCode).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load latest night revision: %w", err)
	}
	return raw, nil
}
