package db

import (
	"context"
	"time"

	"todo_bot/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	user_id    BIGINT  NOT NULL,
	id         INT     NOT NULL,
	description TEXT   NOT NULL,
	done       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, id)
)`

// Querier is the query surface shared by *pgxpool.Pool, *pgx.Conn and
// pgx.Tx. Repositories run every operation against one of these.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Provider hands out a usable database handle per operation. Normally
// that is the shared pool; if pool creation failed on startup it opens
// a fresh connection per call instead, so the process stays up even
// when the database was unreachable at boot.
type Provider struct {
	pool *pgxpool.Pool
	dsn  string
}

// NewProvider tries to create the pool up to retries times with a fixed
// delay between attempts. Exhausting the retries is not fatal: the
// provider degrades to per-operation direct connections.
func NewProvider(dsn string, retries int, delay time.Duration) *Provider {
	p := &Provider{dsn: dsn}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		pool, err := pgxpool.New(context.Background(), dsn)
		if err == nil {
			err = pool.Ping(context.Background())
		}
		if err == nil {
			logger.Info("database pool created")
			p.pool = pool
			return p
		}
		lastErr = err
		logger.Warn("database not reachable",
			"attempt", attempt, "retries", retries, "error", err)
		time.Sleep(delay)
	}

	logger.Error("could not create database pool, falling back to direct connections",
		"error", lastErr)
	return p
}

// Acquire returns a handle for one operation and a release func that
// must be called when done. For the pool the release is a no-op; in
// degraded mode it closes the freshly opened connection.
func (p *Provider) Acquire(ctx context.Context) (Querier, func(), error) {
	if p.pool != nil {
		return p.pool, func() {}, nil
	}

	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() { _ = conn.Close(context.Background()) }, nil
}

// Pool returns the shared pool, or nil when running degraded. Used by
// the readiness probe.
func (p *Provider) Pool() *pgxpool.Pool {
	return p.pool
}

// Ping reports whether the database is reachable right now.
func (p *Provider) Ping(ctx context.Context) error {
	if p.pool != nil {
		return p.pool.Ping(ctx)
	}
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return err
	}
	return conn.Close(ctx)
}

// InitSchema creates the tasks table if it does not exist. Safe to run
// on every start.
func (p *Provider) InitSchema(ctx context.Context) error {
	q, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := q.Exec(ctx, schema); err != nil {
		return err
	}
	logger.Info("tasks table ready")
	return nil
}

// Close releases the pool if one was created.
func (p *Provider) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
