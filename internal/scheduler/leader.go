package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockKey - ключ pg_advisory_lock для выбора лидера планировщика.
const LockKey int64 = 727274

// AdvisoryLock - выбор лидера через сессионный pg_try_advisory_lock.
//
// Блокировка держится на одном соединении из пула до Release, поэтому
// при падении процесса Postgres освобождает её сам.
type AdvisoryLock struct {
	pool   *pgxpool.Pool
	key    int64
	logger *slog.Logger

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// NewAdvisoryLock создаёт AdvisoryLock.
func NewAdvisoryLock(pool *pgxpool.Pool, key int64, logger *slog.Logger) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, key: key, logger: logger}
}

// IsLeader пытается взять блокировку (или подтверждает, что она уже взята).
func (l *AdvisoryLock) IsLeader(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		if err := l.conn.Ping(ctx); err == nil {
			return true
		}
		l.logger.Warn("lost leader connection")
		l.conn.Release()
		l.conn = nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		l.logger.Warn("acquire connection for leader lock", "error", err)
		return false
	}

	var ok bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
		l.logger.Warn("leader lock query failed", "error", err)
		conn.Release()
		return false
	}
	if !ok {
		conn.Release()
		return false
	}

	l.logger.Info("acquired scheduler leadership")
	l.conn = conn
	return true
}

// Release отпускает блокировку, если она взята.
func (l *AdvisoryLock) Release(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return
	}
	if _, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.key); err != nil {
		l.logger.Warn("release leader lock", "error", err)
	}
	l.conn.Release()
	l.conn = nil
}
