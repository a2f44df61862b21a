package repo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/produccion/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// dbtx - общее подмножество pgxpool.Pool и pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store - domain.Store поверх PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore создаёт новый Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type txKey struct{}

// WithinTx выполняет fn в транзакции.
//
// Если ctx уже содержит транзакцию (вложенный вызов), fn выполняется в ней,
// а фиксацию делает внешний вызов.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, q domain.Queries) error) error {
	if q, ok := ctx.Value(txKey{}).(*Queries); ok && !q.done.Load() {
		return fn(ctx, q)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := &Queries{db: tx}
	defer q.done.Store(true)

	if err := fn(context.WithValue(ctx, txKey{}, q), q); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Queries - реализация domain.Queries на pgx.
type Queries struct {
	db   dbtx
	done atomic.Bool
}

var _ domain.Queries = (*Queries)(nil)
