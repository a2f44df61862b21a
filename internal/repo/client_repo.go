package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/produccion/internal/domain"
)

// GetClient возвращает клиента по ID.
func (q *Queries) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `SELECT id, name, created_at FROM clients WHERE id = $1`
	return scanClient(q.db.QueryRow(ctx, query, id))
}

// FindClientByName ищет клиента по имени без учёта регистра.
func (q *Queries) FindClientByName(ctx context.Context, name string) (*domain.Client, error) {
	query := `
		SELECT id, name, created_at
		FROM clients
		WHERE lower(name) = lower($1)
		ORDER BY created_at
		LIMIT 1
	`
	return scanClient(q.db.QueryRow(ctx, query, name))
}

// CreateClient создаёт клиента.
func (q *Queries) CreateClient(ctx context.Context, c *domain.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO clients (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := q.db.QueryRow(ctx, query, c.ID, c.Name).Scan(&c.CreatedAt); err != nil {
		return classify("insert client", err)
	}
	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	return &c, nil
}
