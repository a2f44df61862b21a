package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/produccion/internal/domain"
)

// CreateProduct создаёт продукт без шаблона.
func (q *Queries) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO products (id, name, code, has_sizes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query, p.ID, p.Name, p.Code, p.HasSizes).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify("insert product", err)
	}
	return nil
}

// UpdateProduct обновляет атрибуты продукта.
func (q *Queries) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, code = $3, has_sizes = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query, p.ID, p.Name, p.Code, p.HasSizes).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return classify("update product", err)
	}
	return nil
}

// GetProduct возвращает продукт с упорядоченным шаблоном.
func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, code, has_sizes, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var p domain.Product
	err := q.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Code, &p.HasSizes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p.Template, err = q.ListTemplateSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListTemplateSteps возвращает шаги шаблона продукта по порядку.
func (q *Queries) ListTemplateSteps(ctx context.Context, productID uuid.UUID) ([]domain.TemplateStep, error) {
	query := `
		SELECT id, product_id, name, sort_order, estimated_duration_days,
		       default_workshop_id, is_transport, price, requires_advance, specifications
		FROM template_steps
		WHERE product_id = $1
		ORDER BY sort_order, name
	`
	rows, err := q.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list template steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.TemplateStep
	for rows.Next() {
		var s domain.TemplateStep
		var specs *string
		err := rows.Scan(
			&s.ID,
			&s.ProductID,
			&s.Name,
			&s.Order,
			&s.EstimatedDurationDays,
			&s.DefaultWorkshopID,
			&s.IsTransport,
			&s.Price,
			&s.RequiresAdvance,
			&specs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan template step: %w", err)
		}
		s.Specifications = derefString(specs)
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// CreateTemplateStep добавляет шаг шаблона.
func (q *Queries) CreateTemplateStep(ctx context.Context, s *domain.TemplateStep) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO template_steps (id, product_id, name, sort_order, estimated_duration_days,
		                            default_workshop_id, is_transport, price, requires_advance, specifications)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.db.Exec(ctx, query,
		s.ID,
		s.ProductID,
		s.Name,
		s.Order,
		s.EstimatedDurationDays,
		nullUUID(s.DefaultWorkshopID),
		s.IsTransport,
		s.Price,
		s.RequiresAdvance,
		nullString(s.Specifications),
	)
	if err != nil {
		return classify("insert template step", err)
	}
	return nil
}

// UpdateTemplateStep обновляет шаг шаблона продукта.
func (q *Queries) UpdateTemplateStep(ctx context.Context, s *domain.TemplateStep) error {
	query := `
		UPDATE template_steps
		SET name = $3, sort_order = $4, estimated_duration_days = $5, default_workshop_id = $6,
		    is_transport = $7, price = $8, requires_advance = $9, specifications = $10
		WHERE id = $1 AND product_id = $2
	`
	result, err := q.db.Exec(ctx, query,
		s.ID,
		s.ProductID,
		s.Name,
		s.Order,
		s.EstimatedDurationDays,
		nullUUID(s.DefaultWorkshopID),
		s.IsTransport,
		s.Price,
		s.RequiresAdvance,
		nullString(s.Specifications),
	)
	if err != nil {
		return classify("update template step", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTemplateSteps удаляет шаги шаблона.
func (q *Queries) DeleteTemplateSteps(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := q.db.Exec(ctx, `DELETE FROM template_steps WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete template steps: %w", err)
	}
	return nil
}
