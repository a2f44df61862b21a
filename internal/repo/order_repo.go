package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/produccion/internal/domain"
)

// CreateOrder создаёт заказ вместе с позициями.
func (q *Queries) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	query := `
		INSERT INTO orders (id, number, client_id, contact)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		o.ID,
		o.Number,
		o.ClientID,
		nullString(o.Contact),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return classify("insert order", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = o.ID

		if _, err := q.db.Exec(ctx, itemQuery, item.ID, o.ID, item.ProductID, item.Quantity, i); err != nil {
			return classify("insert order item", err)
		}
	}
	return nil
}

// GetOrder возвращает заказ по ID с позициями и именем клиента.
func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT o.id, o.number, o.client_id, c.name, o.contact, o.created_at, o.updated_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.id = $1
	`
	return q.loadOrder(ctx, q.db.QueryRow(ctx, query, id))
}

// GetOrderByNumber возвращает заказ по номеру.
func (q *Queries) GetOrderByNumber(ctx context.Context, number int) (*domain.Order, error) {
	query := `
		SELECT o.id, o.number, o.client_id, c.name, o.contact, o.created_at, o.updated_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.number = $1
	`
	return q.loadOrder(ctx, q.db.QueryRow(ctx, query, number))
}

// ListOrders возвращает заказы по фильтру, новые первыми. Партии не
// подгружаются.
func (q *Queries) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	query := `
		SELECT o.id, o.number, o.client_id, c.name, o.contact, o.created_at, o.updated_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%')
		  AND ($2::timestamptz IS NULL OR o.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR o.created_at <= $3)
		  AND (NOT $4 OR EXISTS (
		      SELECT 1 FROM lots l WHERE l.order_id = o.id AND l.status <> 'FINISHED'))
		ORDER BY o.created_at DESC, o.number DESC
	`
	rows, err := q.db.Query(ctx, query, f.ClientName, f.CreatedFrom, f.CreatedTo, f.OpenOnly)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var contact *string
		if err := rows.Scan(&o.ID, &o.Number, &o.ClientID, &o.ClientName, &contact, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Contact = derefString(contact)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	for i := range orders {
		items, err := q.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (q *Queries) loadOrder(ctx context.Context, row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var contact *string

	err := row.Scan(&o.ID, &o.Number, &o.ClientID, &o.ClientName, &contact, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Contact = derefString(contact)

	items, err := q.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (q *Queries) listOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := q.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
