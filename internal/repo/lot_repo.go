package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/produccion/internal/domain"
)

const lotColumns = `
	id, code, order_id, parent_id, product_id, quantity, status,
	current_process_id, current_workshop_id, current_transporter_id,
	created_at, updated_at
`

// CreateLot создаёт партию.
func (q *Queries) CreateLot(ctx context.Context, l *domain.Lot) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	query := `
		INSERT INTO lots (id, code, order_id, parent_id, product_id, quantity, status,
		                  current_process_id, current_workshop_id, current_transporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		l.ID,
		l.Code,
		l.OrderID,
		nullUUID(l.ParentID),
		nullUUID(l.ProductID),
		l.Quantity,
		l.Status,
		nullUUID(l.CurrentProcessID),
		nullUUID(l.CurrentWorkshopID),
		nullUUID(l.CurrentTransporterID),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return classify("insert lot", err)
	}
	return nil
}

// GetLot возвращает партию с историей.
func (q *Queries) GetLot(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	return q.loadLot(ctx, q.db.QueryRow(ctx, query, id))
}

// GetLotForUpdate возвращает партию с историей и блокирует строку
// до конца транзакции.
func (q *Queries) GetLotForUpdate(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	return q.loadLot(ctx, q.db.QueryRow(ctx, query, id))
}

// UpdateLot обновляет статус, количество и указатели партии.
func (q *Queries) UpdateLot(ctx context.Context, l *domain.Lot) error {
	query := `
		UPDATE lots
		SET quantity = $2, status = $3, current_process_id = $4,
		    current_workshop_id = $5, current_transporter_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := q.db.QueryRow(ctx, query,
		l.ID,
		l.Quantity,
		l.Status,
		nullUUID(l.CurrentProcessID),
		nullUUID(l.CurrentWorkshopID),
		nullUUID(l.CurrentTransporterID),
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return classify("update lot", err)
	}
	return nil
}

// ListLotsByOrder возвращает все партии заказа (включая дочерние) с историей.
func (q *Queries) ListLotsByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE order_id = $1 ORDER BY created_at, code`
	lots, err := q.queryLots(ctx, query, orderID)
	if err != nil {
		return nil, err
	}

	history, err := q.ListHistoryByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	byLot := make(map[uuid.UUID][]domain.HistoryEntry, len(lots))
	for _, e := range history {
		byLot[e.LotID] = append(byLot[e.LotID], e)
	}
	for i := range lots {
		lots[i].History = byLot[lots[i].ID]
	}
	return lots, nil
}

// ListLotsByWorkshop возвращает партии, находящиеся в цехе.
// Пустой statuses - без фильтра по статусу.
func (q *Queries) ListLotsByWorkshop(ctx context.Context, workshopID uuid.UUID, statuses []domain.LotStatus) ([]domain.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE current_workshop_id = $1
		  AND ($2::text[] IS NULL OR status::text = ANY($2))
		ORDER BY created_at, code
	`
	lots, err := q.queryLots(ctx, query, workshopID, lotStatusesParam(statuses))
	if err != nil {
		return nil, err
	}

	for i := range lots {
		history, err := q.ListHistory(ctx, lots[i].ID)
		if err != nil {
			return nil, err
		}
		lots[i].History = history
	}
	return lots, nil
}

// ListLotsAtWorkshops возвращает партии с заданным текущим цехом, без истории.
func (q *Queries) ListLotsAtWorkshops(ctx context.Context, statuses []domain.LotStatus) ([]domain.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE current_workshop_id IS NOT NULL
		  AND ($1::text[] IS NULL OR status::text = ANY($1))
		ORDER BY current_workshop_id, created_at, code
	`
	return q.queryLots(ctx, query, lotStatusesParam(statuses))
}

// ListLotsPendingPlan возвращает активные партии без истории, у продукта
// которых есть шаги шаблона. Партии продуктов без шаблона сюда не попадают:
// план для них всегда пуст.
// Повторная генерация плана безопасна: GeneratePlan идемпотентна.
func (q *Queries) ListLotsPendingPlan(ctx context.Context, limit int) ([]domain.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots l
		WHERE l.status = 'ACTIVE'
		  AND l.product_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM process_history h WHERE h.lot_id = l.id)
		  AND EXISTS (SELECT 1 FROM template_steps s WHERE s.product_id = l.product_id)
		ORDER BY l.created_at
		LIMIT $1
	`
	return q.queryLots(ctx, query, limit)
}

// --- Helpers ---

func (q *Queries) loadLot(ctx context.Context, row pgx.Row) (*domain.Lot, error) {
	lot, err := scanLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := q.ListHistory(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	lot.History = history
	return lot, nil
}

func (q *Queries) queryLots(ctx context.Context, query string, args ...any) ([]domain.Lot, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, *lot)
	}
	return lots, rows.Err()
}

// scanLot сканирует строку в Lot. pgx.Rows удовлетворяет pgx.Row.
func scanLot(row pgx.Row) (*domain.Lot, error) {
	var l domain.Lot
	err := row.Scan(
		&l.ID,
		&l.Code,
		&l.OrderID,
		&l.ParentID,
		&l.ProductID,
		&l.Quantity,
		&l.Status,
		&l.CurrentProcessID,
		&l.CurrentWorkshopID,
		&l.CurrentTransporterID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan lot: %w", err)
	}
	return &l, nil
}
