package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/produccion/internal/domain"
)

const historySelect = `
	SELECT h.id, h.seq, h.lot_id, h.process_id, h.workshop_id, h.transporter_id,
	       h.status, h.entry_date, h.exit_date, h.notes, h.price,
	       h.requires_advance, h.specifications, h.is_transport,
	       h.created_at, h.updated_at,
	       p.name, p.sort_order, p.standard_duration_days, p.created_at
	FROM process_history h
	LEFT JOIN processes p ON p.id = h.process_id
`

// ListHistory возвращает историю партии в порядке вставки.
func (q *Queries) ListHistory(ctx context.Context, lotID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := historySelect + ` WHERE h.lot_id = $1 ORDER BY h.seq`
	return q.queryHistory(ctx, query, lotID)
}

// ListHistoryByOrder возвращает историю всех партий заказа.
func (q *Queries) ListHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := historySelect + `
		JOIN lots l ON l.id = h.lot_id
		WHERE l.order_id = $1
		ORDER BY h.seq
	`
	return q.queryHistory(ctx, query, orderID)
}

// ListEntriesExitedBetween возвращает завершённые шаги с датой выхода в [from, to].
// Записи старого формата без статуса учитываются по дате выхода.
func (q *Queries) ListEntriesExitedBetween(ctx context.Context, from, to time.Time) ([]domain.HistoryEntry, error) {
	query := historySelect + `
		WHERE h.exit_date BETWEEN $1 AND $2
		  AND (h.status IS NULL OR h.status = 'COMPLETED')
		ORDER BY h.exit_date, h.seq
	`
	return q.queryHistory(ctx, query, from, to)
}

// CreateHistoryEntry добавляет запись истории. Seq назначает БД.
func (q *Queries) CreateHistoryEntry(ctx context.Context, e *domain.HistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO process_history (id, lot_id, process_id, workshop_id, transporter_id,
		                             status, entry_date, exit_date, notes, price,
		                             requires_advance, specifications, is_transport)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq, created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		e.ID,
		e.LotID,
		nullUUID(e.ProcessID),
		nullUUID(e.WorkshopID),
		nullUUID(e.TransporterID),
		entryStatusParam(e.Status),
		e.EntryDate,
		e.ExitDate,
		nullString(e.Notes),
		e.Price,
		e.RequiresAdvance,
		nullString(e.Specifications),
		e.IsTransport,
	).Scan(&e.Seq, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return classify("insert history entry", err)
	}
	return nil
}

// UpdateHistoryEntry обновляет статус, даты и изменяемые поля записи.
func (q *Queries) UpdateHistoryEntry(ctx context.Context, e *domain.HistoryEntry) error {
	query := `
		UPDATE process_history
		SET workshop_id = $2, transporter_id = $3, status = $4,
		    entry_date = $5, exit_date = $6, notes = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := q.db.QueryRow(ctx, query,
		e.ID,
		nullUUID(e.WorkshopID),
		nullUUID(e.TransporterID),
		entryStatusParam(e.Status),
		e.EntryDate,
		e.ExitDate,
		nullString(e.Notes),
	).Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return classify("update history entry", err)
	}
	return nil
}

// --- Helpers ---

func (q *Queries) queryHistory(ctx context.Context, query string, args ...any) ([]domain.HistoryEntry, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanHistoryEntry(rows pgx.Rows) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var status, notes, specs *string
	var procName *string
	var procOrder *int
	var procDuration *float64
	var procCreated *time.Time

	err := rows.Scan(
		&e.ID,
		&e.Seq,
		&e.LotID,
		&e.ProcessID,
		&e.WorkshopID,
		&e.TransporterID,
		&status,
		&e.EntryDate,
		&e.ExitDate,
		&notes,
		&e.Price,
		&e.RequiresAdvance,
		&specs,
		&e.IsTransport,
		&e.CreatedAt,
		&e.UpdatedAt,
		&procName,
		&procOrder,
		&procDuration,
		&procCreated,
	)
	if err != nil {
		return nil, fmt.Errorf("scan history entry: %w", err)
	}

	if status != nil {
		e.Status = domain.EntryStatus(*status)
	}
	e.Notes = derefString(notes)
	e.Specifications = derefString(specs)

	if e.ProcessID != nil && procName != nil {
		e.Process = &domain.Process{
			ID:   *e.ProcessID,
			Name: *procName,
		}
		if procOrder != nil {
			e.Process.Order = *procOrder
		}
		if procDuration != nil {
			e.Process.StandardDurationDays = *procDuration
		}
		if procCreated != nil {
			e.Process.CreatedAt = *procCreated
		}
	}
	return &e, nil
}
