package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// CreateManualRecord сохраняет ручную запись журнала.
func (q *Queries) CreateManualRecord(ctx context.Context, r *domain.ManualRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	query := `
		INSERT INTO manual_records (id, kind, description, amount, record_date,
		                            username, order_id, workshop_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := q.db.QueryRow(ctx, query,
		r.ID,
		r.Kind,
		r.Description,
		r.Amount,
		r.Date,
		nullString(r.User),
		nullUUID(r.OrderID),
		nullUUID(r.WorkshopID),
	).Scan(&r.CreatedAt)
	if err != nil {
		return classify("insert manual record", err)
	}
	return nil
}

// ListManualRecordsBetween возвращает записи с датой в [from, to] по возрастанию даты.
func (q *Queries) ListManualRecordsBetween(ctx context.Context, from, to time.Time) ([]domain.ManualRecord, error) {
	query := `
		SELECT id, kind, description, amount, record_date, username,
		       order_id, workshop_id, created_at
		FROM manual_records
		WHERE record_date BETWEEN $1 AND $2
		ORDER BY record_date, created_at
	`
	rows, err := q.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list manual records: %w", err)
	}
	defer rows.Close()

	records := []domain.ManualRecord{}
	for rows.Next() {
		var r domain.ManualRecord
		var user *string
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Description, &r.Amount, &r.Date, &user,
			&r.OrderID, &r.WorkshopID, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan manual record: %w", err)
		}
		r.User = derefString(user)
		records = append(records, r)
	}
	return records, rows.Err()
}
