package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// UpsertProcess создаёт или обновляет процесс каталога по уникальному имени.
//
// Порядок всегда синхронизируется. Длительность обновляется, только если
// передана; новый процесс без длительности получает 1 день.
func (q *Queries) UpsertProcess(ctx context.Context, name string, order int, durationDays *float64) (*domain.Process, error) {
	query := `
		INSERT INTO processes (id, name, sort_order, standard_duration_days)
		VALUES ($1, $2, $3, COALESCE($4::double precision, 1))
		ON CONFLICT (name) DO UPDATE
		SET sort_order = EXCLUDED.sort_order,
		    standard_duration_days = COALESCE($4::double precision, processes.standard_duration_days)
		RETURNING id, name, sort_order, standard_duration_days, created_at
	`
	var p domain.Process
	err := q.db.QueryRow(ctx, query, uuid.New(), name, order, durationDays).Scan(
		&p.ID,
		&p.Name,
		&p.Order,
		&p.StandardDurationDays,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, classify("upsert process", err)
	}
	return &p, nil
}

// ListProcesses возвращает каталог процессов по порядку.
func (q *Queries) ListProcesses(ctx context.Context) ([]domain.Process, error) {
	query := `
		SELECT id, name, sort_order, standard_duration_days, created_at
		FROM processes
		ORDER BY sort_order, name
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var processes []domain.Process
	for rows.Next() {
		var p domain.Process
		if err := rows.Scan(&p.ID, &p.Name, &p.Order, &p.StandardDurationDays, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}
