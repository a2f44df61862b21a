package produccion

import (
	"context"
	"time"

	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
)

// OrderReport возвращает заказ с метриками прогресса, оставшегося времени
// и стоимости по каждой партии и по заказу в целом.
func (s *Service) OrderReport(ctx context.Context, number int) (*engine.OrderReport, error) {
	var (
		order   *domain.Order
		catalog []domain.Process
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		o, err := loadOrderTree(ctx, q, number)
		if err != nil {
			return err
		}
		order = o

		catalog, err = q.ListProcesses(ctx)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	report := engine.BuildOrderReport(order, catalog, s.now())
	return &report, nil
}

// DailySummary считает шаги, завершённые в календарный день day (в loc),
// по цехам и по процессам, и добавляет ручные записи этого дня.
func (s *Service) DailySummary(ctx context.Context, day time.Time, loc *time.Location) (*engine.DailySummary, error) {
	from, to := engine.DayBounds(day, loc)

	var (
		entries []domain.HistoryEntry
		records []domain.ManualRecord
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		entries, err = q.ListEntriesExitedBetween(ctx, from, to)
		if err != nil {
			return err
		}
		records, err = q.ListManualRecordsBetween(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	summary := engine.SummarizeDay(from, entries)
	if len(records) > 0 {
		summary.ManualRecords = records
	}
	return &summary, nil
}
