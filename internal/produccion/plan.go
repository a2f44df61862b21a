package produccion

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/telemetry"
)

// GeneratePlan создаёт историю партии по шаблону продукта.
//
// Идемпотентна: если у партии уже есть история, она возвращается без
// изменений. productID == uuid.Nil - взять продукт партии. Продукт без
// шаблона даёт пустой план.
func (s *Service) GeneratePlan(ctx context.Context, lotID, productID uuid.UUID) (entries []domain.HistoryEntry, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithLotID(s.logger, lotID.String()))
	defer func() { s.observe(ctx, opGeneratePlan, start, err) }()

	var lot *domain.Lot
	var created bool
	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		l, err := q.GetLotForUpdate(ctx, lotID)
		if err != nil {
			return fmt.Errorf("lot %s: %w", lotID, err)
		}
		lot = l

		if len(l.History) > 0 {
			entries = l.History
			return nil
		}
		if err := l.EnsureEditable(); err != nil {
			return err
		}

		pid := productID
		if pid == uuid.Nil && l.ProductID != nil {
			pid = *l.ProductID
		}
		if pid == uuid.Nil {
			return nil
		}

		entries, err = s.generatePlan(ctx, q, l, pid)
		created = len(entries) > 0
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	if created {
		lot.History = entries
		s.publish(ctx, lot, ReasonPlanned)
	}
	return entries, nil
}

// generatePlan выполняет генерацию внутри уже открытой транзакции.
// Вызывающий гарантирует, что история партии пуста.
func (s *Service) generatePlan(ctx context.Context, q domain.Queries, lot *domain.Lot, productID uuid.UUID) ([]domain.HistoryEntry, error) {
	steps, err := q.ListTemplateSteps(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return nil, fmt.Errorf("product %s: %w", productID, err)
		}
		return nil, nil
	}

	now := s.now()
	entries := make([]domain.HistoryEntry, 0, len(steps))
	for _, step := range steps {
		process, err := q.UpsertProcess(ctx, step.Name, step.Order, step.EstimatedDurationDays)
		if err != nil {
			return nil, fmt.Errorf("upsert process %q: %w", step.Name, err)
		}

		entry := domain.HistoryEntry{
			LotID:           lot.ID,
			ProcessID:       &process.ID,
			Process:         process,
			WorkshopID:      step.DefaultWorkshopID,
			Status:          domain.EntryStatusPending,
			Notes:           estimateNote(step.EstimatedDurationDays),
			Price:           step.Price,
			RequiresAdvance: step.RequiresAdvance,
			Specifications:  step.Specifications,
			IsTransport:     step.IsTransport,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := q.CreateHistoryEntry(ctx, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// estimateNote - заметка с оценкой длительности шага.
func estimateNote(days *float64) string {
	if days == nil || *days == 0 {
		return ""
	}
	return "Estimated: " + strconv.FormatFloat(*days, 'f', -1, 64) + " days"
}

// PendingPlans возвращает до limit активных партий с продуктом, для которых
// план ещё не сгенерирован.
func (s *Service) PendingPlans(ctx context.Context, limit int) ([]domain.Lot, error) {
	var lots []domain.Lot
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		lots, err = q.ListLotsPendingPlan(ctx, limit)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return lots, nil
}
