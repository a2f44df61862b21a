package mq

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// PlanQueue отправляет генерацию плана в очередь lots.plan вместо
// выполнения в процессе API.
//
// Ошибка публикации только логируется: партия без истории будет
// подобрана опросом воркера.
type PlanQueue struct {
	sender Sender
	logger *slog.Logger
}

// NewPlanQueue создаёт PlanQueue.
func NewPlanQueue(sender Sender, logger *slog.Logger) *PlanQueue {
	return &PlanQueue{sender: sender, logger: logger}
}

// DispatchPlan публикует lot.plan_requested.
func (q *PlanQueue) DispatchPlan(ctx context.Context, lotID, productID uuid.UUID) {
	if err := PublishPlanRequested(context.WithoutCancel(ctx), q.sender, lotID, productID); err != nil {
		q.logger.Warn("failed to enqueue plan generation",
			"lot_id", lotID,
			"product_id", productID,
			"error", err,
		)
	}
}

// LotEvents публикует lot.changed.
type LotEvents struct {
	sender Sender
}

// NewLotEvents создаёт LotEvents.
func NewLotEvents(sender Sender) *LotEvents {
	return &LotEvents{sender: sender}
}

// LotChanged реализует produccion.EventPublisher.
func (e *LotEvents) LotChanged(ctx context.Context, lot *domain.Lot, reason string) error {
	return PublishLotChanged(ctx, e.sender, lot, reason)
}
