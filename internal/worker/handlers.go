package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/mq"
	"github.com/shaiso/produccion/internal/telemetry"
)

// HandlePlanRequested обрабатывает сообщение из очереди lots.plan.
func (w *Worker) HandlePlanRequested(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.PlanRequestedPayload](d)
	if err != nil {
		w.logger.Error("failed to parse plan request", "message_id", d.ID, "error", err)
		return err
	}
	if payload.LotID == uuid.Nil {
		return fmt.Errorf("%w: plan request without lot id", mq.ErrPermanent)
	}

	w.logger.Debug("received plan request",
		"lot_id", payload.LotID,
		"product_id", payload.ProductID,
	)

	_, err = w.generate(ctx, payload.LotID, payload.ProductID)
	return err
}

// generate вызывает генерацию плана с повторами и возвращает число
// созданных шагов.
//
// Исчезнувшая или уже завершённая партия - не ошибка: сообщение
// подтверждается. Ошибка валидации помечается mq.ErrPermanent.
// Ошибки хранилища повторяются по RetryPolicy.
func (w *Worker) generate(ctx context.Context, lotID, productID uuid.UUID) (int, error) {
	logger := telemetry.WithLotID(w.logger, lotID.String())

	for attempt := 1; ; attempt++ {
		entries, err := w.planner.GeneratePlan(ctx, lotID, productID)
		switch {
		case err == nil:
			logger.Info("plan generated", "entries", len(entries), "attempt", attempt)
			return len(entries), nil

		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidState):
			logger.Info("plan not generated", "reason", err)
			return 0, nil

		case errors.Is(err, domain.ErrValidation):
			telemetry.PlanGenerationFailed()
			return 0, fmt.Errorf("%w: %w", mq.ErrPermanent, err)
		}

		if attempt >= w.retry.MaxAttempts {
			telemetry.PlanGenerationFailed()
			return 0, fmt.Errorf("generate plan for lot %s after %d attempts: %w", lotID, attempt, err)
		}

		delay := w.retry.Backoff(attempt)
		logger.Warn("plan generation failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
