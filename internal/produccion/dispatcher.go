package produccion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/telemetry"
)

// PlanGenerator - то, что умеет генерировать план партии.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, lotID, productID uuid.UUID) ([]domain.HistoryEntry, error)
}

// AsyncDispatcher генерирует планы в отдельных горутинах, по одной на партию.
type AsyncDispatcher struct {
	gen    PlanGenerator
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAsyncDispatcher создаёт новый AsyncDispatcher.
func NewAsyncDispatcher(gen PlanGenerator, logger *slog.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{gen: gen, logger: logger}
}

// DispatchPlan запускает генерацию плана. Отмена ctx вызывающего
// не прерывает генерацию.
func (d *AsyncDispatcher) DispatchPlan(ctx context.Context, lotID, productID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if _, err := d.gen.GeneratePlan(ctx, lotID, productID); err != nil {
			telemetry.PlanGenerationFailed()
			telemetry.WithLotID(d.logger, lotID.String()).Error("plan generation failed",
				"product_id", productID,
				"error", err,
			)
		}
	}()
}

// Wait ждёт завершения всех запущенных генераций.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
