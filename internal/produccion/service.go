package produccion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/telemetry"
)

// Имена операций для логов и метрик.
const (
	opCreateOrder   = "create_order"
	opCreateLot     = "create_lot"
	opGeneratePlan  = "generate_plan"
	opAdvance       = "advance_process"
	opRefresh       = "refresh_lot_state"
	opSplit         = "split_lot"
	opMove          = "move_lot"
	opCreateProduct = "create_product"
	opUpdateProduct = "update_product"
	opCreateRecord  = "create_manual_record"
)

// Причины событий об изменении партии.
const (
	ReasonCreated  = "created"
	ReasonPlanned  = "planned"
	ReasonAdvanced = "advanced"
	ReasonSplit    = "split"
	ReasonMoved    = "moved"
)

// PlanDispatcher запускает генерацию плана для созданной партии.
// Ошибки обрабатывает сам диспетчер.
type PlanDispatcher interface {
	DispatchPlan(ctx context.Context, lotID, productID uuid.UUID)
}

// EventPublisher публикует события об изменении партий.
type EventPublisher interface {
	LotChanged(ctx context.Context, lot *domain.Lot, reason string) error
}

// Config - зависимости сервиса.
type Config struct {
	Store domain.Store

	// Dispatcher - по умолчанию AsyncDispatcher поверх самого сервиса.
	Dispatcher PlanDispatcher

	// Events - необязательный.
	Events EventPublisher

	Logger *slog.Logger

	// Now - часы; по умолчанию time.Now в UTC.
	Now func() time.Time
}

// Service - операции жизненного цикла партий.
type Service struct {
	store      domain.Store
	dispatcher PlanDispatcher
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService создаёт новый Service.
func NewService(cfg Config) *Service {
	s := &Service{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		events:     cfg.Events,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "produccion")
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.dispatcher == nil {
		s.dispatcher = NewAsyncDispatcher(s, s.logger)
	}
	return s
}

// Wait ждёт завершения фоновой генерации планов, если диспетчер это умеет.
func (s *Service) Wait() {
	if w, ok := s.dispatcher.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// observe пишет метрики и лог по результату операции.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	result := resultOf(err)
	telemetry.ObserveOperation(op, result, time.Since(start))

	logger := telemetry.WithOperation(telemetry.FromContext(ctx), op)
	switch result {
	case telemetry.ResultOK:
		logger.Debug("operation completed", "duration", time.Since(start))
	case telemetry.ResultError:
		logger.Error("operation failed", "error", err)
	default:
		logger.Info("operation rejected", "result", result, "error", err)
	}
}

// publish отправляет событие после фиксации. Ошибки только логируются.
func (s *Service) publish(ctx context.Context, lot *domain.Lot, reason string) {
	if s.events == nil || lot == nil {
		return
	}
	if err := s.events.LotChanged(ctx, lot, reason); err != nil {
		telemetry.WithLotID(s.logger, lot.ID.String()).Warn("failed to publish lot event",
			"reason", reason,
			"error", err,
		)
	}
}

// storageErr оставляет ошибки ядра как есть, остальные относит к ErrStorage.
func storageErr(err error) error {
	if err == nil || domain.IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

// resultOf классифицирует ошибку для метрик.
func resultOf(err error) string {
	switch {
	case err == nil:
		return telemetry.ResultOK
	case errors.Is(err, domain.ErrValidation):
		return telemetry.ResultValidation
	case errors.Is(err, domain.ErrNotFound):
		return telemetry.ResultNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return telemetry.ResultInvalidState
	default:
		return telemetry.ResultError
	}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
