package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/mq"
)

// Default configuration values.
const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 50
	defaultPrefetch     = 5
)

// Planner генерирует планы и находит партии, которым план ещё нужен.
// Реализуется *produccion.Service.
type Planner interface {
	GeneratePlan(ctx context.Context, lotID, productID uuid.UUID) ([]domain.HistoryEntry, error)
	PendingPlans(ctx context.Context, limit int) ([]domain.Lot, error)
}

// Worker генерирует планы производства вне процесса API.
//
// Источники работы:
//   - очередь lots.plan (event-driven)
//   - периодический опрос партий без истории (fallback на случай
//     потерянных сообщений)
type Worker struct {
	planner Planner
	conn    *mq.Connection
	retry   RetryPolicy

	pollInterval time.Duration
	batchSize    int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config - конфигурация Worker.
type Config struct {
	Planner Planner

	// Conn - nil отключает consumer, остаётся только опрос.
	Conn *mq.Connection

	Retry        RetryPolicy
	PollInterval time.Duration
	BatchSize    int

	Logger *slog.Logger
}

// New создаёт Worker.
func New(cfg Config) *Worker {
	w := &Worker{
		planner:      cfg.Planner,
		conn:         cfg.Conn,
		retry:        cfg.Retry.withDefaults(),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		logger:       cfg.Logger,
	}
	if w.pollInterval <= 0 {
		w.pollInterval = defaultPollInterval
	}
	if w.batchSize <= 0 {
		w.batchSize = defaultBatchSize
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("component", "worker")
	return w
}

// Start запускает consumer и опрос в фоне.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"max_attempts", w.retry.MaxAttempts,
	)

	if w.conn != nil {
		consumer := mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    mq.QueueLotsPlan,
			Handler:  w.HandlePlanRequested,
			Prefetch: defaultPrefetch,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("plan consumer stopped", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()
}

// Stop останавливает Worker и ждёт завершения горутин.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Первый опрос сразу: подхватываем партии, созданные пока воркер не работал.
	w.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll генерирует планы для одной пачки партий без истории.
// Возвращает количество партий, получивших непустой план.
func (w *Worker) Poll(ctx context.Context) int {
	lots, err := w.planner.PendingPlans(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to list lots pending plan", "error", err)
		return 0
	}
	if len(lots) == 0 {
		return 0
	}

	w.logger.Debug("poll found lots pending plan", "count", len(lots))

	done := 0
	for i := range lots {
		if ctx.Err() != nil {
			break
		}
		n, err := w.generate(ctx, lots[i].ID, uuid.Nil)
		if err != nil {
			w.logger.Warn("plan generation from poll failed", "lot_id", lots[i].ID, "error", err)
			continue
		}
		if n > 0 {
			done++
		}
	}
	return done
}
