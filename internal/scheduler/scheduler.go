package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/produccion/internal/engine"
	"github.com/shaiso/produccion/internal/mq"
)

// Summarizer считает дневную сводку. Реализуется *produccion.Service.
type Summarizer interface {
	DailySummary(ctx context.Context, day time.Time, loc *time.Location) (*engine.DailySummary, error)
}

// Leader сообщает, может ли этот экземпляр выполнять задания.
type Leader interface {
	IsLeader(ctx context.Context) bool
}

// Scheduler по cron-расписанию считает дневную сводку завершённых шагов
// и публикует её в reports.daily.
type Scheduler struct {
	summarizer Summarizer
	sender     mq.Sender
	leader     Leader
	expr       string
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time

	cron *cron.Cron
}

// Config - конфигурация Scheduler.
type Config struct {
	Summarizer Summarizer

	// Sender - nil: сводка только логируется.
	Sender mq.Sender

	// Leader - nil: экземпляр всегда лидер.
	Leader Leader

	// Expr - cron-выражение (default: "0 20 * * *").
	Expr string

	// Location - часовой пояс расписания и границ дня (default: UTC).
	Location *time.Location

	Logger *slog.Logger
	Now    func() time.Time
}

// New создаёт Scheduler. Возвращает ошибку для невалидного выражения.
func New(cfg Config) (*Scheduler, error) {
	s := &Scheduler{
		summarizer: cfg.Summarizer,
		sender:     cfg.Sender,
		leader:     cfg.Leader,
		expr:       cfg.Expr,
		loc:        cfg.Location,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.expr == "" {
		s.expr = "0 20 * * *"
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "scheduler")
	if s.now == nil {
		s.now = time.Now
	}

	s.cron = cron.New(cron.WithParser(cronParser), cron.WithLocation(s.loc))
	if _, err := s.cron.AddFunc(s.expr, s.fire); err != nil {
		return nil, fmt.Errorf("schedule daily summary %q: %w", s.expr, err)
	}
	return s, nil
}

// Start запускает расписание. Stop - остановка.
func (s *Scheduler) Start() {
	next, _ := NextRun(s.expr, s.now(), s.loc)
	s.logger.Info("scheduler started", "cron", s.expr, "timezone", s.loc.String(), "next_run", next)
	s.cron.Start()
}

// Stop останавливает расписание и ждёт текущего задания.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, _ = s.Tick(ctx)
}

// Tick выполняет одно срабатывание: если экземпляр - лидер, считает
// сводку за текущий день (в часовом поясе расписания) и публикует её.
// Возвращает nil-сводку, если экземпляр не лидер.
func (s *Scheduler) Tick(ctx context.Context) (*engine.DailySummary, error) {
	if s.leader != nil && !s.leader.IsLeader(ctx) {
		s.logger.Debug("not a leader, skipping daily summary")
		return nil, nil
	}

	day := s.now().In(s.loc)
	summary, err := s.summarizer.DailySummary(ctx, day, s.loc)
	if err != nil {
		s.logger.Error("failed to build daily summary", "day", day.Format(time.DateOnly), "error", err)
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	s.logger.Info("daily summary",
		"day", day.Format(time.DateOnly),
		"completed_steps", summary.Total,
		"workshops", len(summary.ByWorkshop),
		"processes", len(summary.ByProcess),
	)

	if s.sender == nil {
		return summary, nil
	}
	if err := mq.PublishDailySummary(ctx, s.sender, summary); err != nil {
		s.logger.Warn("failed to publish daily summary", "error", err)
		return summary, fmt.Errorf("publish daily summary: %w", err)
	}
	return summary, nil
}
