// Package scheduler публикует дневную сводку производства по расписанию.
//
// Структура:
//   - scheduler.go - Scheduler на robfig/cron (Tick, Start, Stop)
//   - cron.go      - разбор cron-выражений и вычисление следующего запуска
//   - leader.go    - выбор лидера через pg_try_advisory_lock
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Summarizer: svc,
//	    Sender:     publisher,
//	    Leader:     scheduler.NewAdvisoryLock(pool, scheduler.LockKey, logger),
//	    Expr:       cfg.ReportCron,
//	    Location:   loc,
//	    Logger:     logger,
//	})
//	sched.Start()
//	defer sched.Stop()
//
// Несколько экземпляров могут работать одновременно: сводку считает и
// публикует только держатель advisory lock.
package scheduler
