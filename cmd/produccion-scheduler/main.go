// produccion-scheduler - по расписанию REPORT_CRON считает дневную
// сводку завершённых шагов и публикует её в reports.daily.
//
// Несколько экземпляров допустимы: тик выполняет только держатель
// advisory lock в Postgres.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/produccion/internal/config"
	"github.com/shaiso/produccion/internal/mq"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shaiso/produccion/internal/repo"
	"github.com/shaiso/produccion/internal/scheduler"
	"github.com/shaiso/produccion/internal/telemetry"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting produccion-scheduler", "cron", cfg.ReportCron, "timezone", cfg.ReportTimezone)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Storage != config.StoragePostgres {
		logger.Error("scheduler requires STORAGE=postgres", "storage", cfg.Storage)
		os.Exit(1)
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	schedCfg := scheduler.Config{
		Summarizer: produccion.NewService(produccion.Config{Store: repo.NewStore(pool), Logger: logger}),
		Expr:       cfg.ReportCron,
		Location:   cfg.Location(),
		Logger:     logger,
	}

	lock := scheduler.NewAdvisoryLock(pool, scheduler.LockKey, logger)
	defer lock.Release(context.Background())
	schedCfg.Leader = lock

	conn, err := mq.NewConnection(cfg.AMQPURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, summaries are only logged", "error", err)
	} else {
		defer conn.Close()
		if err := mq.SetupTopology(ctx, conn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		schedCfg.Sender = mq.NewPublisher(conn, logger)
	}

	sched, err := scheduler.New(schedCfg)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		addr = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	sched.Stop()
	logger.Info("produccion-scheduler stopped")
}
