// produccion-worker - генерирует планы партий вне процесса API.
//
// Worker:
//   - получает lot.plan_requested из очереди lots.plan
//   - повторяет генерацию при ошибках хранилища с exponential backoff
//   - периодически подбирает партии без плана (если сообщение потерялось)
//
// Без RabbitMQ работает только опросом. Workers масштабируются
// горизонтально: генерация плана идемпотентна.
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
	"github.com/shaiso/produccion/internal/telemetry"
	"github.com/shaiso/produccion/internal/worker"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting produccion-worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Storage != config.StoragePostgres {
		logger.Error("worker requires STORAGE=postgres", "storage", cfg.Storage)
		os.Exit(1)
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	svcCfg := produccion.Config{Store: repo.NewStore(pool), Logger: logger}

	conn, err := mq.NewConnection(cfg.AMQPURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		conn = nil
	} else {
		defer conn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, conn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		svcCfg.Events = mq.NewLotEvents(mq.NewPublisher(conn, logger))
	}

	svc := produccion.NewService(svcCfg)
	w := worker.New(worker.Config{
		Planner: svc,
		Conn:    conn,
		Logger:  logger,
	})
	w.Start(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if conn != nil && !conn.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("rabbitmq reconnecting"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
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

	w.Stop()
	svc.Wait()
	logger.Info("produccion-worker stopped")
}
