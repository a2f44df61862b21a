// produccion-api - HTTP API учёта производства.
//
// Хранилище выбирается STORAGE (postgres или memory). При
// PLAN_DISPATCH=queue генерация планов уходит в очередь lots.plan,
// а изменения партий публикуются в produccion.lots.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/produccion/internal/api"
	"github.com/shaiso/produccion/internal/config"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/mq"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shaiso/produccion/internal/repo"
	"github.com/shaiso/produccion/internal/repo/memstore"
	"github.com/shaiso/produccion/internal/telemetry"
)

var (
	startTime    = time.Now()
	healthChecks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "produccion_api_health_checks_total",
		Help: "Total health checks served by produccion-api",
	})
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting produccion-api", "storage", cfg.Storage, "plan_dispatch", cfg.PlanDispatch)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svcCfg := produccion.Config{Store: store, Logger: logger}

	if cfg.PlanDispatch == config.DispatchQueue {
		conn, err := mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := mq.SetupTopology(ctx, conn); err != nil {
			logger.Error("failed to setup topology", "error", err)
			os.Exit(1)
		}

		publisher := mq.NewPublisher(conn, logger)
		svcCfg.Dispatcher = mq.NewPlanQueue(publisher, logger)
		svcCfg.Events = mq.NewLotEvents(publisher)
		logger.Info("RabbitMQ connected", "topology", mq.TopologyInfo())
	}

	svc := produccion.NewService(svcCfg)
	handler := api.NewHandler(api.Config{
		Service:  svc,
		Location: cfg.Location(),
		Logger:   logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		healthChecks.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	svc.Wait()

	logger.Info("stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx, cfg.DBURL); err != nil {
			return nil, nil, err
		}
		logger.Info("migrations applied")
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")
	return repo.NewStore(pool), pool.Close, nil
}
