package api

import (
	"log/slog"
	"time"

	"github.com/shaiso/produccion/internal/produccion"
)

// Handler - главный обработчик API с зависимостями.
type Handler struct {
	svc    *produccion.Service
	loc    *time.Location
	logger *slog.Logger
}

// Config - конфигурация для создания Handler.
type Config struct {
	Service *produccion.Service

	// Location - часовой пояс для дневных отчётов (default: UTC).
	Location *time.Location

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		svc:    cfg.Service,
		loc:    cfg.Location,
		logger: cfg.Logger,
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}
