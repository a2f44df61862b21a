// Package config загружает настройки сервисов из окружения.
//
// Источники по убыванию приоритета: переменные окружения, файл .env
// (если есть), значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Хранилища.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Способы запуска генерации плана после создания заказа.
const (
	DispatchInline = "inline"
	DispatchQueue  = "queue"
)

// Config - настройки всех бинарников.
type Config struct {
	DBURL          string `mapstructure:"DB_URL"`
	AMQPURL        string `mapstructure:"AMQP_URL"`
	HTTPAddr       string `mapstructure:"HTTP_ADDR"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	Storage        string `mapstructure:"STORAGE"`
	PlanDispatch   string `mapstructure:"PLAN_DISPATCH"`
	ReportCron     string `mapstructure:"REPORT_CRON"`
	ReportTimezone string `mapstructure:"REPORT_TIMEZONE"`
	MigrateOnStart bool   `mapstructure:"MIGRATE_ON_START"`
}

var keys = map[string]any{
	"DB_URL":           "",
	"AMQP_URL":         "",
	"HTTP_ADDR":        ":8080",
	"LOG_LEVEL":        "INFO",
	"LOG_FORMAT":       "json",
	"STORAGE":          StoragePostgres,
	"PLAN_DISPATCH":    DispatchInline,
	"REPORT_CRON":      "0 20 * * *",
	"REPORT_TIMEZONE":  "UTC",
	"MIGRATE_ON_START": false,
}

// Load читает конфигурацию. envFile - необязательный .env файл.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, def := range keys {
		v.SetDefault(key, def)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate проверяет значения перечислений, cron-выражение и часовой пояс.
func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}

	switch c.PlanDispatch {
	case DispatchInline, DispatchQueue:
	default:
		return fmt.Errorf("config: unknown PLAN_DISPATCH %q", c.PlanDispatch)
	}

	if _, err := cron.ParseStandard(c.ReportCron); err != nil {
		return fmt.Errorf("config: invalid REPORT_CRON %q: %w", c.ReportCron, err)
	}
	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("config: invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return nil
}

// Location возвращает часовой пояс отчётов (UTC при ошибке).
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
