package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shaiso/produccion/internal/domain"
)

// Общие ошибки репозиториев. Совместимы с видами ошибок ядра через errors.Is.
var (
	// ErrNotFound - запись не найдена в БД.
	ErrNotFound = fmt.Errorf("record %w", domain.ErrNotFound)

	// ErrAlreadyExists - запись уже существует (конфликт уникальности).
	ErrAlreadyExists = fmt.Errorf("%w: already exists", domain.ErrValidation)
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify переводит ошибки ограничений БД в ошибки ядра.
// Остальные ошибки возвращаются обёрнутыми в op.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrAlreadyExists, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: referenced row (%s)", op, domain.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
