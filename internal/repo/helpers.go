package repo

import (
	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

// derefString возвращает "" для NULL.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// entryStatusParam переводит legacy-статус в NULL.
func entryStatusParam(s domain.EntryStatus) *string {
	return nullString(string(s))
}

// lotStatusesParam переводит статусы в text[] для фильтра ANY($n).
func lotStatusesParam(statuses []domain.LotStatus) []string {
	if len(statuses) == 0 {
		return nil
	}
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
