package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind - тип ручной записи журнала.
type RecordKind string

const (
	// RecordKindPayment - платёж (цеху, перевозчику, от клиента).
	RecordKindPayment RecordKind = "PAYMENT"

	// RecordKindReminder - напоминание.
	RecordKindReminder RecordKind = "REMINDER"

	// RecordKindNote - произвольная заметка.
	RecordKindNote RecordKind = "GENERAL_NOTE"
)

// Valid проверяет, что тип входит в закрытый набор значений.
func (k RecordKind) Valid() bool {
	switch k {
	case RecordKindPayment, RecordKindReminder, RecordKindNote:
		return true
	default:
		return false
	}
}

// ParseRecordKind парсит строку в RecordKind.
func ParseRecordKind(s string) (RecordKind, error) {
	kind := RecordKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown record kind %q", ErrValidation, s)
	}
	return kind, nil
}

// ManualRecord - запись журнала, внесённая вручную.
// Попадает в дневную сводку по Date.
type ManualRecord struct {
	ID          uuid.UUID           `json:"id"`
	Kind        RecordKind          `json:"kind"`
	Description string              `json:"description"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        time.Time           `json:"date"`
	User        string              `json:"user,omitempty"`
	OrderID     *uuid.UUID          `json:"order_id,omitempty"`
	WorkshopID  *uuid.UUID          `json:"workshop_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
