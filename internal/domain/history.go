package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AutoCompletedNote - пометка для шагов, завершённых автоматически
// при завершении более позднего шага.
const AutoCompletedNote = "Auto-completed"

// HistoryEntry - запись истории процессов партии.
//
// Создаётся пачкой из шаблона продукта ("план производства") или
// вручную при перемещении партии (MoveLot, без процесса каталога).
//
// Поддерживаются два поколения данных:
//   - новые записи с явным Status
//   - старые записи без статуса, где завершённость определяется по ExitDate
type HistoryEntry struct {
	// ID - уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// Seq - порядок вставки (стабильная сортировка внутри партии).
	Seq int64 `json:"seq"`

	// LotID - партия-владелец.
	LotID uuid.UUID `json:"lot_id"`

	// ProcessID - процесс каталога. Nil для записей перемещения.
	ProcessID *uuid.UUID `json:"process_id,omitempty"`

	// Process - процесс каталога (подгружается при чтении).
	Process *Process `json:"process,omitempty"`

	// WorkshopID - цех, где выполняется шаг.
	WorkshopID *uuid.UUID `json:"workshop_id,omitempty"`

	// TransporterID - перевозчик (для транспортных шагов).
	TransporterID *uuid.UUID `json:"transporter_id,omitempty"`

	// Status - статус шага.
	Status EntryStatus `json:"status"`

	// EntryDate - время начала шага.
	EntryDate *time.Time `json:"entry_date,omitempty"`

	// ExitDate - время завершения шага.
	ExitDate *time.Time `json:"exit_date,omitempty"`

	Notes           string              `json:"notes,omitempty"`
	Price           decimal.NullDecimal `json:"price"`
	RequiresAdvance bool                `json:"requires_advance"`
	Specifications  string              `json:"specifications,omitempty"`
	IsTransport     bool                `json:"is_transport"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryUpdate - необязательные поля, которые меняются вместе со статусом.
type EntryUpdate struct {
	WorkshopID    *uuid.UUID
	TransporterID *uuid.UUID
	Notes         *string
}

// Completed возвращает true, если шаг завершён.
//
// Правило совместимости: запись старого формата (пустой Status)
// считается завершённой, если у неё есть ExitDate.
func (e *HistoryEntry) Completed() bool {
	switch e.Status {
	case EntryStatusCompleted:
		return true
	case EntryStatusLegacy:
		return e.ExitDate != nil
	case EntryStatusPending, EntryStatusInProgress:
		return false
	default:
		return false
	}
}

// Done возвращает true, если шаг завершён или у него проставлена дата выхода.
// Используется при расчёте доли выполнения.
func (e *HistoryEntry) Done() bool {
	return e.Completed() || e.ExitDate != nil
}

// InProgress возвращает true, если шаг выполняется.
func (e *HistoryEntry) InProgress() bool {
	return e.Status == EntryStatusInProgress
}

// ProcessOrder возвращает порядок процесса каталога, если он известен.
func (e *HistoryEntry) ProcessOrder() (int, bool) {
	if e.Process == nil {
		return 0, false
	}
	return e.Process.Order, true
}

// ProcessName возвращает имя процесса или пустую строку.
func (e *HistoryEntry) ProcessName() string {
	if e.Process == nil {
		return ""
	}
	return e.Process.Name
}

// Start переводит шаг в IN_PROGRESS.
func (e *HistoryEntry) Start(at time.Time, upd EntryUpdate) error {
	switch e.Status {
	case EntryStatusInProgress:
		return fmt.Errorf("%w: process %q already started", ErrInvalidState, e.ProcessName())
	case EntryStatusCompleted:
		return fmt.Errorf("%w: process %q already completed", ErrInvalidState, e.ProcessName())
	case EntryStatusLegacy:
		if e.Completed() {
			return fmt.Errorf("%w: process %q already completed", ErrInvalidState, e.ProcessName())
		}
	case EntryStatusPending:
	default:
		return fmt.Errorf("%w: unknown entry status %q", ErrInvalidState, e.Status)
	}

	e.Status = EntryStatusInProgress
	if e.EntryDate == nil {
		e.EntryDate = &at
	}
	e.ExitDate = nil
	e.apply(upd)
	return nil
}

// Complete переводит шаг в COMPLETED.
// Существующие даты начала и завершения сохраняются.
func (e *HistoryEntry) Complete(at time.Time, upd EntryUpdate) error {
	switch e.Status {
	case EntryStatusCompleted:
		return fmt.Errorf("%w: process %q already completed", ErrInvalidState, e.ProcessName())
	case EntryStatusLegacy:
		if e.Completed() {
			return fmt.Errorf("%w: process %q already completed", ErrInvalidState, e.ProcessName())
		}
	case EntryStatusPending, EntryStatusInProgress:
	default:
		return fmt.Errorf("%w: unknown entry status %q", ErrInvalidState, e.Status)
	}

	e.markCompleted(at)
	e.apply(upd)
	return nil
}

// AutoComplete принудительно завершает шаг при завершении более позднего.
// Пустые даты заполняются at, к заметкам добавляется AutoCompletedNote.
func (e *HistoryEntry) AutoComplete(at time.Time) {
	e.markCompleted(at)
	if e.Notes == "" {
		e.Notes = AutoCompletedNote
	} else {
		e.Notes = e.Notes + " | " + AutoCompletedNote
	}
}

func (e *HistoryEntry) markCompleted(at time.Time) {
	e.Status = EntryStatusCompleted
	if e.EntryDate == nil {
		e.EntryDate = &at
	}
	if e.ExitDate == nil {
		e.ExitDate = &at
	}
}

func (e *HistoryEntry) apply(upd EntryUpdate) {
	if upd.WorkshopID != nil {
		e.WorkshopID = upd.WorkshopID
	}
	if upd.TransporterID != nil {
		e.TransporterID = upd.TransporterID
	}
	if upd.Notes != nil {
		e.Notes = *upd.Notes
	}
}
