package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Lot - партия: единица отслеживания на производстве.
//
// Партия принадлежит заказу, имеет количество, статус и упорядоченную
// историю процессов. Партии образуют дерево через ParentID (подразделение):
// дочерняя партия ссылается на родителя, родитель детьми не владеет.
type Lot struct {
	// ID - уникальный идентификатор партии.
	ID uuid.UUID `json:"id"`

	// Code - человекочитаемый код, например "40.1".
	Code string `json:"code"`

	// OrderID - заказ-владелец.
	OrderID uuid.UUID `json:"order_id"`

	// ParentID - родительская партия (для партий, полученных подразделением).
	ParentID *uuid.UUID `json:"parent_id,omitempty"`

	// ProductID - продукт партии.
	ProductID *uuid.UUID `json:"product_id,omitempty"`

	// Quantity - количество единиц.
	Quantity int `json:"quantity"`

	// Status - сохранённый статус.
	Status LotStatus `json:"status"`

	// Указатели на текущий шаг, цех и перевозчика.
	CurrentProcessID     *uuid.UUID `json:"current_process_id,omitempty"`
	CurrentWorkshopID    *uuid.UUID `json:"current_workshop_id,omitempty"`
	CurrentTransporterID *uuid.UUID `json:"current_transporter_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// History - история процессов (подгружается при чтении).
	History []HistoryEntry `json:"history,omitempty"`
}

// IsFinished возвращает true, если партия завершена.
func (l *Lot) IsFinished() bool {
	return l.Status.IsTerminal()
}

// IsSplit возвращает true, если партия разделена.
func (l *Lot) IsSplit() bool {
	return l.Status == LotStatusSplit
}

// EnsureEditable проверяет, что партию можно менять.
func (l *Lot) EnsureEditable() error {
	if l.IsFinished() {
		return fmt.Errorf("%w: cannot modify a finished lot %s", ErrInvalidState, l.Code)
	}
	return nil
}

// EnsureAdvanceable проверяет, что партия может продвигаться по процессам.
// Разделённая партия прогресса не ведёт: его ведут дочерние партии.
func (l *Lot) EnsureAdvanceable() error {
	switch l.Status {
	case LotStatusActive:
		return nil
	case LotStatusFinished:
		return fmt.Errorf("%w: cannot modify a finished lot %s", ErrInvalidState, l.Code)
	case LotStatusSplit:
		return fmt.Errorf("%w: lot %s is split, advance its sub-lots instead", ErrInvalidState, l.Code)
	default:
		return fmt.Errorf("%w: unknown lot status %q", ErrInvalidState, l.Status)
	}
}

// LotState - результат пересчёта производного состояния партии.
type LotState struct {
	Status               ProgressStatus `json:"status"`
	CurrentProcessID     *uuid.UUID     `json:"current_process_id,omitempty"`
	CurrentWorkshopID    *uuid.UUID     `json:"current_workshop_id,omitempty"`
	CurrentTransporterID *uuid.UUID     `json:"current_transporter_id,omitempty"`
}

// ApplyState переносит производное состояние на партию.
// Сохранённый статус меняется только на FINISHED: ACTIVE/SPLIT
// управляются подразделением, а не продвижением.
func (l *Lot) ApplyState(s LotState) {
	l.CurrentProcessID = s.CurrentProcessID
	l.CurrentWorkshopID = s.CurrentWorkshopID
	l.CurrentTransporterID = s.CurrentTransporterID
	if s.Status == ProgressFinished {
		l.Status = LotStatusFinished
	}
}

// SortHistoryByProcessOrder сортирует записи по порядку процесса,
// затем по порядку вставки. Записи без процесса считаются с порядком 0.
func SortHistoryByProcessOrder(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		oi, _ := entries[i].ProcessOrder()
		oj, _ := entries[j].ProcessOrder()
		if oi != oj {
			return oi < oj
		}
		return entries[i].Seq < entries[j].Seq
	})
}
